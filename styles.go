package xlsx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// styleSheet is the part of xl/styles.xml this package consumes: the
// ordered cellXfs list (index = style id, value = numFmtId) and the custom
// numFmt declarations by id.
type styleSheet struct {
	numFormats map[int]string
	cellXfs    []int
}

func readStyleSheet(reader io.Reader) (*styleSheet, error) {
	decoder := xml.NewDecoder(reader)

	result := styleSheet{
		numFormats: make(map[int]string),
	}

	isNumFmts := false
	isCellXfs := false
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xl/styles.xml: %v: %w", err, ErrMalformed)
		}
		switch token := t.(type) {
		case xml.StartElement:
			switch token.Name.Local {
			case "numFmts":
				isNumFmts = true
			case "numFmt":
				if isNumFmts {
					id := 0
					code := ""
					for _, attr := range token.Attr {
						switch attr.Name.Local {
						case "formatCode":
							code = attr.Value
						case "numFmtId":
							id, _ = strconv.Atoi(attr.Value)
						}
					}
					result.numFormats[id] = code
				}
			case "cellXfs":
				isCellXfs = true
			case "xf":
				if isCellXfs {
					id := 0
					for _, attr := range token.Attr {
						if attr.Name.Local == "numFmtId" {
							id, _ = strconv.Atoi(attr.Value)
						}
					}
					result.cellXfs = append(result.cellXfs, id)
				}
			case "styleSheet":
				//
			default:
				_ = decoder.Skip()
			}
		case xml.EndElement:
			switch token.Name.Local {
			case "numFmts":
				isNumFmts = false
			case "cellXfs":
				isCellXfs = false
			}
		}
	}

	return &result, nil
}

// classify resolves a cell's style id to a format class. It is total: any
// lookup miss, including a nil style sheet, degrades to formatPlain.
func (s *styleSheet) classify(styleID int) formatClass {
	if s == nil || styleID < 0 || styleID >= len(s.cellXfs) {
		return formatPlain
	}
	fmtID := s.cellXfs[styleID]
	if code, ok := s.numFormats[fmtID]; ok {
		return classifyFormatCode(code)
	}
	if class, ok := builtinFormatClasses[fmtID]; ok {
		return class
	}
	return formatPlain
}
