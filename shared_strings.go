package xlsx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

type sharedStrings []string

func (s sharedStrings) get(idx int) (string, error) {
	if idx < 0 || idx >= len(s) {
		return "", fmt.Errorf("shared string index %d outside table of %d: %w", idx, len(s), ErrCorruptReference)
	}
	return s[idx], nil
}

func readSharedStrings(reader io.Reader) (sharedStrings, error) {
	decoder := xml.NewDecoder(reader)

	var result sharedStrings
	ar := &arena{}
	isT := false
	isR := false
	str := ""
	for {
		t, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse xl/sharedStrings.xml: %v: %w", err, ErrMalformed)
		}
		switch token := t.(type) {
		case xml.StartElement:
			switch token.Name.Local {
			case "si":
				str = ""
			case "t":
				isT = true
			case "r":
				isR = true
			case "sst":
				uniqCount := 0
				count := 0
				for _, attr := range token.Attr {
					switch attr.Name.Local {
					case "uniqueCount":
						uniqCount, _ = strconv.Atoi(attr.Value)
					case "count":
						count, _ = strconv.Atoi(attr.Value)
					}
				}
				if uniqCount != 0 {
					result = make([]string, 0, uniqCount)
				} else {
					result = make([]string, 0, count)
				}
			default:
				// rPr, rPh and friends carry no cell text
				_ = decoder.Skip()
			}
		case xml.EndElement:
			switch token.Name.Local {
			case "si":
				result = append(result, str)
			case "t":
				isT = false
			case "r":
				isR = false
			}
		case xml.CharData:
			if isT {
				if isR {
					str += ar.intern(token)
				} else {
					str = ar.intern(token)
				}
			}
		}
	}
	return result, nil
}
