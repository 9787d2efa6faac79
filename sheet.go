package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// defaultMaxRows caps decoded output when Options.MaxRows is left zero.
const defaultMaxRows = 10000

// Options control the materializing read operations. The zero value reads
// every row up to the default cap, keyed by column letters.
type Options struct {
	// StartRow is the number of leading rows to drop before the header row
	// (or the first data row when Header is off).
	StartRow int
	// Header treats the first remaining row as a header: its cell values,
	// passed through HeaderTransform, rekey all following rows and the
	// header row itself is excluded from the output.
	Header bool
	// HeaderTransform derives an output key from a header cell value.
	// Nil means the cell's display string.
	HeaderTransform func(any) string
	// MaxRows truncates the output after rekeying. Zero means the default
	// cap of 10000, negative means unbounded.
	MaxRows int
	// Columns, when non-empty, projects each output row down to these keys.
	// Absent keys are omitted, not defaulted.
	Columns []string
}

func (o *Options) maxRows() int {
	if o.MaxRows == 0 {
		return defaultMaxRows
	}
	return o.MaxRows
}

func (o *Options) transform() func(any) string {
	if o.HeaderTransform != nil {
		return o.HeaderTransform
	}
	return DisplayString
}

// Sheet streams one worksheet row at a time, so a consumer can stop early
// without materializing the whole part.
type Sheet struct {
	zipReader io.ReadCloser
	decoder   *xml.Decoder
	file      *File
	rowStart  xml.StartElement
	lastRow   int
	err       error
}

func newSheetReader(zipFile *zip.File, file *File) (*Sheet, error) {
	reader, err := zipFile.Open()
	if err != nil {
		return nil, err
	}

	sheet := &Sheet{
		zipReader: reader,
		decoder:   xml.NewDecoder(reader),
		file:      file,
	}

	if err := sheet.skipToSheetData(); err != nil {
		_ = reader.Close()
		return nil, fmt.Errorf("parse worksheet %s: %v: %w", zipFile.Name, err, ErrMalformed)
	}

	return sheet, nil
}

func (s *Sheet) skipToSheetData() error {
	for {
		t, err := s.decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch token := t.(type) {
		case xml.StartElement:
			switch token.Name.Local {
			case "worksheet":
				//
			case "sheetData":
				return nil
			default:
				if err := s.decoder.Skip(); err != nil {
					return err
				}
			}
		}
	}
}

func (s *Sheet) Close() error {
	return s.zipReader.Close()
}

// Err returns the decode error that ended iteration, if any. A sheet that
// ran to its end reports nil.
func (s *Sheet) Err() error {
	return s.err
}

// Next advances to the next row element. It returns false at the end of the
// sheet data, or on a decode failure, which Err reports afterwards.
func (s *Sheet) Next() bool {
	for {
		t, err := s.decoder.Token()
		if err != nil {
			if err != io.EOF {
				s.err = fmt.Errorf("parse worksheet row %d: %v: %w", s.lastRow+1, err, ErrMalformed)
			}
			return false
		}
		switch token := t.(type) {
		case xml.StartElement:
			if token.Name.Local == "row" {
				s.rowStart = token
				return true
			}
		case xml.EndElement:
			if token.Name.Local == "sheetData" {
				return false
			}
		}
	}
}

var cellRefRe = regexp.MustCompile(`^([A-Z]{1,3})[0-9]+$`)

// Read decodes the row Next stopped at. The row number comes from the r
// attribute, or one past the previous row when absent. Cells with an
// explicit address re-synchronize the column position; cells without one
// take the column right after the last cell processed in this row.
func (s *Sheet) Read() (Row, error) {
	num := s.lastRow + 1
	for _, attr := range s.rowStart.Attr {
		if attr.Name.Local == "r" {
			if n, err := strconv.Atoi(attr.Value); err == nil && n > 0 {
				num = n
			}
		}
	}
	s.lastRow = num

	row := Row{Num: num, Cells: make(map[string]any)}
	lastCol := 0
	for {
		t, err := s.decoder.Token()
		if err != nil {
			return Row{}, fmt.Errorf("parse worksheet row %d: %v: %w", num, err, ErrMalformed)
		}
		switch token := t.(type) {
		case xml.StartElement:
			if token.Name.Local != "c" {
				_ = s.decoder.Skip()
				continue
			}

			cellType := ""
			styleID := -1
			col := 0
			for _, attr := range token.Attr {
				switch attr.Name.Local {
				case "r":
					if m := cellRefRe.FindStringSubmatch(attr.Value); m != nil {
						col = ColumnNumber(m[1])
					}
				case "t":
					cellType = attr.Value
				case "s":
					if n, err := strconv.Atoi(attr.Value); err == nil {
						styleID = n
					}
				}
			}
			if col == 0 {
				col = lastCol + 1
			}
			lastCol = col

			raw, found, err := s.readCellValue(num)
			if err != nil {
				return Row{}, err
			}
			if !found {
				continue
			}

			value, err := s.file.convertCell(raw, cellType, styleID)
			if err != nil {
				return Row{}, err
			}
			row.Cells[ColumnName(col)] = value
		case xml.EndElement:
			if token.Name.Local == "row" {
				return row, nil
			}
		}
	}
}

// readCellValue consumes the current cell element to its end, collecting the
// inner value from either a v element or an inline is>t run.
func (s *Sheet) readCellValue(rowNum int) (string, bool, error) {
	raw := ""
	found := false
	inValue := false
	for {
		t, err := s.decoder.Token()
		if err != nil {
			return "", false, fmt.Errorf("parse worksheet row %d: %v: %w", rowNum, err, ErrMalformed)
		}
		switch token := t.(type) {
		case xml.StartElement:
			switch token.Name.Local {
			case "v", "t":
				inValue = true
				found = true
			case "is", "r":
				//
			default:
				// formulas and phonetic runs are not cell values
				_ = s.decoder.Skip()
			}
		case xml.EndElement:
			switch token.Name.Local {
			case "v", "t":
				inValue = false
			case "c":
				return raw, found, nil
			}
		case xml.CharData:
			if inValue {
				raw += string(token)
			}
		}
	}
}

// convertCell turns a raw cell value into its typed form based on the
// declared cell type and, for numeric cells, the style classification.
func (f *File) convertCell(raw, cellType string, styleID int) (any, error) {
	switch cellType {
	case "s":
		idx, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("shared string reference %q: %v: %w", raw, err, ErrMalformed)
		}
		return f.sharedStrings.get(idx)
	case "str", "inlineStr":
		return raw, nil
	case "b":
		return raw == "1", nil
	case "e":
		return cellErrorCode(raw), nil
	default:
		// "n", untyped, and unrecognized types all decode as numbers
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return raw, nil
		}
		switch f.styles.classify(styleID) {
		case formatDate:
			return timeFromExcelTime(n, f.date1904), nil
		case formatTime:
			return TimeOfDay(timeOfDayString(n)), nil
		case formatPercent:
			return Percent(percentString(n)), nil
		default:
			return n, nil
		}
	}
}

// readRows materializes the streaming sheet through the options pipeline.
func readRows(sheet *Sheet, opts *Options) ([]Row, error) {
	if opts == nil {
		opts = &Options{}
	}

	// Read no more than the pipeline can emit.
	readCap := -1
	if m := opts.maxRows(); m > 0 {
		readCap = opts.StartRow + m
		if opts.Header {
			readCap++
		}
	}

	var rows []Row
	for sheet.Next() {
		row, err := sheet.Read()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if readCap > 0 && len(rows) >= readCap {
			break
		}
	}
	if err := sheet.Err(); err != nil {
		return nil, err
	}

	if opts.StartRow > 0 {
		if opts.StartRow >= len(rows) {
			return nil, nil
		}
		rows = rows[opts.StartRow:]
	}

	if opts.Header && len(rows) > 0 {
		transform := opts.transform()
		header := make(map[string]string, len(rows[0].Cells))
		for col, value := range rows[0].Cells {
			header[col] = transform(value)
		}
		rows = rows[1:]
		for i, row := range rows {
			rekeyed := make(map[string]any, len(row.Cells))
			for col, value := range row.Cells {
				key, ok := header[col]
				if !ok {
					key = col
				}
				rekeyed[key] = value
			}
			rows[i] = Row{Num: row.Num, Cells: rekeyed}
		}
	}

	if m := opts.maxRows(); m > 0 && len(rows) > m {
		rows = rows[:m]
	}

	if len(opts.Columns) > 0 {
		for i, row := range rows {
			projected := make(map[string]any, len(opts.Columns))
			for _, key := range opts.Columns {
				if value, ok := row.Cells[key]; ok {
					projected[key] = value
				}
			}
			rows[i] = Row{Num: row.Num, Cells: projected}
		}
	}

	return rows, nil
}
