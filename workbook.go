package xlsx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
)

// SheetDescriptor is one declared sheet from xl/workbook.xml. The slice
// order of descriptors is the user-visible sheet order. SheetID is the
// author-assigned identifier and may be non-sequential after deletions; it
// is never a positional index.
type SheetDescriptor struct {
	Name    string
	SheetID int
	RelID   string
}

type xmlWorkbook struct {
	XMLName    xml.Name `xml:"workbook"`
	WorkbookPr struct {
		Date1904 bool `xml:"date1904,attr"`
	} `xml:"workbookPr"`
	Sheets []struct {
		Name    string `xml:"name,attr"`
		SheetID string `xml:"sheetId,attr"`
		ID      string `xml:"id,attr"`
	} `xml:"sheets>sheet"`
}

func readWorkbook(rd io.Reader) (*xmlWorkbook, error) {
	decoder := xml.NewDecoder(rd)
	data := &xmlWorkbook{}
	if err := decoder.Decode(data); err != nil {
		return nil, fmt.Errorf("parse xl/workbook.xml: %v: %w", err, ErrMalformed)
	}
	return data, nil
}

func (wb *xmlWorkbook) descriptors() []SheetDescriptor {
	result := make([]SheetDescriptor, 0, len(wb.Sheets))
	for _, sheet := range wb.Sheets {
		id, _ := strconv.Atoi(sheet.SheetID)
		result = append(result, SheetDescriptor{
			Name:    sheet.Name,
			SheetID: id,
			RelID:   sheet.ID,
		})
	}
	return result
}
