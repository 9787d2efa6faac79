package xlsx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Field is one key/value pair of a mapping-shaped row.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered mapping-shaped row. Key order of the first record of
// a sheet determines the header and the column layout.
type Record []Field

func (r Record) get(key string) (any, bool) {
	for _, field := range r {
		if field.Key == key {
			return field.Value, true
		}
	}
	return nil, false
}

// SheetData is one sheet to encode. Exactly one of Records and Rows should
// be set: Records are mapping shaped, Rows are positional with the first
// row as header. Rename, when supplied for a mapping-shaped sheet, selects,
// reorders and relabels the output columns; keys without an entry are
// dropped.
type SheetData struct {
	Name    string
	Records []Record
	Rows    [][]any
	Rename  map[string]string
}

const (
	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsDocumentRels  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
	nsContentTypes  = "http://schemas.openxmlformats.org/package/2006/content-types"
	relTypeDocument = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument"
	relTypeSheet    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet"
	relTypeStyles   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"

	ctWorkbook  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles    = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctRels      = "application/vnd.openxmlformats-package.relationships+xml"
)

// The writer references exactly three cell formats: 0 general, 1 date,
// 2 date-time. minimalStyles must keep cellXfs in that order.
const (
	styleGeneral  = 0
	styleDate     = 1
	styleDateTime = 2
)

const minimalStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><fonts count="1"><font><sz val="11"/><name val="Calibri"/></font></fonts><fills count="1"><fill><patternFill patternType="none"/></fill></fills><borders count="1"><border/></borders><cellStyleXfs count="1"><xf numFmtId="0"/></cellStyleXfs><cellXfs count="3"><xf numFmtId="0"/><xf numFmtId="14" applyNumberFormat="1"/><xf numFmtId="22" applyNumberFormat="1"/></cellXfs></styleSheet>`

type writeRelationships struct {
	XMLName xml.Name `xml:"Relationships"`
	Xmlns   string   `xml:"xmlns,attr"`
	Rels    []writeRelationship
}

type writeRelationship struct {
	XMLName xml.Name `xml:"Relationship"`
	ID      string   `xml:"Id,attr"`
	Type    string   `xml:"Type,attr"`
	Target  string   `xml:"Target,attr"`
}

type writeContentTypes struct {
	XMLName   xml.Name            `xml:"Types"`
	Xmlns     string              `xml:"xmlns,attr"`
	Defaults  []writeTypeDefault  `xml:"Default"`
	Overrides []writeTypeOverride `xml:"Override"`
}

type writeTypeDefault struct {
	Extension   string `xml:"Extension,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type writeTypeOverride struct {
	PartName    string `xml:"PartName,attr"`
	ContentType string `xml:"ContentType,attr"`
}

type writeWorkbook struct {
	XMLName xml.Name         `xml:"workbook"`
	Xmlns   string           `xml:"xmlns,attr"`
	XmlnsR  string           `xml:"xmlns:r,attr"`
	Sheets  []writeSheetDecl `xml:"sheets>sheet"`
}

type writeSheetDecl struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RelID   string `xml:"r:id,attr"`
}

type writeWorksheet struct {
	XMLName   xml.Name   `xml:"worksheet"`
	Xmlns     string     `xml:"xmlns,attr"`
	SheetData []writeRow `xml:"sheetData>row"`
}

type writeRow struct {
	R     int         `xml:"r,attr"`
	Cells []writeCell `xml:"c"`
}

type writeCell struct {
	R  string       `xml:"r,attr"`
	S  int          `xml:"s,attr,omitempty"`
	T  string       `xml:"t,attr,omitempty"`
	V  string       `xml:"v,omitempty"`
	Is *writeInline `xml:"is,omitempty"`
}

type writeInline struct {
	T string `xml:"t"`
}

// WriteWorkbook encodes sheets into a minimally valid xlsx archive at path:
// one worksheet part per sheet, the workbook and relationship parts, the
// content types and a small style sheet so date cells survive a round trip.
// Shared strings are not used; text goes out as inline strings.
func WriteWorkbook(path string, sheets []SheetData) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", path, err)
	}

	if err := EncodeWorkbook(out, sheets); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// EncodeWorkbook writes the xlsx archive to an arbitrary writer.
func EncodeWorkbook(w io.Writer, sheets []SheetData) error {
	archive := zip.NewWriter(w)

	if err := writeContentTypesPart(archive, len(sheets)); err != nil {
		return err
	}
	if err := writeRootRelsPart(archive); err != nil {
		return err
	}
	if err := writeWorkbookPart(archive, sheets); err != nil {
		return err
	}
	if err := writeWorkbookRelsPart(archive, len(sheets)); err != nil {
		return err
	}
	if err := writeRawPart(archive, "xl/styles.xml", minimalStyles); err != nil {
		return err
	}
	for i, sheet := range sheets {
		name := "xl/worksheets/sheet" + strconv.Itoa(i+1) + ".xml"
		if err := writeWorksheetPart(archive, name, sheet); err != nil {
			return err
		}
	}

	return archive.Close()
}

func writeXMLPart(archive *zip.Writer, name string, part any) error {
	w, err := archive.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(part)
}

func writeRawPart(archive *zip.Writer, name, body string) error {
	w, err := archive.Create(name)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, body)
	return err
}

func writeContentTypesPart(archive *zip.Writer, sheetCount int) error {
	types := writeContentTypes{
		Xmlns: nsContentTypes,
		Defaults: []writeTypeDefault{
			{Extension: "rels", ContentType: ctRels},
			{Extension: "xml", ContentType: "application/xml"},
		},
		Overrides: []writeTypeOverride{
			{PartName: "/xl/workbook.xml", ContentType: ctWorkbook},
			{PartName: "/xl/styles.xml", ContentType: ctStyles},
		},
	}
	for i := 1; i <= sheetCount; i++ {
		types.Overrides = append(types.Overrides, writeTypeOverride{
			PartName:    "/xl/worksheets/sheet" + strconv.Itoa(i) + ".xml",
			ContentType: ctWorksheet,
		})
	}
	return writeXMLPart(archive, "[Content_Types].xml", types)
}

func writeRootRelsPart(archive *zip.Writer) error {
	rels := writeRelationships{
		Xmlns: nsPackageRels,
		Rels: []writeRelationship{
			{ID: "rId1", Type: relTypeDocument, Target: "xl/workbook.xml"},
		},
	}
	return writeXMLPart(archive, "_rels/.rels", rels)
}

func writeWorkbookPart(archive *zip.Writer, sheets []SheetData) error {
	wb := writeWorkbook{
		Xmlns:  nsMain,
		XmlnsR: nsDocumentRels,
	}
	for i, sheet := range sheets {
		wb.Sheets = append(wb.Sheets, writeSheetDecl{
			Name:    sheet.Name,
			SheetID: i + 1,
			RelID:   "rId" + strconv.Itoa(i+1),
		})
	}
	return writeXMLPart(archive, "xl/workbook.xml", wb)
}

func writeWorkbookRelsPart(archive *zip.Writer, sheetCount int) error {
	rels := writeRelationships{Xmlns: nsPackageRels}
	for i := 1; i <= sheetCount; i++ {
		rels.Rels = append(rels.Rels, writeRelationship{
			ID:     "rId" + strconv.Itoa(i),
			Type:   relTypeSheet,
			Target: "worksheets/sheet" + strconv.Itoa(i) + ".xml",
		})
	}
	rels.Rels = append(rels.Rels, writeRelationship{
		ID:     "rId" + strconv.Itoa(sheetCount+1),
		Type:   relTypeStyles,
		Target: "styles.xml",
	})
	return writeXMLPart(archive, "xl/_rels/workbook.xml.rels", rels)
}

func writeWorksheetPart(archive *zip.Writer, name string, sheet SheetData) error {
	ws := writeWorksheet{Xmlns: nsMain}

	if len(sheet.Records) > 0 {
		keys, names := resolveHeader(sheet.Records[0], sheet.Rename)
		header := writeRow{R: 1}
		for i, headerName := range names {
			header.Cells = append(header.Cells, makeCell(i+1, 1, headerName))
		}
		ws.SheetData = append(ws.SheetData, header)

		for rowIdx, record := range sheet.Records {
			row := writeRow{R: rowIdx + 2}
			for colIdx, key := range keys {
				if value, ok := record.get(key); ok {
					row.Cells = append(row.Cells, makeCell(colIdx+1, rowIdx+2, value))
				}
			}
			ws.SheetData = append(ws.SheetData, row)
		}
	} else {
		for rowIdx, cells := range sheet.Rows {
			row := writeRow{R: rowIdx + 1}
			for colIdx, value := range cells {
				row.Cells = append(row.Cells, makeCell(colIdx+1, rowIdx+1, value))
			}
			ws.SheetData = append(ws.SheetData, row)
		}
	}

	return writeXMLPart(archive, name, ws)
}

// resolveHeader derives the output column keys and their labels from the
// first record. With a rename map only mapped keys survive, relabeled;
// without one every key maps to itself.
func resolveHeader(first Record, rename map[string]string) (keys, names []string) {
	for _, field := range first {
		if rename != nil {
			name, ok := rename[field.Key]
			if !ok {
				continue
			}
			keys = append(keys, field.Key)
			names = append(names, name)
			continue
		}
		keys = append(keys, field.Key)
		names = append(names, field.Key)
	}
	return keys, names
}

func makeCell(col, row int, value any) writeCell {
	cell := writeCell{R: ColumnName(col) + strconv.Itoa(row)}
	switch v := value.(type) {
	case string:
		cell.T = "inlineStr"
		cell.Is = &writeInline{T: v}
	case bool:
		cell.T = "b"
		if v {
			cell.V = "1"
		} else {
			cell.V = "0"
		}
	case int:
		cell.V = strconv.Itoa(v)
	case int64:
		cell.V = strconv.FormatInt(v, 10)
	case float64:
		cell.V = strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		cell.V = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case time.Time:
		serial := excelTimeFromTime(v)
		cell.V = strconv.FormatFloat(serial, 'f', -1, 64)
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			cell.S = styleDate
		} else {
			cell.S = styleDateTime
		}
	case nil:
		//
	default:
		cell.T = "inlineStr"
		cell.Is = &writeInline{T: DisplayString(value)}
	}
	return cell
}
