package xlsx

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodeImplicitColumns(t *testing.T) {
	data := singleSheetArchive(t,
		`<row><c><v>1</v></c><c><v>2</v></c><c><v>3</v></c></row>`+
			`<row><c><v>9</v></c></row>`, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, Row{Num: 1, Cells: map[string]any{"A": 1.0, "B": 2.0, "C": 3.0}}, rows[0])
	require.Equal(t, Row{Num: 2, Cells: map[string]any{"A": 9.0}}, rows[1])
}

func TestDecodeMixedAddresses(t *testing.T) {
	// explicit A2, an empty addressless cell, explicit C2 re-synchronizing,
	// then two more addressless cells
	data := singleSheetArchive(t,
		`<row r="2">`+
			`<c r="A2"><v>1</v></c>`+
			`<c/>`+
			`<c r="C2"><v>3</v></c>`+
			`<c><v>4</v></c>`+
			`<c><v>5</v></c>`+
			`</row>`, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2, rows[0].Num)
	require.Equal(t, map[string]any{"A": 1.0, "C": 3.0, "D": 4.0, "E": 5.0}, rows[0].Cells)
	_, hasB := rows[0].Cells["B"]
	require.False(t, hasB)
}

func TestDecodeRowNumberInference(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="3"><c r="A3"><v>1</v></c></row>`+
			`<row><c><v>2</v></c></row>`+
			`<row r="10"><c r="B10"><v>3</v></c></row>`, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, 3, rows[0].Num)
	require.Equal(t, 4, rows[1].Num)
	require.Equal(t, 10, rows[2].Num)
}

func TestDecodeSharedStrings(t *testing.T) {
	shared := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<sst xmlns="` + testNSMain + `" count="3" uniqueCount="2">` +
		`<si><t>plain</t></si>` +
		`<si><r><rPr><b/></rPr><t>rich </t></r><r><t>text</t></r></si>` +
		`</sst>`
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>`,
		map[string]string{"xl/sharedStrings.xml": shared})

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"A": "plain", "B": "rich text"}, rows[0].Cells)
}

func TestDecodeSharedStringOutOfRange(t *testing.T) {
	shared := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<sst xmlns="` + testNSMain + `"><si><t>only</t></si></sst>`
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1" t="s"><v>7</v></c></row>`,
		map[string]string{"xl/sharedStrings.xml": shared})

	_, err := ReadSheet(data, 1, nil)
	require.ErrorIs(t, err, ErrCorruptReference)
	require.Contains(t, err.Error(), "7")
}

func TestDecodeCellTypes(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="1">`+
			`<c r="A1" t="inlineStr"><is><t>inline</t></is></c>`+
			`<c r="B1" t="str"><v>formula result</v></c>`+
			`<c r="C1" t="b"><v>1</v></c>`+
			`<c r="D1" t="b"><v>0</v></c>`+
			`<c r="E1" t="e"><v>#DIV/0!</v></c>`+
			`<c r="F1" t="e"><v>#WAT!</v></c>`+
			`<c r="G1"><v>12.5</v></c>`+
			`</row>`, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{
		"A": "inline",
		"B": "formula result",
		"C": true,
		"D": false,
		"E": ErrCodeDivByZero,
		"F": ErrCodeUnknown,
		"G": 12.5,
	}, rows[0].Cells)
}

func stylesPart(numFmtIDs ...string) string {
	var xfs strings.Builder
	for _, id := range numFmtIDs {
		xfs.WriteString(`<xf numFmtId="` + id + `"/>`)
	}
	return `<?xml version="1.0" encoding="UTF-8"?>` +
		`<styleSheet xmlns="` + testNSMain + `">` +
		`<cellXfs>` + xfs.String() + `</cellXfs></styleSheet>`
}

func TestDecodeDateCell(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1" s="1"><v>1</v></c></row>`,
		map[string]string{"xl/styles.xml": stylesPart("0", "14")})

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Equal(t, time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC), rows[0].Cells["A"])
}

func TestDecodeTimeAndPercentCells(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="1">`+
			`<c r="A1" s="1"><v>0.5</v></c>`+
			`<c r="B1" s="2"><v>0.123</v></c>`+
			`<c r="C1" s="3"><v>0.5</v></c>`+
			`</row>`,
		map[string]string{"xl/styles.xml": stylesPart("0", "21", "10", "0")})

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Equal(t, TimeOfDay("12:00:00"), rows[0].Cells["A"])
	require.Equal(t, Percent("12.3000%"), rows[0].Cells["B"])
	require.Equal(t, 0.5, rows[0].Cells["C"])
}

func TestDecodeCustomFormat(t *testing.T) {
	styles := `<?xml version="1.0" encoding="UTF-8"?>` +
		`<styleSheet xmlns="` + testNSMain + `">` +
		`<numFmts count="1"><numFmt numFmtId="200" formatCode="yyyy/mm/dd"/></numFmts>` +
		`<cellXfs count="2"><xf numFmtId="0"/><xf numFmtId="200"/></cellXfs></styleSheet>`
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1" s="1"><v>366</v></c></row>`,
		map[string]string{"xl/styles.xml": styles})

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Equal(t, time.Date(1900, time.December, 31, 0, 0, 0, 0, time.UTC), rows[0].Cells["A"])
}

func TestDecodeSkipsFormulaText(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1"><f>SUM(B1:B9)</f><v>42</v></c></row>`, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"A": 42.0}, rows[0].Cells)
}

func headerFixture(t *testing.T) []byte {
	return singleSheetArchive(t,
		`<row r="1"><c r="A1" t="inlineStr"><is><t>id</t></is></c><c r="B1" t="inlineStr"><is><t>name</t></is></c></row>`+
			`<row r="2"><c r="A2"><v>1</v></c><c r="B2" t="inlineStr"><is><t>One</t></is></c></row>`+
			`<row r="3"><c r="A3"><v>2</v></c><c r="B3" t="inlineStr"><is><t>Two</t></is></c><c r="C3"><v>9</v></c></row>`, nil)
}

func TestDecodeHeaderMode(t *testing.T) {
	rows, err := ReadSheet(headerFixture(t), 1, &Options{Header: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 2, rows[0].Num)
	require.Equal(t, map[string]any{"id": 1.0, "name": "One"}, rows[0].Cells)
	// a column with no header mapping keeps its letter key
	require.Equal(t, map[string]any{"id": 2.0, "name": "Two", "C": 9.0}, rows[1].Cells)
}

func TestDecodeHeaderTransform(t *testing.T) {
	rows, err := ReadSheet(headerFixture(t), 1, &Options{
		Header: true,
		HeaderTransform: func(v any) string {
			return strings.ToUpper(DisplayString(v))
		},
	})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ID": 1.0, "NAME": "One"}, rows[0].Cells)
}

func TestDecodeStartRow(t *testing.T) {
	rows, err := ReadSheet(headerFixture(t), 1, &Options{StartRow: 1, Header: true, HeaderTransform: func(v any) string {
		return "col_" + DisplayString(v)
	}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, map[string]any{"col_1": 2.0, "col_One": "Two", "C": 9.0}, rows[0].Cells)

	rows, err = ReadSheet(headerFixture(t), 1, &Options{StartRow: 99})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecodeMaxRows(t *testing.T) {
	rows, err := ReadSheet(headerFixture(t), 1, &Options{MaxRows: 1})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 1, rows[0].Num)

	rows, err = ReadSheet(headerFixture(t), 1, &Options{MaxRows: 1, Header: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 2, rows[0].Num)

	rows, err = ReadSheet(headerFixture(t), 1, &Options{MaxRows: -1})
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestDecodeColumnFilter(t *testing.T) {
	rows, err := ReadSheet(headerFixture(t), 1, &Options{Header: true, Columns: []string{"id", "missing"}})
	require.NoError(t, err)
	require.Equal(t, map[string]any{"id": 1.0}, rows[0].Cells)
	require.Equal(t, map[string]any{"id": 2.0}, rows[1].Cells)
}

func TestStreamingSheetStopsEarly(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1"><v>1</v></c></row>`+
			`<row r="2"><c r="A2"><v>2</v></c></row>`+
			`<row r="3"><c r="A3"><v>3</v></c></row>`, nil)

	file, err := Open(data)
	require.NoError(t, err)
	defer file.Close()

	sheet, err := file.OpenSheet("Alpha")
	require.NoError(t, err)

	require.True(t, sheet.Next())
	row, err := sheet.Read()
	require.NoError(t, err)
	require.Equal(t, 1, row.Num)

	require.True(t, sheet.Next())
	require.NoError(t, sheet.Close())
}

func TestDecodeCorruptSheetData(t *testing.T) {
	// the part truncates into garbage after a well-formed first row
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1"><v>1</v></c></row>`+
			`<row r="2" <<<garbage`, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.ErrorIs(t, err, ErrMalformed)
	require.Nil(t, rows)
}

func TestStreamingSheetReportsDecodeError(t *testing.T) {
	data := singleSheetArchive(t,
		`<row r="1"><c r="A1"><v>1</v></c></row>`+
			`<row r="2" <<<garbage`, nil)

	file, err := Open(data)
	require.NoError(t, err)
	defer file.Close()

	sheet, err := file.OpenSheet("Alpha")
	require.NoError(t, err)
	defer sheet.Close()

	require.True(t, sheet.Next())
	row, err := sheet.Read()
	require.NoError(t, err)
	require.Equal(t, 1, row.Num)

	require.False(t, sheet.Next())
	require.ErrorIs(t, sheet.Err(), ErrMalformed)
}

func TestDecodeEmptySheet(t *testing.T) {
	data := singleSheetArchive(t, ``, nil)

	rows, err := ReadSheet(data, 1, nil)
	require.NoError(t, err)
	require.Empty(t, rows)
}
