package xlsx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testNSMain = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	testNSRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

func buildArchive(t *testing.T, parts map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, body := range parts {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// singleSheetArchive builds a workbook with one sheet named Alpha whose
// sheetData contains rowsXML, plus any extra parts (sharedStrings, styles).
func singleSheetArchive(t *testing.T, rowsXML string, extra map[string]string) []byte {
	t.Helper()

	parts := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<workbook xmlns="` + testNSMain + `" xmlns:r="` + testNSRels + `">` +
			`<sheets><sheet name="Alpha" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="` + testNSRels + `/worksheet" Target="worksheets/sheet1.xml"/>` +
			`</Relationships>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>` +
			`<worksheet xmlns="` + testNSMain + `"><sheetData>` + rowsXML + `</sheetData></worksheet>`,
	}
	for name, body := range extra {
		parts[name] = body
	}
	return buildArchive(t, parts)
}
