// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlcore/xlcore"
)

// buildMinimalXLSX assembles a tiny but structurally complete XLSX in
// memory: one sheet, one shared string, a minimal styles part, and a
// preserved <cols> element, so the reader/patcher's surgical-edit path
// has something to exercise (§4.12/§4.13).
func buildMinimalXLSX(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}

	write("[Content_Types].xml", `<?xml version="1.0"?><Types/>`)
	write("xl/workbook.xml", `<?xml version="1.0"?>`+
		`<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" `+
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" mc:Ignorable="x15">`+
		`<workbookPr date1904="0"/>`+
		`<bookViews><workbookView/></bookViews>`+
		`<sheets><sheet name="Sheet1" sheetId="1" r:id="rId1"/></sheets>`+
		`<definedNames><definedName name="Spaces">"  "</definedName></definedNames>`+
		`<calcPr calcId="0"/>`+
		`</workbook>`)
	write("xl/_rels/workbook.xml.rels", `<?xml version="1.0"?>`+
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`+
		`<Relationship Id="rId1" Type="worksheet" Target="worksheets/sheet1.xml"/>`+
		`</Relationships>`)
	write("xl/styles.xml", `<?xml version="1.0"?>`+
		`<styleSheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">`+
		`<fonts count="1"><font><sz val="11"/><name val="Calibri"/></font></fonts>`+
		`<fills count="1"><fill><patternFill patternType="none"/></fill></fills>`+
		`<borders count="1"><border><left/><right/><top/><bottom/></border></borders>`+
		`<cellXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0" xfId="0"/></cellXfs>`+
		`</styleSheet>`)
	write("xl/sharedStrings.xml", `<?xml version="1.0"?>`+
		`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="1" uniqueCount="1">`+
		`<si><t>Hello</t></si></sst>`)
	write("xl/worksheets/sheet1.xml", `<?xml version="1.0"?>`+
		`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" `+
		`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">`+
		`<cols><col min="1" max="1" width="12" customWidth="1"/></cols>`+
		`<sheetData><row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1"><v>42</v></c></row></sheetData>`+
		`</worksheet>`)
	write("xl/theme/theme1.xml", `<?xml version="1.0"?><theme/>`)

	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func openDoc(t *testing.T, data []byte) *Document {
	t.Helper()
	doc, err := Open(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return doc
}

func TestOpenParsesWorkbookAndSheet(t *testing.T) {
	data := buildMinimalXLSX(t)
	doc := openDoc(t, data)

	sheet, ok := doc.Workbook.Sheet("Sheet1")
	require.True(t, ok)
	assert.Equal(t, "Hello", mustText(t, sheet.Get(xlcore.NewARef(0, 0)).Value))

	n, ok := sheet.Get(xlcore.NewARef(1, 0)).Value.AsNumber()
	require.True(t, ok)
	assert.True(t, n.Equal(decimal.NewFromInt(42)))

	text, ok := doc.Workbook.DefinedName("Spaces", "")
	require.True(t, ok)
	assert.Equal(t, `"  "`, text)

	assert.Equal(t, "x15", doc.Workbook.RootAttrs["mc:Ignorable"])

	require.Len(t, sheet.Preserved, 1)
	assert.Equal(t, "cols", sheet.Preserved[0].Name)
}

func mustText(t *testing.T, v xlcore.CellValue) string {
	t.Helper()
	s, ok := v.AsText()
	require.True(t, ok)
	return s
}

func TestWriteUntouchedIsByteIdenticalForPassthroughParts(t *testing.T) {
	data := buildMinimalXLSX(t)
	doc := openDoc(t, data)

	var out bytes.Buffer
	require.NoError(t, doc.Write(&out))

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	require.NoError(t, err)

	var theme *zip.File
	for _, f := range zr.File {
		if f.Name == "xl/theme/theme1.xml" {
			theme = f
		}
	}
	require.NotNil(t, theme, "untouched part must still be present")

	rc, err := theme.Open()
	require.NoError(t, err)
	defer rc.Close()
	var got bytes.Buffer
	_, err = got.ReadFrom(rc)
	require.NoError(t, err)
	assert.Equal(t, `<?xml version="1.0"?><theme/>`, got.String())
}

func TestSurgicalEditOnlyTouchesDirtySheet(t *testing.T) {
	data := buildMinimalXLSX(t)
	doc := openDoc(t, data)

	sheet, ok := doc.Workbook.Sheet("Sheet1")
	require.True(t, ok)
	edited := sheet.Put(xlcore.NewARef(25, 99), xlcore.Text("Test")) // Z100
	newWB, err := doc.Workbook.ReplaceSheet(edited)
	require.NoError(t, err)
	doc.Workbook = newWB
	doc.MarkDirty("Sheet1")

	var out bytes.Buffer
	require.NoError(t, doc.Write(&out))

	reopened := openDoc(t, out.Bytes())
	got, ok := reopened.Workbook.Sheet("Sheet1")
	require.True(t, ok)
	cell := got.Get(xlcore.NewARef(25, 99))
	s, ok := cell.Value.AsText()
	require.True(t, ok)
	assert.Equal(t, "Test", s)

	// The surviving original cells and the preserved <cols> element must
	// still be present after the surgical rewrite (§8 S5's expectations).
	assert.Equal(t, "Hello", mustText(t, got.Get(xlcore.NewARef(0, 0)).Value))
	require.Len(t, got.Preserved, 1)
	assert.Equal(t, "cols", got.Preserved[0].Name)

	text, ok := reopened.Workbook.DefinedName("Spaces", "")
	require.True(t, ok)
	assert.Equal(t, `"  "`, text, "defined name text must survive a surgical edit untouched")
}

func TestStyleRegistryRoundTrip(t *testing.T) {
	data := buildMinimalXLSX(t)
	doc := openDoc(t, data)

	style, ok := doc.Workbook.Styles.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, "Calibri", style.Font.Name)
	assert.Equal(t, 11.0, style.Font.Size)
}

func TestEncryptedCFBIsRejected(t *testing.T) {
	cfb := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, make([]byte, 512)...)
	_, err := Open(bytes.NewReader(cfb), int64(len(cfb)))
	assert.ErrorIs(t, err, ErrEncrypted)
}
