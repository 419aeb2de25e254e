// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"archive/zip"
	"io"
)

// Write streams the archive back out per §4.13: parts regenerated
// because an edit touched them (workbook.xml, styles.xml,
// sharedStrings.xml, and any sheet MarkDirty flagged) get fresh bytes;
// everything else is copied byte-for-byte from the source archive,
// original compression and all, in its original manifest order.
//
// Regenerated bytes for dirty worksheets are computed before any part
// is streamed, because emitting a sheet can intern new shared strings
// into the table sharedStrings.xml itself is about to be written from —
// the table has to be finished growing before it's serialized.
func (doc *Document) Write(w io.Writer) error {
	table := append([]string(nil), doc.Workbook.SharedStrings...)
	regenerated := map[string][]byte{}
	for name, dirty := range doc.dirty {
		if !dirty {
			continue
		}
		sheet, ok := doc.Workbook.Sheet(name)
		if !ok {
			continue
		}
		part, ok := doc.partForSheet[name]
		if !ok {
			continue
		}
		regenerated[part] = emitWorksheetXML(sheet, doc.sheetRoots[name], &table, doc.Workbook.Styles)
	}
	doc.Workbook.SharedStrings = table

	regenerated[doc.stylesPart] = emitStylesXML(doc.Workbook.Styles)
	regenerated[doc.sstPart] = emitSharedStrings(table)
	regenerated[doc.workbookPart] = doc.workbookModel.emit(doc.sheetNames(), doc.sheetStates(), doc.sheetIDs())

	zw := zip.NewWriter(w)
	for _, part := range doc.Manifest.Parts {
		if data, ok := regenerated[part.Name]; ok {
			if err := writeDeflated(zw, part.Name, data); err != nil {
				return err
			}
			continue
		}
		if err := copyPartRaw(zw, part); err != nil {
			return err
		}
	}
	return zw.Close()
}

func (doc *Document) sheetNames() []string {
	sheets := doc.Workbook.Sheets()
	out := make([]string, len(sheets))
	for i, s := range sheets {
		out[i] = s.Name
	}
	return out
}

func (doc *Document) sheetStates() []string {
	sheets := doc.Workbook.Sheets()
	out := make([]string, len(sheets))
	for i, s := range sheets {
		out[i] = s.State
	}
	return out
}

func (doc *Document) sheetIDs() []int {
	sheets := doc.Workbook.Sheets()
	out := make([]int, len(sheets))
	for i, s := range sheets {
		out[i] = s.SheetID
	}
	return out
}

func writeDeflated(zw *zip.Writer, name string, data []byte) error {
	fh := &zip.FileHeader{Name: name, Method: zip.Deflate}
	w, err := zw.CreateHeader(fh)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// copyPartRaw streams an untouched ZIP entry through unmodified, using
// the raw (still-compressed) reader/writer pair so the bytes on disk
// are bit-for-bit what the source archive had — the basis of the
// fidelity law (§8 law 7) for every part this package doesn't regenerate.
func copyPartRaw(zw *zip.Writer, part Part) error {
	fh := part.File.FileHeader
	dest, err := zw.CreateRaw(&fh)
	if err != nil {
		return err
	}
	src, err := part.File.OpenRaw()
	if err != nil {
		return err
	}
	_, err = io.Copy(dest, src)
	return err
}
