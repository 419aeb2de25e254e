// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	gopath "path"
	"strings"

	"github.com/xlcore/xlcore"
)

// Document is an open XLSX archive plus the xlcore.Workbook parsed from
// it. Editing Workbook directly and calling MarkDirty for every touched
// sheet is what drives Write's surgical regeneration (§4.13).
type Document struct {
	Workbook *xlcore.Workbook
	Manifest Manifest

	closer io.Closer

	workbookModel *workbookModel
	workbookPart  string
	stylesPart    string
	sstPart       string
	partForSheet  map[string]string // sheet name -> archive path
	sheetRoots    map[string]worksheetRoot
	sheetIDOf     map[string]int

	dirty map[string]bool
}

// MarkDirty records that sheet's cell model changed since it was read,
// so Write regenerates its worksheet part instead of passing the
// original bytes through untouched (§4.13 step 2).
func (doc *Document) MarkDirty(sheetName string) {
	if doc.dirty == nil {
		doc.dirty = map[string]bool{}
	}
	doc.dirty[sheetName] = true
}

// OpenFile opens path as an XLSX archive. The returned Document's
// Close method closes the underlying file.
func OpenFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	doc, err := Open(f, info.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	doc.closer = f
	return doc, nil
}

// Close releases any file opened by OpenFile. It is a no-op for a
// Document built directly from Open.
func (doc *Document) Close() error {
	if doc.closer != nil {
		return doc.closer.Close()
	}
	return nil
}

// Open parses an XLSX archive from r (size bytes long) into a
// Document. It returns ErrEncrypted if the input is a CFB/OLE compound
// file rather than a ZIP.
func Open(r io.ReaderAt, size int64) (*Document, error) {
	head := make([]byte, 8)
	if n, _ := r.ReadAt(head, 0); n > 0 && detectCFB(head[:n]) {
		return nil, ErrEncrypted
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("ooxml: not a valid XLSX/ZIP archive: %w", err)
	}
	manifest := readManifest(zr)

	wbPart, ok := manifest.ByName("xl/workbook.xml")
	if !ok {
		return nil, fmt.Errorf("ooxml: missing xl/workbook.xml")
	}
	wbData, err := readPart(wbPart.File)
	if err != nil {
		return nil, err
	}
	wm, err := parseWorkbookXML(wbData)
	if err != nil {
		return nil, err
	}

	rels := map[string]string{}
	if relPart, ok := manifest.ByName("xl/_rels/workbook.xml.rels"); ok {
		data, err := readPart(relPart.File)
		if err != nil {
			return nil, err
		}
		rels, err = parseRelationships(data)
		if err != nil {
			return nil, fmt.Errorf("ooxml: xl/_rels/workbook.xml.rels: %w", err)
		}
	}

	reg := xlcore.NewStyleRegistry()
	stylesPart := "xl/styles.xml"
	if sp, ok := manifest.ByName(stylesPart); ok {
		data, err := readPart(sp.File)
		if err != nil {
			return nil, err
		}
		// The second return (unrecognized style-sheet children such as
		// dxfs/tableStyles) is dropped: styles.xml is always regenerated
		// per §4.13 step 2, so there is no verbatim slot to place them in.
		reg, _, err = parseStylesXML(data)
		if err != nil {
			return nil, err
		}
	}

	var sharedStrings []string
	sstPart := "xl/sharedStrings.xml"
	if sp, ok := manifest.ByName(sstPart); ok {
		data, err := readPart(sp.File)
		if err != nil {
			return nil, err
		}
		sharedStrings, err = parseSharedStrings(data)
		if err != nil {
			return nil, err
		}
	}

	wb := xlcore.NewWorkbook()
	wb.Styles = reg
	wb.SharedStrings = sharedStrings
	wb.RootAttrs = map[string]string{}
	wb.Namespaces = map[string]string{}
	for _, a := range wm.RootAttrs {
		if isNamespaceDecl(a) {
			wb.Namespaces[a.Name.Local] = a.Value
		} else {
			wb.RootAttrs[qualifiedAttrName(a)] = a.Value
		}
	}
	for _, dn := range wm.DefinedNames {
		wb.DefinedNames = append(wb.DefinedNames, xlcore.DefinedName{Name: dn.Name, Text: dn.Text, Sheet: dn.Sheet})
	}

	doc := &Document{
		Workbook:      wb,
		Manifest:      manifest,
		workbookModel: wm,
		workbookPart:  wbPart.Name,
		stylesPart:    stylesPart,
		sstPart:       sstPart,
		partForSheet:  map[string]string{},
		sheetRoots:    map[string]worksheetRoot{},
		sheetIDOf:     map[string]int{},
	}

	for _, entry := range wm.Sheets {
		target, ok := rels[entry.RID]
		if !ok {
			return nil, fmt.Errorf("ooxml: sheet %q: no relationship for r:id %q", entry.Name, entry.RID)
		}
		partPath := resolveRelTarget(target)
		part, ok := manifest.ByName(partPath)
		if !ok {
			return nil, fmt.Errorf("ooxml: sheet %q: missing part %q", entry.Name, partPath)
		}
		data, err := readPart(part.File)
		if err != nil {
			return nil, err
		}
		state := entry.State
		if state == "" {
			state = "visible"
		}
		sheet, root, err := parseWorksheetXML(data, entry.Name, entry.SheetID, state, sharedStrings, reg)
		if err != nil {
			return nil, err
		}
		newWB, err := wb.AddSheet(sheet)
		if err != nil {
			return nil, fmt.Errorf("ooxml: %w", err)
		}
		wb = newWB
		doc.Workbook = wb
		doc.partForSheet[entry.Name] = partPath
		doc.sheetRoots[entry.Name] = root
		doc.sheetIDOf[entry.Name] = entry.SheetID
	}

	return doc, nil
}

// resolveRelTarget turns a .rels Target (relative to xl/, e.g.
// "worksheets/sheet1.xml") into a full archive path.
func resolveRelTarget(target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return gopath.Clean("xl/" + target)
}
