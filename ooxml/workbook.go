// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package ooxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// sheetEntry is one <sheet> child of workbook.xml's <sheets>.
type sheetEntry struct {
	Name    string `xml:"name,attr"`
	SheetID int    `xml:"sheetId,attr"`
	RID     string `xml:"id,attr"` // r:id, namespace stripped by the decoder below
	State   string `xml:"state,attr"`
}

type sheetsWrap struct {
	XMLName xml.Name     `xml:"sheets"`
	Sheets  []sheetEntry `xml:"sheet"`
}

// definedNameEntry is one <definedName> child of workbook.xml's
// <definedNames>. Text is captured from the raw inner bytes of the
// element rather than xml.CharData, so embedded entities and leading/
// trailing whitespace survive untouched (§8 law 10).
type definedNameEntry struct {
	Name  string
	Sheet string // always "": localSheetId is not resolved, so every name reads as workbook-scoped
	Text  string
}

// workbookModel is the parsed structure of workbook.xml: the root's own
// attributes plus every child element in original order. Only "sheets"
// is interpreted structurally; everything else — including
// definedNames — is a captured rawElement re-emitted verbatim.
type workbookModel struct {
	RootName  xml.Name
	RootAttrs []xml.Attr
	Children  []rawElement // original child order, by local name

	Sheets       []sheetEntry
	DefinedNames []definedNameEntry
	Date1904     bool
}

// parseWorkbookXML decodes workbook.xml into a workbookModel, capturing
// everything §4.12 requires verbatim.
func parseWorkbookXML(data []byte) (*workbookModel, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	wm := &workbookModel{}
	rootSeen := false
	for {
		tok, err := d.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("ooxml: workbook.xml: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rootSeen {
			wm.RootName = start.Name
			wm.RootAttrs = append([]xml.Attr(nil), start.Attr...)
			rootSeen = true
			continue
		}
		re, err := decodeRaw(d, start)
		if err != nil {
			return nil, fmt.Errorf("ooxml: workbook.xml: element %q: %w", start.Name.Local, err)
		}
		wm.Children = append(wm.Children, re)
		switch re.Name {
		case "sheets":
			var sw sheetsWrap
			if err := xml.Unmarshal(wrapElement(re), &sw); err != nil {
				return nil, fmt.Errorf("ooxml: workbook.xml: sheets: %w", err)
			}
			wm.Sheets = sw.Sheets
		case "workbookPr":
			if v, ok := attrValue(re.Attrs, "date1904"); ok {
				wm.Date1904 = v == "1" || v == "true"
			}
		case "definedNames":
			names, err := parseDefinedNames(re.Inner)
			if err != nil {
				return nil, fmt.Errorf("ooxml: workbook.xml: definedNames: %w", err)
			}
			wm.DefinedNames = names
		}
	}
	if !rootSeen {
		return nil, fmt.Errorf("ooxml: workbook.xml: no root element")
	}
	return wm, nil
}

// wrapElement rebuilds a standalone document for re.Inner so it can be
// unmarshaled with the stdlib decoder, which needs a single root.
func wrapElement(re rawElement) []byte {
	var b strings.Builder
	re.render(&b)
	return []byte(b.String())
}

// definedNameRaw mirrors the subset of <definedName> attributes this
// package inspects; Text comes from the surrounding innerxml capture,
// not from this struct, to preserve exact whitespace.
type definedNameRaw struct {
	Name          string `xml:"name,attr"`
	LocalSheetID  *int   `xml:"localSheetId,attr"`
	Inner         []byte `xml:",innerxml"`
}

func parseDefinedNames(inner []byte) ([]definedNameEntry, error) {
	d := xml.NewDecoder(bytes.NewReader(inner))
	var out []definedNameEntry
	for {
		tok, err := d.Token()
		if err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "definedName" {
			continue
		}
		var raw definedNameRaw
		if err := d.DecodeElement(&raw, &start); err != nil {
			return nil, err
		}
		entry := definedNameEntry{Name: raw.Name, Text: string(raw.Inner)}
		out = append(out, entry)
	}
	return out, nil
}

// emit renders workbook.xml from wm and the current sheet order/states,
// following §4.13 step 3: the root's captured attributes are kept
// verbatim, every preserved child is re-emitted in its original
// position with any redundant xmlns declarations stripped, and
// <sheets> alone is rebuilt from the live model.
func (wm *workbookModel) emit(sheetNames []string, sheetStates []string, sheetIDs []int) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteByte('<')
	b.WriteString(wm.RootName.Local)
	for _, a := range wm.RootAttrs {
		writeAttr(&b, qualifiedAttrName(a), a.Value)
	}
	b.WriteByte('>')
	for _, child := range wm.Children {
		if child.Name == "sheets" {
			emitSheets(&b, sheetNames, sheetStates, sheetIDs)
			continue
		}
		stripped := child
		stripped.Attrs = stripNamespaceDecls(child.Attrs)
		stripped.render(&b)
	}
	b.WriteString("</")
	b.WriteString(wm.RootName.Local)
	b.WriteByte('>')
	return []byte(b.String())
}

func qualifiedAttrName(a xml.Attr) string {
	if a.Name.Space == "xmlns" {
		return "xmlns:" + a.Name.Local
	}
	if a.Name.Space != "" {
		return a.Name.Space + ":" + a.Name.Local
	}
	return a.Name.Local
}

// emitSheets regenerates <sheets>, assigning deterministic r:id values
// by position and keeping each sheet's original sheetId where the
// position's name is carried over from the reader's model.
func emitSheets(b *strings.Builder, names, states []string, ids []int) {
	b.WriteString("<sheets>")
	for i, name := range names {
		b.WriteString(`<sheet name="`)
		b.WriteString(escapeAttr(name))
		b.WriteString(`" sheetId="`)
		fmt.Fprintf(b, "%d", ids[i])
		b.WriteString(`" r:id="rId`)
		fmt.Fprintf(b, "%d", i+1)
		b.WriteByte('"')
		if states[i] != "" && states[i] != "visible" {
			b.WriteString(` state="`)
			b.WriteString(escapeAttr(states[i]))
			b.WriteByte('"')
		}
		b.WriteString("/>")
	}
	b.WriteString("</sheets>")
}
