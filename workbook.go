// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import "fmt"

// DefinedName is a workbook-level named formula. Text is preserved
// character-for-character on round-trip (§6's defined-name whitespace
// law), so it is never trimmed or reformatted by this package.
type DefinedName struct {
	Name  string
	Text  string
	Sheet string // scope; "" means workbook-scoped
}

// Workbook is the persistent, ordered collection of sheets plus the
// shared style registry, defined names, and the preserved root
// attributes/namespace bindings the OOXML reader captured.
type Workbook struct {
	sheets  []*Sheet
	byName  map[string]int

	DefinedNames []DefinedName
	Styles       *StyleRegistry
	SharedStrings []string

	RootAttrs map[string]string // workbook.xml root attributes, captured verbatim
	Namespaces map[string]string // prefix -> URI, root scope
	Preserved  []PreservedElement // not filled by the ooxml reader, which keeps workbook.xml's children itself
}

// NewWorkbook returns an empty workbook with a fresh style registry.
func NewWorkbook() *Workbook {
	return &Workbook{
		byName:     make(map[string]int),
		Styles:     NewStyleRegistry(),
		RootAttrs:  make(map[string]string),
		Namespaces: make(map[string]string),
	}
}

// clone returns a shallow copy of wb sharing no slice backing with the
// original sheet/defined-name lists.
func (wb *Workbook) clone() *Workbook {
	c := *wb
	c.sheets = append([]*Sheet(nil), wb.sheets...)
	c.byName = make(map[string]int, len(wb.byName))
	for k, v := range wb.byName {
		c.byName[k] = v
	}
	c.DefinedNames = append([]DefinedName(nil), wb.DefinedNames...)
	c.SharedStrings = append([]string(nil), wb.SharedStrings...)
	return &c
}

// AddSheet returns a new Workbook with sheet appended.
func (wb *Workbook) AddSheet(sheet *Sheet) (*Workbook, error) {
	if !ValidSheetName(sheet.Name) {
		return nil, &RefError{Kind: "malformed", Input: sheet.Name, Detail: "invalid sheet name"}
	}
	if _, exists := wb.byName[sheet.Name]; exists {
		return nil, fmt.Errorf("xlcore: sheet %q already exists", sheet.Name)
	}
	c := wb.clone()
	c.byName[sheet.Name] = len(c.sheets)
	c.sheets = append(c.sheets, sheet)
	return c, nil
}

// ReplaceSheet returns a new Workbook with the sheet of the same name
// swapped for the given value, preserving its position and SheetID.
func (wb *Workbook) ReplaceSheet(sheet *Sheet) (*Workbook, error) {
	idx, ok := wb.byName[sheet.Name]
	if !ok {
		return nil, fmt.Errorf("xlcore: sheet %q not found", sheet.Name)
	}
	c := wb.clone()
	sheet.SheetID = c.sheets[idx].SheetID
	c.sheets[idx] = sheet
	return c, nil
}

// Sheet returns the named sheet.
func (wb *Workbook) Sheet(name string) (*Sheet, bool) {
	idx, ok := wb.byName[name]
	if !ok {
		return nil, false
	}
	return wb.sheets[idx], true
}

// Sheets returns the sheets in their original document order.
func (wb *Workbook) Sheets() []*Sheet { return append([]*Sheet(nil), wb.sheets...) }

// DefinedName looks up a defined name, scoped to sheet first and then
// workbook-scoped.
func (wb *Workbook) DefinedName(name, sheet string) (string, bool) {
	for _, dn := range wb.DefinedNames {
		if dn.Name == name && dn.Sheet == sheet {
			return dn.Text, true
		}
	}
	for _, dn := range wb.DefinedNames {
		if dn.Name == name && dn.Sheet == "" {
			return dn.Text, true
		}
	}
	return "", false
}

// Validate checks the cross-cutting invariants of §3: every sheet is
// internally consistent, and every styled cell's style id resolves in
// the workbook's registry.
func (wb *Workbook) Validate() error {
	for _, sh := range wb.sheets {
		if err := sh.validate(); err != nil {
			return err
		}
		for _, c := range sh.cells {
			if c.HasStyle {
				if _, ok := wb.Styles.Lookup(c.StyleID); !ok {
					return fmt.Errorf("xlcore: sheet %q: cell %s references unknown style id %d", sh.Name, c.Ref, c.StyleID)
				}
			}
		}
	}
	return nil
}
