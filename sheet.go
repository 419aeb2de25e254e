// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"fmt"
	"sort"

	"github.com/mohae/deepcopy"
)

// Cell pairs an address with its value and an optional style id. The
// invariant "Cell.ref matches its map key" is maintained entirely by
// Sheet; callers never construct a Cell map directly.
type Cell struct {
	Ref      ARef
	Value    CellValue
	StyleID  int
	HasStyle bool
}

// ColProps holds the optional per-column properties of §3.
type ColProps struct {
	Width        float64
	HasWidth     bool
	Hidden       bool
	OutlineLevel int
	CustomWidth  bool
}

// RowProps holds the optional per-row properties of §3.
type RowProps struct {
	Height        float64
	HasHeight     bool
	Hidden        bool
	OutlineLevel  int
	CustomHeight  bool
	CustomFormat  bool
}

// PreservedElement captures an OOXML worksheet child element this
// package doesn't model structurally (conditional formatting, page
// setup, drawings, ...) as opaque bytes, so the patcher can re-emit it
// verbatim. See §4.12/§4.13.
type PreservedElement struct {
	Name string // local element name, e.g. "conditionalFormatting"
	XML  []byte // raw bytes of the element, including its own tags
}

// Sheet is a persistent mapping from ARef to Cell, plus merge regions,
// column/row properties, and the OOXML subtrees captured at read time.
// Every edit method returns a new Sheet; the receiver is never mutated.
type Sheet struct {
	Name    string
	SheetID int
	State   string // "visible" | "hidden" | "veryHidden"

	cells   map[int64]Cell
	merges  []CellRange
	cols    map[int]ColProps
	rows    map[int]RowProps

	Preserved []PreservedElement
}

// packRef folds an ARef into a single int64 key for the cell map.
func packRef(ref ARef) int64 {
	return int64(ref.Row)<<20 | int64(ref.Col)
}

// NewSheet returns an empty, visible sheet with the given name.
func NewSheet(name string, sheetID int) *Sheet {
	return &Sheet{
		Name:    name,
		SheetID: sheetID,
		State:   "visible",
		cells:   make(map[int64]Cell),
		cols:    make(map[int]ColProps),
		rows:    make(map[int]RowProps),
	}
}

// clone makes a shallow structural copy of s sharing no mutable state
// with the original, using deepcopy.Copy for the map payloads the way
// the teacher's row cache does — giving every edit "return a new value"
// semantics without a bespoke persistent map.
func (s *Sheet) clone() *Sheet {
	c := *s
	c.cells = deepcopy.Copy(s.cells).(map[int64]Cell)
	c.cols = deepcopy.Copy(s.cols).(map[int]ColProps)
	c.rows = deepcopy.Copy(s.rows).(map[int]RowProps)
	c.merges = append([]CellRange(nil), s.merges...)
	c.Preserved = append([]PreservedElement(nil), s.Preserved...)
	return &c
}

// Get returns the cell at ref, or the zero Cell (Empty value) if absent.
func (s *Sheet) Get(ref ARef) Cell {
	if c, ok := s.cells[packRef(ref)]; ok {
		return c
	}
	return Cell{Ref: ref, Value: Empty}
}

// Put returns a new Sheet with ref set to value. Writing Empty removes
// the cell, per §4.5. Any existing style on ref is kept; use PutStyled
// to assign one.
func (s *Sheet) Put(ref ARef, value CellValue) *Sheet {
	return s.putStyled(ref, value, 0, false)
}

// PutStyled is like Put but also assigns an explicit style id.
func (s *Sheet) PutStyled(ref ARef, value CellValue, styleID int) *Sheet {
	return s.putStyled(ref, value, styleID, true)
}

func (s *Sheet) putStyled(ref ARef, value CellValue, styleID int, hasStyle bool) *Sheet {
	c := s.clone()
	if value.IsEmpty() {
		delete(c.cells, packRef(ref))
		return c
	}
	cell := Cell{Ref: ref, Value: value}
	if hasStyle {
		cell.StyleID, cell.HasStyle = styleID, true
	} else if existing, ok := s.cells[packRef(ref)]; ok {
		cell.StyleID, cell.HasStyle = existing.StyleID, existing.HasStyle
	}
	c.cells[packRef(ref)] = cell
	return c
}

// Remove returns a new Sheet with ref cleared.
func (s *Sheet) Remove(ref ARef) *Sheet {
	return s.Put(ref, Empty)
}

// Merge returns a new Sheet with rng added to the merge set. Any
// existing merges overlapping rng are removed first, matching Excel's
// own MergeCell behavior (the teacher's cellmerged.go).
func (s *Sheet) Merge(rng CellRange) *Sheet {
	c := s.clone()
	kept := c.merges[:0:0]
	for _, m := range c.merges {
		if _, overlap := m.Intersect(rng); !overlap {
			kept = append(kept, m)
		}
	}
	kept = append(kept, rng)
	c.merges = kept
	return c
}

// Unmerge returns a new Sheet with rng removed from the merge set, if
// present.
func (s *Sheet) Unmerge(rng CellRange) *Sheet {
	c := s.clone()
	var kept []CellRange
	for _, m := range c.merges {
		if m != rng {
			kept = append(kept, m)
		}
	}
	c.merges = kept
	return c
}

// Merges returns the sheet's current merge set.
func (s *Sheet) Merges() []CellRange { return append([]CellRange(nil), s.merges...) }

// SetColumnProperties returns a new Sheet with col's properties replaced.
func (s *Sheet) SetColumnProperties(col int, props ColProps) *Sheet {
	c := s.clone()
	c.cols[col] = props
	return c
}

// SetRowProperties returns a new Sheet with row's properties replaced.
func (s *Sheet) SetRowProperties(row int, props RowProps) *Sheet {
	c := s.clone()
	c.rows[row] = props
	return c
}

// ColumnProperties returns the properties of col, if set.
func (s *Sheet) ColumnProperties(col int) (ColProps, bool) {
	p, ok := s.cols[col]
	return p, ok
}

// RowProperties returns the properties of row, if set.
func (s *Sheet) RowProperties(row int) (RowProps, bool) {
	p, ok := s.rows[row]
	return p, ok
}

// UsedRange returns the bounding box of non-empty cells. ok is false for
// an entirely empty sheet.
func (s *Sheet) UsedRange() (rng CellRange, ok bool) {
	if len(s.cells) == 0 {
		return CellRange{}, false
	}
	minCol, minRow, maxCol, maxRow := MaxCol+1, MaxRow+1, -1, -1
	for _, c := range s.cells {
		if c.Ref.Col < minCol {
			minCol = c.Ref.Col
		}
		if c.Ref.Row < minRow {
			minRow = c.Ref.Row
		}
		if c.Ref.Col > maxCol {
			maxCol = c.Ref.Col
		}
		if c.Ref.Row > maxRow {
			maxRow = c.Ref.Row
		}
	}
	return CellRange{Start: ARef{Col: minCol, Row: minRow}, End: ARef{Col: maxCol, Row: maxRow}}, true
}

// ClampRange bounds a full-column or full-row range to the sheet's used
// range, per §4.9's "full-column/row ranges are bounded to the sheet's
// used range before iteration". Ranges that are already bounded pass
// through unchanged.
func (s *Sheet) ClampRange(rng CellRange) CellRange {
	if !rng.FullCol && !rng.FullRow {
		return rng
	}
	used, ok := s.UsedRange()
	if !ok {
		return CellRange{Start: rng.Start, End: rng.Start}
	}
	out := rng
	out.FullCol, out.FullRow = false, false
	if rng.FullCol {
		out.Start.Row, out.End.Row = used.Start.Row, used.End.Row
	}
	if rng.FullRow {
		out.Start.Col, out.End.Col = used.Start.Col, used.End.Col
	}
	return out
}

// NonEmptyCells returns every cell in the sheet in row-major order.
// Intended for iteration by the evaluator and the OOXML writer, not for
// hot-path random access.
func (s *Sheet) NonEmptyCells() []Cell {
	out := make([]Cell, 0, len(s.cells))
	for _, c := range s.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Ref.Row != out[j].Ref.Row {
			return out[i].Ref.Row < out[j].Ref.Row
		}
		return out[i].Ref.Col < out[j].Ref.Col
	})
	return out
}

// validate checks the sheet invariants of §3: every cell's ref matches
// its map key, and merges don't overlap. It does not check style ids
// against a registry; that check lives at the Workbook layer where the
// registry is available.
func (s *Sheet) validate() error {
	for key, c := range s.cells {
		if packRef(c.Ref) != key {
			return fmt.Errorf("xlcore: sheet %q: cell at key %d has mismatched ref %s", s.Name, key, c.Ref)
		}
	}
	for i := 0; i < len(s.merges); i++ {
		for j := i + 1; j < len(s.merges); j++ {
			if _, overlap := s.merges[i].Intersect(s.merges[j]); overlap {
				return fmt.Errorf("xlcore: sheet %q: merges %s and %s overlap", s.Name, s.merges[i], s.merges[j])
			}
		}
	}
	for _, m := range s.merges {
		var badRef ARef
		bad := false
		m.Cells(func(ref ARef) bool {
			if _, isAnchor := s.mergeAnchor(ref); isAnchor {
				return true
			}
			if !s.Get(ref).Value.IsEmpty() {
				badRef, bad = ref, true
				return false
			}
			return true
		})
		if bad {
			return fmt.Errorf("xlcore: sheet %q: non-anchor merge cell %s carries a value", s.Name, badRef)
		}
	}
	return nil
}

// mergeAnchor reports whether ref is the top-left anchor of some merge
// region containing it, and that region if so. Only the anchor cell
// carries a value; other positions in the merge render nothing.
func (s *Sheet) mergeAnchor(ref ARef) (CellRange, bool) {
	for _, m := range s.merges {
		if ref == m.Start {
			return m, true
		}
	}
	return CellRange{}, false
}
