// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import "strings"

// Font is the subset of font properties a Style carries.
type Font struct {
	Name      string
	Size      float64
	Bold      bool
	Italic    bool
	Underline bool
	Color     string // ARGB hex, e.g. "FF000000"
}

// Fill is a solid or patterned cell background.
type Fill struct {
	Pattern string // "none", "solid", ...
	FgColor string
	BgColor string
}

// BorderSide is one edge of a Border.
type BorderSide struct {
	Style string // "thin", "medium", "none", ...
	Color string
}

// Border bundles the four cell edges.
type Border struct {
	Left, Right, Top, Bottom BorderSide
}

// Alignment is a cell's text alignment.
type Alignment struct {
	Horizontal string // "left", "center", "right", ...
	Vertical   string // "top", "center", "bottom", ...
	Indent     int
	WrapText   bool
}

// Style is the full tuple of formatting properties a cell can carry. Two
// Styles with an equal CanonicalKey are interchangeable.
type Style struct {
	Font         Font
	Fill         Fill
	Border       Border
	Alignment    Alignment
	NumberFormat string // e.g. "General", "0.00", "m/d/yy"
}

// CanonicalKey derives a stable string from s's normalized fields,
// suitable for deduplication: two styles with equal fields always produce
// an identical key, in a fixed field order, per §4.4.
func (s Style) CanonicalKey() string {
	var b strings.Builder
	writeField := func(v string) {
		b.WriteString(v)
		b.WriteByte('\x1f')
	}
	writeField(s.Font.Name)
	writeField(formatFloatKey(s.Font.Size))
	writeField(boolKey(s.Font.Bold))
	writeField(boolKey(s.Font.Italic))
	writeField(boolKey(s.Font.Underline))
	writeField(s.Font.Color)
	writeField(s.Fill.Pattern)
	writeField(s.Fill.FgColor)
	writeField(s.Fill.BgColor)
	writeField(s.Border.Left.Style)
	writeField(s.Border.Left.Color)
	writeField(s.Border.Right.Style)
	writeField(s.Border.Right.Color)
	writeField(s.Border.Top.Style)
	writeField(s.Border.Top.Color)
	writeField(s.Border.Bottom.Style)
	writeField(s.Border.Bottom.Color)
	writeField(s.Alignment.Horizontal)
	writeField(s.Alignment.Vertical)
	writeField(formatIntKey(s.Alignment.Indent))
	writeField(boolKey(s.Alignment.WrapText))
	writeField(s.NumberFormat)
	return b.String()
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatFloatKey(f float64) string {
	return trimFloat(f)
}

func formatIntKey(i int) string {
	return trimFloat(float64(i))
}

// StyleRegistry is the insert-only, canonical-key-deduplicated store of
// Styles a Workbook writes with. Ids are dense starting at zero; the zero
// id is always the default (empty) Style, matching Excel's own
// convention that xf index 0 is the workbook default.
type StyleRegistry struct {
	byID  []Style
	byKey map[string]int
}

// NewStyleRegistry returns a registry seeded with the default style at id
// 0.
func NewStyleRegistry() *StyleRegistry {
	r := &StyleRegistry{byKey: make(map[string]int)}
	r.Register(Style{NumberFormat: "General"})
	return r
}

// Register interns style, returning its id. Registering an
// already-present style (by CanonicalKey) is idempotent and returns the
// existing id without growing the registry.
func (r *StyleRegistry) Register(style Style) int {
	key := style.CanonicalKey()
	if id, ok := r.byKey[key]; ok {
		return id
	}
	id := len(r.byID)
	r.byID = append(r.byID, style)
	r.byKey[key] = id
	return id
}

// Lookup returns the style registered under id.
func (r *StyleRegistry) Lookup(id int) (Style, bool) {
	if id < 0 || id >= len(r.byID) {
		return Style{}, false
	}
	return r.byID[id], true
}

// ReverseLookup returns the id a style was (or would be) registered
// under, without mutating the registry.
func (r *StyleRegistry) ReverseLookup(style Style) (int, bool) {
	id, ok := r.byKey[style.CanonicalKey()]
	return id, ok
}

// Len reports how many distinct styles are registered.
func (r *StyleRegistry) Len() int { return len(r.byID) }

// Clone returns a deep, independent copy of the registry.
func (r *StyleRegistry) Clone() *StyleRegistry {
	c := &StyleRegistry{
		byID:  append([]Style(nil), r.byID...),
		byKey: make(map[string]int, len(r.byKey)),
	}
	for k, v := range r.byKey {
		c.byKey[k] = v
	}
	return c
}
