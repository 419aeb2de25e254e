// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnNameRoundTrip(t *testing.T) {
	cases := []struct {
		col  int
		name string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{701, "ZZ"},
		{702, "AAA"},
		{MaxCol, "XFD"},
	}
	for _, c := range cases {
		assert.Equal(t, c.name, ColumnName(c.col))
		idx, err := ColumnIndex(c.name)
		require.NoError(t, err)
		assert.Equal(t, c.col, idx)
	}
}

func TestColumnIndexErrors(t *testing.T) {
	_, err := ColumnIndex("")
	assert.Error(t, err)
	_, err = ColumnIndex("A1")
	assert.Error(t, err)
}

func TestParseARef(t *testing.T) {
	cases := []struct {
		in  string
		ref ARef
	}{
		{"A1", ARef{Col: 0, Row: 0}},
		{"B3", ARef{Col: 1, Row: 2}},
		{"$B3", ARef{Col: 1, Row: 2, ColAbs: true}},
		{"B$3", ARef{Col: 1, Row: 2, RowAbs: true}},
		{"$B$3", ARef{Col: 1, Row: 2, ColAbs: true, RowAbs: true}},
	}
	for _, c := range cases {
		ref, err := ParseARef(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.ref, ref, c.in)
		assert.Equal(t, c.in, ref.String(), c.in)
	}
}

func TestParseARefErrors(t *testing.T) {
	for _, in := range []string{"", "1A", "A", "1", "A0", "XFE1", "A1048577", "A1B2"} {
		_, err := ParseARef(in)
		assert.Error(t, err, in)
		var refErr *RefError
		assert.ErrorAs(t, err, &refErr, in)
	}
}

func TestParseARefOutOfRange(t *testing.T) {
	_, err := ParseARef("XFE1")
	require.Error(t, err)
	var refErr *RefError
	require.ErrorAs(t, err, &refErr)
	assert.Equal(t, "out-of-range", refErr.Kind)
}

func TestNewCellRangeNormalizesOrder(t *testing.T) {
	a := ARef{Col: 3, Row: 5}
	b := ARef{Col: 1, Row: 1}
	rng := NewCellRange(a, b)
	assert.Equal(t, 1, rng.Start.Col)
	assert.Equal(t, 1, rng.Start.Row)
	assert.Equal(t, 3, rng.End.Col)
	assert.Equal(t, 5, rng.End.Row)
}

func TestParseCellRange(t *testing.T) {
	rng, err := ParseCellRange("A1:B3")
	require.NoError(t, err)
	assert.Equal(t, "A1:B3", rng.String())
	assert.False(t, rng.FullCol)
	assert.False(t, rng.FullRow)
}

func TestParseCellRangeSingleCell(t *testing.T) {
	rng, err := ParseCellRange("C4")
	require.NoError(t, err)
	assert.Equal(t, ARef{Col: 2, Row: 3}, rng.Start)
	assert.Equal(t, rng.Start, rng.End)
}

func TestParseCellRangeFullColumn(t *testing.T) {
	rng, err := ParseCellRange("A:A")
	require.NoError(t, err)
	assert.True(t, rng.FullCol)
	assert.Equal(t, 0, rng.Start.Col)
	assert.Equal(t, 0, rng.Start.Row)
	assert.Equal(t, MaxRow, rng.End.Row)
	assert.Equal(t, "A:A", rng.String())
}

func TestParseCellRangeFullRow(t *testing.T) {
	rng, err := ParseCellRange("1:1")
	require.NoError(t, err)
	assert.True(t, rng.FullRow)
	assert.Equal(t, 0, rng.Start.Row)
	assert.Equal(t, MaxCol, rng.End.Col)
	assert.Equal(t, "1:1", rng.String())
}

func TestCellRangeIntersect(t *testing.T) {
	a, _ := ParseCellRange("A1:C3")
	b, _ := ParseCellRange("B2:D4")
	got, ok := a.Intersect(b)
	require.True(t, ok)
	assert.Equal(t, "B2:C3", got.String())

	c, _ := ParseCellRange("E1:F2")
	_, ok = a.Intersect(c)
	assert.False(t, ok)
}

func TestCellRangeCellsIteratesRowMajor(t *testing.T) {
	rng, _ := ParseCellRange("A1:B2")
	var got []string
	rng.Cells(func(ref ARef) bool {
		got = append(got, ref.String())
		return true
	})
	assert.Equal(t, []string{"A1", "B1", "A2", "B2"}, got)
}

func TestCellRangeCellsStopsOnFalse(t *testing.T) {
	rng, _ := ParseCellRange("A1:D4")
	count := 0
	rng.Cells(func(ref ARef) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestCellRangeWidthHeight(t *testing.T) {
	rng, _ := ParseCellRange("A1:C3")
	assert.Equal(t, 3, rng.Width())
	assert.Equal(t, 3, rng.Height())
}

func TestValidSheetName(t *testing.T) {
	assert.True(t, ValidSheetName("Sheet1"))
	assert.True(t, ValidSheetName("My Sheet"))
	assert.False(t, ValidSheetName(""))
	assert.False(t, ValidSheetName("Sheet:1"))
	assert.False(t, ValidSheetName("a/b"))
	assert.False(t, ValidSheetName(string(make([]byte, 32))))
}

func TestQuoteSheetName(t *testing.T) {
	assert.Equal(t, "Sheet1", QuoteSheetName("Sheet1"))
	assert.Equal(t, "'My Sheet'", QuoteSheetName("My Sheet"))
	assert.Equal(t, "'2025'", QuoteSheetName("2025"))
	assert.Equal(t, "'it''s'", QuoteSheetName("it's"))
}

func TestARefValid(t *testing.T) {
	assert.True(t, ARef{Col: 0, Row: 0}.Valid())
	assert.True(t, ARef{Col: MaxCol, Row: MaxRow}.Valid())
	assert.False(t, ARef{Col: MaxCol + 1, Row: 0}.Valid())
	assert.False(t, ARef{Col: 0, Row: -1}.Valid())
}

func TestARefWithAnchors(t *testing.T) {
	ref := NewARef(1, 1).WithAnchors(true, false)
	assert.True(t, ref.ColAbs)
	assert.False(t, ref.RowAbs)
	assert.Equal(t, "$B2", ref.String())
}
