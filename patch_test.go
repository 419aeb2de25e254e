// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatchApplyPutAndStyle(t *testing.T) {
	ref := NewARef(0, 0)
	p := NewPatch(
		Put(ref, Number(decimal.NewFromInt(1))),
		Put(ref, Number(decimal.NewFromInt(2))),
		SetStyle(ref, 9),
	)
	s := NewSheet("Sheet1", 1)
	s = p.Apply(s)

	cell := s.Get(ref)
	n, ok := cell.Value.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(2).Equal(n))
	assert.Equal(t, 9, cell.StyleID)
}

func TestPatchMonoidIdentity(t *testing.T) {
	ref := NewARef(0, 0)
	p := NewPatch(Put(ref, Text("x")))
	s := NewSheet("Sheet1", 1)

	lhs := Patch{}.Concat(p).Apply(s)
	rhs := p.Concat(Patch{}).Apply(s)
	direct := p.Apply(s)

	lv, _ := lhs.Get(ref).Value.AsText()
	rv, _ := rhs.Get(ref).Value.AsText()
	dv, _ := direct.Get(ref).Value.AsText()
	assert.Equal(t, "x", lv)
	assert.Equal(t, lv, rv)
	assert.Equal(t, lv, dv)
}

func TestPatchMonoidAssociativity(t *testing.T) {
	ref := NewARef(0, 0)
	p1 := NewPatch(Put(ref, Number(decimal.NewFromInt(1))))
	p2 := NewPatch(Put(ref, Number(decimal.NewFromInt(2))))
	p3 := NewPatch(SetStyle(ref, 4))

	left := p1.Concat(p2).Concat(p3)
	right := p1.Concat(p2.Concat(p3))

	s := NewSheet("Sheet1", 1)
	lCell := left.Apply(s).Get(ref)
	rCell := right.Apply(s).Get(ref)
	assert.Equal(t, lCell, rCell)
}

func TestPatchMergeOpAndUnmergeOp(t *testing.T) {
	rng, _ := ParseCellRange("A1:B2")
	s := NewSheet("Sheet1", 1)

	s = NewPatch(MergeRange(rng)).Apply(s)
	assert.Equal(t, []CellRange{rng}, s.Merges())

	s = NewPatch(UnmergeRange(rng)).Apply(s)
	assert.Empty(t, s.Merges())
}

func TestPatchRemoveOp(t *testing.T) {
	ref := NewARef(0, 0)
	s := NewSheet("Sheet1", 1).Put(ref, Text("x"))
	s = NewPatch(Remove(ref)).Apply(s)
	assert.True(t, s.Get(ref).Value.IsEmpty())
}

func TestPatchSetStyleOpPreservesValue(t *testing.T) {
	ref := NewARef(0, 0)
	s := NewSheet("Sheet1", 1).Put(ref, Text("keep"))
	s = NewPatch(SetStyle(ref, 3)).Apply(s)

	cell := s.Get(ref)
	v, _ := cell.Value.AsText()
	assert.Equal(t, "keep", v)
	assert.Equal(t, 3, cell.StyleID)
}
