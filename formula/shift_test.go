// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftRelativeRefMoves(t *testing.T) {
	expr, err := Parse("=A1")
	require.NoError(t, err)
	shifted := Shift(expr, 1, 2)
	ref, ok := shifted.(PolyRef)
	require.True(t, ok)
	assert.Equal(t, "B3", ref.Ref.String())
}

func TestShiftAbsoluteRefStaysPut(t *testing.T) {
	expr, err := Parse("=$A$1")
	require.NoError(t, err)
	shifted := Shift(expr, 5, 5)
	ref, ok := shifted.(PolyRef)
	require.True(t, ok)
	assert.Equal(t, "$A$1", ref.Ref.String())
}

func TestShiftMixedAnchorOnlyMovesRelativeAxis(t *testing.T) {
	expr, err := Parse("=$A1")
	require.NoError(t, err)
	shifted := Shift(expr, 3, 3)
	ref, ok := shifted.(PolyRef)
	require.True(t, ok)
	assert.Equal(t, "$A4", ref.Ref.String())
}

func TestShiftClampsBelowZero(t *testing.T) {
	expr, err := Parse("=B2")
	require.NoError(t, err)
	shifted := Shift(expr, -10, -10)
	ref, ok := shifted.(PolyRef)
	require.True(t, ok)
	assert.Equal(t, 0, ref.Ref.Col)
	assert.Equal(t, 0, ref.Ref.Row)
}

func TestShiftRangeMovesBothEndpoints(t *testing.T) {
	expr, err := Parse("=SUM(A1:B2)")
	require.NoError(t, err)
	shifted := Shift(expr, 1, 1)
	agg, ok := shifted.(Aggregate)
	require.True(t, ok)
	assert.Equal(t, "B2:C3", agg.Loc.Range.String())
}

func TestShiftBinOpShiftsBothOperands(t *testing.T) {
	expr, err := Parse("=A1+B1")
	require.NoError(t, err)
	shifted := Shift(expr, 0, 1)
	bin, ok := shifted.(BinOp)
	require.True(t, ok)
	left := bin.Left.(PolyRef)
	right := bin.Right.(PolyRef)
	assert.Equal(t, "A2", left.Ref.String())
	assert.Equal(t, "B2", right.Ref.String())
}

func TestShiftCallArgumentRange(t *testing.T) {
	expr, err := Parse("=VLOOKUP(A1,B1:C10,2,FALSE)")
	require.NoError(t, err)
	shifted := Shift(expr, 1, 0)
	call, ok := shifted.(Call)
	require.True(t, ok)
	ref := call.Args[0].Expr.(PolyRef)
	assert.Equal(t, "B1", ref.Ref.String())
	assert.Equal(t, "C1:D10", call.Args[1].Range.Range.String())
}
