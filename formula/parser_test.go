// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlcore/xlcore"
)

func TestParseStripsLeadingEquals(t *testing.T) {
	e1, err := Parse("=1+2")
	require.NoError(t, err)
	e2, err := Parse("1+2")
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
}

func TestParseRejectsEmptyInput(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)
	_, err = Parse("=")
	assert.Error(t, err)
}

func TestParseRejectsOverlongInput(t *testing.T) {
	long := "=" + strings.Repeat("1+", 5000) + "1"
	_, err := Parse(long)
	assert.Error(t, err)
}

func TestParsePrecedenceAddBeforeMul(t *testing.T) {
	expr, err := Parse("=1+2*3")
	require.NoError(t, err)
	bin, ok := expr.(BinOp)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	rhs, ok := bin.Right.(BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", rhs.Op)
}

func TestParseExponentRightAssociative(t *testing.T) {
	expr, err := Parse("=2^3^2")
	require.NoError(t, err)
	bin, ok := expr.(BinOp)
	require.True(t, ok)
	assert.Equal(t, "^", bin.Op)
	rhs, ok := bin.Right.(BinOp)
	require.True(t, ok, "2^3^2 should associate as 2^(3^2)")
	assert.Equal(t, "^", rhs.Op)
}

func TestParseUnaryMinus(t *testing.T) {
	expr, err := Parse("=-5")
	require.NoError(t, err)
	_, ok := expr.(UnaryMinus)
	assert.True(t, ok)
}

func TestParseStringLiteralWithEscapedQuote(t *testing.T) {
	expr, err := Parse(`="a""b"`)
	require.NoError(t, err)
	lit, ok := expr.(Lit)
	require.True(t, ok)
	s, ok := lit.Value.AsText()
	require.True(t, ok)
	assert.Equal(t, `a"b`, s)
}

func TestParseBooleanLiteralsCaseInsensitive(t *testing.T) {
	expr, err := Parse("=true")
	require.NoError(t, err)
	lit, ok := expr.(Lit)
	require.True(t, ok)
	b, ok := lit.Value.AsBool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestParseScientificNotation(t *testing.T) {
	expr, err := Parse("=1.5E3")
	require.NoError(t, err)
	lit, ok := expr.(Lit)
	require.True(t, ok)
	n, ok := lit.Value.AsNumber()
	require.True(t, ok)
	f, _ := n.Float64()
	assert.Equal(t, 1500.0, f)
}

func TestParseCellReferenceProducesPolyRef(t *testing.T) {
	expr, err := Parse("=A1")
	require.NoError(t, err)
	ref, ok := expr.(PolyRef)
	require.True(t, ok)
	assert.Equal(t, xlcore.NewARef(0, 0), ref.Ref)
	assert.False(t, ref.HasSheet)
}

func TestParseSheetQualifiedReference(t *testing.T) {
	expr, err := Parse("=Sheet2!A1")
	require.NoError(t, err)
	ref, ok := expr.(PolyRef)
	require.True(t, ok)
	assert.True(t, ref.HasSheet)
	assert.Equal(t, "Sheet2", ref.Sheet)
}

func TestParseQuotedSheetReference(t *testing.T) {
	expr, err := Parse("='My Sheet'!A1")
	require.NoError(t, err)
	ref, ok := expr.(PolyRef)
	require.True(t, ok)
	assert.Equal(t, "My Sheet", ref.Sheet)
}

func TestParseRangeReference(t *testing.T) {
	expr, err := Parse("=SUM(A1:A3)")
	require.NoError(t, err)
	call, ok := expr.(Aggregate)
	require.True(t, ok)
	assert.Equal(t, "SUM", call.Name)
	assert.Equal(t, "A1:A3", call.Loc.Range.String())
}

func TestParseFunctionCall(t *testing.T) {
	expr, err := Parse("=ROUND(1.5,0)")
	require.NoError(t, err)
	call, ok := expr.(Call)
	require.True(t, ok)
	assert.Equal(t, "ROUND", call.Spec.Name)
	assert.Len(t, call.Args, 2)
}

func TestParseUnknownFunctionSuggestsNames(t *testing.T) {
	_, err := Parse("=SUMM(A1:A3)")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Suggestions, "SUM")
}

func TestParseComparisonChainingDisallowed(t *testing.T) {
	_, err := Parse("=1<2<3")
	assert.Error(t, err)
}

func TestParseParenthesizedExpression(t *testing.T) {
	expr, err := Parse("=(1+2)*3")
	require.NoError(t, err)
	bin, ok := expr.(BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", bin.Op)
	_, ok = bin.Left.(BinOp)
	assert.True(t, ok)
}

func TestParseConcatenation(t *testing.T) {
	expr, err := Parse(`="a"&"b"`)
	require.NoError(t, err)
	bin, ok := expr.(BinOp)
	require.True(t, ok)
	assert.Equal(t, "&", bin.Op)
}

func TestParseFullColumnRange(t *testing.T) {
	expr, err := Parse("=SUM(A:A)")
	require.NoError(t, err)
	agg, ok := expr.(Aggregate)
	require.True(t, ok)
	assert.True(t, agg.Loc.Range.FullCol)
}

func TestParseFullRowRange(t *testing.T) {
	expr, err := Parse("=SUM(1:1)")
	require.NoError(t, err)
	agg, ok := expr.(Aggregate)
	require.True(t, ok)
	assert.True(t, agg.Loc.Range.FullRow)
}

func TestParseUnbalancedParenErrors(t *testing.T) {
	_, err := Parse("=(1+2")
	assert.Error(t, err)
}

func TestParseUnterminatedStringErrors(t *testing.T) {
	_, err := Parse(`="abc`)
	assert.Error(t, err)
}
