// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xlcore/xlcore"
)

// singleSheetWorkbook builds a one-sheet workbook named "Sheet1" with the
// given cell values set via A1-notation keys.
func singleSheetWorkbook(t *testing.T, cells map[string]xlcore.CellValue) *xlcore.Workbook {
	t.Helper()
	sh := xlcore.NewSheet("Sheet1", 1)
	for addr, v := range cells {
		ref, err := xlcore.ParseARef(addr)
		require.NoError(t, err)
		sh = sh.Put(ref, v)
	}
	wb := xlcore.NewWorkbook()
	wb, err := wb.AddSheet(sh)
	require.NoError(t, err)
	return wb
}

func evalFormula(t *testing.T, wb *xlcore.Workbook, sheet, current, source string) xlcore.CellValue {
	t.Helper()
	ref, err := xlcore.ParseARef(current)
	require.NoError(t, err)
	env := NewEnv(wb, sheet, ref)
	expr, err := ParseAndCheck(source, env)
	require.NoError(t, err)
	return Evaluate(expr, env)
}

// TestScenarioS1FormulaParseAndEvaluate is spec scenario S1: A1=10,
// A2=20, A3=30; =SUM(A1:A3)*2 parses as Mul(Aggregate(SUM,...),Lit(2))
// and evaluates to 120.
func TestScenarioS1FormulaParseAndEvaluate(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.NumberFromInt(10),
		"A2": xlcore.NumberFromInt(20),
		"A3": xlcore.NumberFromInt(30),
	})

	expr, err := Parse("=SUM(A1:A3)*2")
	require.NoError(t, err)
	bin, ok := expr.(BinOp)
	require.True(t, ok)
	assert.Equal(t, "*", bin.Op)
	agg, ok := bin.Left.(Aggregate)
	require.True(t, ok)
	assert.Equal(t, "SUM", agg.Name)
	lit, ok := bin.Right.(Lit)
	require.True(t, ok)
	n, _ := lit.Value.AsNumber()
	assert.True(t, decimal.NewFromInt(2).Equal(n))

	got := evalFormula(t, wb, "Sheet1", "D1", "=SUM(A1:A3)*2")
	n, ok = got.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(120).Equal(n))
}

// TestScenarioS2TypeCoercionDateToStringViaLeft is spec scenario S2:
// A1 holds 2025-01-15 (serial 45672); =LEFT(A1,4) stringifies the date
// through its serial number and takes the first 4 characters: "4567".
func TestScenarioS2TypeCoercionDateToStringViaLeft(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.DateTime(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)),
	})
	got := evalFormula(t, wb, "Sheet1", "B1", "=LEFT(A1,4)")
	s, ok := got.AsText()
	require.True(t, ok)
	assert.Equal(t, "4567", s)
}

// TestScenarioS3ErrorPropagationAndIferror is spec scenario S3: A1=1,
// A2=0; =IFERROR(A1/A2,"n/a") yields "n/a", while the bare division
// yields #DIV/0!.
func TestScenarioS3ErrorPropagationAndIferror(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.NumberFromInt(1),
		"A2": xlcore.NumberFromInt(0),
	})

	got := evalFormula(t, wb, "Sheet1", "B1", `=IFERROR(A1/A2,"n/a")`)
	s, ok := got.AsText()
	require.True(t, ok)
	assert.Equal(t, "n/a", s)

	bare := evalFormula(t, wb, "Sheet1", "B1", "=A1/A2")
	code, ok := bare.AsError()
	require.True(t, ok)
	assert.Equal(t, xlcore.ErrDivZero, code)
}

// TestScenarioS4SumproductBounding is spec scenario S4: A:A and B:B each
// hold 3 numeric rows; =SUMPRODUCT(A:A,B:B) must clamp both full-column
// ranges to the 3-row used range before multiplying.
func TestScenarioS4SumproductBounding(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.NumberFromInt(1),
		"A2": xlcore.NumberFromInt(2),
		"A3": xlcore.NumberFromInt(3),
		"B1": xlcore.NumberFromInt(4),
		"B2": xlcore.NumberFromInt(5),
		"B3": xlcore.NumberFromInt(6),
	})
	got := evalFormula(t, wb, "Sheet1", "C1", "=SUMPRODUCT(A:A,B:B)")
	n, ok := got.AsNumber()
	require.True(t, ok)
	// 1*4 + 2*5 + 3*6 = 32
	assert.True(t, decimal.NewFromInt(32).Equal(n))
}

func TestErrorStickinessLeftWinsOnTie(t *testing.T) {
	wb := singleSheetWorkbook(t, nil)
	got := evalFormula(t, wb, "Sheet1", "A1", `=(1/0)+VALUE("x")`)
	code, ok := got.AsError()
	require.True(t, ok)
	assert.Equal(t, xlcore.ErrDivZero, code)
}

func TestErrorStickinessPropagatesThroughConcat(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.NumberFromInt(1),
	})
	got := evalFormula(t, wb, "Sheet1", "B1", `=A1&(1/0)`)
	_, isErr := got.AsError()
	assert.True(t, isErr)
}

func TestZeroToZeroPowerIsOne(t *testing.T) {
	wb := singleSheetWorkbook(t, nil)
	got := evalFormula(t, wb, "Sheet1", "A1", "=0^0")
	n, ok := got.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(n))
}

func TestTextComparisonCaseInsensitive(t *testing.T) {
	wb := singleSheetWorkbook(t, nil)
	got := evalFormula(t, wb, "Sheet1", "A1", `="ABC"="abc"`)
	b, ok := got.AsBool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestBooleanCoercesToOneZeroInComparison(t *testing.T) {
	wb := singleSheetWorkbook(t, nil)
	got := evalFormula(t, wb, "Sheet1", "A1", "=TRUE=1")
	b, ok := got.AsBool()
	require.True(t, ok)
	assert.True(t, b)
}

func TestCycleDetectionReturnsRef(t *testing.T) {
	shA := xlcore.NewSheet("Sheet1", 1)
	shA = shA.Put(xlcore.NewARef(0, 0), xlcore.Formula("=A2", nil))
	shA = shA.Put(xlcore.NewARef(0, 1), xlcore.Formula("=A1", nil))
	wb := xlcore.NewWorkbook()
	wb, err := wb.AddSheet(shA)
	require.NoError(t, err)

	env := NewEnv(wb, "Sheet1", xlcore.NewARef(0, 0))
	got := env.CellValue("Sheet1", xlcore.NewARef(0, 0))
	code, ok := got.AsError()
	require.True(t, ok)
	assert.Equal(t, xlcore.ErrRef, code)
}

func TestAggregateSkipsTextAndEmptyCells(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.NumberFromInt(1),
		"A2": xlcore.Text("skip me"),
		"A3": xlcore.NumberFromInt(3),
	})
	got := evalFormula(t, wb, "Sheet1", "B1", "=SUM(A1:A4)")
	n, ok := got.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(4).Equal(n))

	count := evalFormula(t, wb, "Sheet1", "B1", "=COUNT(A1:A4)")
	c, ok := count.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(2).Equal(c))
}

func TestSumAcceptsMultipleRangeAndCellArguments(t *testing.T) {
	wb := singleSheetWorkbook(t, map[string]xlcore.CellValue{
		"A1": xlcore.NumberFromInt(1),
		"A2": xlcore.NumberFromInt(2),
		"B1": xlcore.NumberFromInt(10),
		"B2": xlcore.NumberFromInt(20),
		"B3": xlcore.NumberFromInt(30),
	})
	got := evalFormula(t, wb, "Sheet1", "C1", "=SUM(A1,A2,B1:B3)")
	n, ok := got.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(63).Equal(n))
}

func TestCrossSheetReferenceEvaluation(t *testing.T) {
	sh1 := xlcore.NewSheet("Sheet1", 1)
	sh1 = sh1.Put(xlcore.NewARef(0, 0), xlcore.NumberFromInt(5))
	sh2 := xlcore.NewSheet("Sheet2", 2)
	sh2 = sh2.Put(xlcore.NewARef(0, 0), xlcore.Formula("=Sheet1!A1*2", nil))

	wb := xlcore.NewWorkbook()
	wb, err := wb.AddSheet(sh1)
	require.NoError(t, err)
	wb, err = wb.AddSheet(sh2)
	require.NoError(t, err)

	env := NewEnv(wb, "Sheet2", xlcore.NewARef(0, 0))
	got := env.CellValue("Sheet2", xlcore.NewARef(0, 0))
	n, ok := got.AsNumber()
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(10).Equal(n))
}
