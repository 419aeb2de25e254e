// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCellValueConstructorsRoundTrip(t *testing.T) {
	n := Number(decimal.NewFromInt(42))
	got, ok := n.AsNumber()
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(42).Equal(got))
	assert.Equal(t, KindNumber, n.Kind())

	s := Text("hello")
	str, ok := s.AsText()
	assert.True(t, ok)
	assert.Equal(t, "hello", str)

	b := Bool(true)
	bv, ok := b.AsBool()
	assert.True(t, ok)
	assert.True(t, bv)

	now := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	dt := DateTime(now)
	tv, ok := dt.AsDateTime()
	assert.True(t, ok)
	assert.True(t, now.Equal(tv))
}

func TestCellValueIsEmpty(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.False(t, Number(decimal.Zero).IsEmpty())
}

func TestCellValueKindMismatch(t *testing.T) {
	n := Number(decimal.NewFromInt(1))
	_, ok := n.AsText()
	assert.False(t, ok)
	_, ok = n.AsBool()
	assert.False(t, ok)
}

func TestRichTextValue(t *testing.T) {
	runs := []RichTextRun{{Text: "bold", Font: "Arial"}, {Text: " plain"}}
	v := RichText(runs)
	got, ok := v.AsRichText()
	assert.True(t, ok)
	assert.Equal(t, runs, got)
}

func TestRichTextIsCopiedNotAliased(t *testing.T) {
	runs := []RichTextRun{{Text: "a"}}
	v := RichText(runs)
	runs[0].Text = "mutated"
	got, _ := v.AsRichText()
	assert.Equal(t, "a", got[0].Text)
}

func TestFormulaValueCachedDisplay(t *testing.T) {
	cached := Number(decimal.NewFromInt(7))
	f := Formula("=3+4", &cached)
	src, c, ok := f.AsFormula()
	assert.True(t, ok)
	assert.Equal(t, "=3+4", src)
	assert.NotNil(t, c)

	disp := f.Display()
	n, ok := disp.AsNumber()
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(7).Equal(n))
}

func TestFormulaValueWithoutCacheDisplaysItself(t *testing.T) {
	f := Formula("=1+1", nil)
	disp := f.Display()
	assert.Equal(t, KindFormula, disp.Kind())
}

func TestErrorValue(t *testing.T) {
	e := Error(ErrDivZero)
	code, ok := e.AsError()
	assert.True(t, ok)
	assert.Equal(t, ErrDivZero, code)
}

func TestSerialToTimeAndBack(t *testing.T) {
	// 2025-01-15 is serial 45672 in Excel's 1900 date system.
	serial := decimal.NewFromInt(45672)
	tm := SerialToTime(serial)
	assert.Equal(t, 2025, tm.Year())
	assert.Equal(t, time.January, tm.Month())
	assert.Equal(t, 15, tm.Day())

	back := TimeToSerial(tm)
	diff := back.Sub(serial).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.001)))
}

func TestSerialToTimeFractionalIsTimeOfDay(t *testing.T) {
	serial := decimal.NewFromFloat(45672.5)
	tm := SerialToTime(serial)
	assert.Equal(t, 12, tm.Hour())
}
