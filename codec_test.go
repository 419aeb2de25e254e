// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringCodecReadsEmptyAsNone(t *testing.T) {
	got, err := StringCodec{}.Read(Empty)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestStringCodecReadsText(t *testing.T) {
	got, err := StringCodec{}.Read(Text("hi"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hi", *got)
}

func TestStringCodecStringifiesNumber(t *testing.T) {
	got, err := StringCodec{}.Read(Number(decimal.NewFromFloat(3.5)))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "3.5", *got)
}

func TestStringCodecStringifiesDateTimeViaSerial(t *testing.T) {
	// 2025-01-15 is Excel serial 45672; LEFT(A1,4) on this cell must read
	// "4567", matching Excel's own behavior of stringifying an
	// unformatted date cell through its serial number.
	d := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	got, err := StringCodec{}.Read(DateTime(d))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "45672", *got)
}

func TestStringCodecRejectsErrorWithTypeMismatch(t *testing.T) {
	_, err := StringCodec{}.Read(Error(ErrValue))
	require.Error(t, err)
	var mismatch *TypeMismatchError
	assert.ErrorAs(t, err, &mismatch)
}

func TestStringCodecWrite(t *testing.T) {
	v, hint := StringCodec{}.Write("abc")
	s, ok := v.AsText()
	assert.True(t, ok)
	assert.Equal(t, "abc", s)
	assert.Equal(t, HintGeneral, hint)
}

func TestDecimalCodecRejectsText(t *testing.T) {
	_, err := DecimalCodec{}.Read(Text("abc"))
	require.Error(t, err)
}

func TestDecimalCodecAcceptsBoolAsZeroOrOne(t *testing.T) {
	got, err := DecimalCodec{}.Read(Bool(true))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, decimal.NewFromInt(1).Equal(*got))
}

func TestIntCodecRejectsFractional(t *testing.T) {
	_, err := IntCodec{}.Read(Number(decimal.NewFromFloat(1.5)))
	require.Error(t, err)
	var perr *CodecParseError
	assert.ErrorAs(t, err, &perr)
}

func TestIntCodecAcceptsWholeNumber(t *testing.T) {
	got, err := IntCodec{}.Read(Number(decimal.NewFromInt(7)))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(7), *got)
}

func TestBoolCodecRejectsNumber(t *testing.T) {
	_, err := BoolCodec{}.Read(Number(decimal.NewFromInt(1)))
	require.Error(t, err)
}

func TestDateCodecAcceptsSerial(t *testing.T) {
	got, err := DateCodec{}.Read(Number(decimal.NewFromInt(45672)))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2025, got.Year())
}

func TestDateCodecAcceptsDateTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)
	got, err := DateCodec{}.Read(DateTime(now))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Hour(), "DateCodec truncates time of day")
}

func TestDateTimeCodecPreservesTimeOfDay(t *testing.T) {
	now := time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)
	got, err := DateTimeCodec{}.Read(DateTime(now))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 13, got.Hour())
}

func TestDateCodecWriteHint(t *testing.T) {
	_, hint := DateCodec{}.Write(time.Now())
	assert.Equal(t, HintDate, hint)
}

func TestDateTimeCodecWriteHint(t *testing.T) {
	_, hint := DateTimeCodec{}.Write(time.Now())
	assert.Equal(t, HintDateTime, hint)
}

func TestRichTextCodecPromotesPlainText(t *testing.T) {
	got, err := RichTextCodec{}.Read(Text("plain"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []RichTextRun{{Text: "plain"}}, *got)
}

func TestRichTextCodecReadsEmptyAsNone(t *testing.T) {
	got, err := RichTextCodec{}.Read(Empty)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTypeMismatchErrorWithRef(t *testing.T) {
	err := (&TypeMismatchError{Expected: "string", Actual: "bool"}).WithRef(NewARef(0, 0))
	assert.Contains(t, err.Error(), "A1")
	assert.Contains(t, err.Error(), "string")
}

func TestCodecParseErrorWithRef(t *testing.T) {
	err := (&CodecParseError{Value: "1.5", Target: "int", Detail: "fractional part"}).WithRef(NewARef(1, 0))
	assert.Contains(t, err.Error(), "B1")
	assert.Contains(t, err.Error(), "fractional part")
}
