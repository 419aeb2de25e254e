// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"time"

	"github.com/shopspring/decimal"
)

// ErrorCode is one of the Excel-visible error values a cell can hold or a
// formula can evaluate to.
type ErrorCode string

// The closed set of Excel error codes this engine produces.
const (
	ErrDivZero      ErrorCode = "#DIV/0!"
	ErrValue        ErrorCode = "#VALUE!"
	ErrRef          ErrorCode = "#REF!"
	ErrName         ErrorCode = "#NAME?"
	ErrNum          ErrorCode = "#NUM!"
	ErrNA           ErrorCode = "#N/A"
	ErrNull         ErrorCode = "#NULL!"
	ErrGettingData  ErrorCode = "#GETTING_DATA"
)

// RichTextRun is one (text, optional font name) segment of a RichText
// cell value. An empty Font means "inherit the cell's style".
type RichTextRun struct {
	Text string
	Font string
}

// Kind discriminates the variants of CellValue.
type Kind int

// CellValue variants, matching §3 of the specification.
const (
	KindEmpty Kind = iota
	KindNumber
	KindText
	KindBool
	KindDateTime
	KindRichText
	KindFormula
	KindError
)

// CellValue is the tagged union of everything a cell can hold. Only the
// field matching Kind is meaningful; constructors below are the only
// supported way to build one so that field combinations never go out of
// sync with Kind.
type CellValue struct {
	kind     Kind
	number   decimal.Decimal
	text     string
	boolean  bool
	datetime time.Time
	rich     []RichTextRun
	formula  string
	cached   *CellValue
	errCode  ErrorCode
}

// Empty is the zero-value cell contents.
var Empty = CellValue{kind: KindEmpty}

// Number builds a numeric cell value.
func Number(d decimal.Decimal) CellValue { return CellValue{kind: KindNumber, number: d} }

// NumberFromFloat builds a numeric cell value from a float64.
func NumberFromFloat(f float64) CellValue {
	return CellValue{kind: KindNumber, number: decimal.NewFromFloat(f)}
}

// NumberFromInt builds a numeric cell value from an int64.
func NumberFromInt(i int64) CellValue {
	return CellValue{kind: KindNumber, number: decimal.NewFromInt(i)}
}

// Text builds a plain-string cell value.
func Text(s string) CellValue { return CellValue{kind: KindText, text: s} }

// Bool builds a boolean cell value.
func Bool(b bool) CellValue { return CellValue{kind: KindBool, boolean: b} }

// DateTime builds a datetime cell value.
func DateTime(t time.Time) CellValue { return CellValue{kind: KindDateTime, datetime: t} }

// RichText builds a rich-text cell value from an ordered run sequence.
func RichText(runs []RichTextRun) CellValue {
	return CellValue{kind: KindRichText, rich: append([]RichTextRun(nil), runs...)}
}

// Formula builds a formula cell with an optional cached display value.
// Pass nil for cached when no prior evaluation result is known.
func Formula(source string, cached *CellValue) CellValue {
	return CellValue{kind: KindFormula, formula: source, cached: cached}
}

// Error builds an Excel error cell value.
func Error(code ErrorCode) CellValue { return CellValue{kind: KindError, errCode: code} }

// Kind reports which variant v holds.
func (v CellValue) Kind() Kind { return v.kind }

// IsEmpty reports whether v is the Empty variant.
func (v CellValue) IsEmpty() bool { return v.kind == KindEmpty }

// AsNumber returns v's decimal payload and whether v is KindNumber.
func (v CellValue) AsNumber() (decimal.Decimal, bool) {
	return v.number, v.kind == KindNumber
}

// AsText returns v's string payload and whether v is KindText.
func (v CellValue) AsText() (string, bool) { return v.text, v.kind == KindText }

// AsBool returns v's boolean payload and whether v is KindBool.
func (v CellValue) AsBool() (bool, bool) { return v.boolean, v.kind == KindBool }

// AsDateTime returns v's datetime payload and whether v is KindDateTime.
func (v CellValue) AsDateTime() (time.Time, bool) { return v.datetime, v.kind == KindDateTime }

// AsRichText returns v's run sequence and whether v is KindRichText.
func (v CellValue) AsRichText() ([]RichTextRun, bool) { return v.rich, v.kind == KindRichText }

// AsFormula returns v's source text, its cached value (nil if none), and
// whether v is KindFormula.
func (v CellValue) AsFormula() (string, *CellValue, bool) {
	return v.formula, v.cached, v.kind == KindFormula
}

// AsError returns v's error code and whether v is KindError.
func (v CellValue) AsError() (ErrorCode, bool) { return v.errCode, v.kind == KindError }

// Display returns the value a reader sees when it asks "what does this
// cell look like as plain data": the cached value for formulas, and the
// value itself otherwise.
func (v CellValue) Display() CellValue {
	if v.kind == KindFormula && v.cached != nil {
		return *v.cached
	}
	return v
}

// ExcelEpoch is the day Excel's serial date numbering starts counting
// from (1899-12-30, accounting for Lotus 1-2-3's phantom 1900 leap day).
var ExcelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// SerialToTime converts an Excel date/time serial number to a time.Time.
func SerialToTime(serial decimal.Decimal) time.Time {
	days, _ := serial.Float64()
	wholeDays := int64(days)
	frac := days - float64(wholeDays)
	t := ExcelEpoch.AddDate(0, 0, int(wholeDays))
	return t.Add(time.Duration(frac * float64(24*time.Hour)))
}

// TimeToSerial converts a time.Time to an Excel date/time serial number.
func TimeToSerial(t time.Time) decimal.Decimal {
	days := t.Sub(ExcelEpoch).Hours() / 24
	return decimal.NewFromFloat(days)
}
