// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// StyleHint names the number-format family a codec's Write should apply
// when the destination cell has no explicit style yet.
type StyleHint int

// The format hints a cell codec can suggest.
const (
	HintNone StyleHint = iota
	HintGeneral
	HintDecimal
	HintDate
	HintDateTime
)

// invariantPrinter fixes number stringification to an invariant, en-US-
// shaped culture, per §4.3/§4.8's "invariant-culture stringification"
// requirement.
var invariantPrinter = message.NewPrinter(language.AmericanEnglish)

// stringifyNumber renders d the way the string codec and the
// typechecker's implicit numeric-to-string coercion must: no locale-
// dependent grouping, decimal point, no trailing zeros beyond the value's
// own precision. d.String() is passed through rather than d.Float64(),
// since number.Decimal takes a string operand as-is instead of rounding
// it through a float64 first, so a high-precision decimal keeps every
// digit it was parsed with.
func stringifyNumber(d decimal.Decimal) string {
	return invariantPrinter.Sprintf("%v", number.Decimal(d.String(), number.NoSeparator()))
}

// StringCodec reads and writes CellValue as a Go string.
type StringCodec struct{}

// Read implements the read(Cell) -> Result<Option<string>> contract:
// Empty -> (nil, nil); text/rich-text -> the string; numbers are
// stringified via the invariant printer; a datetime cell stringifies
// through its Excel serial number, the same way Excel itself renders an
// unformatted date cell read as plain text; a boolean reads as "TRUE" or
// "FALSE"; anything else is a TypeMismatchError.
func (StringCodec) Read(v CellValue) (*string, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindText:
		s, _ := v.AsText()
		return &s, nil
	case KindRichText:
		runs, _ := v.AsRichText()
		var b strings.Builder
		for _, r := range runs {
			b.WriteString(r.Text)
		}
		s := b.String()
		return &s, nil
	case KindNumber:
		n, _ := v.AsNumber()
		s := stringifyNumber(n)
		return &s, nil
	case KindDateTime:
		t, _ := v.AsDateTime()
		s := stringifyNumber(TimeToSerial(t))
		return &s, nil
	case KindBool:
		b, _ := v.AsBool()
		s := "FALSE"
		if b {
			s = "TRUE"
		}
		return &s, nil
	default:
		return nil, &TypeMismatchError{Expected: "string", Actual: kindName(v.Kind())}
	}
}

// Write implements write(string) -> (CellValue, Option<StyleHint>).
func (StringCodec) Write(s string) (CellValue, StyleHint) {
	return Text(s), HintGeneral
}

// DecimalCodec reads and writes CellValue as an arbitrary-precision
// decimal.
type DecimalCodec struct{}

// Read accepts numeric cells directly and reads a boolean cell as 1 or 0.
// Text cells are not parsed: like every other kind, they are rejected
// with a TypeMismatchError.
func (DecimalCodec) Read(v CellValue) (*decimal.Decimal, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindNumber:
		n, _ := v.AsNumber()
		return &n, nil
	case KindBool:
		b, _ := v.AsBool()
		n := decimal.Zero
		if b {
			n = decimal.NewFromInt(1)
		}
		return &n, nil
	default:
		return nil, &TypeMismatchError{Expected: "decimal", Actual: kindName(v.Kind())}
	}
}

// Write implements write(decimal) -> (CellValue, General hint).
func (DecimalCodec) Write(d decimal.Decimal) (CellValue, StyleHint) {
	return Number(d), HintGeneral
}

// IntCodec reads and writes CellValue as an int64, rejecting fractional
// numeric cells.
type IntCodec struct{}

// Read rejects a non-integral numeric cell with a CodecParseError rather
// than silently truncating.
func (IntCodec) Read(v CellValue) (*int64, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindNumber:
		n, _ := v.AsNumber()
		if !n.Equal(n.Truncate(0)) {
			return nil, &CodecParseError{Value: n.String(), Target: "int", Detail: "fractional part"}
		}
		i := n.IntPart()
		return &i, nil
	default:
		return nil, &TypeMismatchError{Expected: "int", Actual: kindName(v.Kind())}
	}
}

// Write implements write(int64) -> (CellValue, General hint).
func (IntCodec) Write(i int64) (CellValue, StyleHint) {
	return NumberFromInt(i), HintGeneral
}

// BoolCodec reads and writes CellValue as a bool.
type BoolCodec struct{}

// Read accepts only Empty and Bool cells.
func (BoolCodec) Read(v CellValue) (*bool, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindBool:
		b, _ := v.AsBool()
		return &b, nil
	default:
		return nil, &TypeMismatchError{Expected: "bool", Actual: kindName(v.Kind())}
	}
}

// Write implements write(bool) -> (CellValue, no hint).
func (BoolCodec) Write(b bool) (CellValue, StyleHint) {
	return Bool(b), HintNone
}

// DateCodec reads and writes CellValue as a time.Time, truncated to a
// calendar date. It accepts either a DateTime cell or a numeric Excel
// serial (days since 1899-12-30).
type DateCodec struct{}

// Read implements the "date codecs accept either DateTime cells or Excel
// serial numbers" rule of §4.3.
func (DateCodec) Read(v CellValue) (*time.Time, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindDateTime:
		t, _ := v.AsDateTime()
		d := t.Truncate(24 * time.Hour)
		return &d, nil
	case KindNumber:
		n, _ := v.AsNumber()
		t := SerialToTime(n).Truncate(24 * time.Hour)
		return &t, nil
	default:
		return nil, &TypeMismatchError{Expected: "date", Actual: kindName(v.Kind())}
	}
}

// Write implements write(time.Time) -> (CellValue, Date hint).
func (DateCodec) Write(t time.Time) (CellValue, StyleHint) {
	return DateTime(t), HintDate
}

// DateTimeCodec is like DateCodec but preserves the time-of-day component
// and suggests the DateTime hint.
type DateTimeCodec struct{}

// Read accepts a DateTime cell or a numeric Excel serial.
func (DateTimeCodec) Read(v CellValue) (*time.Time, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindDateTime:
		t, _ := v.AsDateTime()
		return &t, nil
	case KindNumber:
		n, _ := v.AsNumber()
		t := SerialToTime(n)
		return &t, nil
	default:
		return nil, &TypeMismatchError{Expected: "datetime", Actual: kindName(v.Kind())}
	}
}

// Write implements write(time.Time) -> (CellValue, DateTime hint).
func (DateTimeCodec) Write(t time.Time) (CellValue, StyleHint) {
	return DateTime(t), HintDateTime
}

// RichTextCodec reads and writes CellValue as an ordered run sequence.
type RichTextCodec struct{}

// Read accepts RichText cells directly and promotes a plain Text cell to
// a single unstyled run.
func (RichTextCodec) Read(v CellValue) (*[]RichTextRun, error) {
	switch v.Kind() {
	case KindEmpty:
		return nil, nil
	case KindRichText:
		r, _ := v.AsRichText()
		return &r, nil
	case KindText:
		s, _ := v.AsText()
		r := []RichTextRun{{Text: s}}
		return &r, nil
	default:
		return nil, &TypeMismatchError{Expected: "richtext", Actual: kindName(v.Kind())}
	}
}

// Write implements write([]RichTextRun) -> (CellValue, no hint).
func (RichTextCodec) Write(runs []RichTextRun) (CellValue, StyleHint) {
	return RichText(runs), HintNone
}

func kindName(k Kind) string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindRichText:
		return "richtext"
	case KindFormula:
		return "formula"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
