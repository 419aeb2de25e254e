// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package numfmt renders cell values to their display string using an
// Excel number-format code, and validates format codes before they are
// interned into a style registry. Format-string parsing is delegated to
// github.com/xuri/nfp; this package only implements the General/Decimal/
// Date/DateTime rendering the cell codec layer needs on top of the
// resulting token stream.
package numfmt

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/nfp"
)

// Builtin holds the handful of built-in number-format codes the style
// codec hints (General/Decimal/Date/DateTime) actually need; Excel's
// full built-in table is out of scope beyond these families.
var Builtin = map[string]string{
	"general":  "General",
	"decimal":  "0.00",
	"date":     "m/d/yyyy",
	"datetime": "m/d/yyyy h:mm",
}

// Valid reports whether code parses as a well-formed number-format code.
// An empty code and the literal "General" are always valid.
func Valid(code string) bool {
	if code == "" || strings.EqualFold(code, "General") {
		return true
	}
	ps := nfp.NumberFormatParser()
	sections := ps.Parse(code)
	return len(sections) > 0
}

// Format renders a numeric value v through format code code. date1904
// selects the 1904 epoch convention for date serials. Non-numeric
// formatting (text cells, "@") is the caller's responsibility; Format
// only handles the numeric rendering path the cell codec layer needs.
func Format(v float64, code string, date1904 bool) string {
	if code == "" || strings.EqualFold(code, "General") {
		return renderGeneral(v)
	}
	ps := nfp.NumberFormatParser()
	sections := ps.Parse(code)
	if len(sections) == 0 {
		return renderGeneral(v)
	}
	sec := selectSection(sections, v)
	if isDateSection(sec) {
		return renderDate(v, date1904)
	}
	return renderDecimal(v, sec)
}

func renderGeneral(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// selectSection picks the positive/negative/zero section Excel would
// apply to v, falling back to the first section for formats without the
// full three-part structure.
func selectSection(sections []nfp.Section, v float64) nfp.Section {
	switch {
	case v < 0 && len(sections) > 1:
		return sections[1]
	case v == 0 && len(sections) > 2:
		return sections[2]
	default:
		return sections[0]
	}
}

func isDateSection(sec nfp.Section) bool {
	for _, tok := range sec.Items {
		if tok.TType == nfp.TokenTypeDateTimes || tok.TType == nfp.TokenTypeElapsedDateTimes {
			return true
		}
	}
	return false
}

// excelEpoch mirrors xlcore.ExcelEpoch without importing the root
// package, avoiding an import cycle between xlcore and numfmt.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

func renderDate(serial float64, date1904 bool) string {
	if date1904 {
		serial += 1462 // 4 years + 1 day between the 1900 and 1904 epochs
	}
	days := int64(serial)
	frac := serial - float64(days)
	t := excelEpoch.AddDate(0, 0, int(days)).Add(time.Duration(frac * float64(24*time.Hour)))
	if frac == 0 {
		return t.Format("1/2/2006")
	}
	return t.Format("1/2/2006 15:04")
}

func renderDecimal(v float64, sec nfp.Section) string {
	decimals := 0
	sawDecimalPoint := false
	for _, tok := range sec.Items {
		switch tok.TType {
		case nfp.TokenTypeDecimalPoint:
			sawDecimalPoint = true
		case nfp.TokenTypeZeroPlaceHolder, nfp.TokenTypeHashPlaceHolder:
			if sawDecimalPoint {
				decimals++
			}
		}
	}
	return strconv.FormatFloat(v, 'f', decimals, 64)
}
