// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/efp"
)

// TestPrinterOutputTokenizesUnderIndependentOracle cross-checks every
// formula this package's printer emits against efp's own Excel tokenizer
// (the same library the teacher wraps for its formula engine in
// calc.go). If the printer ever emitted something that isn't valid Excel
// formula syntax, a real Excel tokenizer would choke on it the same way
// Excel itself would; this test gives that signal independently of this
// package's own parser, which can't catch a printer/parser bug that's
// symmetric on both sides.
func TestPrinterOutputTokenizesUnderIndependentOracle(t *testing.T) {
	cases := []string{
		"1+2*3",
		"(1+2)*3",
		"2^3^2",
		"-5+3",
		`"a"&"b"`,
		"1=2",
		"1<>2",
		"A1",
		"$A$1",
		"Sheet2!A1",
		"SUM(A1:A3)",
		"SUM(A:A)",
		"IF(1=1,2,3)",
		"ROUND(1.5,0)",
		"VLOOKUP(A1,B1:C10,2,FALSE)",
		"SUMIF(A1:A10,\">5\")",
	}
	for _, source := range cases {
		expr, err := Parse(source)
		require.NoError(t, err, source)
		printed := Print(expr)

		ps := efp.ExcelParser()
		tokens := ps.Parse(printed)
		require.NotNil(t, tokens, "efp rejected printer output %q (from %q)", printed, source)
		assert.NotEmpty(t, tokens, "efp tokenized %q into zero tokens", printed)
	}
}
