// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"

	"github.com/xlcore/xlcore"
)

// precedence mirrors the grammar table of §4.7, lowest first; higher
// numbers bind tighter.
func precedence(op string) int {
	switch op {
	case "or":
		return 1
	case "and":
		return 2
	case "=", "<>", "<", "<=", ">", ">=":
		return 3
	case "&":
		return 4
	case "+", "-":
		return 5
	case "*", "/":
		return 6
	case "^":
		return 7
	case "u-":
		return 8
	default:
		return 9
	}
}

// Print renders expr back to canonical Excel source, without the leading
// "=". Parenthesization is precedence-aware: a child is wrapped whenever
// its own precedence is lower than (or, for left-associative operators,
// equal-but-on-the-right of) its parent's.
func Print(expr Expr) string {
	return printExpr(expr, 0)
}

func printExpr(expr Expr, parentPrec int) string {
	switch n := expr.(type) {
	case Lit:
		return printLit(n.Value)
	case Ref:
		return printRef(n.Sheet, n.HasSheet, n.Ref)
	case PolyRef:
		return printRef(n.Sheet, n.HasSheet, n.Ref)
	case PolyRange:
		return printRangeLoc(RangeLocation{Sheet: n.Sheet, CrossSheet: n.HasSheet, Range: n.Range})
	case UnaryMinus:
		s := "-" + printExpr(n.X, precedence("u-"))
		return wrap(s, precedence("u-"), parentPrec)
	case ToInt, DateToSerial, DateTimeToSerial:
		return printCoercion(n)
	case BinOp:
		return printBinOp(n, parentPrec)
	case Aggregate:
		return printAggregate(n)
	case Call:
		return printCall(n)
	default:
		return ""
	}
}

func printCoercion(expr Expr) string {
	switch n := expr.(type) {
	case ToInt:
		return printExpr(n.X, 0)
	case DateToSerial:
		return printExpr(n.X, 0)
	case DateTimeToSerial:
		return printExpr(n.X, 0)
	}
	return ""
}

func printBinOp(n BinOp, parentPrec int) string {
	prec := precedence(n.Op)
	leftPrec, rightPrec := prec, prec
	// left-associative operators need the right child parenthesized at
	// an equal precedence; right-associative "^" needs the left child
	// parenthesized instead.
	if n.Op == "^" {
		leftPrec = prec + 1
	} else {
		rightPrec = prec + 1
	}
	s := printExpr(n.Left, leftPrec) + n.Op + printExpr(n.Right, rightPrec)
	return wrap(s, prec, parentPrec)
}

func wrap(s string, myPrec, parentPrec int) string {
	if myPrec < parentPrec {
		return "(" + s + ")"
	}
	return s
}

func printLit(v xlcore.CellValue) string {
	switch v.Kind() {
	case xlcore.KindNumber:
		d, _ := v.AsNumber()
		return d.String()
	case xlcore.KindBool:
		b, _ := v.AsBool()
		if b {
			return "TRUE"
		}
		return "FALSE"
	case xlcore.KindText:
		s, _ := v.AsText()
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	case xlcore.KindError:
		code, _ := v.AsError()
		return string(code)
	default:
		return ""
	}
}

func printRef(sheet string, hasSheet bool, ref xlcore.ARef) string {
	if hasSheet {
		return xlcore.QuoteSheetName(sheet) + "!" + ref.String()
	}
	return ref.String()
}

func printRangeLoc(loc RangeLocation) string {
	s := loc.Range.String()
	if loc.CrossSheet {
		return xlcore.QuoteSheetName(loc.Sheet) + "!" + s
	}
	return s
}

func printAggregate(a Aggregate) string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(a.Name))
	b.WriteByte('(')
	var parts []string
	if len(a.Locs) > 0 {
		for _, loc := range a.Locs {
			parts = append(parts, printRangeLoc(loc))
		}
	} else {
		parts = []string{printRangeLoc(a.Loc)}
	}
	for i, critRange := range a.CritRanges {
		parts = append(parts, printRangeLoc(critRange))
		if i < len(a.Criteria) {
			parts = append(parts, printExpr(a.Criteria[i], 0))
		}
	}
	if len(a.Criteria) == 1 && len(a.CritRanges) == 0 {
		parts = append(parts, printExpr(a.Criteria[0], 0))
	}
	if a.AvgRange != nil {
		parts = append(parts, printRangeLoc(*a.AvgRange))
	}
	b.WriteString(strings.Join(parts, ","))
	b.WriteByte(')')
	return b.String()
}

func printCall(c Call) string {
	var b strings.Builder
	name := "UNKNOWN"
	if c.Spec != nil {
		name = strings.ToUpper(c.Spec.Name)
	}
	b.WriteString(name)
	b.WriteByte('(')
	parts := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		if a.Kind == ArgRange {
			parts = append(parts, printRangeLoc(a.Range))
		} else {
			parts = append(parts, printExpr(a.Expr, 0))
		}
	}
	b.WriteString(strings.Join(parts, ","))
	b.WriteByte(')')
	return b.String()
}
