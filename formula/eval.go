// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xlcore/xlcore"
)

// DefaultMaxDepth bounds recursive cell-dependency evaluation; the
// evaluator is total and single-threaded, so this is the only thing that
// stops a pathological dependency chain from recursing forever (§4.9,
// §5).
const DefaultMaxDepth = 512

// Env is everything TExpr evaluation needs from the surrounding
// workbook: sheet/cell lookup, defined-name resolution, the "current
// cell" for no-argument ROW()/COLUMN(), and the visited-set that detects
// dependency cycles.
type Env struct {
	Workbook *xlcore.Workbook
	Sheet    string
	Current  xlcore.ARef

	visited  map[cellKey]bool
	depth    int
	maxDepth int

	// IterGuess seeds Newton-Raphson for IRR/XIRR/RATE; 0.1 matches
	// Excel's own default.
	IterGuess float64
	// MaxIterations bounds the financial solvers' Newton-Raphson/
	// bisection fallback loop.
	MaxIterations int
}

type cellKey struct {
	sheet string
	ref   xlcore.ARef
}

// NewEnv builds an Env rooted at the given sheet/current cell.
func NewEnv(wb *xlcore.Workbook, sheet string, current xlcore.ARef) *Env {
	return &Env{
		Workbook:      wb,
		Sheet:         sheet,
		Current:       current,
		visited:       make(map[cellKey]bool),
		maxDepth:      DefaultMaxDepth,
		IterGuess:     0.1,
		MaxIterations: 100,
	}
}

// child returns a copy of e scoped to a new current sheet/cell, carrying
// over the same visited set and the current depth (so cycles are caught
// across cross-sheet references too).
func (e *Env) child(sheet string, current xlcore.ARef) *Env {
	c := *e
	c.Sheet, c.Current = sheet, current
	return &c
}

// CellValue resolves the live value of a cell: Empty if absent, the
// stored value if not a formula, or the recursive evaluation of a
// formula cell (with its own cache considered stale — this engine always
// re-evaluates, since it has no calc-chain persistence per the spec's
// non-goals).
func (e *Env) CellValue(sheet string, ref xlcore.ARef) xlcore.CellValue {
	key := cellKey{sheet: sheet, ref: ref}
	if e.visited[key] {
		return xlcore.Error(xlcore.ErrRef)
	}
	if e.depth >= e.maxDepth {
		return xlcore.Error(xlcore.ErrNum)
	}
	sh, ok := e.Workbook.Sheet(sheet)
	if !ok {
		return xlcore.Error(xlcore.ErrRef)
	}
	cell := sh.Get(ref)
	source, _, isFormula := cell.Value.AsFormula()
	if !isFormula {
		return cell.Value
	}
	next := *e
	next.visited = markVisited(e.visited, key)
	next.depth = e.depth + 1
	next.Sheet, next.Current = sheet, ref
	expr, err := ParseAndCheck(source, &next)
	if err != nil {
		return xlcore.Error(xlcore.ErrName)
	}
	return Evaluate(expr, &next)
}

// markVisited returns a new visited set with key added, so concurrent
// evaluators walking disjoint branches never share mutable state.
func markVisited(visited map[cellKey]bool, key cellKey) map[cellKey]bool {
	next := make(map[cellKey]bool, len(visited)+1)
	for k := range visited {
		next[k] = true
	}
	next[key] = true
	return next
}

// Evaluate folds expr against env, implementing the "#ERR-sticky" error
// propagation of §4.9: any arithmetic/comparison/concatenation node
// whose operand evaluates to an Excel error returns that error, left
// operand winning ties.
func Evaluate(expr Expr, env *Env) xlcore.CellValue {
	switch n := expr.(type) {
	case Lit:
		return n.Value
	case Ref:
		raw := env.CellValue(resolveSheet(n.HasSheet, n.Sheet, env), n.Ref)
		if _, isErr := raw.AsError(); isErr {
			return raw
		}
		if raw.IsEmpty() {
			return raw
		}
		decoded, err := n.Decode(raw.Display())
		if err != nil {
			return xlcore.Error(xlcore.ErrValue)
		}
		return decoded
	case PolyRef:
		// Should not survive typecheck; treat as a generic display read.
		return env.CellValue(resolveSheet(n.HasSheet, n.Sheet, env), n.Ref)
	case BinOp:
		return evalBinOp(n, env)
	case UnaryMinus:
		x := Evaluate(n.X, env)
		if _, isErr := x.AsError(); isErr {
			return x
		}
		d, ok := x.AsNumber()
		if !ok {
			return xlcore.Error(xlcore.ErrValue)
		}
		return xlcore.Number(d.Neg())
	case ToInt:
		x := Evaluate(n.X, env)
		if _, isErr := x.AsError(); isErr {
			return x
		}
		d, ok := x.AsNumber()
		if !ok {
			return xlcore.Error(xlcore.ErrValue)
		}
		if !d.Equal(d.Truncate(0)) {
			return xlcore.Error(xlcore.ErrNum)
		}
		return xlcore.Number(d)
	case DateToSerial:
		// Date context truncates the time-of-day component; DateTimeToSerial
		// below keeps it.
		x := Evaluate(n.X, env)
		if _, isErr := x.AsError(); isErr {
			return x
		}
		if t, ok := x.AsDateTime(); ok {
			return xlcore.Number(xlcore.TimeToSerial(t.Truncate(24 * time.Hour)))
		}
		if d, ok := x.AsNumber(); ok {
			return xlcore.Number(d)
		}
		return xlcore.Error(xlcore.ErrValue)
	case DateTimeToSerial:
		x := Evaluate(n.X, env)
		if _, isErr := x.AsError(); isErr {
			return x
		}
		if t, ok := x.AsDateTime(); ok {
			return xlcore.Number(xlcore.TimeToSerial(t))
		}
		if d, ok := x.AsNumber(); ok {
			return xlcore.Number(d)
		}
		return xlcore.Error(xlcore.ErrValue)
	case Aggregate:
		return evalAggregate(n, env)
	case Call:
		return evalCall(n, env)
	default:
		return xlcore.Error(xlcore.ErrValue)
	}
}

func resolveSheet(hasSheet bool, sheet string, env *Env) string {
	if hasSheet {
		return sheet
	}
	return env.Sheet
}

// errorOrTie returns (err, true) if either side is an Excel error,
// picking the left operand's error on a tie.
func errorOrTie(left, right xlcore.CellValue) (xlcore.CellValue, bool) {
	if _, ok := left.AsError(); ok {
		return left, true
	}
	if _, ok := right.AsError(); ok {
		return right, true
	}
	return xlcore.CellValue{}, false
}

func evalBinOp(n BinOp, env *Env) xlcore.CellValue {
	left := Evaluate(n.Left, env)
	right := Evaluate(n.Right, env)
	if errv, isErr := errorOrTie(left, right); isErr {
		return errv
	}
	switch n.Op {
	case "&":
		ls, _ := xlcore.StringCodec{}.Read(left)
		rs, _ := xlcore.StringCodec{}.Read(right)
		a, b := "", ""
		if ls != nil {
			a = *ls
		}
		if rs != nil {
			b = *rs
		}
		return xlcore.Text(a + b)
	case "=", "<>", "<", "<=", ">", ">=":
		return evalCompare(n.Op, left, right)
	default:
		return evalArith(n.Op, left, right)
	}
}

func toArithDecimal(v xlcore.CellValue) (decimal.Decimal, bool) {
	switch v.Kind() {
	case xlcore.KindNumber:
		d, _ := v.AsNumber()
		return d, true
	case xlcore.KindBool:
		b, _ := v.AsBool()
		if b {
			return decimal.NewFromInt(1), true
		}
		return decimal.Zero, true
	case xlcore.KindDateTime:
		t, _ := v.AsDateTime()
		return xlcore.TimeToSerial(t), true
	default:
		return decimal.Decimal{}, false
	}
}

func evalArith(op string, left, right xlcore.CellValue) xlcore.CellValue {
	a, aok := toArithDecimal(left)
	b, bok := toArithDecimal(right)
	if !aok || !bok {
		return xlcore.Error(xlcore.ErrValue)
	}
	switch op {
	case "+":
		return xlcore.Number(a.Add(b))
	case "-":
		return xlcore.Number(a.Sub(b))
	case "*":
		return xlcore.Number(a.Mul(b))
	case "/":
		if b.IsZero() {
			return xlcore.Error(xlcore.ErrDivZero)
		}
		return xlcore.Number(a.Div(b))
	case "^":
		if a.IsZero() && b.IsZero() {
			return xlcore.Number(decimal.NewFromInt(1))
		}
		f, _ := a.Float64()
		g, _ := b.Float64()
		return xlcore.NumberFromFloat(powFloat(f, g))
	default:
		return xlcore.Error(xlcore.ErrValue)
	}
}

func evalCompare(op string, left, right xlcore.CellValue) xlcore.CellValue {
	cmp, ok := compareValues(left, right)
	if !ok {
		return xlcore.Error(xlcore.ErrValue)
	}
	var result bool
	switch op {
	case "=":
		result = cmp == 0
	case "<>":
		result = cmp != 0
	case "<":
		result = cmp < 0
	case "<=":
		result = cmp <= 0
	case ">":
		result = cmp > 0
	case ">=":
		result = cmp >= 0
	}
	return xlcore.Bool(result)
}

// compareValues implements Excel's cross-type comparison: booleans
// coerce to 1/0, dates to serial, numbers compare numerically, and text
// compares case-insensitively; numbers sort below text which sorts below
// booleans when kinds differ, matching Excel's ordering.
func compareValues(left, right xlcore.CellValue) (int, bool) {
	if ld, lok := toArithDecimal(left); lok && left.Kind() != xlcore.KindText {
		if rd, rok := toArithDecimal(right); rok && right.Kind() != xlcore.KindText {
			return ld.Cmp(rd), true
		}
	}
	lText := left.Kind() == xlcore.KindText || left.Kind() == xlcore.KindRichText
	rText := right.Kind() == xlcore.KindText || right.Kind() == xlcore.KindRichText
	if lText != rText && !left.IsEmpty() && !right.IsEmpty() {
		rank := func(v xlcore.CellValue, isText bool) int {
			if v.Kind() == xlcore.KindBool {
				return 2
			} else if isText {
				return 1
			}
			return 0
		}
		if rank(left, lText) < rank(right, rText) {
			return -1, true
		}
		return 1, true
	}
	ls, lok := xlcore.StringCodec{}.Read(left)
	rs, rok := xlcore.StringCodec{}.Read(right)
	if lok == nil && rok == nil && ls != nil && rs != nil {
		a, b := toLowerASCII(*ls), toLowerASCII(*rs)
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func toLowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

func powFloat(base, exp float64) float64 {
	return decimalPow(base, exp)
}

// ParseAndCheck parses formula source and typechecks it, returning a
// ready-to-evaluate Expr; env is not consulted by either step. Exported so the
// sheet layer and the evaluator's own recursive cell lookup share one
// pipeline.
func ParseAndCheck(source string, env *Env) (Expr, error) {
	parsed, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("formula: parse: %w", err)
	}
	checked, err := Typecheck(parsed)
	if err != nil {
		return nil, fmt.Errorf("formula: typecheck: %w", err)
	}
	return checked, nil
}
