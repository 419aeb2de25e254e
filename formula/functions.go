// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"

	"github.com/xlcore/xlcore"
)

// ArgShape describes how a FunctionSpec's arguments are parsed: a fixed
// prefix of typed slots, plus an optional variadic tail. ExprOrRange
// slots (used by e.g. NPV's or TEXTJOIN's args) accept either shape; the
// parser classifies each parsed argument as a range or an expression.
type ArgShape struct {
	Min, Max     int // Max == -1 means unbounded (variadic)
	Kinds        []ArgKind
	VariadicKind ArgKind
	ExprOrRange  bool // when true, every slot accepts either an expression or a range
}

// EvalFunc evaluates a Call's arguments against env.
type EvalFunc func(args []Arg, env *Env) xlcore.CellValue

// ShiftFunc rewrites a single Call argument's cell/range references when
// a formula is dragged or rows/columns are inserted/deleted. The default
// (nil) shift rule, applied by Shift in shift.go, is a uniform
// translation of every embedded Ref/Range by (deltaCol, deltaRow).
type ShiftFunc func(arg Arg, deltaCol, deltaRow int) Arg

// FunctionSpec bundles everything the parser, typechecker, evaluator,
// printer, and shifter need to treat a function as self-contained, per
// §4.6/§4.10.
type FunctionSpec struct {
	Name          string
	Shape         ArgShape
	ReturnsDate   bool
	ReturnsTime   bool
	ShortCircuits bool
	AcceptsRanges bool
	// ArgContexts optionally pins the expected ResultType of each fixed
	// argument slot (e.g. DATE's year/month/day as NumberType); slots
	// beyond its length, or when left
	// nil entirely, default to AnyType so polymorphic functions like IF
	// read cells through their stored type unchanged.
	ArgContexts []ResultType
	Eval        EvalFunc
	Shift       ShiftFunc
}

// Registry is the closed, case-insensitively-keyed table of every
// function this engine knows. Parser lookups and printer dispatch both
// go through it.
var Registry = map[string]*FunctionSpec{}

func register(spec *FunctionSpec) {
	Registry[strings.ToUpper(spec.Name)] = spec
}

// Lookup finds a FunctionSpec by case-insensitive name.
func Lookup(name string) (*FunctionSpec, bool) {
	spec, ok := Registry[strings.ToUpper(name)]
	return spec, ok
}

// Names returns every function name this engine recognizes, including
// the aggregate names handled outside Registry (see buildAggregate),
// for suggestion/listing purposes.
func Names() []string {
	names := make([]string, 0, len(Registry)+len(aggregateNames))
	for n := range Registry {
		names = append(names, n)
	}
	for n := range aggregateNames {
		names = append(names, n)
	}
	return names
}

func evalCall(c Call, env *Env) xlcore.CellValue {
	if c.Spec == nil || c.Spec.Eval == nil {
		return xlcore.Error(xlcore.ErrName)
	}
	if !c.Spec.ShortCircuits {
		for _, a := range c.Args {
			if a.Kind != ArgExpr {
				continue
			}
			v := Evaluate(a.Expr, env)
			if _, isErr := v.AsError(); isErr {
				return v
			}
		}
	}
	return c.Spec.Eval(c.Args, env)
}

// argNumber evaluates args[i] as an expression and decodes it as a
// decimal, returning an Excel error CellValue on any failure.
func argNumber(args []Arg, i int, env *Env) (xlcore.CellValue, bool) {
	if i >= len(args) || args[i].Kind != ArgExpr {
		return xlcore.Error(xlcore.ErrValue), false
	}
	v := Evaluate(args[i].Expr, env)
	if _, isErr := v.AsError(); isErr {
		return v, false
	}
	d, ok := toArithDecimal(v)
	if !ok {
		return xlcore.Error(xlcore.ErrValue), false
	}
	return xlcore.Number(d), true
}

// rangeCells resolves a RangeLocation against env, returning the live
// cell values in row-major order after clamping any full-column/row axis
// to the relevant sheet's used range (§4.9).
func rangeCells(loc RangeLocation, env *Env) []xlcore.CellValue {
	sheetName := env.Sheet
	if loc.CrossSheet {
		sheetName = loc.Sheet
	}
	sh, ok := env.Workbook.Sheet(sheetName)
	if !ok {
		return nil
	}
	rng := sh.ClampRange(loc.Range)
	var out []xlcore.CellValue
	rng.Cells(func(ref xlcore.ARef) bool {
		out = append(out, env.CellValue(sheetName, ref))
		return true
	})
	return out
}

// rangeRefs is like rangeCells but returns the ARefs instead of values,
// for lookup functions that need positions.
func rangeRefs(loc RangeLocation, env *Env) []xlcore.ARef {
	sheetName := env.Sheet
	if loc.CrossSheet {
		sheetName = loc.Sheet
	}
	sh, ok := env.Workbook.Sheet(sheetName)
	if !ok {
		return nil
	}
	rng := sh.ClampRange(loc.Range)
	var out []xlcore.ARef
	rng.Cells(func(ref xlcore.ARef) bool {
		out = append(out, ref)
		return true
	})
	return out
}
