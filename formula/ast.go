// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package formula implements the typed Excel formula front end: a
// recursive-descent parser producing a typed expression tree (TExpr in
// the specification, Expr here — Go's lack of GADTs is worked around the
// way §9 of the spec recommends, a sealed set of variant structs plus a
// ResultType discriminator), a typechecker that resolves polymorphic
// references, an evaluator with Excel-compatible error propagation, a
// closed function registry, and a precedence-aware printer.
package formula

import (
	"github.com/xlcore/xlcore"
)

// ResultType discriminates what kind of value an Expr node produces,
// standing in for the type parameter a real GADT would carry.
type ResultType int

// The result types an Expr node can carry.
const (
	AnyType ResultType = iota
	NumberType
	TextType
	BoolType
	DateType
	DateTimeType
	RangeType
)

// Expr is the sealed set of typed-AST node variants. Every concrete type
// in this file implements it.
type Expr interface {
	ResultType() ResultType
	exprNode()
}

// RangeLocation is the uniform local-or-cross-sheet range wrapper used by
// Aggregate and every range-accepting FunctionSpec.
type RangeLocation struct {
	Sheet      string // "" for Local
	CrossSheet bool
	Range      xlcore.CellRange
}

// Lit is a literal number, text, boolean, or error value.
type Lit struct {
	Value xlcore.CellValue
}

func (Lit) exprNode()                 {}
func (l Lit) ResultType() ResultType {
	switch l.Value.Kind() {
	case xlcore.KindNumber:
		return NumberType
	case xlcore.KindText:
		return TextType
	case xlcore.KindBool:
		return BoolType
	case xlcore.KindDateTime:
		return DateType
	default:
		return AnyType
	}
}

// PolyRef is a cell reference the parser produced before its expected
// result type is known. The typechecker rewrites every PolyRef into a
// Ref; no PolyRef should survive past typecheck (§4.8, §9).
type PolyRef struct {
	Sheet      string
	HasSheet   bool
	Ref        xlcore.ARef
}

func (PolyRef) exprNode()             {}
func (PolyRef) ResultType() ResultType { return AnyType }

// PolyRange is the range counterpart of PolyRef: a range reference with
// no committed element type, produced by the parser and resolved to a
// RangeLocation by whichever FunctionSpec/Aggregate slot consumes it.
type PolyRange struct {
	Sheet    string
	HasSheet bool
	Range    xlcore.CellRange
}

func (PolyRange) exprNode()             {}
func (PolyRange) ResultType() ResultType { return RangeType }

// Decoder reads a cell's value as the committed result type of a Ref.
type Decoder func(xlcore.CellValue) (xlcore.CellValue, error)

// Ref is a typed cell reference: a PolyRef the typechecker has resolved,
// carrying the decoder function it must read through.
type Ref struct {
	Sheet    string
	HasSheet bool
	Ref      xlcore.ARef
	Typ      ResultType
	Decode   Decoder
}

func (Ref) exprNode()                 {}
func (r Ref) ResultType() ResultType { return r.Typ }

// BinOp is arithmetic (Add/Sub/Mul/Div/Pow), comparison, or concatenation.
type BinOp struct {
	Op          string // "+","-","*","/","^","&","=","<>","<","<=",">",">="
	Left, Right Expr
}

func (BinOp) exprNode() {}
func (b BinOp) ResultType() ResultType {
	switch b.Op {
	case "&":
		return TextType
	case "=", "<>", "<", "<=", ">", ">=":
		return BoolType
	default:
		return NumberType
	}
}

// UnaryMinus negates a numeric expression; rendered as Sub(Lit(0), x).
type UnaryMinus struct{ X Expr }

func (UnaryMinus) exprNode()             {}
func (UnaryMinus) ResultType() ResultType { return NumberType }

// ToInt is the typechecker's implicit coercion of a decimal expression
// into an integer context; it fails at evaluation if the value is not an
// exact integer (§4.8).
type ToInt struct{ X Expr }

func (ToInt) exprNode()             {}
func (ToInt) ResultType() ResultType { return NumberType }

// DateToSerial wraps a date-valued expression for use in a numeric
// context.
type DateToSerial struct{ X Expr }

func (DateToSerial) exprNode()             {}
func (DateToSerial) ResultType() ResultType { return NumberType }

// DateTimeToSerial wraps a datetime-valued expression for use in a
// numeric context.
type DateTimeToSerial struct{ X Expr }

func (DateTimeToSerial) exprNode()             {}
func (DateTimeToSerial) ResultType() ResultType { return NumberType }

// Aggregate is SUM/COUNT/COUNTA/COUNTBLANK/AVERAGE/MIN/MAX (and the
// conditional variants, which add predicate arguments) over one or more
// RangeLocations.
//
// Locs holds the full variadic argument list for the plain, unconditional
// form (SUM(A1,A2,B1:B3) becomes three RangeLocations, whose cells are
// concatenated in argument order and reduced together in one pass). SUMIF/COUNTIF/AVERAGEIF(S) still address a single target range
// via Loc, since those forms take exactly one range argument per role.
type Aggregate struct {
	Name       string
	Loc        RangeLocation   // target range for *IF/*IFS forms
	Locs       []RangeLocation // every range/ref argument of the plain form
	CritRanges []RangeLocation // SUMIFS/COUNTIFS/AVERAGEIFS extra range args
	Criteria   []Expr          // matching criteria expressions
	AvgRange   *RangeLocation  // SUMIF/AVERAGEIF's optional separate sum/average range
}

func (Aggregate) exprNode()             {}
func (Aggregate) ResultType() ResultType { return NumberType }

// ArgKind marks how a single Call argument was parsed.
type ArgKind int

// The two shapes a Call argument slot can take.
const (
	ArgExpr ArgKind = iota
	ArgRange
)

// Arg is one argument to a Call: either a scalar expression or a range
// location, matching FunctionSpec's argument-shape descriptor.
type Arg struct {
	Kind  ArgKind
	Expr  Expr
	Range RangeLocation
}

// Call is a function invocation dispatched through a FunctionSpec. A
// single Call variant, parameterized by spec, is what lets parser,
// printer, evaluator, and shifter share one table (§4.6).
type Call struct {
	Spec *FunctionSpec
	Args []Arg
}

func (Call) exprNode() {}
func (c Call) ResultType() ResultType {
	if c.Spec == nil {
		return AnyType
	}
	switch {
	case c.Spec.ReturnsDate:
		return DateType
	case c.Spec.ReturnsTime:
		return DateTimeType
	default:
		return AnyType
	}
}
