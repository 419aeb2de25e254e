// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"fmt"

	"github.com/xlcore/xlcore"
)

// TypeError reports an argument-count/kind mismatch or an unresolved
// polymorphic reference.
type TypeError struct {
	Detail string
}

func (e *TypeError) Error() string { return "formula: type error: " + e.Detail }

// Typecheck resolves every PolyRef in expr into a typed Ref carrying the
// decoder appropriate to its context, and inserts DateToSerial/
// DateTimeToSerial coercions around date-typed refs in arithmetic
// (§4.8); it does not insert ToInt. The root expression is checked in AnyType context (a bare
// formula like "=A1" reads through unconverted).
func Typecheck(expr Expr) (Expr, error) {
	return resolve(expr, AnyType)
}

func resolve(expr Expr, ctx ResultType) (Expr, error) {
	switch n := expr.(type) {
	case Lit:
		return coerceLit(n, ctx)
	case PolyRef:
		return resolveRef(n, ctx), nil
	case PolyRange:
		return nil, &TypeError{Detail: "a range cannot be used where a scalar value is expected"}
	case Ref:
		return n, nil
	case UnaryMinus:
		x, err := resolve(n.X, NumberType)
		if err != nil {
			return nil, err
		}
		return UnaryMinus{X: x}, nil
	case BinOp:
		return resolveBinOp(n)
	case Aggregate:
		return resolveAggregate(n)
	case Call:
		return resolveCall(n)
	default:
		return expr, nil
	}
}

func coerceLit(l Lit, ctx ResultType) (Expr, error) {
	if ctx == TextType && l.Value.Kind() == xlcore.KindNumber {
		d, _ := l.Value.AsNumber()
		return Lit{Value: xlcore.Text(d.String())}, nil
	}
	return l, nil
}

func resolveRef(n PolyRef, ctx ResultType) Expr {
	var decode Decoder
	typ := ctx
	switch ctx {
	case NumberType:
		decode = func(v xlcore.CellValue) (xlcore.CellValue, error) {
			d, err := xlcore.DecimalCodec{}.Read(v)
			if err != nil {
				if t, ok := v.AsDateTime(); ok {
					return xlcore.Number(xlcore.TimeToSerial(t)), nil
				}
				return xlcore.CellValue{}, err
			}
			if d == nil {
				return xlcore.NumberFromInt(0), nil
			}
			return xlcore.Number(*d), nil
		}
	case TextType:
		decode = func(v xlcore.CellValue) (xlcore.CellValue, error) {
			s, err := xlcore.StringCodec{}.Read(v)
			if err != nil {
				return xlcore.CellValue{}, err
			}
			if s == nil {
				return xlcore.Text(""), nil
			}
			return xlcore.Text(*s), nil
		}
	case BoolType:
		decode = func(v xlcore.CellValue) (xlcore.CellValue, error) { return v, nil }
	case DateType, DateTimeType:
		decode = func(v xlcore.CellValue) (xlcore.CellValue, error) {
			t, err := xlcore.DateTimeCodec{}.Read(v)
			if err != nil {
				return xlcore.CellValue{}, err
			}
			if t == nil {
				return xlcore.Empty, nil
			}
			return xlcore.DateTime(*t), nil
		}
	default:
		typ = AnyType
		decode = func(v xlcore.CellValue) (xlcore.CellValue, error) { return v, nil }
	}
	return Ref{Sheet: n.Sheet, HasSheet: n.HasSheet, Ref: n.Ref, Typ: typ, Decode: decode}
}

func resolveBinOp(n BinOp) (Expr, error) {
	var ctx ResultType
	switch n.Op {
	case "&":
		ctx = TextType
	case "=", "<>", "<", "<=", ">", ">=":
		ctx = AnyType
	default:
		ctx = NumberType
	}
	left, err := resolve(n.Left, ctx)
	if err != nil {
		return nil, err
	}
	right, err := resolve(n.Right, ctx)
	if err != nil {
		return nil, err
	}
	if ctx == NumberType {
		left = wrapNumericCoercion(left)
		right = wrapNumericCoercion(right)
	}
	return BinOp{Op: n.Op, Left: left, Right: right}, nil
}

// wrapNumericCoercion inserts DateToSerial/DateTimeToSerial when a
// resolved Ref's committed type is a date, per §4.8.
func wrapNumericCoercion(expr Expr) Expr {
	if ref, ok := expr.(Ref); ok && (ref.Typ == DateType || ref.Typ == DateTimeType) {
		if ref.Typ == DateTimeType {
			return DateTimeToSerial{X: ref}
		}
		return DateToSerial{X: ref}
	}
	return expr
}

func resolveAggregate(n Aggregate) (Expr, error) {
	var criteria []Expr
	for _, c := range n.Criteria {
		rc, err := resolve(c, AnyType)
		if err != nil {
			return nil, err
		}
		criteria = append(criteria, rc)
	}
	n.Criteria = criteria
	return n, nil
}

func resolveCall(n Call) (Expr, error) {
	spec := n.Spec
	resolvedArgs := make([]Arg, len(n.Args))
	for i, a := range n.Args {
		if a.Kind == ArgRange {
			resolvedArgs[i] = a
			continue
		}
		ctx := argContext(spec, i)
		resolved, err := resolve(a.Expr, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s argument %d: %w", spec.Name, i+1, err)
		}
		resolvedArgs[i] = Arg{Kind: ArgExpr, Expr: resolved}
	}
	n.Args = resolvedArgs
	return n, nil
}

// argContext returns the expected ResultType for a Call argument slot;
// functions whose arguments are polymorphic (IF, CHOOSE, ...) leave
// ArgContexts nil and get AnyType, reading cells through their stored
// type unchanged.
func argContext(spec *FunctionSpec, i int) ResultType {
	if spec == nil || spec.ArgContexts == nil || i >= len(spec.ArgContexts) {
		return AnyType
	}
	return spec.ArgContexts[i]
}

