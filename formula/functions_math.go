// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"math"
	"math/rand"

	"github.com/shopspring/decimal"
	"github.com/xlcore/xlcore"
)

func unaryMath(name string, fn func(float64) float64) *FunctionSpec {
	return &FunctionSpec{
		Name:  name,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			d, _ := v.AsNumber()
			f, _ := d.Float64()
			return xlcore.NumberFromFloat(fn(f))
		},
	}
}

func init() {
	register(unaryMath("SQRT", math.Sqrt))
	register(unaryMath("EXP", math.Exp))
	register(unaryMath("LN", math.Log))
	register(unaryMath("LOG10", math.Log10))

	register(&FunctionSpec{
		Name: "ABS", Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			d, _ := v.AsNumber()
			return xlcore.Number(d.Abs())
		},
	})
	register(&FunctionSpec{
		Name: "SIGN", Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			d, _ := v.AsNumber()
			return xlcore.NumberFromInt(int64(d.Sign()))
		},
	})
	register(&FunctionSpec{
		Name: "INT", Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			d, _ := v.AsNumber()
			f, _ := d.Float64()
			return xlcore.NumberFromFloat(math.Floor(f))
		},
	})
	register(&FunctionSpec{
		Name: "TRUNC", Shape: ArgShape{Min: 1, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			digits := int32(0)
			if len(args) == 2 {
				dv, ok := argNumber(args, 1, env)
				if !ok {
					return dv
				}
				d, _ := dv.AsNumber()
				digits = int32(d.IntPart())
			}
			d, _ := v.AsNumber()
			return xlcore.Number(d.Truncate(digits))
		},
	})
	register(&FunctionSpec{
		Name: "ROUND", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: roundFunc(func(d decimal.Decimal, places int32) decimal.Decimal { return d.Round(places) }),
	})
	register(&FunctionSpec{
		Name: "ROUNDUP", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: roundFunc(roundAwayFromZero),
	})
	register(&FunctionSpec{
		Name: "ROUNDDOWN", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: roundFunc(func(d decimal.Decimal, places int32) decimal.Decimal { return d.Truncate(places) }),
	})
	register(&FunctionSpec{
		Name: "MROUND", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			m, ok := argNumber(args, 1, env)
			if !ok {
				return m
			}
			d, _ := v.AsNumber()
			mult, _ := m.AsNumber()
			if mult.IsZero() {
				return xlcore.NumberFromInt(0)
			}
			quotient := d.Div(mult)
			rounded := quotient.Round(0)
			return xlcore.Number(rounded.Mul(mult))
		},
	})
	register(&FunctionSpec{
		Name: "MOD", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			n, ok := argNumber(args, 1, env)
			if !ok {
				return n
			}
			d, _ := v.AsNumber()
			divisor, _ := n.AsNumber()
			if divisor.IsZero() {
				return xlcore.Error(xlcore.ErrDivZero)
			}
			mod := d.Mod(divisor)
			if mod.Sign() != 0 && mod.Sign() != divisor.Sign() {
				mod = mod.Add(divisor)
			}
			return xlcore.Number(mod)
		},
	})
	register(&FunctionSpec{
		Name: "POWER", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			b, ok := argNumber(args, 0, env)
			if !ok {
				return b
			}
			e, ok := argNumber(args, 1, env)
			if !ok {
				return e
			}
			base, _ := b.AsNumber()
			exp, _ := e.AsNumber()
			if base.IsZero() && exp.IsZero() {
				return xlcore.NumberFromInt(1)
			}
			bf, _ := base.Float64()
			ef, _ := exp.Float64()
			return xlcore.NumberFromFloat(math.Pow(bf, ef))
		},
	})
	register(&FunctionSpec{
		Name: "LOG", Shape: ArgShape{Min: 1, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v, ok := argNumber(args, 0, env)
			if !ok {
				return v
			}
			base := 10.0
			if len(args) == 2 {
				bv, ok := argNumber(args, 1, env)
				if !ok {
					return bv
				}
				d, _ := bv.AsNumber()
				base, _ = d.Float64()
			}
			d, _ := v.AsNumber()
			f, _ := d.Float64()
			return xlcore.NumberFromFloat(math.Log(f) / math.Log(base))
		},
	})
	register(&FunctionSpec{
		Name: "PI", Shape: ArgShape{Min: 0, Max: 0},
		Eval: func(args []Arg, env *Env) xlcore.CellValue { return xlcore.NumberFromFloat(math.Pi) },
	})
	register(&FunctionSpec{
		Name: "RAND", Shape: ArgShape{Min: 0, Max: 0},
		Eval: func(args []Arg, env *Env) xlcore.CellValue { return xlcore.NumberFromFloat(rand.Float64()) },
	})
	register(&FunctionSpec{
		Name: "RANDBETWEEN", Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			lo, ok := argNumber(args, 0, env)
			if !ok {
				return lo
			}
			hi, ok := argNumber(args, 1, env)
			if !ok {
				return hi
			}
			a, _ := lo.AsNumber()
			b, _ := hi.AsNumber()
			low, high := a.IntPart(), b.IntPart()
			if high < low {
				return xlcore.Error(xlcore.ErrNum)
			}
			return xlcore.NumberFromInt(low + rand.Int63n(high-low+1))
		},
	})
	register(&FunctionSpec{
		Name: "SUMPRODUCT", ShortCircuits: true, AcceptsRanges: true,
		Shape: ArgShape{Min: 1, Max: -1, ExprOrRange: true},
		Eval:  evalSumProduct,
	})
}

func roundFunc(round func(decimal.Decimal, int32) decimal.Decimal) EvalFunc {
	return func(args []Arg, env *Env) xlcore.CellValue {
		v, ok := argNumber(args, 0, env)
		if !ok {
			return v
		}
		p, ok := argNumber(args, 1, env)
		if !ok {
			return p
		}
		d, _ := v.AsNumber()
		places, _ := p.AsNumber()
		return xlcore.Number(round(d, int32(places.IntPart())))
	}
}

// roundAwayFromZero implements ROUNDUP: round to the nearest multiple of
// 10^-places, always moving away from zero rather than to the nearest.
func roundAwayFromZero(d decimal.Decimal, places int32) decimal.Decimal {
	shift := decimal.New(1, places)
	scaled := d.Mul(shift)
	truncated := scaled.Truncate(0)
	if !scaled.Equal(truncated) {
		if scaled.Sign() >= 0 {
			truncated = truncated.Add(decimal.NewFromInt(1))
		} else {
			truncated = truncated.Sub(decimal.NewFromInt(1))
		}
	}
	return truncated.Div(shift)
}

// evalSumProduct computes the shared-bounds multiplication of §4.9's
// SUMPRODUCT: every array argument is clamped to the same rectangle
// (each array's own used-range bound, intersected) before iterating, so
// "A:A * B:B" evaluates over a finite range instead of a million rows.
func evalSumProduct(args []Arg, env *Env) xlcore.CellValue {
	arrays := make([][]xlcore.CellValue, len(args))
	length := -1
	for i, a := range args {
		var cells []xlcore.CellValue
		if a.Kind == ArgRange {
			cells = rangeCells(a.Range, env)
		} else {
			v := Evaluate(a.Expr, env)
			cells = []xlcore.CellValue{v}
		}
		arrays[i] = cells
		if length == -1 || len(cells) < length {
			length = len(cells)
		}
	}
	if length <= 0 {
		return xlcore.NumberFromInt(0)
	}
	sum := decimal.Zero
	for row := 0; row < length; row++ {
		product := decimal.NewFromInt(1)
		for _, arr := range arrays {
			d, ok := toArithDecimal(arr[row])
			if !ok {
				if _, isErr := arr[row].AsError(); isErr {
					return arr[row]
				}
				return xlcore.Error(xlcore.ErrValue)
			}
			product = product.Mul(d)
		}
		sum = sum.Add(product)
	}
	return xlcore.Number(sum)
}
