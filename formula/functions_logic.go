// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import "github.com/xlcore/xlcore"

func init() {
	register(&FunctionSpec{
		Name: "IF", ShortCircuits: true,
		Shape: ArgShape{Min: 2, Max: 3, ExprOrRange: false, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			cond := Evaluate(args[0].Expr, env)
			if _, isErr := cond.AsError(); isErr {
				return cond
			}
			b, ok := asBool(cond)
			if !ok {
				return xlcore.Error(xlcore.ErrValue)
			}
			if b {
				return Evaluate(args[1].Expr, env)
			}
			if len(args) == 3 {
				return Evaluate(args[2].Expr, env)
			}
			return xlcore.Bool(false)
		},
	})
	register(&FunctionSpec{
		Name: "IFS", ShortCircuits: true,
		Shape: ArgShape{Min: 2, Max: -1, VariadicKind: ArgExpr},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			for i := 0; i+1 < len(args); i += 2 {
				cond := Evaluate(args[i].Expr, env)
				if _, isErr := cond.AsError(); isErr {
					return cond
				}
				if b, ok := asBool(cond); ok && b {
					return Evaluate(args[i+1].Expr, env)
				}
			}
			return xlcore.Error(xlcore.ErrNA)
		},
	})
	register(&FunctionSpec{
		Name: "AND", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: -1, VariadicKind: ArgExpr},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			result := true
			for _, a := range args {
				v := Evaluate(a.Expr, env)
				if _, isErr := v.AsError(); isErr {
					return v
				}
				b, ok := asBool(v)
				if !ok {
					return xlcore.Error(xlcore.ErrValue)
				}
				result = result && b
			}
			return xlcore.Bool(result)
		},
	})
	register(&FunctionSpec{
		Name: "OR", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: -1, VariadicKind: ArgExpr},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			result := false
			for _, a := range args {
				v := Evaluate(a.Expr, env)
				if _, isErr := v.AsError(); isErr {
					return v
				}
				b, ok := asBool(v)
				if !ok {
					return xlcore.Error(xlcore.ErrValue)
				}
				result = result || b
			}
			return xlcore.Bool(result)
		},
	})
	register(&FunctionSpec{
		Name: "NOT",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			b, ok := asBool(v)
			if !ok {
				return xlcore.Error(xlcore.ErrValue)
			}
			return xlcore.Bool(!b)
		},
	})
	register(&FunctionSpec{
		Name: "XOR", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: -1, VariadicKind: ArgExpr},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			result := false
			for _, a := range args {
				v := Evaluate(a.Expr, env)
				if _, isErr := v.AsError(); isErr {
					return v
				}
				b, ok := asBool(v)
				if !ok {
					return xlcore.Error(xlcore.ErrValue)
				}
				result = result != b
			}
			return xlcore.Bool(result)
		},
	})
	register(&FunctionSpec{
		Name: "IFERROR", ShortCircuits: true,
		Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			if _, isErr := v.AsError(); isErr {
				return Evaluate(args[1].Expr, env)
			}
			return v
		},
	})
	register(&FunctionSpec{
		Name: "ISERROR", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			_, isErr := v.AsError()
			return xlcore.Bool(isErr)
		},
	})
	register(&FunctionSpec{
		Name: "ISERR", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			code, isErr := v.AsError()
			return xlcore.Bool(isErr && code != xlcore.ErrNA)
		},
	})
	register(&FunctionSpec{
		Name: "ISNUMBER", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			return xlcore.Bool(v.Kind() == xlcore.KindNumber)
		},
	})
	register(&FunctionSpec{
		Name: "ISTEXT", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			return xlcore.Bool(v.Kind() == xlcore.KindText || v.Kind() == xlcore.KindRichText)
		},
	})
	register(&FunctionSpec{
		Name: "ISNONTEXT", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			return xlcore.Bool(v.Kind() != xlcore.KindText && v.Kind() != xlcore.KindRichText)
		},
	})
	register(&FunctionSpec{
		Name: "ISBLANK", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			return xlcore.Bool(v.IsEmpty())
		},
	})
	register(&FunctionSpec{
		Name: "ISLOGICAL", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			return xlcore.Bool(v.Kind() == xlcore.KindBool)
		},
	})
	register(&FunctionSpec{
		Name: "N",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			if d, ok := toArithDecimal(v); ok {
				return xlcore.Number(d)
			}
			return xlcore.NumberFromInt(0)
		},
	})
	register(&FunctionSpec{
		Name: "T",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			if v.Kind() == xlcore.KindText {
				return v
			}
			return xlcore.Text("")
		},
	})
}

func asBool(v xlcore.CellValue) (bool, bool) {
	switch v.Kind() {
	case xlcore.KindBool:
		b, _ := v.AsBool()
		return b, true
	case xlcore.KindNumber:
		d, _ := v.AsNumber()
		return !d.IsZero(), true
	default:
		return false, false
	}
}
