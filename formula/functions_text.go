// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xlcore/xlcore"
	"github.com/xlcore/xlcore/numfmt"
)

// argText evaluates args[i] and decodes it through StringCodec, the same
// "display form" every text function reads cells through.
func argText(args []Arg, i int, env *Env) (xlcore.CellValue, string, bool) {
	if i >= len(args) || args[i].Kind != ArgExpr {
		return xlcore.Error(xlcore.ErrValue), "", false
	}
	v := Evaluate(args[i].Expr, env)
	if _, isErr := v.AsError(); isErr {
		return v, "", false
	}
	s, err := xlcore.StringCodec{}.Read(v)
	if err != nil || s == nil {
		return xlcore.Error(xlcore.ErrValue), "", false
	}
	return xlcore.CellValue{}, *s, true
}

func init() {
	register(&FunctionSpec{
		Name: "CONCATENATE", ShortCircuits: true,
		Shape: ArgShape{Min: 1, Max: -1, VariadicKind: ArgExpr},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			var b strings.Builder
			for i := range args {
				errv, s, ok := argText(args, i, env)
				if !ok {
					return errv
				}
				b.WriteString(s)
			}
			return xlcore.Text(b.String())
		},
	})
	register(&FunctionSpec{
		Name: "TEXTJOIN", ShortCircuits: true, AcceptsRanges: true,
		Shape: ArgShape{Min: 3, Max: -1, ExprOrRange: true},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			_, delim, ok := argText(args, 0, env)
			if !ok {
				return xlcore.Error(xlcore.ErrValue)
			}
			skipBlank := false
			if v := Evaluate(args[1].Expr, env); v.Kind() != xlcore.KindEmpty {
				skipBlank, _ = asBool(v)
			}
			var parts []string
			for _, a := range args[2:] {
				var cells []xlcore.CellValue
				if a.Kind == ArgRange {
					cells = rangeCells(a.Range, env)
				} else {
					cells = []xlcore.CellValue{Evaluate(a.Expr, env)}
				}
				for _, c := range cells {
					if _, isErr := c.AsError(); isErr {
						return c
					}
					if skipBlank && c.IsEmpty() {
						continue
					}
					s, err := xlcore.StringCodec{}.Read(c)
					if err != nil || s == nil {
						continue
					}
					parts = append(parts, *s)
				}
			}
			return xlcore.Text(strings.Join(parts, delim))
		},
	})
	register(&FunctionSpec{
		Name: "LEN",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			return xlcore.NumberFromInt(int64(len([]rune(s))))
		},
	})
	register(&FunctionSpec{
		Name: "UPPER",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			return xlcore.Text(strings.ToUpper(s))
		},
	})
	register(&FunctionSpec{
		Name: "LOWER",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			return xlcore.Text(strings.ToLower(s))
		},
	})
	register(&FunctionSpec{
		Name: "PROPER",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			return xlcore.Text(strings.Title(strings.ToLower(s)))
		},
	})
	register(&FunctionSpec{
		Name: "TRIM",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			fields := strings.Fields(s)
			return xlcore.Text(strings.Join(fields, " "))
		},
	})
	register(&FunctionSpec{
		Name: "LEFT",
		Shape: ArgShape{Min: 1, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			n := 1
			if len(args) == 2 {
				nv, ok := argNumber(args, 1, env)
				if !ok {
					return nv
				}
				d, _ := nv.AsNumber()
				n = int(d.IntPart())
			}
			r := []rune(s)
			if n < 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			if n > len(r) {
				n = len(r)
			}
			return xlcore.Text(string(r[:n]))
		},
	})
	register(&FunctionSpec{
		Name: "RIGHT",
		Shape: ArgShape{Min: 1, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			n := 1
			if len(args) == 2 {
				nv, ok := argNumber(args, 1, env)
				if !ok {
					return nv
				}
				d, _ := nv.AsNumber()
				n = int(d.IntPart())
			}
			r := []rune(s)
			if n < 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			if n > len(r) {
				n = len(r)
			}
			return xlcore.Text(string(r[len(r)-n:]))
		},
	})
	register(&FunctionSpec{
		Name: "MID",
		Shape: ArgShape{Min: 3, Max: 3, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			startV, ok := argNumber(args, 1, env)
			if !ok {
				return startV
			}
			lenV, ok := argNumber(args, 2, env)
			if !ok {
				return lenV
			}
			sd, _ := startV.AsNumber()
			ld, _ := lenV.AsNumber()
			start := int(sd.IntPart())
			length := int(ld.IntPart())
			if start < 1 || length < 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			r := []rune(s)
			if start > len(r) {
				return xlcore.Text("")
			}
			end := start - 1 + length
			if end > len(r) {
				end = len(r)
			}
			return xlcore.Text(string(r[start-1 : end]))
		},
	})
	register(&FunctionSpec{
		Name: "REPLACE",
		Shape: ArgShape{Min: 4, Max: 4, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			startV, ok := argNumber(args, 1, env)
			if !ok {
				return startV
			}
			lenV, ok := argNumber(args, 2, env)
			if !ok {
				return lenV
			}
			errv2, newText, ok := argText(args, 3, env)
			if !ok {
				return errv2
			}
			sd, _ := startV.AsNumber()
			ld, _ := lenV.AsNumber()
			start := int(sd.IntPart())
			length := int(ld.IntPart())
			if start < 1 || length < 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			r := []rune(s)
			if start > len(r)+1 {
				start = len(r) + 1
			}
			end := start - 1 + length
			if end > len(r) {
				end = len(r)
			}
			result := string(r[:start-1]) + newText + string(r[end:])
			return xlcore.Text(result)
		},
	})
	register(&FunctionSpec{
		Name: "SUBSTITUTE",
		Shape: ArgShape{Min: 3, Max: 4, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			errv2, old, ok := argText(args, 1, env)
			if !ok {
				return errv2
			}
			errv3, newS, ok := argText(args, 2, env)
			if !ok {
				return errv3
			}
			if old == "" {
				return xlcore.Text(s)
			}
			if len(args) == 4 {
				nv, ok := argNumber(args, 3, env)
				if !ok {
					return nv
				}
				d, _ := nv.AsNumber()
				n := int(d.IntPart())
				if n < 1 {
					return xlcore.Error(xlcore.ErrValue)
				}
				count := 0
				idx := 0
				for {
					pos := strings.Index(s[idx:], old)
					if pos < 0 {
						break
					}
					count++
					abs := idx + pos
					if count == n {
						return xlcore.Text(s[:abs] + newS + s[abs+len(old):])
					}
					idx = abs + len(old)
				}
				return xlcore.Text(s)
			}
			return xlcore.Text(strings.ReplaceAll(s, old, newS))
		},
	})
	register(&FunctionSpec{
		Name: "FIND",
		Shape: ArgShape{Min: 2, Max: 3, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr}},
		Eval: findSearch(false),
	})
	register(&FunctionSpec{
		Name: "SEARCH",
		Shape: ArgShape{Min: 2, Max: 3, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr}},
		Eval: findSearch(true),
	})
	register(&FunctionSpec{
		Name: "VALUE",
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, s, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			s = strings.TrimSpace(s)
			if d, err := decimal.NewFromString(s); err == nil {
				return xlcore.Number(d)
			}
			return xlcore.Error(xlcore.ErrValue)
		},
	})
	register(&FunctionSpec{
		Name: "TEXT",
		Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			v := Evaluate(args[0].Expr, env)
			if _, isErr := v.AsError(); isErr {
				return v
			}
			errv, pattern, ok := argText(args, 1, env)
			if !ok {
				return errv
			}
			d, ok := toArithDecimal(v)
			if !ok {
				return xlcore.Error(xlcore.ErrValue)
			}
			f, _ := d.Float64()
			return xlcore.Text(numfmt.Format(f, pattern, false))
		},
	})
}

func findSearch(caseInsensitive bool) EvalFunc {
	return func(args []Arg, env *Env) xlcore.CellValue {
		errv1, needle, ok := argText(args, 0, env)
		if !ok {
			return errv1
		}
		errv2, haystack, ok := argText(args, 1, env)
		if !ok {
			return errv2
		}
		start := 1
		if len(args) == 3 {
			nv, ok := argNumber(args, 2, env)
			if !ok {
				return nv
			}
			d, _ := nv.AsNumber()
			start = int(d.IntPart())
		}
		if start < 1 {
			return xlcore.Error(xlcore.ErrValue)
		}
		hr := []rune(haystack)
		if start > len(hr)+1 {
			return xlcore.Error(xlcore.ErrValue)
		}
		sub := string(hr[start-1:])
		n, h := needle, sub
		if caseInsensitive {
			n, h = toLowerASCII(needle), toLowerASCII(sub)
		}
		idx := strings.Index(h, n)
		if idx < 0 {
			return xlcore.Error(xlcore.ErrValue)
		}
		return xlcore.NumberFromInt(int64(start + len([]rune(h[:idx]))))
	}
}
