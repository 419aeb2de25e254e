// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"
	"time"

	"github.com/xlcore/xlcore"
)

// argDate evaluates args[i] and decodes it as a time.Time, accepting a
// bare numeric serial as well as an already-typed date/time value.
func argDate(args []Arg, i int, env *Env) (xlcore.CellValue, time.Time, bool) {
	if i >= len(args) || args[i].Kind != ArgExpr {
		return xlcore.Error(xlcore.ErrValue), time.Time{}, false
	}
	v := Evaluate(args[i].Expr, env)
	if _, isErr := v.AsError(); isErr {
		return v, time.Time{}, false
	}
	if t, ok := v.AsDateTime(); ok {
		return xlcore.CellValue{}, t, true
	}
	if d, ok := toArithDecimal(v); ok {
		return xlcore.CellValue{}, xlcore.SerialToTime(d), true
	}
	return xlcore.Error(xlcore.ErrValue), time.Time{}, false
}

func init() {
	register(&FunctionSpec{
		Name: "TODAY", Shape: ArgShape{Min: 0, Max: 0}, ReturnsDate: true,
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			now := time.Now().UTC()
			d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			return xlcore.Number(xlcore.TimeToSerial(d))
		},
	})
	register(&FunctionSpec{
		Name: "NOW", Shape: ArgShape{Min: 0, Max: 0}, ReturnsTime: true,
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			return xlcore.Number(xlcore.TimeToSerial(time.Now().UTC()))
		},
	})
	register(&FunctionSpec{
		Name: "DATE", ReturnsDate: true,
		Shape:       ArgShape{Min: 3, Max: 3, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr}},
		ArgContexts: []ResultType{NumberType, NumberType, NumberType},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			y, ok := argNumber(args, 0, env)
			if !ok {
				return y
			}
			m, ok := argNumber(args, 1, env)
			if !ok {
				return m
			}
			d, ok := argNumber(args, 2, env)
			if !ok {
				return d
			}
			yd, _ := y.AsNumber()
			md, _ := m.AsNumber()
			dd, _ := d.AsNumber()
			t := time.Date(int(yd.IntPart()), time.Month(1), 1, 0, 0, 0, 0, time.UTC)
			t = t.AddDate(0, int(md.IntPart())-1, int(dd.IntPart())-1)
			return xlcore.Number(xlcore.TimeToSerial(t))
		},
	})
	register(dateField("YEAR", func(t time.Time) int64 { return int64(t.Year()) }))
	register(dateField("MONTH", func(t time.Time) int64 { return int64(t.Month()) }))
	register(dateField("DAY", func(t time.Time) int64 { return int64(t.Day()) }))
	register(dateField("HOUR", func(t time.Time) int64 { return int64(t.Hour()) }))
	register(dateField("MINUTE", func(t time.Time) int64 { return int64(t.Minute()) }))
	register(dateField("SECOND", func(t time.Time) int64 { return int64(t.Second()) }))
	register(&FunctionSpec{
		Name: "WEEKDAY",
		Shape: ArgShape{Min: 1, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, t, ok := argDate(args, 0, env)
			if !ok {
				return errv
			}
			mode := 1
			if len(args) == 2 {
				mv, ok := argNumber(args, 1, env)
				if !ok {
					return mv
				}
				d, _ := mv.AsNumber()
				mode = int(d.IntPart())
			}
			wd := int(t.Weekday()) // Sunday == 0
			switch mode {
			case 2:
				return xlcore.NumberFromInt(int64((wd+6)%7) + 1) // Monday == 1
			case 3:
				return xlcore.NumberFromInt(int64((wd + 6) % 7)) // Monday == 0
			default:
				return xlcore.NumberFromInt(int64(wd) + 1) // Sunday == 1
			}
		},
	})
	register(&FunctionSpec{
		Name: "EDATE", ReturnsDate: true,
		Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, t, ok := argDate(args, 0, env)
			if !ok {
				return errv
			}
			mv, ok := argNumber(args, 1, env)
			if !ok {
				return mv
			}
			d, _ := mv.AsNumber()
			return xlcore.Number(xlcore.TimeToSerial(t.AddDate(0, int(d.IntPart()), 0)))
		},
	})
	register(&FunctionSpec{
		Name: "EOMONTH", ReturnsDate: true,
		Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, t, ok := argDate(args, 0, env)
			if !ok {
				return errv
			}
			mv, ok := argNumber(args, 1, env)
			if !ok {
				return mv
			}
			d, _ := mv.AsNumber()
			firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, int(d.IntPart())+1, 0)
			lastDay := firstOfTarget.AddDate(0, 0, -1)
			return xlcore.Number(xlcore.TimeToSerial(lastDay))
		},
	})
	register(&FunctionSpec{
		Name: "DAYS",
		Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv1, end, ok := argDate(args, 0, env)
			if !ok {
				return errv1
			}
			errv2, start, ok := argDate(args, 1, env)
			if !ok {
				return errv2
			}
			days := xlcore.TimeToSerial(end).Sub(xlcore.TimeToSerial(start))
			return xlcore.Number(days)
		},
	})
	register(&FunctionSpec{
		Name: "NETWORKDAYS",
		Shape: ArgShape{Min: 2, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv1, start, ok := argDate(args, 0, env)
			if !ok {
				return errv1
			}
			errv2, end, ok := argDate(args, 1, env)
			if !ok {
				return errv2
			}
			if end.Before(start) {
				start, end = end, start
			}
			count := int64(0)
			for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
				if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
					count++
				}
			}
			return xlcore.NumberFromInt(count)
		},
	})
	register(&FunctionSpec{
		Name: "DATEDIF",
		Shape: ArgShape{Min: 3, Max: 3, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv1, start, ok := argDate(args, 0, env)
			if !ok {
				return errv1
			}
			errv2, end, ok := argDate(args, 1, env)
			if !ok {
				return errv2
			}
			errv3, unit, ok := argText(args, 2, env)
			if !ok {
				return errv3
			}
			if end.Before(start) {
				return xlcore.Error(xlcore.ErrNum)
			}
			switch strings.ToUpper(unit) {
			case "Y":
				return xlcore.NumberFromInt(int64(yearsBetween(start, end)))
			case "M":
				return xlcore.NumberFromInt(int64(monthsBetween(start, end)))
			case "D":
				return xlcore.NumberFromInt(int64(xlcore.TimeToSerial(end).Sub(xlcore.TimeToSerial(start)).IntPart()))
			case "MD":
				return xlcore.NumberFromInt(int64(end.Day() - start.Day()))
			case "YM":
				return xlcore.NumberFromInt(int64(monthsBetween(start, end) % 12))
			case "YD":
				sameYear := time.Date(end.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
				if sameYear.After(end) {
					sameYear = sameYear.AddDate(-1, 0, 0)
				}
				return xlcore.NumberFromInt(int64(end.Sub(sameYear).Hours() / 24))
			default:
				return xlcore.Error(xlcore.ErrNum)
			}
		},
	})
}

func dateField(name string, field func(time.Time) int64) *FunctionSpec {
	return &FunctionSpec{
		Name:  name,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, t, ok := argDate(args, 0, env)
			if !ok {
				return errv
			}
			return xlcore.NumberFromInt(field(t))
		},
	}
}

func yearsBetween(start, end time.Time) int {
	years := end.Year() - start.Year()
	anniversary := start.AddDate(years, 0, 0)
	if anniversary.After(end) {
		years--
	}
	return years
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}
