// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"math"

	"github.com/xlcore/xlcore"
)

// cashFlows flattens an argument list of scalars/ranges into a single
// ordered float64 slice, as NPV/IRR's variadic value lists require.
func cashFlows(args []Arg, env *Env) ([]float64, xlcore.CellValue, bool) {
	var out []float64
	for _, a := range args {
		var cells []xlcore.CellValue
		if a.Kind == ArgRange {
			cells = rangeCells(a.Range, env)
		} else {
			cells = []xlcore.CellValue{Evaluate(a.Expr, env)}
		}
		for _, c := range cells {
			if _, isErr := c.AsError(); isErr {
				return nil, c, false
			}
			d, ok := toArithDecimal(c)
			if !ok {
				continue
			}
			f, _ := d.Float64()
			out = append(out, f)
		}
	}
	return out, xlcore.CellValue{}, true
}

func npv(rate float64, flows []float64) float64 {
	sum := 0.0
	for i, f := range flows {
		sum += f / math.Pow(1+rate, float64(i+1))
	}
	return sum
}

// solveNewtonBisect finds a root of f starting from guess, falling back
// to bisection over [lo, hi] when Newton's method diverges or the
// derivative vanishes — the same two-stage strategy spreadsheet engines
// use for IRR/RATE, since a pure Newton iteration can easily wander off
// to a pole of the cash-flow function.
func solveNewtonBisect(f func(float64) float64, guess float64, maxIter int) (float64, bool) {
	x := guess
	const h = 1e-6
	for i := 0; i < maxIter; i++ {
		fx := f(x)
		if math.Abs(fx) < 1e-9 {
			return x, true
		}
		deriv := (f(x+h) - f(x-h)) / (2 * h)
		if deriv == 0 {
			break
		}
		next := x - fx/deriv
		if math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		x = next
	}
	lo, hi := -0.999999, 10.0
	flo, fhi := f(lo), f(hi)
	if math.IsNaN(flo) || math.IsNaN(fhi) || flo*fhi > 0 {
		return 0, false
	}
	for i := 0; i < maxIter; i++ {
		mid := (lo + hi) / 2
		fm := f(mid)
		if math.Abs(fm) < 1e-9 {
			return mid, true
		}
		if (flo < 0) == (fm < 0) {
			lo, flo = mid, fm
		} else {
			hi, fhi = mid, fm
		}
	}
	return (lo + hi) / 2, true
}

func init() {
	register(&FunctionSpec{
		Name: "NPV", ShortCircuits: true, AcceptsRanges: true,
		Shape: ArgShape{Min: 2, Max: -1, ExprOrRange: true},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rateV, ok := argNumber(args, 0, env)
			if !ok {
				return rateV
			}
			rd, _ := rateV.AsNumber()
			rate, _ := rd.Float64()
			flows, errv, ok := cashFlows(args[1:], env)
			if !ok {
				return errv
			}
			return xlcore.NumberFromFloat(npv(rate, flows))
		},
	})
	register(&FunctionSpec{
		Name: "IRR", ShortCircuits: true, AcceptsRanges: true,
		Shape: ArgShape{Min: 1, Max: 2, ExprOrRange: true},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			flows, errv, ok := cashFlows(args[:1], env)
			if !ok {
				return errv
			}
			guess := env.IterGuess
			if len(args) == 2 {
				gv, ok := argNumber(args, 1, env)
				if !ok {
					return gv
				}
				gd, _ := gv.AsNumber()
				guess, _ = gd.Float64()
			}
			f := func(r float64) float64 { return npv(r, flows) }
			root, ok := solveNewtonBisect(f, guess, env.MaxIterations)
			if !ok {
				return xlcore.Error(xlcore.ErrNum)
			}
			return xlcore.NumberFromFloat(root)
		},
	})
	register(&FunctionSpec{
		Name: "XNPV", ShortCircuits: true, AcceptsRanges: true,
		Shape: ArgShape{Min: 3, Max: 3, Kinds: []ArgKind{ArgExpr, ArgRange, ArgRange}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rateV, ok := argNumber(args, 0, env)
			if !ok {
				return rateV
			}
			rd, _ := rateV.AsNumber()
			rate, _ := rd.Float64()
			values := rangeCells(args[1].Range, env)
			dates := rangeCells(args[2].Range, env)
			if len(values) != len(dates) || len(values) == 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			sum, ok := xnpv(rate, values, dates)
			if !ok {
				return xlcore.Error(xlcore.ErrValue)
			}
			return xlcore.NumberFromFloat(sum)
		},
	})
	register(&FunctionSpec{
		Name: "XIRR", ShortCircuits: true, AcceptsRanges: true,
		Shape: ArgShape{Min: 2, Max: 3, Kinds: []ArgKind{ArgRange, ArgRange, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			values := rangeCells(args[0].Range, env)
			dates := rangeCells(args[1].Range, env)
			if len(values) != len(dates) || len(values) == 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			guess := env.IterGuess
			if len(args) == 3 {
				gv, ok := argNumber(args, 2, env)
				if !ok {
					return gv
				}
				gd, _ := gv.AsNumber()
				guess, _ = gd.Float64()
			}
			f := func(r float64) float64 {
				sum, _ := xnpv(r, values, dates)
				return sum
			}
			root, ok := solveNewtonBisect(f, guess, env.MaxIterations)
			if !ok {
				return xlcore.Error(xlcore.ErrNum)
			}
			return xlcore.NumberFromFloat(root)
		},
	})
	register(&FunctionSpec{
		Name: "PMT",
		Shape: ArgShape{Min: 3, Max: 5, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rate, nper, pv, fv, due, errv, ok := annuityArgs(args, env)
			if !ok {
				return errv
			}
			if rate == 0 {
				return xlcore.NumberFromFloat(-(pv + fv) / nper)
			}
			factor := math.Pow(1+rate, nper)
			pmt := rate * (pv*factor + fv) / ((1 + rate*due) * (1 - factor))
			return xlcore.NumberFromFloat(pmt)
		},
	})
	register(&FunctionSpec{
		Name: "FV",
		Shape: ArgShape{Min: 3, Max: 5, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rate, nper, pmt, pv, due, errv, ok := annuityArgsFV(args, env)
			if !ok {
				return errv
			}
			if rate == 0 {
				return xlcore.NumberFromFloat(-(pv + pmt*nper))
			}
			factor := math.Pow(1+rate, nper)
			fv := -(pv*factor + pmt*(1+rate*due)*(factor-1)/rate)
			return xlcore.NumberFromFloat(fv)
		},
	})
	register(&FunctionSpec{
		Name: "PV",
		Shape: ArgShape{Min: 3, Max: 5, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rate, nper, pmt, fv, due, errv, ok := annuityArgsFV(args, env)
			if !ok {
				return errv
			}
			if rate == 0 {
				return xlcore.NumberFromFloat(-(fv + pmt*nper))
			}
			factor := math.Pow(1+rate, nper)
			pv := -(fv + pmt*(1+rate*due)*(factor-1)/rate) / factor
			return xlcore.NumberFromFloat(pv)
		},
	})
	register(&FunctionSpec{
		Name: "NPER",
		Shape: ArgShape{Min: 3, Max: 5, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rateV, ok := argNumber(args, 0, env)
			if !ok {
				return rateV
			}
			pmtV, ok := argNumber(args, 1, env)
			if !ok {
				return pmtV
			}
			pvV, ok := argNumber(args, 2, env)
			if !ok {
				return pvV
			}
			fv, due, errv, ok := fvDueArgs(args, 3, env)
			if !ok {
				return errv
			}
			rd, _ := rateV.AsNumber()
			pmd, _ := pmtV.AsNumber()
			pvd, _ := pvV.AsNumber()
			rate, _ := rd.Float64()
			pmt, _ := pmd.Float64()
			pv, _ := pvd.Float64()
			if rate == 0 {
				if pmt == 0 {
					return xlcore.Error(xlcore.ErrDivZero)
				}
				return xlcore.NumberFromFloat(-(pv + fv) / pmt)
			}
			num := pmt*(1+rate*due) - fv*rate
			den := pv*rate + pmt*(1+rate*due)
			if num <= 0 || den <= 0 {
				return xlcore.Error(xlcore.ErrNum)
			}
			return xlcore.NumberFromFloat(math.Log(num/den) / math.Log(1+rate))
		},
	})
	register(&FunctionSpec{
		Name: "RATE",
		Shape: ArgShape{Min: 3, Max: 6, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			nperV, ok := argNumber(args, 0, env)
			if !ok {
				return nperV
			}
			pmtV, ok := argNumber(args, 1, env)
			if !ok {
				return pmtV
			}
			pvV, ok := argNumber(args, 2, env)
			if !ok {
				return pvV
			}
			fv, due, errv, ok := fvDueArgs(args, 3, env)
			if !ok {
				return errv
			}
			guess := env.IterGuess
			if len(args) == 6 {
				gv, ok := argNumber(args, 5, env)
				if !ok {
					return gv
				}
				gd, _ := gv.AsNumber()
				guess, _ = gd.Float64()
			}
			nd, _ := nperV.AsNumber()
			pmd, _ := pmtV.AsNumber()
			pvd, _ := pvV.AsNumber()
			nper, _ := nd.Float64()
			pmt, _ := pmd.Float64()
			pv, _ := pvd.Float64()
			f := func(r float64) float64 {
				if r == 0 {
					return pv + pmt*nper + fv
				}
				factor := math.Pow(1+r, nper)
				return pv*factor + pmt*(1+r*due)*(factor-1)/r + fv
			}
			root, ok := solveNewtonBisect(f, guess, env.MaxIterations)
			if !ok {
				return xlcore.Error(xlcore.ErrNum)
			}
			return xlcore.NumberFromFloat(root)
		},
	})
}

func xnpv(rate float64, values, dates []xlcore.CellValue) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	d0, ok := toArithDecimal(dates[0])
	if !ok {
		return 0, false
	}
	t0, _ := d0.Float64()
	sum := 0.0
	for i := range values {
		v, ok := toArithDecimal(values[i])
		if !ok {
			return 0, false
		}
		dt, ok := toArithDecimal(dates[i])
		if !ok {
			return 0, false
		}
		f, _ := v.Float64()
		tf, _ := dt.Float64()
		sum += f / math.Pow(1+rate, (tf-t0)/365)
	}
	return sum, true
}

// annuityArgs reads (rate, nper, pv, [fv], [type]) and returns floats
// for PMT's signature.
func annuityArgs(args []Arg, env *Env) (rate, nper, pv, fv, due float64, errv xlcore.CellValue, ok bool) {
	rateV, ok := argNumber(args, 0, env)
	if !ok {
		return 0, 0, 0, 0, 0, rateV, false
	}
	nperV, ok := argNumber(args, 1, env)
	if !ok {
		return 0, 0, 0, 0, 0, nperV, false
	}
	pvV, ok := argNumber(args, 2, env)
	if !ok {
		return 0, 0, 0, 0, 0, pvV, false
	}
	fv, due, errv, ok = fvDueArgs(args, 3, env)
	if !ok {
		return 0, 0, 0, 0, 0, errv, false
	}
	rd, _ := rateV.AsNumber()
	ndd, _ := nperV.AsNumber()
	pvd, _ := pvV.AsNumber()
	rate, _ = rd.Float64()
	nper, _ = ndd.Float64()
	pv, _ = pvd.Float64()
	return rate, nper, pv, fv, due, xlcore.CellValue{}, true
}

// annuityArgsFV reads (rate, nper, pmt, [x], [type]) for FV/PV, whose
// third positional argument is the payment rather than present value.
func annuityArgsFV(args []Arg, env *Env) (rate, nper, pmt, x, due float64, errv xlcore.CellValue, ok bool) {
	rateV, ok := argNumber(args, 0, env)
	if !ok {
		return 0, 0, 0, 0, 0, rateV, false
	}
	nperV, ok := argNumber(args, 1, env)
	if !ok {
		return 0, 0, 0, 0, 0, nperV, false
	}
	pmtV, ok := argNumber(args, 2, env)
	if !ok {
		return 0, 0, 0, 0, 0, pmtV, false
	}
	x, due, errv, ok = fvDueArgs(args, 3, env)
	if !ok {
		return 0, 0, 0, 0, 0, errv, false
	}
	rd, _ := rateV.AsNumber()
	ndd, _ := nperV.AsNumber()
	pmd, _ := pmtV.AsNumber()
	rate, _ = rd.Float64()
	nper, _ = ndd.Float64()
	pmt, _ = pmd.Float64()
	return rate, nper, pmt, x, due, xlcore.CellValue{}, true
}

// fvDueArgs reads the optional trailing (fv, type) pair shared by
// PMT/FV/PV/NPER/RATE, starting at slot idx.
func fvDueArgs(args []Arg, idx int, env *Env) (fv, due float64, errv xlcore.CellValue, ok bool) {
	if len(args) > idx {
		fvV, ok := argNumber(args, idx, env)
		if !ok {
			return 0, 0, fvV, false
		}
		fd, _ := fvV.AsNumber()
		fv, _ = fd.Float64()
	}
	if len(args) > idx+1 {
		dv, ok := argNumber(args, idx+1, env)
		if !ok {
			return 0, 0, dv, false
		}
		dd, _ := dv.AsNumber()
		due, _ = dd.Float64()
	}
	return fv, due, xlcore.CellValue{}, true
}
