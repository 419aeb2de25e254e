// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import "github.com/xlcore/xlcore"

// Shift rewrites every relative cell/range reference in expr by
// (deltaCol, deltaRow), the way a dragged formula or an inserted/deleted
// row or column invalidates refs (§4.6, §4.10). Absolute axes (the "$"
// anchors) are left untouched. A Call whose FunctionSpec supplies its own
// ShiftFunc (none currently do — every registered function uses the
// uniform translation) delegates to it per-argument instead.
func Shift(expr Expr, deltaCol, deltaRow int) Expr {
	switch n := expr.(type) {
	case Lit:
		return n
	case PolyRef:
		n.Ref = shiftRef(n.Ref, deltaCol, deltaRow)
		return n
	case PolyRange:
		n.Range = shiftRange(n.Range, deltaCol, deltaRow)
		return n
	case Ref:
		n.Ref = shiftRef(n.Ref, deltaCol, deltaRow)
		return n
	case BinOp:
		n.Left = Shift(n.Left, deltaCol, deltaRow)
		n.Right = Shift(n.Right, deltaCol, deltaRow)
		return n
	case UnaryMinus:
		n.X = Shift(n.X, deltaCol, deltaRow)
		return n
	case ToInt:
		n.X = Shift(n.X, deltaCol, deltaRow)
		return n
	case DateToSerial:
		n.X = Shift(n.X, deltaCol, deltaRow)
		return n
	case DateTimeToSerial:
		n.X = Shift(n.X, deltaCol, deltaRow)
		return n
	case Aggregate:
		n.Loc = shiftLoc(n.Loc, deltaCol, deltaRow)
		for i := range n.Locs {
			n.Locs[i] = shiftLoc(n.Locs[i], deltaCol, deltaRow)
		}
		for i := range n.CritRanges {
			n.CritRanges[i] = shiftLoc(n.CritRanges[i], deltaCol, deltaRow)
		}
		for i := range n.Criteria {
			n.Criteria[i] = Shift(n.Criteria[i], deltaCol, deltaRow)
		}
		if n.AvgRange != nil {
			loc := shiftLoc(*n.AvgRange, deltaCol, deltaRow)
			n.AvgRange = &loc
		}
		return n
	case Call:
		return shiftCall(n, deltaCol, deltaRow)
	default:
		return expr
	}
}

func shiftCall(c Call, deltaCol, deltaRow int) Call {
	args := make([]Arg, len(c.Args))
	for i, a := range c.Args {
		if c.Spec != nil && c.Spec.Shift != nil {
			args[i] = c.Spec.Shift(a, deltaCol, deltaRow)
			continue
		}
		if a.Kind == ArgRange {
			args[i] = Arg{Kind: ArgRange, Range: shiftLoc(a.Range, deltaCol, deltaRow)}
		} else {
			args[i] = Arg{Kind: ArgExpr, Expr: Shift(a.Expr, deltaCol, deltaRow)}
		}
	}
	c.Args = args
	return c
}

func shiftLoc(loc RangeLocation, deltaCol, deltaRow int) RangeLocation {
	loc.Range = shiftRange(loc.Range, deltaCol, deltaRow)
	return loc
}

func shiftRange(r xlcore.CellRange, deltaCol, deltaRow int) xlcore.CellRange {
	r.Start = shiftRef(r.Start, deltaCol, deltaRow)
	r.End = shiftRef(r.End, deltaCol, deltaRow)
	return r
}

func shiftRef(ref xlcore.ARef, deltaCol, deltaRow int) xlcore.ARef {
	if !ref.ColAbs {
		ref.Col += deltaCol
	}
	if !ref.RowAbs {
		ref.Row += deltaRow
	}
	if ref.Col < 0 {
		ref.Col = 0
	}
	if ref.Row < 0 {
		ref.Row = 0
	}
	if ref.Col > xlcore.MaxCol {
		ref.Col = xlcore.MaxCol
	}
	if ref.Row > xlcore.MaxRow {
		ref.Row = xlcore.MaxRow
	}
	return ref
}
