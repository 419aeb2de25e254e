// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"

	"github.com/xlcore/xlcore"
)

func init() {
	register(&FunctionSpec{
		Name: "VLOOKUP", AcceptsRanges: true,
		Shape: ArgShape{Min: 3, Max: 4, Kinds: []ArgKind{ArgExpr, ArgRange, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			target := Evaluate(args[0].Expr, env)
			if _, isErr := target.AsError(); isErr {
				return target
			}
			colV, ok := argNumber(args, 2, env)
			if !ok {
				return colV
			}
			colD, _ := colV.AsNumber()
			colIdx := int(colD.IntPart())
			approx := true
			if len(args) == 4 {
				bv := Evaluate(args[3].Expr, env)
				approx, _ = asBool(bv)
			}
			refs := rangeRefs(args[1].Range, env)
			width := args[1].Range.Range.Width()
			if width <= 0 || colIdx < 1 || colIdx > width {
				return xlcore.Error(xlcore.ErrRef)
			}
			height := args[1].Range.Range.Height()
			sheetName := env.Sheet
			if args[1].Range.CrossSheet {
				sheetName = args[1].Range.Sheet
			}
			return lookupTable(env, sheetName, refs, width, height, colIdx-1, target, approx, true)
		},
	})
	register(&FunctionSpec{
		Name: "HLOOKUP", AcceptsRanges: true,
		Shape: ArgShape{Min: 3, Max: 4, Kinds: []ArgKind{ArgExpr, ArgRange, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			target := Evaluate(args[0].Expr, env)
			if _, isErr := target.AsError(); isErr {
				return target
			}
			rowV, ok := argNumber(args, 2, env)
			if !ok {
				return rowV
			}
			rowD, _ := rowV.AsNumber()
			rowIdx := int(rowD.IntPart())
			approx := true
			if len(args) == 4 {
				bv := Evaluate(args[3].Expr, env)
				approx, _ = asBool(bv)
			}
			refs := rangeRefs(args[1].Range, env)
			width := args[1].Range.Range.Width()
			height := args[1].Range.Range.Height()
			if height <= 0 || rowIdx < 1 || rowIdx > height {
				return xlcore.Error(xlcore.ErrRef)
			}
			sheetName := env.Sheet
			if args[1].Range.CrossSheet {
				sheetName = args[1].Range.Sheet
			}
			return lookupTable(env, sheetName, refs, width, height, rowIdx-1, target, approx, false)
		},
	})
	register(&FunctionSpec{
		Name: "MATCH", AcceptsRanges: true,
		Shape: ArgShape{Min: 2, Max: 3, Kinds: []ArgKind{ArgExpr, ArgRange, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			target := Evaluate(args[0].Expr, env)
			if _, isErr := target.AsError(); isErr {
				return target
			}
			matchType := 1
			if len(args) == 3 {
				mv, ok := argNumber(args, 2, env)
				if !ok {
					return mv
				}
				d, _ := mv.AsNumber()
				matchType = int(d.IntPart())
			}
			cells := rangeCells(args[1].Range, env)
			switch matchType {
			case 0:
				for i, c := range cells {
					if cmp, ok := compareValues(c, target); ok && cmp == 0 {
						return xlcore.NumberFromInt(int64(i + 1))
					}
				}
				return xlcore.Error(xlcore.ErrNA)
			case 1:
				best := -1
				for i, c := range cells {
					cmp, ok := compareValues(c, target)
					if !ok || cmp > 0 {
						break
					}
					best = i
				}
				if best < 0 {
					return xlcore.Error(xlcore.ErrNA)
				}
				return xlcore.NumberFromInt(int64(best + 1))
			default: // -1: descending
				best := -1
				for i, c := range cells {
					cmp, ok := compareValues(c, target)
					if !ok || cmp < 0 {
						break
					}
					best = i
				}
				if best < 0 {
					return xlcore.Error(xlcore.ErrNA)
				}
				return xlcore.NumberFromInt(int64(best + 1))
			}
		},
	})
	register(&FunctionSpec{
		Name: "INDEX", AcceptsRanges: true,
		Shape: ArgShape{Min: 2, Max: 3, Kinds: []ArgKind{ArgRange, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rowV, ok := argNumber(args, 1, env)
			if !ok {
				return rowV
			}
			rowD, _ := rowV.AsNumber()
			row := int(rowD.IntPart())
			col := 1
			if len(args) == 3 {
				colV, ok := argNumber(args, 2, env)
				if !ok {
					return colV
				}
				colD, _ := colV.AsNumber()
				col = int(colD.IntPart())
			}
			rng := args[0].Range
			width := rng.Range.Width()
			height := rng.Range.Height()
			if row < 0 || col < 0 || row > height || col > width {
				return xlcore.Error(xlcore.ErrRef)
			}
			sheetName := env.Sheet
			if rng.CrossSheet {
				sheetName = rng.Sheet
			}
			if row == 0 && col == 0 {
				return xlcore.Error(xlcore.ErrValue)
			}
			targetRow := rng.Range.Start.Row
			targetCol := rng.Range.Start.Col
			if row > 0 {
				targetRow += row - 1
			}
			if col > 0 {
				targetCol += col - 1
			}
			return env.CellValue(sheetName, xlcore.ARef{Col: targetCol, Row: targetRow})
		},
	})
	register(&FunctionSpec{
		Name: "CHOOSE", ShortCircuits: true,
		Shape: ArgShape{Min: 2, Max: -1, VariadicKind: ArgExpr},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			idxV := Evaluate(args[0].Expr, env)
			if _, isErr := idxV.AsError(); isErr {
				return idxV
			}
			d, ok := toArithDecimal(idxV)
			if !ok {
				return xlcore.Error(xlcore.ErrValue)
			}
			idx := int(d.IntPart())
			if idx < 1 || idx >= len(args) {
				return xlcore.Error(xlcore.ErrValue)
			}
			return Evaluate(args[idx].Expr, env)
		},
	})
	register(&FunctionSpec{
		Name: "ROW",
		Shape: ArgShape{Min: 0, Max: 1, ExprOrRange: true},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			if len(args) == 0 {
				return xlcore.NumberFromInt(int64(env.Current.Row + 1))
			}
			if args[0].Kind == ArgRange {
				return xlcore.NumberFromInt(int64(args[0].Range.Range.Start.Row + 1))
			}
			return xlcore.Error(xlcore.ErrValue)
		},
	})
	register(&FunctionSpec{
		Name: "COLUMN",
		Shape: ArgShape{Min: 0, Max: 1, ExprOrRange: true},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			if len(args) == 0 {
				return xlcore.NumberFromInt(int64(env.Current.Col + 1))
			}
			if args[0].Kind == ArgRange {
				return xlcore.NumberFromInt(int64(args[0].Range.Range.Start.Col + 1))
			}
			return xlcore.Error(xlcore.ErrValue)
		},
	})
	register(&FunctionSpec{
		Name: "ROWS", AcceptsRanges: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgRange}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			return xlcore.NumberFromInt(int64(args[0].Range.Range.Height()))
		},
	})
	register(&FunctionSpec{
		Name: "COLUMNS", AcceptsRanges: true,
		Shape: ArgShape{Min: 1, Max: 1, Kinds: []ArgKind{ArgRange}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			return xlcore.NumberFromInt(int64(args[0].Range.Range.Width()))
		},
	})
	register(&FunctionSpec{
		Name: "ADDRESS",
		Shape: ArgShape{Min: 2, Max: 5, Kinds: []ArgKind{ArgExpr, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rowV, ok := argNumber(args, 0, env)
			if !ok {
				return rowV
			}
			colV, ok := argNumber(args, 1, env)
			if !ok {
				return colV
			}
			rd, _ := rowV.AsNumber()
			cd, _ := colV.AsNumber()
			row, col := int(rd.IntPart()), int(cd.IntPart())
			if row < 1 || col < 1 {
				return xlcore.Error(xlcore.ErrValue)
			}
			absNum := 1
			if len(args) >= 3 {
				av, ok := argNumber(args, 2, env)
				if !ok {
					return av
				}
				ad, _ := av.AsNumber()
				absNum = int(ad.IntPart())
			}
			colAbs := absNum == 1 || absNum == 3
			rowAbs := absNum == 1 || absNum == 2
			ref := xlcore.ARef{Col: col - 1, Row: row - 1, ColAbs: colAbs, RowAbs: rowAbs}.String()
			if len(args) >= 5 {
				_, sheet, ok := argText(args, 4, env)
				if !ok {
					return xlcore.Error(xlcore.ErrValue)
				}
				ref = xlcore.QuoteSheetName(sheet) + "!" + ref
			}
			return xlcore.Text(ref)
		},
	})
	register(&FunctionSpec{
		Name: "INDIRECT",
		Shape: ArgShape{Min: 1, Max: 2, Kinds: []ArgKind{ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			errv, refText, ok := argText(args, 0, env)
			if !ok {
				return errv
			}
			sheetName := env.Sheet
			cellPart := refText
			if i := strings.LastIndex(refText, "!"); i >= 0 {
				sheetName = strings.Trim(refText[:i], "'")
				cellPart = refText[i+1:]
			}
			ref, err := xlcore.ParseARef(cellPart)
			if err != nil {
				return xlcore.Error(xlcore.ErrRef)
			}
			return env.CellValue(sheetName, ref)
		},
	})
	register(&FunctionSpec{
		Name: "OFFSET", AcceptsRanges: true,
		Shape: ArgShape{Min: 3, Max: 5, Kinds: []ArgKind{ArgRange, ArgExpr, ArgExpr, ArgExpr, ArgExpr}},
		Eval: func(args []Arg, env *Env) xlcore.CellValue {
			rowsV, ok := argNumber(args, 1, env)
			if !ok {
				return rowsV
			}
			colsV, ok := argNumber(args, 2, env)
			if !ok {
				return colsV
			}
			rd, _ := rowsV.AsNumber()
			cd, _ := colsV.AsNumber()
			base := args[0].Range
			sheetName := env.Sheet
			if base.CrossSheet {
				sheetName = base.Sheet
			}
			newCol := base.Range.Start.Col + int(cd.IntPart())
			newRow := base.Range.Start.Row + int(rd.IntPart())
			if newCol < 0 || newRow < 0 {
				return xlcore.Error(xlcore.ErrRef)
			}
			return env.CellValue(sheetName, xlcore.ARef{Col: newCol, Row: newRow})
		},
	})
}

// lookupTable scans a VLOOKUP/HLOOKUP table's key vector for target,
// approximate (sorted, <=) or exact, then reads the matching row/column
// cell from the return vector at returnIndex.
func lookupTable(env *Env, sheetName string, refs []xlcore.ARef, width, height, returnIndex int, target xlcore.CellValue, approx, vertical bool) xlcore.CellValue {
	major := height
	if !vertical {
		major = width
	}
	bestIdx := -1
	for i := 0; i < major; i++ {
		var keyRef xlcore.ARef
		if vertical {
			keyRef = refs[i*width]
		} else {
			keyRef = refs[i]
		}
		key := env.CellValue(sheetName, keyRef)
		cmp, ok := compareValues(key, target)
		if !ok {
			continue
		}
		if cmp == 0 {
			bestIdx = i
			break
		}
		if approx && cmp < 0 {
			bestIdx = i
		} else if approx && cmp > 0 {
			break
		}
	}
	if bestIdx < 0 {
		return xlcore.Error(xlcore.ErrNA)
	}
	var resultRef xlcore.ARef
	if vertical {
		resultRef = refs[bestIdx*width+returnIndex]
	} else {
		resultRef = refs[returnIndex*width+bestIdx]
	}
	return env.CellValue(sheetName, resultRef)
}
