// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xlcore/xlcore"
)

func evalAggregate(a Aggregate, env *Env) xlcore.CellValue {
	switch strings.ToUpper(a.Name) {
	case "SUM", "COUNT", "COUNTA", "COUNTBLANK", "AVERAGE", "MIN", "MAX":
		var cells []xlcore.CellValue
		for _, loc := range a.Locs {
			cells = append(cells, rangeCells(loc, env)...)
		}
		return evalPlainAggregate(a.Name, cells)
	case "SUMIF", "COUNTIF", "AVERAGEIF":
		return evalSingleIfAggregate(a, env)
	case "SUMIFS", "COUNTIFS", "AVERAGEIFS":
		return evalMultiIfAggregate(a, env)
	default:
		return xlcore.Error(xlcore.ErrName)
	}
}

func evalPlainAggregate(name string, cells []xlcore.CellValue) xlcore.CellValue {
	var nums []decimal.Decimal
	countA := 0
	countBlank := 0
	for _, c := range cells {
		if _, isErr := c.AsError(); isErr {
			return c
		}
		if c.IsEmpty() {
			countBlank++
			continue
		}
		countA++
		if d, ok := toArithDecimal(c); ok {
			nums = append(nums, d)
		}
	}
	switch strings.ToUpper(name) {
	case "SUM":
		sum := decimal.Zero
		for _, d := range nums {
			sum = sum.Add(d)
		}
		return xlcore.Number(sum)
	case "COUNT":
		return xlcore.NumberFromInt(int64(len(nums)))
	case "COUNTA":
		return xlcore.NumberFromInt(int64(countA))
	case "COUNTBLANK":
		return xlcore.NumberFromInt(int64(countBlank))
	case "AVERAGE":
		if len(nums) == 0 {
			return xlcore.Error(xlcore.ErrDivZero)
		}
		sum := decimal.Zero
		for _, d := range nums {
			sum = sum.Add(d)
		}
		return xlcore.Number(sum.Div(decimal.NewFromInt(int64(len(nums)))))
	case "MIN":
		if len(nums) == 0 {
			return xlcore.NumberFromInt(0)
		}
		m := nums[0]
		for _, d := range nums[1:] {
			if d.LessThan(m) {
				m = d
			}
		}
		return xlcore.Number(m)
	case "MAX":
		if len(nums) == 0 {
			return xlcore.NumberFromInt(0)
		}
		m := nums[0]
		for _, d := range nums[1:] {
			if d.GreaterThan(m) {
				m = d
			}
		}
		return xlcore.Number(m)
	default:
		return xlcore.Error(xlcore.ErrName)
	}
}

// criterion parses an Excel criteria value (">10", "<=5", "*foo*", 3,
// TRUE, ...) into a predicate over a cell value.
type criterion struct {
	op  string // "", "=", "<>", "<", "<=", ">", ">="
	num decimal.Decimal
	isNum bool
	text string
}

func parseCriterion(v xlcore.CellValue) criterion {
	if d, ok := v.AsNumber(); ok {
		return criterion{op: "=", num: d, isNum: true}
	}
	s, _ := xlcore.StringCodec{}.Read(v)
	text := ""
	if s != nil {
		text = *s
	}
	for _, op := range []string{"<=", ">=", "<>", "<", ">", "="} {
		if strings.HasPrefix(text, op) {
			rest := strings.TrimPrefix(text, op)
			if d, err := decimal.NewFromString(strings.TrimSpace(rest)); err == nil {
				return criterion{op: op, num: d, isNum: true}
			}
			return criterion{op: op, text: rest}
		}
	}
	return criterion{op: "=", text: text}
}

func (c criterion) matches(v xlcore.CellValue) bool {
	if c.isNum {
		d, ok := toArithDecimal(v)
		if !ok {
			return false
		}
		switch c.op {
		case "=":
			return d.Equal(c.num)
		case "<>":
			return !d.Equal(c.num)
		case "<":
			return d.LessThan(c.num)
		case "<=":
			return d.LessThanOrEqual(c.num)
		case ">":
			return d.GreaterThan(c.num)
		case ">=":
			return d.GreaterThanOrEqual(c.num)
		}
		return false
	}
	s, _ := xlcore.StringCodec{}.Read(v)
	text := ""
	if s != nil {
		text = *s
	}
	match := wildcardMatch(strings.ToLower(c.text), strings.ToLower(text))
	if c.op == "<>" {
		return !match
	}
	return match
}

// wildcardMatch implements Excel's "*"/"?" wildcard matching used by
// SUMIF/COUNTIF/AVERAGEIF text criteria.
func wildcardMatch(pattern, s string) bool {
	if !strings.ContainsAny(pattern, "*?") {
		return pattern == s
	}
	return wildcardMatchRec(pattern, s)
}

func wildcardMatchRec(pattern, s string) bool {
	if pattern == "" {
		return s == ""
	}
	switch pattern[0] {
	case '*':
		for i := 0; i <= len(s); i++ {
			if wildcardMatchRec(pattern[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		if s == "" {
			return false
		}
		return wildcardMatchRec(pattern[1:], s[1:])
	default:
		if s == "" || s[0] != pattern[0] {
			return false
		}
		return wildcardMatchRec(pattern[1:], s[1:])
	}
}

func evalSingleIfAggregate(a Aggregate, env *Env) xlcore.CellValue {
	if len(a.Criteria) != 1 {
		return xlcore.Error(xlcore.ErrValue)
	}
	critVal := Evaluate(a.Criteria[0], env)
	if _, isErr := critVal.AsError(); isErr {
		return critVal
	}
	crit := parseCriterion(critVal)
	testCells := rangeCells(a.Loc, env)
	targetLoc := a.Loc
	if a.AvgRange != nil {
		targetLoc = *a.AvgRange
	}
	targetCells := rangeCells(targetLoc, env)
	return reduceConditional(a.Name, testCells, [][]xlcore.CellValue{testCells}, []criterion{crit}, targetCells)
}

func evalMultiIfAggregate(a Aggregate, env *Env) xlcore.CellValue {
	if len(a.CritRanges) != len(a.Criteria) {
		return xlcore.Error(xlcore.ErrValue)
	}
	var critCells [][]xlcore.CellValue
	var crits []criterion
	for i, loc := range a.CritRanges {
		cv := Evaluate(a.Criteria[i], env)
		if _, isErr := cv.AsError(); isErr {
			return cv
		}
		critCells = append(critCells, rangeCells(loc, env))
		crits = append(crits, parseCriterion(cv))
	}
	targetCells := rangeCells(a.Loc, env)
	return reduceConditional(a.Name, targetCells, critCells, crits, targetCells)
}

func reduceConditional(name string, primaryForCount []xlcore.CellValue, critCells [][]xlcore.CellValue, crits []criterion, targetCells []xlcore.CellValue) xlcore.CellValue {
	n := len(primaryForCount)
	matchCount := 0
	sum := decimal.Zero
	for i := 0; i < n; i++ {
		ok := true
		for c, cells := range critCells {
			if i >= len(cells) || !crits[c].matches(cells[i]) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		matchCount++
		if i < len(targetCells) {
			if d, okNum := toArithDecimal(targetCells[i]); okNum {
				sum = sum.Add(d)
			}
		}
	}
	switch strings.ToUpper(name) {
	case "COUNTIF", "COUNTIFS":
		return xlcore.NumberFromInt(int64(matchCount))
	case "SUMIF", "SUMIFS":
		return xlcore.Number(sum)
	case "AVERAGEIF", "AVERAGEIFS":
		if matchCount == 0 {
			return xlcore.Error(xlcore.ErrDivZero)
		}
		return xlcore.Number(sum.Div(decimal.NewFromInt(int64(matchCount))))
	default:
		return xlcore.Error(xlcore.ErrName)
	}
}

