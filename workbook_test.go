// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkbookAddSheet(t *testing.T) {
	wb := NewWorkbook()
	wb, err := wb.AddSheet(NewSheet("Sheet1", 1))
	require.NoError(t, err)

	sh, ok := wb.Sheet("Sheet1")
	require.True(t, ok)
	assert.Equal(t, "Sheet1", sh.Name)
}

func TestWorkbookAddSheetRejectsInvalidName(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.AddSheet(NewSheet("bad:name", 1))
	assert.Error(t, err)
}

func TestWorkbookAddSheetRejectsDuplicate(t *testing.T) {
	wb := NewWorkbook()
	wb, err := wb.AddSheet(NewSheet("Sheet1", 1))
	require.NoError(t, err)
	_, err = wb.AddSheet(NewSheet("Sheet1", 2))
	assert.Error(t, err)
}

func TestWorkbookSheetsPreservesOrder(t *testing.T) {
	wb := NewWorkbook()
	wb, _ = wb.AddSheet(NewSheet("A", 1))
	wb, _ = wb.AddSheet(NewSheet("B", 2))
	wb, _ = wb.AddSheet(NewSheet("C", 3))

	sheets := wb.Sheets()
	require.Len(t, sheets, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{sheets[0].Name, sheets[1].Name, sheets[2].Name})
}

func TestWorkbookReplaceSheetPreservesSheetID(t *testing.T) {
	wb := NewWorkbook()
	wb, _ = wb.AddSheet(NewSheet("Sheet1", 7))

	replacement := NewSheet("Sheet1", 0) // SheetID on the replacement is irrelevant
	wb, err := wb.ReplaceSheet(replacement)
	require.NoError(t, err)

	sh, _ := wb.Sheet("Sheet1")
	assert.Equal(t, 7, sh.SheetID)
}

func TestWorkbookReplaceSheetPreservesPosition(t *testing.T) {
	wb := NewWorkbook()
	wb, _ = wb.AddSheet(NewSheet("A", 1))
	wb, _ = wb.AddSheet(NewSheet("B", 2))
	wb, _ = wb.AddSheet(NewSheet("C", 3))

	wb, err := wb.ReplaceSheet(NewSheet("B", 0))
	require.NoError(t, err)

	sheets := wb.Sheets()
	assert.Equal(t, "B", sheets[1].Name)
}

func TestWorkbookReplaceSheetMissingErrors(t *testing.T) {
	wb := NewWorkbook()
	_, err := wb.ReplaceSheet(NewSheet("Ghost", 1))
	assert.Error(t, err)
}

func TestWorkbookDefinedNameSheetScopeBeatsWorkbookScope(t *testing.T) {
	wb := NewWorkbook()
	wb.DefinedNames = []DefinedName{
		{Name: "Total", Text: "=SUM(A:A)", Sheet: ""},
		{Name: "Total", Text: "=SUM(B:B)", Sheet: "Sheet1"},
	}
	text, ok := wb.DefinedName("Total", "Sheet1")
	require.True(t, ok)
	assert.Equal(t, "=SUM(B:B)", text)

	text, ok = wb.DefinedName("Total", "Sheet2")
	require.True(t, ok)
	assert.Equal(t, "=SUM(A:A)", text)
}

func TestWorkbookDefinedNamePreservesWhitespace(t *testing.T) {
	wb := NewWorkbook()
	wb.DefinedNames = []DefinedName{{Name: "Spaces", Text: `"   "`}}
	text, ok := wb.DefinedName("Spaces", "")
	require.True(t, ok)
	assert.Equal(t, `"   "`, text)
}

func TestWorkbookValidateCatchesUnknownStyleID(t *testing.T) {
	wb := NewWorkbook()
	sh := NewSheet("Sheet1", 1)
	sh = sh.PutStyled(NewARef(0, 0), Text("x"), 99)
	wb, err := wb.AddSheet(sh)
	require.NoError(t, err)

	err = wb.Validate()
	assert.Error(t, err)
}

func TestWorkbookValidatePassesForConsistentWorkbook(t *testing.T) {
	wb := NewWorkbook()
	id := wb.Styles.Register(Style{Font: Font{Bold: true}})
	sh := NewSheet("Sheet1", 1)
	sh = sh.PutStyled(NewARef(0, 0), Text("x"), id)
	wb, err := wb.AddSheet(sh)
	require.NoError(t, err)

	assert.NoError(t, wb.Validate())
}
