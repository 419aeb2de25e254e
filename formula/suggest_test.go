// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinIdenticalIsZero(t *testing.T) {
	assert.Equal(t, 0, levenshtein("SUM", "SUM"))
}

func TestLevenshteinBasicDistance(t *testing.T) {
	assert.Equal(t, 1, levenshtein("SUM", "SUMM"))
	assert.Equal(t, 1, levenshtein("SUM", "SUN"))
}

func TestSuggestOrdersByDistanceThenName(t *testing.T) {
	candidates := []string{"SUM", "SUMIF", "SUMIFS", "AVERAGE"}
	got := suggest("SUMM", candidates, 3, 3)
	require := assert.New(t)
	require.NotEmpty(got)
	require.Equal("SUM", got[0])
}

func TestSuggestRespectsMaxDistance(t *testing.T) {
	got := suggest("ZZZZZZZZZZ", []string{"SUM"}, 3, 3)
	assert.Empty(t, got)
}

func TestSuggestRespectsMaxCount(t *testing.T) {
	candidates := []string{"SUM", "SUMA", "SUMB", "SUMC", "SUMD"}
	got := suggest("SUM", candidates, 3, 2)
	assert.Len(t, got, 2)
}

func TestParseUnknownFunctionSuggestionCount(t *testing.T) {
	_, err := Parse("=AVERAG(A1)")
	require := assert.New(t)
	require.Error(err)
	perr, ok := err.(*ParseError)
	require.True(ok)
	require.LessOrEqual(len(perr.Suggestions), 3)
	require.Contains(perr.Suggestions, "AVERAGE")
}
