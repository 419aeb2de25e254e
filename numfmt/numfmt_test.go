// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package numfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAcceptsEmptyAndGeneral(t *testing.T) {
	assert.True(t, Valid(""))
	assert.True(t, Valid("General"))
	assert.True(t, Valid("general"))
}

func TestValidAcceptsKnownBuiltins(t *testing.T) {
	for _, code := range Builtin {
		assert.True(t, Valid(code), "expected %q to be a valid format code", code)
	}
}

func TestValidRejectsGarbage(t *testing.T) {
	assert.False(t, Valid("\x01\x02"))
}

func TestFormatGeneralRendersPlainNumber(t *testing.T) {
	assert.Equal(t, "42", Format(42, "General", false))
	assert.Equal(t, "42", Format(42, "", false))
}

func TestFormatDecimalHonorsPlaceholderCount(t *testing.T) {
	got := Format(3.14159, Builtin["decimal"], false)
	assert.Equal(t, "3.14", got)
}

func TestFormatDecimalZeroPlaces(t *testing.T) {
	got := Format(3.9, "0", false)
	assert.Equal(t, "4", got)
}

func TestFormatDateRendersCalendarDate(t *testing.T) {
	// Serial 45672 is 2025-01-15 under the 1900 epoch.
	got := Format(45672, Builtin["date"], false)
	assert.Equal(t, "1/15/2025", got)
}

func TestFormatDateTimeRendersTimeOfDay(t *testing.T) {
	got := Format(45672.5, Builtin["datetime"], false)
	assert.Equal(t, "1/15/2025 12:00", got)
}

func TestFormatDate1904EpochShift(t *testing.T) {
	got1900 := Format(45672, Builtin["date"], false)
	got1904 := Format(45672-1462, Builtin["date"], true)
	assert.Equal(t, got1900, got1904)
}
