// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package formula

import "math"

// decimalPow computes base^exp in float64; exponentiation results are
// not required to retain decimal's arbitrary precision by the spec (only
// +,-,*,/ are listed as decimal arithmetic), matching Excel's own use of
// binary floating point for POWER/^.
func decimalPow(base, exp float64) float64 {
	return math.Pow(base, exp)
}
