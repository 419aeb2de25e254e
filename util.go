// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import "strconv"

// trimFloat renders f with no trailing zeros, matching the "invariant
// decimal, no trailing zeros" serialization rule of §6.
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
