// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

import "fmt"

// TypeMismatchError reports that a cell's stored type is incompatible with
// the type a codec was asked to read.
type TypeMismatchError struct {
	Expected string
	Actual   string
	Ref      *ARef // nil until wrapped with a cell reference at the sheet layer
}

func (e *TypeMismatchError) Error() string {
	if e.Ref != nil {
		return fmt.Sprintf("xlcore: %s: expected %s, got %s", e.Ref, e.Expected, e.Actual)
	}
	return fmt.Sprintf("xlcore: expected %s, got %s", e.Expected, e.Actual)
}

// WithRef returns a copy of e carrying the offending cell reference.
func (e *TypeMismatchError) WithRef(ref ARef) *TypeMismatchError {
	c := *e
	c.Ref = &ref
	return &c
}

// CodecParseError reports that a value could not be parsed into the
// target type.
type CodecParseError struct {
	Value  string
	Target string
	Detail string
	Ref    *ARef
}

func (e *CodecParseError) Error() string {
	if e.Ref != nil {
		return fmt.Sprintf("xlcore: %s: cannot parse %q as %s: %s", e.Ref, e.Value, e.Target, e.Detail)
	}
	return fmt.Sprintf("xlcore: cannot parse %q as %s: %s", e.Value, e.Target, e.Detail)
}

// WithRef returns a copy of e carrying the offending cell reference.
func (e *CodecParseError) WithRef(ref ARef) *CodecParseError {
	c := *e
	c.Ref = &ref
	return &c
}
