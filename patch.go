// Copyright 2016 - 2022 The excelize Authors. All rights reserved. Use of
// this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package xlcore

// PatchOp is one atomic edit a Patch can carry.
type PatchOp interface {
	apply(*Sheet) *Sheet
}

// Patch is an ordered sequence of edits against a single sheet. Patches
// form a monoid under Concat: concatenation is associative, the zero
// Patch{} is the identity, and applying a patch replays its ops left-to-right so later
// ops override earlier ones that touch the same cell (§4.5, law 4 of
// §8).
type Patch struct {
	ops []PatchOp
}

// NewPatch builds a Patch from a sequence of ops.
func NewPatch(ops ...PatchOp) Patch { return Patch{ops: append([]PatchOp(nil), ops...)} }

// Concat returns the concatenation of p and q; associative, with
// Patch{} as the two-sided identity.
func (p Patch) Concat(q Patch) Patch {
	return Patch{ops: append(append([]PatchOp(nil), p.ops...), q.ops...)}
}

// Apply replays p's ops against sheet in order, returning the resulting
// Sheet. sheet itself is never mutated.
func (p Patch) Apply(sheet *Sheet) *Sheet {
	for _, op := range p.ops {
		sheet = op.apply(sheet)
	}
	return sheet
}

// PutOp sets a cell's value.
type PutOp struct {
	Ref   ARef
	Value CellValue
}

func (op PutOp) apply(s *Sheet) *Sheet { return s.Put(op.Ref, op.Value) }

// Put builds a PutOp.
func Put(ref ARef, value CellValue) PatchOp { return PutOp{Ref: ref, Value: value} }

// RemoveOp clears a cell.
type RemoveOp struct{ Ref ARef }

func (op RemoveOp) apply(s *Sheet) *Sheet { return s.Remove(op.Ref) }

// Remove builds a RemoveOp.
func Remove(ref ARef) PatchOp { return RemoveOp{Ref: ref} }

// SetStyleOp assigns a style id to a cell without changing its value.
type SetStyleOp struct {
	Ref     ARef
	StyleID int
}

func (op SetStyleOp) apply(s *Sheet) *Sheet {
	cell := s.Get(op.Ref)
	return s.PutStyled(op.Ref, cell.Value, op.StyleID)
}

// SetStyle builds a SetStyleOp.
func SetStyle(ref ARef, styleID int) PatchOp { return SetStyleOp{Ref: ref, StyleID: styleID} }

// MergeOp adds a merge region.
type MergeOp struct{ Range CellRange }

func (op MergeOp) apply(s *Sheet) *Sheet { return s.Merge(op.Range) }

// MergeRange builds a MergeOp.
func MergeRange(rng CellRange) PatchOp { return MergeOp{Range: rng} }

// UnmergeOp removes a merge region.
type UnmergeOp struct{ Range CellRange }

func (op UnmergeOp) apply(s *Sheet) *Sheet { return s.Unmerge(op.Range) }

// UnmergeRange builds an UnmergeOp.
func UnmergeRange(rng CellRange) PatchOp { return UnmergeOp{Range: rng} }
