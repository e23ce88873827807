// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package lintrans

import (
	"math"
	"slices"
)

// Schedule is the baby-step giant-step split of an n x n frame: diagonal
// d = s*Baby + k is served by baby rotation k inside giant step s.
type Schedule struct {
	N     int
	Baby  int
	Giant int
}

// NewSchedule returns the schedule with Baby = ceil(sqrt(n)) and
// Giant = ceil(n / Baby).
func NewSchedule(n int) Schedule {
	if n <= 0 {
		return Schedule{}
	}
	b := int(math.Ceil(math.Sqrt(float64(n))))
	for b*b < n {
		b++
	}
	for b > 1 && (b-1)*(b-1) >= n {
		b--
	}
	return Schedule{N: n, Baby: b, Giant: (n + b - 1) / b}
}

// BabySteps returns 0..Baby-1.
func (s Schedule) BabySteps() []int {
	out := make([]int, s.Baby)
	for k := range out {
		out[k] = k
	}
	return out
}

// GiantSteps returns 0, Baby, ..., (Giant-1)*Baby.
func (s Schedule) GiantSteps() []int {
	out := make([]int, s.Giant)
	for i := range out {
		out[i] = i * s.Baby
	}
	return out
}

// Index groups the diagonals of the frame by giant step, mirroring the index
// map of a BSGS evaluation: index[s*Baby] lists the baby steps k such that
// diagonal s*Baby+k exists. keep filters diagonals; nil keeps all.
func (s Schedule) Index(keep func(d int) bool) map[int][]int {
	index := make(map[int][]int)
	for g := 0; g < s.Giant; g++ {
		for k := 0; k < s.Baby; k++ {
			d := g*s.Baby + k
			if d >= s.N {
				break
			}
			if keep != nil && !keep(d) {
				continue
			}
			index[g*s.Baby] = append(index[g*s.Baby], k)
		}
	}
	return index
}

// Rotations returns the rotation amounts a ciphertext evaluation of t uses
// when the frame fills the ciphertext, ascending. For a dense transform it is
// {1..Baby-1} together with the giant steps {0, Baby, ..., (Giant-1)*Baby};
// for a diagonal transform it is the stored diagonal indexes.
func (t *Transform) Rotations() []int {
	if t.IsDiagonal() {
		return t.Indexes()
	}
	s := NewSchedule(t.Dim())
	set := make(map[int]struct{}, s.Baby+s.Giant)
	for _, k := range s.BabySteps() {
		if k != 0 {
			set[k] = struct{}{}
		}
	}
	for _, g := range s.GiantSteps() {
		set[g] = struct{}{}
	}
	out := make([]int, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	slices.Sort(out)
	return out
}

// RotationsFor returns the rotation amounts needed to evaluate t on a
// ciphertext with the given number of slots. When the frame is smaller than
// the ciphertext the input is replicated once, which adds the rotation -Dim().
func (t *Transform) RotationsFor(slots int) []int {
	out := t.Rotations()
	if n := t.Dim(); n < slots {
		out = append([]int{-n}, out...)
	}
	return out
}

// KeyRotations is RotationsFor without the identity, which needs no key.
func (t *Transform) KeyRotations(slots int) []int {
	return slices.DeleteFunc(t.RotationsFor(slots), func(r int) bool { return r == 0 })
}
