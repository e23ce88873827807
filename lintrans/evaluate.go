// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package lintrans

import (
	"fmt"
	"math"
)

// Epsilon is the magnitude under which a diagonal coefficient is treated as
// zero when deciding whether a diagonal contributes to the product.
const Epsilon = 1e-10

// Evaluator is the set of ciphertext primitives a backend provides to apply
// transforms. MulConst and MulVector must leave the result at a scale that a
// single Rescale brings back to the input scale, so that products built from
// either can be added together.
type Evaluator[C any] interface {
	CiphertextSlots(ct C) int
	Rotate(ct C, k int) (C, error)
	MulConst(ct C, c float64) (C, error)
	MulVector(ct C, v []float64) (C, error)
	Add(a, b C) (C, error)
	Rescale(ct C) (C, error)
}

type options struct {
	skipNegligible bool
	rescale        bool
}

// Option configures Apply.
type Option func(*options)

// WithoutSparsitySkip multiplies every diagonal, negligible or not.
func WithoutSparsitySkip() Option {
	return func(o *options) { o.skipNegligible = false }
}

// WithoutRescale leaves the result at the product scale.
func WithoutRescale() Option {
	return func(o *options) { o.rescale = false }
}

// Apply evaluates t on ct and returns a new ciphertext holding M v in its
// first Rows() slots. The input must hold v in its first Cols() slots and
// zeros in the remaining slots of the frame. Neither t nor ct is modified,
// and no partial result is returned on error.
func Apply[C any](eval Evaluator[C], t *Transform, ct C, opts ...Option) (C, error) {
	o := options{skipNegligible: true, rescale: true}
	for _, opt := range opts {
		opt(&o)
	}

	var zero C
	slots := eval.CiphertextSlots(ct)
	n := t.Dim()
	if n > slots || (n < slots && 2*n > slots) {
		return zero, fmt.Errorf("%w: %dx%d frame on %d slots", ErrDimensionMismatch, n, n, slots)
	}

	in := ct
	if n < slots {
		shifted, err := eval.Rotate(ct, -n)
		if err != nil {
			return zero, fmt.Errorf("replicate input: %w", err)
		}
		if in, err = eval.Add(ct, shifted); err != nil {
			return zero, fmt.Errorf("replicate input: %w", err)
		}
	}

	var (
		res C
		err error
	)
	if t.IsDiagonal() {
		res, err = applyNaive(eval, t, in, slots, o)
	} else {
		res, err = applyBSGS(eval, t, in, slots, o)
	}
	if err != nil {
		return zero, err
	}
	if o.rescale {
		if res, err = eval.Rescale(res); err != nil {
			return zero, fmt.Errorf("rescale: %w", err)
		}
	}
	return res, nil
}

func applyBSGS[C any](eval Evaluator[C], t *Transform, in C, slots int, o options) (C, error) {
	var zero C
	n := t.Dim()
	sched := NewSchedule(n)

	diags := make([][]float64, n)
	for d := range diags {
		diags[d] = t.Diagonal(d)
	}
	keep := func(d int) bool { return !o.skipNegligible || !negligible(diags[d]) }
	index := sched.Index(keep)

	baby := make(map[int]C, sched.Baby)
	for _, ks := range index {
		for _, k := range ks {
			if _, ok := baby[k]; ok {
				continue
			}
			if k == 0 {
				baby[k] = in
				continue
			}
			rot, err := eval.Rotate(in, k)
			if err != nil {
				return zero, fmt.Errorf("baby step %d: %w", k, err)
			}
			baby[k] = rot
		}
	}

	var (
		res  C
		have bool
	)
	for _, g := range sched.GiantSteps() {
		ks, ok := index[g]
		if !ok {
			continue
		}
		var (
			part    C
			hasPart bool
		)
		for _, k := range ks {
			term, err := mulDiagonal(eval, baby[k], diags[g+k], g, slots)
			if err != nil {
				return zero, fmt.Errorf("diagonal %d: %w", g+k, err)
			}
			if !hasPart {
				part, hasPart = term, true
				continue
			}
			if part, err = eval.Add(part, term); err != nil {
				return zero, fmt.Errorf("diagonal %d: %w", g+k, err)
			}
		}
		if g != 0 {
			var err error
			if part, err = eval.Rotate(part, g); err != nil {
				return zero, fmt.Errorf("giant step %d: %w", g, err)
			}
		}
		if !have {
			res, have = part, true
			continue
		}
		var err error
		if res, err = eval.Add(res, part); err != nil {
			return zero, fmt.Errorf("giant step %d: %w", g, err)
		}
	}

	if !have {
		return eval.MulConst(in, 0)
	}
	return res, nil
}

func applyNaive[C any](eval Evaluator[C], t *Transform, in C, slots int, o options) (C, error) {
	var (
		zero C
		res  C
		have bool
	)
	for _, k := range t.Indexes() {
		d := t.Diagonal(k)
		if o.skipNegligible && negligible(d) {
			continue
		}
		rot := in
		if k != 0 {
			var err error
			if rot, err = eval.Rotate(in, k); err != nil {
				return zero, fmt.Errorf("diagonal %d: %w", k, err)
			}
		}
		term, err := mulDiagonal(eval, rot, d, 0, slots)
		if err != nil {
			return zero, fmt.Errorf("diagonal %d: %w", k, err)
		}
		if !have {
			res, have = term, true
			continue
		}
		if res, err = eval.Add(res, term); err != nil {
			return zero, fmt.Errorf("diagonal %d: %w", k, err)
		}
	}
	if !have {
		return eval.MulConst(in, 0)
	}
	return res, nil
}

// mulDiagonal multiplies ct by diagonal d pre-rotated by -shift and laid out
// over the ciphertext slots. A constant diagonal filling every slot becomes a
// scalar product.
func mulDiagonal[C any](eval Evaluator[C], ct C, d []float64, shift, slots int) (C, error) {
	n := len(d)
	if n == slots {
		if c, ok := constant(d); ok {
			return eval.MulConst(ct, c)
		}
	}
	v := make([]float64, slots)
	for i, x := range d {
		v[(i+shift)%slots] = x
	}
	return eval.MulVector(ct, v)
}

func negligible(d []float64) bool {
	for _, x := range d {
		if math.Abs(x) >= Epsilon {
			return false
		}
	}
	return true
}

func constant(d []float64) (float64, bool) {
	for _, x := range d[1:] {
		if x != d[0] {
			return 0, false
		}
	}
	return d[0], true
}
