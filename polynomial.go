// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import (
	"fmt"
	"math/bits"
	"slices"
)

// Basis is the polynomial basis of a coefficient vector.
type Basis int

const (
	Monomial Basis = iota
	Chebyshev
)

func (b Basis) String() string {
	switch b {
	case Monomial:
		return "monomial"
	case Chebyshev:
		return "chebyshev"
	default:
		return fmt.Sprintf("Basis(%d)", int(b))
	}
}

// Polynomial is a real polynomial in the monomial basis or in the Chebyshev
// basis over Interval.
type Polynomial struct {
	Basis    Basis
	Coeffs   []float64
	Interval [2]float64
}

// NewMonomial returns sum_i coeffs[i] x^i.
func NewMonomial(coeffs []float64) (Polynomial, error) {
	if len(coeffs) == 0 {
		return Polynomial{}, fmt.Errorf("%w: no coefficients", ErrDimensionMismatch)
	}
	return Polynomial{Basis: Monomial, Coeffs: slices.Clone(coeffs)}, nil
}

// NewChebyshev returns sum_i coeffs[i] T_i(y) with y the affine map of
// [a, b] onto [-1, 1].
func NewChebyshev(coeffs []float64, a, b float64) (Polynomial, error) {
	if len(coeffs) == 0 {
		return Polynomial{}, fmt.Errorf("%w: no coefficients", ErrDimensionMismatch)
	}
	if !(a < b) {
		return Polynomial{}, fmt.Errorf("%w: interval [%g, %g]", ErrInvalidConfig, a, b)
	}
	return Polynomial{Basis: Chebyshev, Coeffs: slices.Clone(coeffs), Interval: [2]float64{a, b}}, nil
}

// Degree returns the polynomial degree.
func (p Polynomial) Degree() int { return len(p.Coeffs) - 1 }

// Depth returns the multiplicative depth of evaluating p, ceil(log2(d+1)).
func (p Polynomial) Depth() int {
	if p.Degree() <= 0 {
		return 0
	}
	return bits.Len(uint(p.Degree()))
}

// Levels returns the number of levels evaluating p consumes: its depth,
// plus one for the change of variable of a Chebyshev series whose interval
// is not [-1, 1].
func (p Polynomial) Levels() int {
	if p.Basis == Chebyshev && p.Interval != [2]float64{-1, 1} {
		return p.Depth() + 1
	}
	return p.Depth()
}

// Evaluate computes p(x) in the clear.
func (p Polynomial) Evaluate(x float64) float64 {
	if p.Basis == Chebyshev {
		a, b := p.Interval[0], p.Interval[1]
		y := (2*x - a - b) / (b - a)
		// Clenshaw recurrence.
		var b1, b2 float64
		for i := len(p.Coeffs) - 1; i >= 1; i-- {
			b1, b2 = 2*y*b1-b2+p.Coeffs[i], b1
		}
		return y*b1 - b2 + p.Coeffs[0]
	}
	var acc float64
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		acc = acc*x + p.Coeffs[i]
	}
	return acc
}
