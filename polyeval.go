// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import "fmt"

// AddPolynomial registers p and returns its handle.
func (s *Session[P, C]) AddPolynomial(p Polynomial) int { return s.polys.Add(p) }

// GenerateMonomial registers sum_i coeffs[i] x^i.
func (s *Session[P, C]) GenerateMonomial(coeffs []float64) (int, error) {
	p, err := NewMonomial(coeffs)
	if err != nil {
		return -1, err
	}
	return s.polys.Add(p), nil
}

// GenerateChebyshev registers a Chebyshev series over [a, b].
func (s *Session[P, C]) GenerateChebyshev(coeffs []float64, a, b float64) (int, error) {
	p, err := NewChebyshev(coeffs, a, b)
	if err != nil {
		return -1, err
	}
	return s.polys.Add(p), nil
}

// Polynomial returns the polynomial behind h.
func (s *Session[P, C]) Polynomial(h int) (Polynomial, error) {
	p, err := s.polys.Retrieve(h)
	if err != nil {
		return p, fmt.Errorf("polynomial %d: %w", h, err)
	}
	return p, nil
}

// PolynomialDepth returns the multiplicative depth of polynomial h.
func (s *Session[P, C]) PolynomialDepth(h int) (int, error) {
	p, err := s.Polynomial(h)
	if err != nil {
		return -1, err
	}
	return p.Depth(), nil
}

// DeletePolynomial releases h; it reports false if h was not live.
func (s *Session[P, C]) DeletePolynomial(h int) bool { return s.polys.Delete(h) }

// EvaluatePolynomial evaluates polynomial poly on ciphertext ct and
// registers the result, which is left at outScale.
func (s *Session[P, C]) EvaluatePolynomial(ct, poly int, outScale float64) (int, error) {
	p, err := s.Polynomial(poly)
	if err != nil {
		return -1, err
	}
	return s.unary(ct, false, func(in C) (C, error) {
		return s.backend.EvaluatePolynomial(in, p, outScale)
	})
}
