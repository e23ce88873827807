// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

//export NewPolynomialEvaluator
func NewPolynomialEvaluator() C.int {
	return step("NewPolynomialEvaluator", backend.NewPolynomialEvaluator)
}

//export GenerateMonomial
func GenerateMonomial(coeffs *C.double, n C.int) C.int {
	return handle("GenerateMonomial", func(s *session) (int, error) {
		return s.GenerateMonomial(goFloats(coeffs, n))
	})
}

//export GenerateChebyshev
func GenerateChebyshev(coeffs *C.double, n C.int, a, b C.double) C.int {
	return handle("GenerateChebyshev", func(s *session) (int, error) {
		return s.GenerateChebyshev(goFloats(coeffs, n), float64(a), float64(b))
	})
}

//export EvaluatePolynomial
func EvaluatePolynomial(ct, poly C.int, outScale C.double) C.int {
	return handle("EvaluatePolynomial", func(s *session) (int, error) {
		return s.EvaluatePolynomial(int(ct), int(poly), float64(outScale))
	})
}

//export GetPolyDepth
func GetPolyDepth(poly C.int) C.int { return intQuery("GetPolyDepth", poly, (*session).PolynomialDepth) }

//export DeletePoly
func DeletePoly(poly C.int) {
	exists(func(s *session) bool { return s.DeletePolynomial(int(poly)) })
}
