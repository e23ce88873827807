// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"

	"github.com/Anas-Seutia/orion"
)

// width is the number of slots the check reads back.
const width = 4

type report struct {
	Trace  []int
	Values []float64
}

// check encrypts a short vector, runs it through arithmetic, a linear
// transform and a polynomial, and records every handle it was given.
func check[P, C any](s *orion.Session[P, C], cfg *orion.Config) (*report, error) {
	defer s.Close()
	if err := s.Setup(); err != nil {
		return nil, err
	}
	if err := s.GeneratePowerOfTwoRotationKeys(); err != nil {
		return nil, err
	}
	for _, slots := range cfg.Orion.Bootstrap {
		if err := s.NewBootstrapper(cfg.CKKS.LogP, slots); err != nil {
			return nil, fmt.Errorf("bootstrapper %d: %w", slots, err)
		}
	}

	r := &report{}
	var err error
	h := func(v int, e error) int {
		if err == nil && e != nil {
			err = e
		}
		r.Trace = append(r.Trace, v)
		return v
	}

	pt := h(s.CreatePlaintext([]float64{0.5, -0.25, 0.75, 1}))
	x := h(s.Encrypt(pt))
	y := h(s.AddScalarNew(x, 0.5))
	z := h(s.MulRelinCiphertextNew(x, y))
	h(s.Rescale(z))
	h(s.Rotate(z, 1))

	lt := h(s.CreateLinearTransform([]float64{
		1, 0, 0, 0,
		0.5, 0.5, 0, 0,
		0, 0, -1, 0,
		0, 0, 0, 2,
	}, width, width))
	if err == nil {
		err = s.GenerateLinearTransformRotationKeys(lt)
	}
	w := h(s.ApplyLinearTransform(x, lt))

	poly := h(s.GenerateMonomial([]float64{0, 1, 0.5}))
	scale, e := s.CiphertextScale(w)
	if err == nil {
		err = e
	}
	out := h(s.EvaluatePolynomial(w, poly, scale))

	s.DeletePlaintext(pt)
	s.DeleteCiphertext(y)
	h(s.CreatePlaintext([]float64{1}))
	if err != nil {
		return nil, err
	}

	values, err := s.DecryptValues(out)
	if err != nil {
		return nil, err
	}
	rotated, err := s.DecryptValues(z)
	if err != nil {
		return nil, err
	}
	r.Values = append(values[:width:width], rotated[:width]...)
	s.LogStats()
	return r, nil
}
