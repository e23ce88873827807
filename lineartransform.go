// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import (
	"fmt"

	"github.com/Anas-Seutia/orion/lintrans"
)

// CreateLinearTransform registers a dense rows x cols transform given in
// row-major order.
func (s *Session[P, C]) CreateLinearTransform(data []float64, rows, cols int) (int, error) {
	lt, err := lintrans.NewDense(data, rows, cols)
	if err != nil {
		return -1, err
	}
	return s.transforms.Add(lt), nil
}

// CreateLinearTransformFromRows registers a dense transform from a nested
// matrix.
func (s *Session[P, C]) CreateLinearTransformFromRows(m [][]float64) (int, error) {
	lt, err := lintrans.NewFromRows(m)
	if err != nil {
		return -1, err
	}
	return s.transforms.Add(lt), nil
}

// CreateDiagonalLinearTransform registers a transform given by its
// diagonals over the given number of slots.
func (s *Session[P, C]) CreateDiagonalLinearTransform(diags map[int][]float64, slots int) (int, error) {
	lt, err := lintrans.NewDiagonal(diags, slots)
	if err != nil {
		return -1, err
	}
	return s.transforms.Add(lt), nil
}

// LinearTransform returns the transform behind h.
func (s *Session[P, C]) LinearTransform(h int) (*lintrans.Transform, error) {
	lt, err := s.transforms.Retrieve(h)
	if err != nil {
		return nil, fmt.Errorf("linear transform %d: %w", h, err)
	}
	return lt, nil
}

// ApplyLinearTransform evaluates transform lt on ciphertext ct and registers
// the result under a new handle. The input is left untouched.
func (s *Session[P, C]) ApplyLinearTransform(ct, lt int, opts ...lintrans.Option) (int, error) {
	t, err := s.LinearTransform(lt)
	if err != nil {
		return -1, err
	}
	in, err := s.Ciphertext(ct)
	if err != nil {
		return -1, err
	}
	out, err := lintrans.Apply[C](s.backend, t, in, opts...)
	if err != nil {
		return -1, fmt.Errorf("apply linear transform %d: %w", lt, err)
	}
	return s.ciphertexts.Add(out), nil
}

// ApplyLinearTransformPlaintext computes transform lt times v in the clear.
func (s *Session[P, C]) ApplyLinearTransformPlaintext(lt int, v []float64) ([]float64, error) {
	t, err := s.LinearTransform(lt)
	if err != nil {
		return nil, err
	}
	return t.ApplyPlaintext(v)
}

// LinearTransformRotations returns the rotation amounts, identity excluded,
// needed to apply lt to a ciphertext filling the backend slots.
func (s *Session[P, C]) LinearTransformRotations(lt int) ([]int, error) {
	t, err := s.LinearTransform(lt)
	if err != nil {
		return nil, err
	}
	return t.KeyRotations(s.backend.MaxSlots()), nil
}

// GenerateLinearTransformRotationKeys adds every rotation key lt needs.
func (s *Session[P, C]) GenerateLinearTransformRotationKeys(lt int) error {
	rots, err := s.LinearTransformRotations(lt)
	if err != nil {
		return err
	}
	for _, k := range rots {
		if err := s.AddRotationKey(k); err != nil {
			return err
		}
	}
	return nil
}

// DeleteLinearTransform releases h; it reports false if h was not live.
func (s *Session[P, C]) DeleteLinearTransform(h int) bool { return s.transforms.Delete(h) }

// LinearTransformExists reports whether h names a live transform.
func (s *Session[P, C]) LinearTransformExists(h int) bool { return s.transforms.Exists(h) }

// LinearTransformCount returns the number of live transforms.
func (s *Session[P, C]) LinearTransformCount() int { return s.transforms.Len() }

// LiveLinearTransforms returns the live transform handles.
func (s *Session[P, C]) LiveLinearTransforms() []int { return s.transforms.LiveHandles() }

// SaveLinearTransform writes transform h to the key store under name.
func (s *Session[P, C]) SaveLinearTransform(h int, name string) error {
	t, err := s.LinearTransform(h)
	if err != nil {
		return err
	}
	data, err := t.MarshalBinary()
	if err != nil {
		return err
	}
	return s.keys.Put(TransformName(name), data)
}

// LoadLinearTransform reads the transform saved under name and registers it.
func (s *Session[P, C]) LoadLinearTransform(name string) (int, error) {
	data, err := s.keys.Get(TransformName(name))
	if err != nil {
		return -1, err
	}
	t := new(lintrans.Transform)
	if err := t.UnmarshalBinary(data); err != nil {
		return -1, err
	}
	return s.transforms.Add(t), nil
}
