// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import "fmt"

// Encode packs values into a plaintext at the given level and scale.
func (s *Session[P, C]) Encode(values []float64, level int, scale float64) (int, error) {
	if len(values) > s.backend.MaxSlots() {
		return -1, fmt.Errorf("%w: %d values for %d slots", ErrDimensionMismatch, len(values), s.backend.MaxSlots())
	}
	pt, err := s.backend.Encode(values, level, scale)
	if err != nil {
		return -1, err
	}
	return s.plaintexts.Add(pt), nil
}

// CreatePlaintext encodes values at the top level and default scale.
func (s *Session[P, C]) CreatePlaintext(values []float64) (int, error) {
	return s.Encode(values, s.backend.MaxLevel(), s.backend.DefaultScale())
}

// Decode returns the slot values of plaintext h.
func (s *Session[P, C]) Decode(h int) ([]float64, error) {
	pt, err := s.Plaintext(h)
	if err != nil {
		return nil, err
	}
	return s.backend.Decode(pt)
}

// PlaintextValues returns at most limit decoded values of plaintext h. A
// negative limit returns every slot.
func (s *Session[P, C]) PlaintextValues(h, limit int) ([]float64, error) {
	values, err := s.Decode(h)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(values) > limit {
		values = values[:limit]
	}
	return values, nil
}

// Encrypt encrypts plaintext h into a new ciphertext.
func (s *Session[P, C]) Encrypt(h int) (int, error) {
	pt, err := s.Plaintext(h)
	if err != nil {
		return -1, err
	}
	ct, err := s.backend.Encrypt(pt)
	if err != nil {
		return -1, err
	}
	return s.ciphertexts.Add(ct), nil
}

// Decrypt decrypts ciphertext h into a new plaintext.
func (s *Session[P, C]) Decrypt(h int) (int, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return -1, err
	}
	pt, err := s.backend.Decrypt(ct)
	if err != nil {
		return -1, err
	}
	return s.plaintexts.Add(pt), nil
}

// DecryptValues decrypts and decodes ciphertext h without registering the
// intermediate plaintext.
func (s *Session[P, C]) DecryptValues(h int) ([]float64, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return nil, err
	}
	pt, err := s.backend.Decrypt(ct)
	if err != nil {
		return nil, err
	}
	return s.backend.Decode(pt)
}
