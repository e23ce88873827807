// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import "fmt"

// PushPlaintext registers pt and returns its handle.
func (s *Session[P, C]) PushPlaintext(pt P) int { return s.plaintexts.Add(pt) }

// Plaintext returns the plaintext behind h.
func (s *Session[P, C]) Plaintext(h int) (P, error) {
	pt, err := s.plaintexts.Retrieve(h)
	if err != nil {
		return pt, fmt.Errorf("plaintext %d: %w", h, err)
	}
	return pt, nil
}

// DeletePlaintext releases h; it reports false if h was not live.
func (s *Session[P, C]) DeletePlaintext(h int) bool { return s.plaintexts.Delete(h) }

// PlaintextExists reports whether h names a live plaintext.
func (s *Session[P, C]) PlaintextExists(h int) bool { return s.plaintexts.Exists(h) }

// LivePlaintexts returns the live plaintext handles.
func (s *Session[P, C]) LivePlaintexts() []int { return s.plaintexts.LiveHandles() }

// PushCiphertext registers ct and returns its handle.
func (s *Session[P, C]) PushCiphertext(ct C) int { return s.ciphertexts.Add(ct) }

// Ciphertext returns the ciphertext behind h.
func (s *Session[P, C]) Ciphertext(h int) (C, error) {
	ct, err := s.ciphertexts.Retrieve(h)
	if err != nil {
		return ct, fmt.Errorf("ciphertext %d: %w", h, err)
	}
	return ct, nil
}

// DeleteCiphertext releases h; it reports false if h was not live.
func (s *Session[P, C]) DeleteCiphertext(h int) bool { return s.ciphertexts.Delete(h) }

// CiphertextExists reports whether h names a live ciphertext.
func (s *Session[P, C]) CiphertextExists(h int) bool { return s.ciphertexts.Exists(h) }

// LiveCiphertexts returns the live ciphertext handles.
func (s *Session[P, C]) LiveCiphertexts() []int { return s.ciphertexts.LiveHandles() }

// PlaintextScale returns the scale of plaintext h.
func (s *Session[P, C]) PlaintextScale(h int) (float64, error) {
	pt, err := s.Plaintext(h)
	if err != nil {
		return 0, err
	}
	return s.backend.PlaintextScale(pt), nil
}

// SetPlaintextScale overwrites the scale of plaintext h.
func (s *Session[P, C]) SetPlaintextScale(h int, scale float64) error {
	pt, err := s.Plaintext(h)
	if err != nil {
		return err
	}
	s.backend.SetPlaintextScale(pt, scale)
	return nil
}

// CiphertextScale returns the scale of ciphertext h.
func (s *Session[P, C]) CiphertextScale(h int) (float64, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return 0, err
	}
	return s.backend.CiphertextScale(ct), nil
}

// SetCiphertextScale overwrites the scale of ciphertext h.
func (s *Session[P, C]) SetCiphertextScale(h int, scale float64) error {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return err
	}
	s.backend.SetCiphertextScale(ct, scale)
	return nil
}

// PlaintextLevel returns the level of plaintext h.
func (s *Session[P, C]) PlaintextLevel(h int) (int, error) {
	pt, err := s.Plaintext(h)
	if err != nil {
		return -1, err
	}
	return s.backend.PlaintextLevel(pt), nil
}

// CiphertextLevel returns the level of ciphertext h.
func (s *Session[P, C]) CiphertextLevel(h int) (int, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return -1, err
	}
	return s.backend.CiphertextLevel(ct), nil
}

// PlaintextSlots returns the slot count of plaintext h.
func (s *Session[P, C]) PlaintextSlots(h int) (int, error) {
	pt, err := s.Plaintext(h)
	if err != nil {
		return -1, err
	}
	return s.backend.PlaintextSlots(pt), nil
}

// CiphertextSlots returns the slot count of ciphertext h.
func (s *Session[P, C]) CiphertextSlots(h int) (int, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return -1, err
	}
	return s.backend.CiphertextSlots(ct), nil
}

// CiphertextDegree returns the degree of ciphertext h.
func (s *Session[P, C]) CiphertextDegree(h int) (int, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return -1, err
	}
	return s.backend.CiphertextDegree(ct), nil
}
