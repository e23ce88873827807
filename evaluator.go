// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

// Evaluator operations come in pairs: the plain form overwrites its first
// ciphertext handle with the result and returns that handle, the New form
// registers the result under a fresh handle.

func (s *Session[P, C]) store(h int, ct C, inPlace bool) (int, error) {
	if !inPlace {
		return s.ciphertexts.Add(ct), nil
	}
	cell, err := s.ciphertexts.Shared(h)
	if err != nil {
		return -1, err
	}
	*cell = ct
	return h, nil
}

func (s *Session[P, C]) unary(h int, inPlace bool, f func(C) (C, error)) (int, error) {
	ct, err := s.Ciphertext(h)
	if err != nil {
		return -1, err
	}
	out, err := f(ct)
	if err != nil {
		return -1, err
	}
	return s.store(h, out, inPlace)
}

func (s *Session[P, C]) withPlain(ctH, ptH int, inPlace bool, f func(C, P) (C, error)) (int, error) {
	ct, err := s.Ciphertext(ctH)
	if err != nil {
		return -1, err
	}
	pt, err := s.Plaintext(ptH)
	if err != nil {
		return -1, err
	}
	out, err := f(ct, pt)
	if err != nil {
		return -1, err
	}
	return s.store(ctH, out, inPlace)
}

func (s *Session[P, C]) binary(a, b int, inPlace bool, f func(C, C) (C, error)) (int, error) {
	ca, err := s.Ciphertext(a)
	if err != nil {
		return -1, err
	}
	cb, err := s.Ciphertext(b)
	if err != nil {
		return -1, err
	}
	out, err := f(ca, cb)
	if err != nil {
		return -1, err
	}
	return s.store(a, out, inPlace)
}

// Negate returns a new ciphertext holding -h.
func (s *Session[P, C]) Negate(h int) (int, error) {
	return s.unary(h, false, s.backend.Negate)
}

// Rotate rotates h left by k slots in place.
func (s *Session[P, C]) Rotate(h, k int) (int, error) {
	return s.unary(h, true, func(ct C) (C, error) { return s.backend.Rotate(ct, k) })
}

// RotateNew rotates h left by k slots into a new ciphertext.
func (s *Session[P, C]) RotateNew(h, k int) (int, error) {
	return s.unary(h, false, func(ct C) (C, error) { return s.backend.Rotate(ct, k) })
}

// Rescale rescales h in place.
func (s *Session[P, C]) Rescale(h int) (int, error) {
	return s.unary(h, true, s.backend.Rescale)
}

// RescaleNew rescales h into a new ciphertext.
func (s *Session[P, C]) RescaleNew(h int) (int, error) {
	return s.unary(h, false, s.backend.Rescale)
}

func (s *Session[P, C]) addScalar(h int, c float64, inPlace bool) (int, error) {
	return s.unary(h, inPlace, func(ct C) (C, error) { return s.backend.AddScalar(ct, c) })
}

// AddScalar adds c to every slot of h in place.
func (s *Session[P, C]) AddScalar(h int, c float64) (int, error) { return s.addScalar(h, c, true) }

// AddScalarNew adds c to every slot of h.
func (s *Session[P, C]) AddScalarNew(h int, c float64) (int, error) { return s.addScalar(h, c, false) }

func (s *Session[P, C]) subScalar(h int, c float64, inPlace bool) (int, error) {
	return s.unary(h, inPlace, func(ct C) (C, error) { return s.backend.SubScalar(ct, c) })
}

// SubScalar subtracts c from every slot of h in place.
func (s *Session[P, C]) SubScalar(h int, c float64) (int, error) { return s.subScalar(h, c, true) }

// SubScalarNew subtracts c from every slot of h.
func (s *Session[P, C]) SubScalarNew(h int, c float64) (int, error) { return s.subScalar(h, c, false) }

func (s *Session[P, C]) mulScalarInt(h, c int, inPlace bool) (int, error) {
	return s.unary(h, inPlace, func(ct C) (C, error) { return s.backend.MulScalarInt(ct, c) })
}

// MulScalarInt multiplies h by an integer in place; the scale is unchanged.
func (s *Session[P, C]) MulScalarInt(h, c int) (int, error) { return s.mulScalarInt(h, c, true) }

// MulScalarIntNew multiplies h by an integer.
func (s *Session[P, C]) MulScalarIntNew(h, c int) (int, error) { return s.mulScalarInt(h, c, false) }

func (s *Session[P, C]) mulScalarFloat(h int, c float64, inPlace bool) (int, error) {
	return s.unary(h, inPlace, func(ct C) (C, error) { return s.backend.MulScalarFloat(ct, c) })
}

// MulScalarFloat multiplies h by a real constant in place. The result needs
// a rescale.
func (s *Session[P, C]) MulScalarFloat(h int, c float64) (int, error) {
	return s.mulScalarFloat(h, c, true)
}

// MulScalarFloatNew multiplies h by a real constant.
func (s *Session[P, C]) MulScalarFloatNew(h int, c float64) (int, error) {
	return s.mulScalarFloat(h, c, false)
}

// AddPlaintext adds plaintext pt to ciphertext ct in place.
func (s *Session[P, C]) AddPlaintext(ct, pt int) (int, error) {
	return s.withPlain(ct, pt, true, s.backend.AddPlain)
}

// AddPlaintextNew adds plaintext pt to ciphertext ct.
func (s *Session[P, C]) AddPlaintextNew(ct, pt int) (int, error) {
	return s.withPlain(ct, pt, false, s.backend.AddPlain)
}

// SubPlaintext subtracts plaintext pt from ciphertext ct in place.
func (s *Session[P, C]) SubPlaintext(ct, pt int) (int, error) {
	return s.withPlain(ct, pt, true, s.backend.SubPlain)
}

// SubPlaintextNew subtracts plaintext pt from ciphertext ct.
func (s *Session[P, C]) SubPlaintextNew(ct, pt int) (int, error) {
	return s.withPlain(ct, pt, false, s.backend.SubPlain)
}

// MulPlaintext multiplies ciphertext ct by plaintext pt in place.
func (s *Session[P, C]) MulPlaintext(ct, pt int) (int, error) {
	return s.withPlain(ct, pt, true, s.backend.MulPlain)
}

// MulPlaintextNew multiplies ciphertext ct by plaintext pt.
func (s *Session[P, C]) MulPlaintextNew(ct, pt int) (int, error) {
	return s.withPlain(ct, pt, false, s.backend.MulPlain)
}

// AddCiphertext adds b to a in place.
func (s *Session[P, C]) AddCiphertext(a, b int) (int, error) {
	return s.binary(a, b, true, s.backend.Add)
}

// AddCiphertextNew adds a and b.
func (s *Session[P, C]) AddCiphertextNew(a, b int) (int, error) {
	return s.binary(a, b, false, s.backend.Add)
}

// SubCiphertext subtracts b from a in place.
func (s *Session[P, C]) SubCiphertext(a, b int) (int, error) {
	return s.binary(a, b, true, s.backend.Sub)
}

// SubCiphertextNew subtracts b from a.
func (s *Session[P, C]) SubCiphertextNew(a, b int) (int, error) {
	return s.binary(a, b, false, s.backend.Sub)
}

// MulRelinCiphertext multiplies a by b and relinearizes, in place.
func (s *Session[P, C]) MulRelinCiphertext(a, b int) (int, error) {
	return s.binary(a, b, true, s.backend.MulRelin)
}

// MulRelinCiphertextNew multiplies a by b and relinearizes.
func (s *Session[P, C]) MulRelinCiphertextNew(a, b int) (int, error) {
	return s.binary(a, b, false, s.backend.MulRelin)
}
