// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

// NewEvaluator builds the evaluator and the power-of-two rotation keys the
// bootstrapping and reduction circuits rely on.
//
//export NewEvaluator
func NewEvaluator() C.int {
	return run("NewEvaluator", func(s *session) error {
		if err := s.Backend().NewEvaluator(); err != nil {
			return err
		}
		return s.GeneratePowerOfTwoRotationKeys()
	})
}

func unaryOp(op string, h C.int, f func(s *session, h int) (int, error)) C.int {
	return handle(op, func(s *session) (int, error) { return f(s, int(h)) })
}

func binaryOp(op string, a, b C.int, f func(s *session, a, b int) (int, error)) C.int {
	return handle(op, func(s *session) (int, error) { return f(s, int(a), int(b)) })
}

//export AddCiphertext
func AddCiphertext(a, b C.int) C.int { return binaryOp("AddCiphertext", a, b, (*session).AddCiphertext) }

//export AddCiphertextNew
func AddCiphertextNew(a, b C.int) C.int {
	return binaryOp("AddCiphertextNew", a, b, (*session).AddCiphertextNew)
}

//export SubCiphertext
func SubCiphertext(a, b C.int) C.int { return binaryOp("SubCiphertext", a, b, (*session).SubCiphertext) }

//export SubCiphertextNew
func SubCiphertextNew(a, b C.int) C.int {
	return binaryOp("SubCiphertextNew", a, b, (*session).SubCiphertextNew)
}

//export MulRelinCiphertext
func MulRelinCiphertext(a, b C.int) C.int {
	return binaryOp("MulRelinCiphertext", a, b, (*session).MulRelinCiphertext)
}

//export MulRelinCiphertextNew
func MulRelinCiphertextNew(a, b C.int) C.int {
	return binaryOp("MulRelinCiphertextNew", a, b, (*session).MulRelinCiphertextNew)
}

//export AddPlaintext
func AddPlaintext(ct, pt C.int) C.int { return binaryOp("AddPlaintext", ct, pt, (*session).AddPlaintext) }

//export AddPlaintextNew
func AddPlaintextNew(ct, pt C.int) C.int {
	return binaryOp("AddPlaintextNew", ct, pt, (*session).AddPlaintextNew)
}

//export SubPlaintext
func SubPlaintext(ct, pt C.int) C.int { return binaryOp("SubPlaintext", ct, pt, (*session).SubPlaintext) }

//export SubPlaintextNew
func SubPlaintextNew(ct, pt C.int) C.int {
	return binaryOp("SubPlaintextNew", ct, pt, (*session).SubPlaintextNew)
}

//export MulPlaintext
func MulPlaintext(ct, pt C.int) C.int { return binaryOp("MulPlaintext", ct, pt, (*session).MulPlaintext) }

//export MulPlaintextNew
func MulPlaintextNew(ct, pt C.int) C.int {
	return binaryOp("MulPlaintextNew", ct, pt, (*session).MulPlaintextNew)
}

//export AddScalar
func AddScalar(ct C.int, c C.double) C.int {
	return handle("AddScalar", func(s *session) (int, error) { return s.AddScalar(int(ct), float64(c)) })
}

//export AddScalarNew
func AddScalarNew(ct C.int, c C.double) C.int {
	return handle("AddScalarNew", func(s *session) (int, error) { return s.AddScalarNew(int(ct), float64(c)) })
}

//export SubScalar
func SubScalar(ct C.int, c C.double) C.int {
	return handle("SubScalar", func(s *session) (int, error) { return s.SubScalar(int(ct), float64(c)) })
}

//export SubScalarNew
func SubScalarNew(ct C.int, c C.double) C.int {
	return handle("SubScalarNew", func(s *session) (int, error) { return s.SubScalarNew(int(ct), float64(c)) })
}

//export MulScalarInt
func MulScalarInt(ct, c C.int) C.int {
	return handle("MulScalarInt", func(s *session) (int, error) { return s.MulScalarInt(int(ct), int(c)) })
}

//export MulScalarIntNew
func MulScalarIntNew(ct, c C.int) C.int {
	return handle("MulScalarIntNew", func(s *session) (int, error) { return s.MulScalarIntNew(int(ct), int(c)) })
}

//export MulScalarFloat
func MulScalarFloat(ct C.int, c C.double) C.int {
	return handle("MulScalarFloat", func(s *session) (int, error) { return s.MulScalarFloat(int(ct), float64(c)) })
}

//export MulScalarFloatNew
func MulScalarFloatNew(ct C.int, c C.double) C.int {
	return handle("MulScalarFloatNew", func(s *session) (int, error) {
		return s.MulScalarFloatNew(int(ct), float64(c))
	})
}

//export Negate
func Negate(ct C.int) C.int { return unaryOp("Negate", ct, (*session).Negate) }

//export Rotate
func Rotate(ct, k C.int) C.int {
	return handle("Rotate", func(s *session) (int, error) { return s.Rotate(int(ct), int(k)) })
}

//export RotateNew
func RotateNew(ct, k C.int) C.int {
	return handle("RotateNew", func(s *session) (int, error) { return s.RotateNew(int(ct), int(k)) })
}

//export Rescale
func Rescale(ct C.int) C.int { return unaryOp("Rescale", ct, (*session).Rescale) }

//export RescaleNew
func RescaleNew(ct C.int) C.int { return unaryOp("RescaleNew", ct, (*session).RescaleNew) }

// Names kept for callers of the first version of the library. All of them
// allocate a new ciphertext.

//export Add
func Add(a, b C.int) C.int { return AddCiphertextNew(a, b) }

//export AddPlain
func AddPlain(ct, pt C.int) C.int { return AddPlaintextNew(ct, pt) }

//export Subtract
func Subtract(a, b C.int) C.int { return SubCiphertextNew(a, b) }

//export SubtractPlain
func SubtractPlain(ct, pt C.int) C.int { return SubPlaintextNew(ct, pt) }

//export Multiply
func Multiply(a, b C.int) C.int { return MulRelinCiphertextNew(a, b) }

//export MultiplyPlain
func MultiplyPlain(ct, pt C.int) C.int { return MulPlaintextNew(ct, pt) }

//export MultiplyByScalar
func MultiplyByScalar(ct C.int, c C.double) C.int { return MulScalarFloatNew(ct, c) }
