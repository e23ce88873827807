// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

//export NewEncoder
func NewEncoder() C.int { return step("NewEncoder", backend.NewEncoder) }

//export Encode
func Encode(values *C.double, length, level C.int, scale C.double) C.int {
	return handle("Encode", func(s *session) (int, error) {
		return s.Encode(goFloats(values, length), int(level), float64(scale))
	})
}

// Decode returns every slot of plaintext pt.
//
//export Decode
func Decode(pt C.int, length *C.int) *C.double {
	clearLength(length)
	return call("Decode", (*C.double)(nil), func(s *session) (*C.double, error) {
		v, err := s.Decode(int(pt))
		if err != nil {
			return nil, err
		}
		return cFloats(v, length), nil
	})
}

// CreatePlaintext encodes values at the top level and default scale.
//
//export CreatePlaintext
func CreatePlaintext(values *C.double, length C.int) C.int {
	return handle("CreatePlaintext", func(s *session) (int, error) {
		return s.CreatePlaintext(goFloats(values, length))
	})
}

// GetPlaintextValues decodes pt into out, writing at most limit values, and
// returns how many were written.
//
//export GetPlaintextValues
func GetPlaintextValues(pt C.int, out *C.double, limit C.int) C.int {
	return handle("GetPlaintextValues", func(s *session) (int, error) {
		v, err := s.PlaintextValues(int(pt), int(limit))
		if err != nil {
			return -1, err
		}
		if out != nil {
			dst := unsafeFloats(out, len(v))
			for i, x := range v {
				dst[i] = C.double(x)
			}
		}
		return len(v), nil
	})
}
