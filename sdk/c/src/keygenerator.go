// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

func step(op string, fn func(b backend) error) C.int {
	return run(op, func(s *session) error { return fn(s.Backend()) })
}

//export NewKeyGenerator
func NewKeyGenerator() C.int { return step("NewKeyGenerator", backend.NewKeyGenerator) }

//export GenerateSecretKey
func GenerateSecretKey() C.int { return step("GenerateSecretKey", backend.GenerateSecretKey) }

//export GeneratePublicKey
func GeneratePublicKey() C.int { return step("GeneratePublicKey", backend.GeneratePublicKey) }

//export GenerateRelinearizationKey
func GenerateRelinearizationKey() C.int {
	return step("GenerateRelinearizationKey", backend.GenerateRelinearizationKey)
}

//export GenerateEvaluationKeys
func GenerateEvaluationKeys() C.int {
	return step("GenerateEvaluationKeys", backend.GenerateEvaluationKeys)
}

func serialize(op string, length *C.ulong, fn func(b backend) ([]byte, error)) *C.char {
	clearLength(length)
	return call(op, (*C.char)(nil), func(s *session) (*C.char, error) {
		data, err := fn(s.Backend())
		if err != nil {
			return nil, err
		}
		return cBytes(data, length), nil
	})
}

func load(op string, data *C.char, length C.ulong, fn func(b backend, data []byte) error) C.int {
	return run(op, func(s *session) error {
		return fn(s.Backend(), C.GoBytes(unsafe.Pointer(data), C.int(length)))
	})
}

//export SerializeSecretKey
func SerializeSecretKey(length *C.ulong) *C.char {
	return serialize("SerializeSecretKey", length, backend.SerializeSecretKey)
}

//export LoadSecretKey
func LoadSecretKey(data *C.char, length C.ulong) C.int {
	return load("LoadSecretKey", data, length, backend.LoadSecretKey)
}

//export SerializePublicKey
func SerializePublicKey(length *C.ulong) *C.char {
	return serialize("SerializePublicKey", length, backend.SerializePublicKey)
}

//export LoadPublicKey
func LoadPublicKey(data *C.char, length C.ulong) C.int {
	return load("LoadPublicKey", data, length, backend.LoadPublicKey)
}

//export SerializeRotationKey
func SerializeRotationKey(k C.int, length *C.ulong) *C.char {
	return serialize("SerializeRotationKey", length, func(b backend) ([]byte, error) {
		return b.SerializeRotationKey(int(k))
	})
}

//export LoadRotationKey
func LoadRotationKey(k C.int, data *C.char, length C.ulong) C.int {
	return load("LoadRotationKey", data, length, func(b backend, d []byte) error {
		return b.LoadRotationKey(int(k), d)
	})
}
