// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

//export NewEncryptor
func NewEncryptor() C.int { return step("NewEncryptor", backend.NewEncryptor) }

//export NewDecryptor
func NewDecryptor() C.int { return step("NewDecryptor", backend.NewDecryptor) }

//export Encrypt
func Encrypt(pt C.int) C.int {
	return handle("Encrypt", func(s *session) (int, error) { return s.Encrypt(int(pt)) })
}

//export Decrypt
func Decrypt(ct C.int) C.int {
	return handle("Decrypt", func(s *session) (int, error) { return s.Decrypt(int(ct)) })
}
