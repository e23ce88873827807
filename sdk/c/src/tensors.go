// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

func exists(fn func(s *session) bool) C.int {
	if current != nil && fn(current) {
		return 1
	}
	return 0
}

//export DeletePlaintext
func DeletePlaintext(h C.int) { exists(func(s *session) bool { return s.DeletePlaintext(int(h)) }) }

//export DeleteCiphertext
func DeleteCiphertext(h C.int) { exists(func(s *session) bool { return s.DeleteCiphertext(int(h)) }) }

//export PlaintextExists
func PlaintextExists(h C.int) C.int {
	return exists(func(s *session) bool { return s.PlaintextExists(int(h)) })
}

//export CiphertextExists
func CiphertextExists(h C.int) C.int {
	return exists(func(s *session) bool { return s.CiphertextExists(int(h)) })
}

func floatQuery(op string, h C.int, fn func(s *session, h int) (float64, error)) C.double {
	return call(op, C.double(0), func(s *session) (C.double, error) {
		v, err := fn(s, int(h))
		return C.double(v), err
	})
}

func intQuery(op string, h C.int, fn func(s *session, h int) (int, error)) C.int {
	return handle(op, func(s *session) (int, error) { return fn(s, int(h)) })
}

//export GetPlaintextScale
func GetPlaintextScale(h C.int) C.double {
	return floatQuery("GetPlaintextScale", h, (*session).PlaintextScale)
}

//export GetCiphertextScale
func GetCiphertextScale(h C.int) C.double {
	return floatQuery("GetCiphertextScale", h, (*session).CiphertextScale)
}

//export SetPlaintextScale
func SetPlaintextScale(h C.int, scale C.double) C.int {
	return run("SetPlaintextScale", func(s *session) error { return s.SetPlaintextScale(int(h), float64(scale)) })
}

//export SetCiphertextScale
func SetCiphertextScale(h C.int, scale C.double) C.int {
	return run("SetCiphertextScale", func(s *session) error { return s.SetCiphertextScale(int(h), float64(scale)) })
}

//export GetPlaintextLevel
func GetPlaintextLevel(h C.int) C.int { return intQuery("GetPlaintextLevel", h, (*session).PlaintextLevel) }

//export GetCiphertextLevel
func GetCiphertextLevel(h C.int) C.int {
	return intQuery("GetCiphertextLevel", h, (*session).CiphertextLevel)
}

//export GetPlaintextSlots
func GetPlaintextSlots(h C.int) C.int { return intQuery("GetPlaintextSlots", h, (*session).PlaintextSlots) }

//export GetCiphertextSlots
func GetCiphertextSlots(h C.int) C.int {
	return intQuery("GetCiphertextSlots", h, (*session).CiphertextSlots)
}

//export GetCiphertextDegree
func GetCiphertextDegree(h C.int) C.int {
	return intQuery("GetCiphertextDegree", h, (*session).CiphertextDegree)
}

func liveHandles(op string, count *C.int, fn func(s *session) []int) *C.int {
	clearLength(count)
	return call(op, (*C.int)(nil), func(s *session) (*C.int, error) { return cInts(fn(s), count), nil })
}

//export GetLivePlaintexts
func GetLivePlaintexts(count *C.int) *C.int {
	return liveHandles("GetLivePlaintexts", count, (*session).LivePlaintexts)
}

//export GetLiveCiphertexts
func GetLiveCiphertexts(count *C.int) *C.int {
	return liveHandles("GetLiveCiphertexts", count, (*session).LiveCiphertexts)
}
