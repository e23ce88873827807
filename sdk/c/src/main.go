// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command src builds the orion C library:
//
//	go build -buildmode=c-shared -o liborion.so ./sdk/c/src
//	go build -buildmode=c-shared -tags openfhe -o liborion.so ./sdk/c/src
//
// Every export drives one process-wide session through integer handles.
// Fallible calls return a sentinel (-1 for handles and int queries, 0.0 for
// float queries, NULL for arrays) and record the reason for GetLastError.
// Arrays returned to C are malloc'ed and must be released with FreeCArray
// or FreeCIntArray.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"log"
	"os"
	"unsafe"

	"github.com/Anas-Seutia/orion"
)

type (
	session = orion.Session[plaintext, ciphertext]
	backend = orion.Backend[plaintext, ciphertext]
)

// Go names of the C scalar types, for Go callers of the exports.
type (
	cint    = C.int
	cdouble = C.double
	culong  = C.ulong
)

var (
	current *session
	logger  = log.New(os.Stderr, "orion: ", log.LstdFlags)

	lastErr error
)

func main() {}

// fail records err as the last error and logs it once.
func fail(op string, err error) {
	lastErr = fmt.Errorf("%s: %w", op, err)
	logger.Print(lastErr)
}

// call runs fn against the current session and converts errors and panics
// into the sentinel.
func call[T any](op string, sentinel T, fn func(s *session) (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			fail(op, orion.WrapBackend("panic", fmt.Errorf("%v", r)))
			out = sentinel
		}
	}()
	if current == nil {
		fail(op, fmt.Errorf("%w: no scheme", orion.ErrUninitialized))
		return sentinel
	}
	v, err := fn(current)
	if err != nil {
		fail(op, err)
		return sentinel
	}
	return v
}

// run is call for exports without a result; it returns 0 or the code of
// the failure.
func run(op string, fn func(s *session) error) C.int {
	ok := call(op, false, func(s *session) (bool, error) { return true, fn(s) })
	if !ok {
		return C.int(orion.Code(lastErr))
	}
	return 0
}

// handle is call for exports returning a handle.
func handle(op string, fn func(s *session) (int, error)) C.int {
	return call(op, C.int(-1), func(s *session) (C.int, error) {
		h, err := fn(s)
		return C.int(h), err
	})
}

func errDiagonalLayout(diags, slots, values int) error {
	return fmt.Errorf("%w: %d diagonals of %d slots in %d values", orion.ErrDimensionMismatch, diags, slots, values)
}

// clearLength zeroes an array length out-parameter, so a failed export
// reports an empty array.
func clearLength[T cint | culong](p *T) {
	if p != nil {
		*p = 0
	}
}

func goInts(p *C.int, n C.int) []int {
	if p == nil || n <= 0 {
		return nil
	}
	out := make([]int, int(n))
	for i, v := range unsafe.Slice(p, int(n)) {
		out[i] = int(v)
	}
	return out
}

func goFloats(p *C.double, n C.int) []float64 {
	if p == nil || n <= 0 {
		return nil
	}
	out := make([]float64, int(n))
	for i, v := range unsafe.Slice(p, int(n)) {
		out[i] = float64(v)
	}
	return out
}

func unsafeFloats(p *C.double, n int) []cdouble {
	if p == nil || n == 0 {
		return nil
	}
	return unsafe.Slice(p, n)
}

func cFloats(v []float64, length *C.int) *C.double {
	if length != nil {
		*length = C.int(len(v))
	}
	if len(v) == 0 {
		return nil
	}
	p := (*C.double)(C.malloc(C.size_t(len(v)) * C.size_t(unsafe.Sizeof(C.double(0)))))
	out := unsafe.Slice(p, len(v))
	for i, x := range v {
		out[i] = C.double(x)
	}
	return p
}

func cInts(v []int, length *C.int) *C.int {
	if length != nil {
		*length = C.int(len(v))
	}
	if len(v) == 0 {
		return nil
	}
	p := (*C.int)(C.malloc(C.size_t(len(v)) * C.size_t(unsafe.Sizeof(C.int(0)))))
	out := unsafe.Slice(p, len(v))
	for i, x := range v {
		out[i] = C.int(x)
	}
	return p
}

func cBytes(data []byte, length *C.ulong) *C.char {
	if length != nil {
		*length = C.ulong(len(data))
	}
	if len(data) == 0 {
		return nil
	}
	return (*C.char)(C.CBytes(data))
}

//export GetLastError
func GetLastError() *C.char {
	if lastErr == nil {
		return nil
	}
	return C.CString(lastErr.Error())
}

//export GetLastErrorCode
func GetLastErrorCode() C.int { return C.int(orion.Code(lastErr)) }

//export FreeCArray
func FreeCArray(p unsafe.Pointer) { C.free(p) }

//export FreeCIntArray
func FreeCIntArray(p unsafe.Pointer) { C.free(p) }
