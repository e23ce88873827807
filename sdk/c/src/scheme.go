// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"fmt"

	"github.com/Anas-Seutia/orion"
)

// NewScheme replaces the current session with one built from the given
// parameters. It returns 1 on success and 0 on failure.
//
//export NewScheme
func NewScheme(
	logN C.int,
	logQPtr *C.int, lenQ C.int,
	logPPtr *C.int, lenP C.int,
	logScale C.int,
	h C.int,
	ringType *C.char,
	keysPath *C.char,
	ioMode *C.char,
) (ok C.int) {
	defer func() {
		if r := recover(); r != nil {
			fail("NewScheme", orion.WrapBackend("panic", fmt.Errorf("%v", r)))
			ok = 0
		}
	}()

	lit := orion.ParametersLiteral{
		LogN:     int(logN),
		LogQ:     goInts(logQPtr, lenQ),
		LogP:     goInts(logPPtr, lenP),
		LogScale: int(logScale),
		H:        int(h),
	}
	if ringType != nil {
		lit.RingType = orion.RingType(C.GoString(ringType))
	}
	if keysPath != nil {
		lit.KeysPath = C.GoString(keysPath)
	}
	if ioMode != nil {
		lit.IOMode = orion.IOMode(C.GoString(ioMode))
	}
	lit = lit.WithDefaults()
	if err := lit.Validate(); err != nil {
		fail("NewScheme", err)
		return 0
	}

	ks, err := orion.OpenKeyStore(lit.KeysPath, lit.IOMode)
	if err != nil {
		fail("NewScheme", err)
		return 0
	}
	b, err := newBackend(lit, ks)
	if err != nil {
		ks.Close()
		fail("NewScheme", err)
		return 0
	}
	closeCurrent()
	current = orion.NewSession(b, orion.WithLogger(logger), orion.WithKeyStore(ks))
	logger.Printf("%s scheme: %s", backendName, b.ModuliChain())
	return 1
}

func closeCurrent() {
	if current == nil {
		return
	}
	if err := current.Close(); err != nil {
		logger.Printf("close scheme: %v", err)
	}
	current = nil
}

// DeleteScheme releases the session, its keys and every handle.
//
//export DeleteScheme
func DeleteScheme() { closeCurrent() }

//export IsSchemeInitialized
func IsSchemeInitialized() C.int {
	if current != nil && current.Backend().Initialized() {
		return 1
	}
	return 0
}

//export AddRotationKey
func AddRotationKey(k C.int) C.int {
	return run("AddRotationKey", func(s *session) error { return s.AddRotationKey(int(k)) })
}

//export ResetAllHeaps
func ResetAllHeaps() {
	if current != nil {
		current.Reset()
	}
}

//export GetTotalAllocatedObjects
func GetTotalAllocatedObjects() C.int {
	if current == nil {
		return 0
	}
	return C.int(current.Stats().Total())
}

//export GetMemoryUsage
func GetMemoryUsage(plaintexts, ciphertexts *C.int) {
	var st orion.Stats
	if current != nil {
		st = current.Stats()
	}
	if plaintexts != nil {
		*plaintexts = C.int(st.Plaintexts)
	}
	if ciphertexts != nil {
		*ciphertexts = C.int(st.Ciphertexts)
	}
}

//export PrintHeapStats
func PrintHeapStats() {
	if current != nil {
		current.LogStats()
	}
}

//export PrintPeakMemoryUsage
func PrintPeakMemoryUsage() {
	if current == nil {
		return
	}
	st := current.Stats()
	logger.Printf("peak: %d plaintexts, %d ciphertexts", st.PeakPlaintexts, st.PeakCiphertexts)
}

//export ResetMemoryPeaks
func ResetMemoryPeaks() {
	if current != nil {
		current.ResetPeaks()
	}
}

//export GetModuliChain
func GetModuliChain() *C.char {
	if current == nil {
		return nil
	}
	return C.CString(current.ModuliChain())
}

// DeleteRotationKeys drops every rotation key the backend holds.
//
//export DeleteRotationKeys
func DeleteRotationKeys() C.int {
	return run("DeleteRotationKeys", func(s *session) error {
		d, ok := s.Backend().(interface{ DeleteRotationKeys() })
		if !ok {
			return orion.WrapBackend("delete rotation keys", fmt.Errorf("%s backend keeps its keys", backendName))
		}
		d.DeleteRotationKeys()
		return nil
	})
}
