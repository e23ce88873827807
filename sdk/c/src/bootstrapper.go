// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import "C"

// NewBootstrapper builds a bootstrapper for slots. It returns 0 on success
// or the status code of the failure.
//
//export NewBootstrapper
func NewBootstrapper(logPs *C.int, n, slots C.int) C.int {
	return run("NewBootstrapper", func(s *session) error {
		return s.NewBootstrapper(goInts(logPs, n), int(slots))
	})
}

//export Bootstrap
func Bootstrap(ct, slots C.int) C.int {
	return handle("Bootstrap", func(s *session) (int, error) { return s.Bootstrap(int(ct), int(slots)) })
}

//export HasBootstrapper
func HasBootstrapper(slots C.int) C.int {
	return exists(func(s *session) bool { return s.HasBootstrapper(int(slots)) })
}

//export GetBootstrapperCount
func GetBootstrapperCount() C.int {
	if current == nil {
		return 0
	}
	return C.int(current.BootstrapperCount())
}

//export DeleteBootstrappers
func DeleteBootstrappers() {
	if current != nil {
		current.DeleteBootstrappers()
	}
}
