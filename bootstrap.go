// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

// NewBootstrapper builds a bootstrapper for the given slot count, using
// logPs as the auxiliary moduli of its evaluation keys.
func (s *Session[P, C]) NewBootstrapper(logPs []int, slots int) error {
	return s.backend.NewBootstrapper(logPs, slots)
}

// Bootstrap refreshes ciphertext h with the bootstrapper built for slots and
// registers the result.
func (s *Session[P, C]) Bootstrap(h, slots int) (int, error) {
	return s.unary(h, false, func(ct C) (C, error) { return s.backend.Bootstrap(ct, slots) })
}

// HasBootstrapper reports whether a bootstrapper exists for slots.
func (s *Session[P, C]) HasBootstrapper(slots int) bool { return s.backend.HasBootstrapper(slots) }

// BootstrapperCount returns the number of bootstrappers.
func (s *Session[P, C]) BootstrapperCount() int { return s.backend.BootstrapperCount() }

// DeleteBootstrappers drops every bootstrapper.
func (s *Session[P, C]) DeleteBootstrappers() { s.backend.DeleteBootstrappers() }
