// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !(cgo && openfhe)

package openfhe

import (
	"errors"

	"github.com/Anas-Seutia/orion"
)

// Available reports whether the package was built against OpenFHE.
const Available = false

// ErrUnavailable is returned by New when the package was built without
// OpenFHE.
var ErrUnavailable = errors.New("openfhe: built without the openfhe tag")

// Plaintext is an OpenFHE plaintext.
type Plaintext struct{}

// Ciphertext is an OpenFHE ciphertext.
type Ciphertext struct{}

// Backend is a CKKS backend over OpenFHE.
type Backend struct {
	lazy bool
	keys *orion.KeyStore
}

// New always fails without OpenFHE.
func New(lit orion.ParametersLiteral, opts ...Option) (*Backend, error) {
	if err := lit.WithDefaults().Validate(); err != nil {
		return nil, err
	}
	return nil, orion.WrapBackend("new context", ErrUnavailable)
}
