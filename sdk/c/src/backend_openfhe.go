// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build openfhe

package main

import (
	"github.com/Anas-Seutia/orion"
	"github.com/Anas-Seutia/orion/backend/openfhe"
)

type (
	plaintext  = *openfhe.Plaintext
	ciphertext = *openfhe.Ciphertext
)

const backendName = orion.BackendOpenFHE

func newBackend(lit orion.ParametersLiteral, ks *orion.KeyStore) (orion.Backend[plaintext, ciphertext], error) {
	b, err := openfhe.New(lit, openfhe.WithKeyStore(ks))
	if err != nil {
		return nil, err
	}
	return b, nil
}
