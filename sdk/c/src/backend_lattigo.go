// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !openfhe

package main

import (
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/Anas-Seutia/orion"
	"github.com/Anas-Seutia/orion/backend/lattigo"
)

type (
	plaintext  = *rlwe.Plaintext
	ciphertext = *rlwe.Ciphertext
)

const backendName = orion.BackendLattigo

func newBackend(lit orion.ParametersLiteral, ks *orion.KeyStore) (orion.Backend[plaintext, ciphertext], error) {
	b, err := lattigo.New(lit, lattigo.WithKeyStore(ks))
	if err != nil {
		return nil, err
	}
	return b, nil
}
