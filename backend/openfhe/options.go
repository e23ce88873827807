// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package openfhe implements the CKKS backend on OpenFHE through a C++
// bridge. Build with -tags openfhe and cgo enabled; otherwise New reports
// ErrUnavailable.
//
// The cgo flags assume OpenFHE's default install prefix, /usr/local. For
// another prefix, put its include directories in CGO_CPPFLAGS and its lib
// directory in CGO_LDFLAGS, which cgo searches before the built-in flags:
//
//	prefix=$HOME/openfhe
//	export CGO_CPPFLAGS="-I$prefix/include/openfhe -I$prefix/include/openfhe/core -I$prefix/include/openfhe/pke -I$prefix/include/openfhe/binfhe"
//	export CGO_LDFLAGS="-L$prefix/lib -Wl,-rpath,$prefix/lib"
//	go build -tags openfhe ./...
package openfhe

import "github.com/Anas-Seutia/orion"

// Option configures a Backend.
type Option func(*Backend)

// WithLazyRotationKeys controls whether Rotate generates a missing rotation
// key on first use. It is on by default.
func WithLazyRotationKeys(lazy bool) Option {
	return func(b *Backend) { b.lazy = lazy }
}

// WithKeyStore sets the store keys are saved to and loaded from.
func WithKeyStore(ks *orion.KeyStore) Option {
	return func(b *Backend) { b.keys = ks }
}
