// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package orion exposes CKKS backends through integer handles.
//
// A Session owns one handle allocator per object kind (plaintexts,
// ciphertexts, linear transforms and polynomials) on top of a Backend. Every
// operation takes and returns handles, so a flat C ABI can drive the session
// without holding Go pointers. Handles are small non-negative integers;
// released handles are reused smallest-first.
//
// Sessions are not safe for concurrent use.
package orion

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/Anas-Seutia/orion/internal/heap"
	"github.com/Anas-Seutia/orion/lintrans"
)

// Session binds a backend to its handle registries.
type Session[P, C any] struct {
	backend Backend[P, C]

	plaintexts  *heap.Allocator[P]
	ciphertexts *heap.Allocator[C]
	transforms  *heap.Allocator[*lintrans.Transform]
	polys       *heap.Allocator[Polynomial]

	keys   *KeyStore
	logger *log.Logger
}

type settings struct {
	logger *log.Logger
	keys   *KeyStore
}

// Option configures a Session.
type Option func(*settings)

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithKeyStore sets the store transforms are saved to and loaded from.
func WithKeyStore(ks *KeyStore) Option {
	return func(s *settings) { s.keys = ks }
}

// NewSession returns a session over b with empty registries.
func NewSession[P, C any](b Backend[P, C], opts ...Option) *Session[P, C] {
	st := settings{}
	for _, opt := range opts {
		opt(&st)
	}
	if st.logger == nil {
		st.logger = log.New(os.Stderr, "orion: ", log.LstdFlags)
	}
	if st.keys == nil {
		st.keys = NewMemoryKeyStore(IONone)
	}
	return &Session[P, C]{
		backend:     b,
		plaintexts:  heap.New[P](),
		ciphertexts: heap.New[C](),
		transforms:  heap.New[*lintrans.Transform](),
		polys:       heap.New[Polynomial](),
		keys:        st.keys,
		logger:      st.logger,
	}
}

// Backend returns the session backend.
func (s *Session[P, C]) Backend() Backend[P, C] { return s.backend }

// Logger returns the session logger.
func (s *Session[P, C]) Logger() *log.Logger { return s.logger }

// Setup runs every setup step of the backend in dependency order.
func (s *Session[P, C]) Setup() error {
	b := s.backend
	steps := []struct {
		name string
		fn   func() error
	}{
		{"key generator", b.NewKeyGenerator},
		{"secret key", b.GenerateSecretKey},
		{"public key", b.GeneratePublicKey},
		{"relinearization key", b.GenerateRelinearizationKey},
		{"evaluation keys", b.GenerateEvaluationKeys},
		{"encoder", b.NewEncoder},
		{"encryptor", b.NewEncryptor},
		{"decryptor", b.NewDecryptor},
		{"evaluator", b.NewEvaluator},
		{"polynomial evaluator", b.NewPolynomialEvaluator},
	}
	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("setup %s: %w", step.name, err)
		}
	}
	return nil
}

// Reset invalidates every handle of every registry and restarts numbering
// at 0. Keys and bootstrappers are kept.
func (s *Session[P, C]) Reset() {
	s.plaintexts.Reset()
	s.ciphertexts.Reset()
	s.transforms.Reset()
	s.polys.Reset()
}

// Close resets the registries and releases the backend and key store.
func (s *Session[P, C]) Close() error {
	s.Reset()
	s.backend.DeleteBootstrappers()
	return errors.Join(s.backend.Close(), s.keys.Close())
}

// Stats reports live and peak object counts per registry.
type Stats struct {
	Plaintexts, Ciphertexts, Transforms, Polynomials int
	PeakPlaintexts, PeakCiphertexts                  int
}

// Total returns the number of live objects across registries.
func (st Stats) Total() int {
	return st.Plaintexts + st.Ciphertexts + st.Transforms + st.Polynomials
}

// Stats returns the current registry counts.
func (s *Session[P, C]) Stats() Stats {
	return Stats{
		Plaintexts:      s.plaintexts.Len(),
		Ciphertexts:     s.ciphertexts.Len(),
		Transforms:      s.transforms.Len(),
		Polynomials:     s.polys.Len(),
		PeakPlaintexts:  s.plaintexts.Peak(),
		PeakCiphertexts: s.ciphertexts.Peak(),
	}
}

// ResetPeaks sets the peak counts to the current live counts.
func (s *Session[P, C]) ResetPeaks() {
	s.plaintexts.ResetPeak()
	s.ciphertexts.ResetPeak()
}

// LogStats writes the registry counts to the session logger.
func (s *Session[P, C]) LogStats() {
	st := s.Stats()
	s.logger.Printf("heaps: %d plaintexts (peak %d), %d ciphertexts (peak %d), %d transforms, %d polynomials",
		st.Plaintexts, st.PeakPlaintexts, st.Ciphertexts, st.PeakCiphertexts, st.Transforms, st.Polynomials)
}

// ModuliChain describes the backend moduli.
func (s *Session[P, C]) ModuliChain() string { return s.backend.ModuliChain() }
