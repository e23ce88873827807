// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package plain is a cleartext reference backend. It carries the same
// levels, scales and rotation-key bookkeeping as a CKKS backend but keeps
// slot values in the clear, so call sequences can be checked exactly and
// handle traces compared with the encrypted backends.
package plain

import (
	"crypto/rand"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/Anas-Seutia/orion"
)

// Plaintext is an encoded slot vector.
type Plaintext struct {
	Values []float64
	Level  int
	Scale  float64
}

// Ciphertext is an "encrypted" slot vector.
type Ciphertext struct {
	Values []float64
	Level  int
	Scale  float64
	Degree int
}

// Option configures a Backend.
type Option func(*Backend)

// WithLazyRotationKeys makes Rotate generate missing keys instead of failing.
func WithLazyRotationKeys(lazy bool) Option {
	return func(b *Backend) { b.lazy = lazy }
}

// WithKeyStore sets the store keys are saved to and loaded from.
func WithKeyStore(ks *orion.KeyStore) Option {
	return func(b *Backend) { b.keys = ks }
}

// Backend evaluates CKKS operations on cleartext vectors.
type Backend struct {
	params orion.ParametersLiteral
	slots  int
	moduli []float64

	kgen, encoder, encryptor, decryptor, evaluator, polyEval bool

	secret, public []byte
	relin          bool
	rotKeys        map[int]bool
	lazy           bool
	keys           *orion.KeyStore

	bootstrappers map[int][]int

	rotations int
}

var _ orion.Backend[*Plaintext, *Ciphertext] = (*Backend)(nil)

// New returns a backend for the given parameters.
func New(lit orion.ParametersLiteral, opts ...Option) (*Backend, error) {
	lit = lit.WithDefaults()
	if err := lit.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{
		params:        lit,
		slots:         lit.MaxSlots(),
		rotKeys:       make(map[int]bool),
		bootstrappers: make(map[int][]int),
	}
	for _, q := range lit.LogQ {
		b.moduli = append(b.moduli, math.Exp2(float64(q)))
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func uninitialized(what string) error {
	return fmt.Errorf("%w: %s", orion.ErrUninitialized, what)
}

func (b *Backend) Initialized() bool { return b.slots > 0 }
func (b *Backend) LogN() int { return b.params.LogN }
func (b *Backend) MaxSlots() int { return b.slots }
func (b *Backend) MaxLevel() int { return len(b.params.LogQ) - 1 }
func (b *Backend) DefaultScale() float64 { return math.Exp2(float64(b.params.LogScale)) }

func (b *Backend) ModuliChain() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "logN=%d Q=%v P=%v", b.params.LogN, b.params.LogQ, b.params.LogP)
	return sb.String()
}

// RotationCount returns how many rotations have been evaluated.
func (b *Backend) RotationCount() int { return b.rotations }

func (b *Backend) NewKeyGenerator() error {
	b.kgen = true
	return nil
}

func (b *Backend) GenerateSecretKey() error {
	if !b.kgen {
		return uninitialized("key generator")
	}
	data, found, err := b.keys.Restore(orion.SecretKeyName)
	if err != nil {
		return err
	}
	if !found {
		data = make([]byte, 32)
		if _, err := rand.Read(data); err != nil {
			return orion.WrapBackend("generate secret key", err)
		}
	}
	b.secret = data
	return b.keys.Persist(orion.SecretKeyName, b.SerializeSecretKey)
}

func (b *Backend) GeneratePublicKey() error {
	if b.secret == nil {
		return uninitialized("secret key")
	}
	b.public = slices.Clone(b.secret)
	return b.keys.Persist(orion.PublicKeyName, b.SerializePublicKey)
}

func (b *Backend) GenerateRelinearizationKey() error {
	if b.secret == nil {
		return uninitialized("secret key")
	}
	b.relin = true
	return nil
}

func (b *Backend) GenerateEvaluationKeys() error {
	if !b.relin {
		return uninitialized("relinearization key")
	}
	return nil
}

func (b *Backend) NewEncoder() error {
	b.encoder = true
	return nil
}

func (b *Backend) NewEncryptor() error {
	if b.public == nil {
		return uninitialized("public key")
	}
	b.encryptor = true
	return nil
}

func (b *Backend) NewDecryptor() error {
	if b.secret == nil {
		return uninitialized("secret key")
	}
	b.decryptor = true
	return nil
}

func (b *Backend) NewEvaluator() error {
	if !b.relin {
		return uninitialized("evaluation keys")
	}
	b.evaluator = true
	return nil
}

func (b *Backend) NewPolynomialEvaluator() error {
	if !b.evaluator {
		return uninitialized("evaluator")
	}
	b.polyEval = true
	return nil
}

func (b *Backend) normalize(k int) int {
	k %= b.slots
	if k < 0 {
		k += b.slots
	}
	return k
}

func (b *Backend) GenerateRotationKey(k int) error {
	if b.secret == nil {
		return uninitialized("secret key")
	}
	name := orion.RotationKeyName(b.normalize(k))
	data, found, err := b.keys.Restore(name)
	if err != nil {
		return err
	}
	if found {
		return b.LoadRotationKey(k, data)
	}
	b.rotKeys[b.normalize(k)] = true
	return b.keys.Persist(name, func() ([]byte, error) { return b.SerializeRotationKey(k) })
}

func (b *Backend) HasRotationKey(k int) bool {
	return b.normalize(k) == 0 || b.rotKeys[b.normalize(k)]
}

// DeleteRotationKeys drops every rotation key.
func (b *Backend) DeleteRotationKeys() { clear(b.rotKeys) }

func (b *Backend) SerializeSecretKey() ([]byte, error) {
	if b.secret == nil {
		return nil, uninitialized("secret key")
	}
	return slices.Clone(b.secret), nil
}

func (b *Backend) LoadSecretKey(data []byte) error {
	if len(data) == 0 {
		return orion.WrapBackend("load secret key", fmt.Errorf("empty key"))
	}
	b.secret = slices.Clone(data)
	return nil
}

func (b *Backend) SerializePublicKey() ([]byte, error) {
	if b.public == nil {
		return nil, uninitialized("public key")
	}
	return slices.Clone(b.public), nil
}

func (b *Backend) LoadPublicKey(data []byte) error {
	if len(data) == 0 {
		return orion.WrapBackend("load public key", fmt.Errorf("empty key"))
	}
	b.public = slices.Clone(data)
	return nil
}

func (b *Backend) SerializeRotationKey(k int) ([]byte, error) {
	if !b.HasRotationKey(k) {
		return nil, fmt.Errorf("%w: %d", orion.ErrRotationKeyMissing, k)
	}
	return []byte(fmt.Sprint(b.normalize(k))), nil
}

func (b *Backend) LoadRotationKey(k int, data []byte) error {
	if string(data) != fmt.Sprint(b.normalize(k)) {
		return orion.WrapBackend("load rotation key", fmt.Errorf("key is not for rotation %d", k))
	}
	b.rotKeys[b.normalize(k)] = true
	return nil
}

func (b *Backend) Close() error {
	b.rotKeys = make(map[int]bool)
	b.secret, b.public = nil, nil
	return nil
}
