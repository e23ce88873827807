// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lattigo implements the CKKS backend on luxfi/lattice.
//
// Setup is staged the same way as the C ABI drives it: key generator, keys,
// encoder, encryptor, decryptor, evaluator and polynomial evaluator. Each
// stage checks its prerequisites and reports orion.ErrUninitialized
// instead of dereferencing a missing object.
package lattigo

import (
	"fmt"
	"maps"
	"math"
	"math/bits"
	"slices"
	"strings"

	"github.com/luxfi/lattice/v7/circuits/ckks/bootstrapping"
	"github.com/luxfi/lattice/v7/circuits/ckks/polynomial"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/ring"
	"github.com/luxfi/lattice/v7/schemes/ckks"

	"github.com/Anas-Seutia/orion"
)

// Option configures a Backend.
type Option func(*Backend)

// WithLazyRotationKeys controls whether Rotate generates a missing rotation
// key on first use. It is on by default; with it off, a rotation without
// its key fails with orion.ErrRotationKeyMissing.
func WithLazyRotationKeys(lazy bool) Option {
	return func(b *Backend) { b.lazy = lazy }
}

// WithKeyStore sets the store keys are saved to and loaded from according
// to its IO mode.
func WithKeyStore(ks *orion.KeyStore) Option {
	return func(b *Backend) { b.keys = ks }
}

// Backend is a CKKS backend over luxfi/lattice.
type Backend struct {
	params ckks.Parameters
	lit    orion.ParametersLiteral

	kgen      *rlwe.KeyGenerator
	sk        *rlwe.SecretKey
	pk        *rlwe.PublicKey
	rlk       *rlwe.RelinearizationKey
	evk       *rlwe.MemEvaluationKeySet
	encoder   *ckks.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
	eval      *ckks.Evaluator
	polyEval  *polynomial.Evaluator

	// rotation keys by Galois element
	rotKeys map[uint64]*rlwe.GaloisKey
	lazy    bool
	keys    *orion.KeyStore

	bootstrappers map[int]*bootstrapping.Evaluator
}

var _ orion.Backend[*rlwe.Plaintext, *rlwe.Ciphertext] = (*Backend)(nil)

// New builds CKKS parameters from lit.
func New(lit orion.ParametersLiteral, opts ...Option) (*Backend, error) {
	lit = lit.WithDefaults()
	if err := lit.Validate(); err != nil {
		return nil, err
	}

	ringType := ring.Standard
	if lit.RingType == orion.RingConjugateInvariant {
		ringType = ring.ConjugateInvariant
	}
	pl := ckks.ParametersLiteral{
		LogN:            lit.LogN,
		LogQ:            lit.LogQ,
		LogP:            lit.LogP,
		LogDefaultScale: lit.LogScale,
		RingType:        ringType,
	}
	// H == 0 keeps the library's default secret distribution.
	if lit.H > 0 {
		pl.Xs = ring.Ternary{H: lit.H}
	}
	params, err := ckks.NewParametersFromLiteral(pl)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", orion.ErrInvalidConfig, err)
	}

	b := &Backend{
		params:        params,
		lit:           lit,
		rotKeys:       make(map[uint64]*rlwe.GaloisKey),
		lazy:          true,
		bootstrappers: make(map[int]*bootstrapping.Evaluator),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func uninitialized(what string) error {
	return fmt.Errorf("%w: %s", orion.ErrUninitialized, what)
}

// Parameters returns the CKKS parameters.
func (b *Backend) Parameters() ckks.Parameters { return b.params }

func (b *Backend) Initialized() bool { return b.params.N() > 0 }
func (b *Backend) LogN() int { return b.params.LogN() }
func (b *Backend) MaxSlots() int { return b.params.MaxSlots() }
func (b *Backend) MaxLevel() int { return b.params.MaxLevel() }
func (b *Backend) DefaultScale() float64 { return b.params.DefaultScale().Float64() }

func (b *Backend) ModuliChain() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "logN=%d", b.params.LogN())
	for i, q := range b.params.Q() {
		fmt.Fprintf(&sb, " q%d=%d(%.1f bits)", i, q, math.Log2(float64(q)))
	}
	for i, p := range b.params.P() {
		fmt.Fprintf(&sb, " p%d=%d(%.1f bits)", i, p, math.Log2(float64(p)))
	}
	return sb.String()
}

func (b *Backend) NewKeyGenerator() error {
	b.kgen = rlwe.NewKeyGenerator(b.params)
	return nil
}

func (b *Backend) GenerateSecretKey() error {
	if b.kgen == nil {
		return uninitialized("key generator")
	}
	data, found, err := b.keys.Restore(orion.SecretKeyName)
	if err != nil {
		return err
	}
	if found {
		return b.LoadSecretKey(data)
	}
	b.sk = b.kgen.GenSecretKeyNew()
	return b.keys.Persist(orion.SecretKeyName, b.SerializeSecretKey)
}

func (b *Backend) GeneratePublicKey() error {
	if b.kgen == nil || b.sk == nil {
		return uninitialized("secret key")
	}
	data, found, err := b.keys.Restore(orion.PublicKeyName)
	if err != nil {
		return err
	}
	if found {
		return b.LoadPublicKey(data)
	}
	b.pk = b.kgen.GenPublicKeyNew(b.sk)
	return b.keys.Persist(orion.PublicKeyName, b.SerializePublicKey)
}

func (b *Backend) GenerateRelinearizationKey() error {
	if b.kgen == nil || b.sk == nil {
		return uninitialized("secret key")
	}
	data, found, err := b.keys.Restore(orion.RelinearizationKeyName)
	if err != nil {
		return err
	}
	if found {
		rlk := new(rlwe.RelinearizationKey)
		if err := rlk.UnmarshalBinary(data); err != nil {
			return orion.WrapBackend("load relinearization key", err)
		}
		b.rlk = rlk
		return nil
	}
	b.rlk = b.kgen.GenRelinearizationKeyNew(b.sk)
	return b.keys.Persist(orion.RelinearizationKeyName, b.rlk.MarshalBinary)
}

func (b *Backend) GenerateEvaluationKeys() error {
	if b.rlk == nil {
		return uninitialized("relinearization key")
	}
	b.evk = rlwe.NewMemEvaluationKeySet(b.rlk, slices.Collect(maps.Values(b.rotKeys))...)
	return nil
}

func (b *Backend) NewEncoder() error {
	b.encoder = ckks.NewEncoder(b.params)
	return nil
}

func (b *Backend) NewEncryptor() error {
	if b.pk == nil {
		return uninitialized("public key")
	}
	b.encryptor = ckks.NewEncryptor(b.params, b.pk)
	return nil
}

func (b *Backend) NewDecryptor() error {
	if b.sk == nil {
		return uninitialized("secret key")
	}
	b.decryptor = ckks.NewDecryptor(b.params, b.sk)
	return nil
}

func (b *Backend) NewEvaluator() error {
	if b.evk == nil {
		return uninitialized("evaluation keys")
	}
	b.eval = ckks.NewEvaluator(b.params, b.evk)
	return nil
}

func (b *Backend) NewPolynomialEvaluator() error {
	if b.eval == nil {
		return uninitialized("evaluator")
	}
	b.polyEval = polynomial.NewEvaluator(b.params, b.eval)
	return nil
}

// normalize maps k to [0, slots).
func (b *Backend) normalize(k int) int {
	slots := b.params.MaxSlots()
	k %= slots
	if k < 0 {
		k += slots
	}
	return k
}

func (b *Backend) GenerateRotationKey(k int) error {
	if b.kgen == nil || b.sk == nil {
		return uninitialized("secret key")
	}
	if b.HasRotationKey(k) {
		return nil
	}
	name := orion.RotationKeyName(b.normalize(k))
	data, found, err := b.keys.Restore(name)
	if err != nil {
		return err
	}
	if found {
		return b.LoadRotationKey(k, data)
	}
	galEl := b.params.GaloisElement(k)
	b.addGaloisKey(b.kgen.GenGaloisKeyNew(galEl, b.sk))
	return b.keys.Persist(name, func() ([]byte, error) { return b.SerializeRotationKey(k) })
}

// addGaloisKey registers gk and rebuilds the evaluation key set so that the
// evaluator sees it.
func (b *Backend) addGaloisKey(gk *rlwe.GaloisKey) {
	b.rotKeys[gk.GaloisElement] = gk
	if b.rlk == nil {
		return
	}
	b.evk = rlwe.NewMemEvaluationKeySet(b.rlk, slices.Collect(maps.Values(b.rotKeys))...)
	if b.eval != nil {
		b.eval = b.eval.WithKey(b.evk)
	}
}

func (b *Backend) HasRotationKey(k int) bool {
	if b.normalize(k) == 0 {
		return true
	}
	_, ok := b.rotKeys[b.params.GaloisElement(k)]
	return ok
}

// RotationKeyCount returns the number of live rotation keys.
func (b *Backend) RotationKeyCount() int { return len(b.rotKeys) }

// DeleteRotationKeys drops every rotation key.
func (b *Backend) DeleteRotationKeys() {
	clear(b.rotKeys)
	if b.rlk != nil {
		b.evk = rlwe.NewMemEvaluationKeySet(b.rlk)
		if b.eval != nil {
			b.eval = b.eval.WithKey(b.evk)
		}
	}
}

func (b *Backend) SerializeSecretKey() ([]byte, error) {
	if b.sk == nil {
		return nil, uninitialized("secret key")
	}
	data, err := b.sk.MarshalBinary()
	if err != nil {
		return nil, orion.WrapBackend("serialize secret key", err)
	}
	return data, nil
}

func (b *Backend) LoadSecretKey(data []byte) error {
	sk := new(rlwe.SecretKey)
	if err := sk.UnmarshalBinary(data); err != nil {
		return orion.WrapBackend("load secret key", err)
	}
	b.sk = sk
	return nil
}

func (b *Backend) SerializePublicKey() ([]byte, error) {
	if b.pk == nil {
		return nil, uninitialized("public key")
	}
	data, err := b.pk.MarshalBinary()
	if err != nil {
		return nil, orion.WrapBackend("serialize public key", err)
	}
	return data, nil
}

func (b *Backend) LoadPublicKey(data []byte) error {
	pk := new(rlwe.PublicKey)
	if err := pk.UnmarshalBinary(data); err != nil {
		return orion.WrapBackend("load public key", err)
	}
	b.pk = pk
	return nil
}

func (b *Backend) SerializeRotationKey(k int) ([]byte, error) {
	gk, ok := b.rotKeys[b.params.GaloisElement(k)]
	if !ok {
		return nil, fmt.Errorf("%w: %d", orion.ErrRotationKeyMissing, k)
	}
	data, err := gk.MarshalBinary()
	if err != nil {
		return nil, orion.WrapBackend("serialize rotation key", err)
	}
	return data, nil
}

func (b *Backend) LoadRotationKey(k int, data []byte) error {
	gk := new(rlwe.GaloisKey)
	if err := gk.UnmarshalBinary(data); err != nil {
		return orion.WrapBackend("load rotation key", err)
	}
	if want := b.params.GaloisElement(k); gk.GaloisElement != want {
		return orion.WrapBackend("load rotation key",
			fmt.Errorf("key has galois element %d, rotation %d needs %d", gk.GaloisElement, k, want))
	}
	b.addGaloisKey(gk)
	return nil
}

func (b *Backend) NewBootstrapper(logPs []int, slots int) error {
	if b.sk == nil {
		return uninitialized("secret key")
	}
	if b.eval == nil {
		return uninitialized("evaluator")
	}
	if slots <= 0 || slots > b.params.MaxSlots() || bits.OnesCount(uint(slots)) != 1 {
		return orion.WrapBackend("new bootstrapper", fmt.Errorf("invalid slot count %d", slots))
	}
	if _, ok := b.bootstrappers[slots]; ok {
		return nil
	}

	logN, logSlots := b.params.LogN(), bits.Len(uint(slots))-1
	btpParams, err := bootstrapping.NewParametersFromLiteral(b.params, bootstrapping.ParametersLiteral{
		LogN:     &logN,
		LogP:     slices.Clone(logPs),
		Xs:       b.params.Xs(),
		LogSlots: &logSlots,
	})
	if err != nil {
		return orion.WrapBackend("bootstrapping parameters", err)
	}
	btpKeys, _, err := btpParams.GenEvaluationKeys(b.sk)
	if err != nil {
		return orion.WrapBackend("bootstrapping keys", err)
	}
	btp, err := bootstrapping.NewEvaluator(btpParams, btpKeys)
	if err != nil {
		return orion.WrapBackend("new bootstrapper", err)
	}
	b.bootstrappers[slots] = btp
	return nil
}

func (b *Backend) HasBootstrapper(slots int) bool {
	_, ok := b.bootstrappers[slots]
	return ok
}

func (b *Backend) BootstrapperCount() int { return len(b.bootstrappers) }

func (b *Backend) DeleteBootstrappers() { clear(b.bootstrappers) }

func (b *Backend) Close() error {
	b.DeleteBootstrappers()
	clear(b.rotKeys)
	b.kgen, b.sk, b.pk, b.rlk, b.evk = nil, nil, nil, nil, nil
	b.encoder, b.encryptor, b.decryptor = nil, nil, nil
	b.eval, b.polyEval = nil, nil
	return nil
}
