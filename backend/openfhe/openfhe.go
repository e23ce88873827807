// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build cgo && openfhe

package openfhe

/*
#cgo CXXFLAGS: -std=c++17 -O3
#cgo CPPFLAGS: -I/usr/local/include/openfhe -I/usr/local/include/openfhe/core -I/usr/local/include/openfhe/pke -I/usr/local/include/openfhe/binfhe
#cgo LDFLAGS: -L/usr/local/lib -lOPENFHEpke -lOPENFHEcore -lOPENFHEbinfhe -lstdc++

#include "bridge.h"
#include <stdlib.h>
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"unsafe"

	"github.com/Anas-Seutia/orion"
)

// Available reports whether the package was built against OpenFHE.
const Available = true

const (
	keySecret = iota
	keyPublic
	keyRelin
	keyRotation
)

// Plaintext is an OpenFHE plaintext.
type Plaintext struct{ ptr C.OfhePlaintext }

// Ciphertext is an OpenFHE ciphertext.
type Ciphertext struct{ ptr C.OfheCiphertext }

func newPlaintext(ptr C.OfhePlaintext) *Plaintext {
	pt := &Plaintext{ptr: ptr}
	runtime.SetFinalizer(pt, (*Plaintext).Free)
	return pt
}

// Free releases the native plaintext.
func (pt *Plaintext) Free() {
	if pt.ptr != nil {
		C.ofhe_plaintext_free(pt.ptr)
		pt.ptr = nil
	}
}

func newCiphertext(ptr C.OfheCiphertext) *Ciphertext {
	ct := &Ciphertext{ptr: ptr}
	runtime.SetFinalizer(ct, (*Ciphertext).Free)
	return ct
}

// Free releases the native ciphertext.
func (ct *Ciphertext) Free() {
	if ct.ptr != nil {
		C.ofhe_ciphertext_free(ct.ptr)
		ct.ptr = nil
	}
}

// Backend is a CKKS backend over OpenFHE.
type Backend struct {
	ctx C.OfheContext
	lit orion.ParametersLiteral

	kgen, secret, public, relin, evalKeys bool
	encoder, encryptor, decryptor         bool
	evaluator, polyEval                   bool

	lazy bool
	keys *orion.KeyStore
}

var _ orion.Backend[*Plaintext, *Ciphertext] = (*Backend)(nil)

// New creates an OpenFHE context. The first LogQ entry sizes the first
// modulus, the second the scaling moduli, and the chain length sets the
// multiplicative depth. OpenFHE picks its own special primes, so LogP is
// only validated. The conjugate-invariant ring is not supported.
func New(lit orion.ParametersLiteral, opts ...Option) (*Backend, error) {
	lit = lit.WithDefaults()
	if err := lit.Validate(); err != nil {
		return nil, err
	}
	if lit.RingType != orion.RingStandard {
		return nil, fmt.Errorf("%w: openfhe supports the standard ring only", orion.ErrInvalidConfig)
	}
	scaleBits := lit.LogScale
	if len(lit.LogQ) > 1 {
		scaleBits = lit.LogQ[1]
	}
	ctx := C.ofhe_context_new(C.int(lit.LogN), C.int(len(lit.LogQ)-1), C.int(lit.LogQ[0]), C.int(scaleBits), C.int(lit.H))
	if ctx == nil {
		return nil, orion.WrapBackend("new context", lastError())
	}
	b := &Backend{ctx: ctx, lit: lit, lazy: true}
	for _, opt := range opts {
		opt(b)
	}
	runtime.SetFinalizer(b, (*Backend).free)
	return b, nil
}

func lastError() error {
	msg := C.GoString(C.ofhe_last_error())
	if msg == "" {
		msg = "unknown error"
	}
	return errors.New(msg)
}

func uninitialized(what string) error {
	return fmt.Errorf("%w: %s", orion.ErrUninitialized, what)
}

func (b *Backend) free() {
	if b.ctx != nil {
		C.ofhe_context_free(b.ctx)
		b.ctx = nil
	}
}

func (b *Backend) Close() error {
	b.free()
	b.kgen, b.secret, b.public, b.relin, b.evalKeys = false, false, false, false, false
	b.encoder, b.encryptor, b.decryptor, b.evaluator, b.polyEval = false, false, false, false, false
	return nil
}

func (b *Backend) Initialized() bool { return b.ctx != nil }
func (b *Backend) LogN() int { return b.lit.LogN }
func (b *Backend) MaxSlots() int { return int(C.ofhe_max_slots(b.ctx)) }
func (b *Backend) MaxLevel() int { return int(C.ofhe_max_level(b.ctx)) }
func (b *Backend) DefaultScale() float64 { return float64(C.ofhe_default_scale(b.ctx)) }

func (b *Backend) ModuliChain() string {
	n := int(C.ofhe_moduli(b.ctx, nil, 0))
	if n <= 0 {
		return fmt.Sprintf("logN=%d", b.lit.LogN)
	}
	moduli := make([]float64, n)
	C.ofhe_moduli(b.ctx, (*C.double)(unsafe.Pointer(&moduli[0])), C.int(n))
	var sb strings.Builder
	fmt.Fprintf(&sb, "logN=%d", b.lit.LogN)
	for i, q := range moduli {
		fmt.Fprintf(&sb, " q%d=%.1f bits", i, q)
	}
	return sb.String()
}

func (b *Backend) NewKeyGenerator() error {
	if b.ctx == nil {
		return uninitialized("context")
	}
	b.kgen = true
	return nil
}

// GenerateSecretKey generates the key pair; OpenFHE creates both keys at once.
func (b *Backend) GenerateSecretKey() error {
	if !b.kgen {
		return uninitialized("key generator")
	}
	data, found, err := b.keys.Restore(orion.SecretKeyName)
	if err != nil {
		return err
	}
	if found {
		return b.LoadSecretKey(data)
	}
	if C.ofhe_keygen(b.ctx) < 0 {
		return orion.WrapBackend("generate keys", lastError())
	}
	b.secret, b.public = true, true
	return b.keys.Persist(orion.SecretKeyName, b.SerializeSecretKey)
}

func (b *Backend) GeneratePublicKey() error {
	if !b.secret {
		return uninitialized("secret key")
	}
	data, found, err := b.keys.Restore(orion.PublicKeyName)
	if err != nil {
		return err
	}
	if found {
		return b.LoadPublicKey(data)
	}
	if !b.public {
		return orion.WrapBackend("generate public key", errors.New("secret key was loaded without its public key"))
	}
	return b.keys.Persist(orion.PublicKeyName, b.SerializePublicKey)
}

func (b *Backend) GenerateRelinearizationKey() error {
	if !b.secret {
		return uninitialized("secret key")
	}
	data, found, err := b.keys.Restore(orion.RelinearizationKeyName)
	if err != nil {
		return err
	}
	if found {
		if err := b.loadKey(keyRelin, 0, data); err != nil {
			return err
		}
	} else if C.ofhe_relin_keygen(b.ctx) < 0 {
		return orion.WrapBackend("generate relinearization key", lastError())
	}
	b.relin = true
	return b.keys.Persist(orion.RelinearizationKeyName, func() ([]byte, error) { return b.serializeKey(keyRelin, 0) })
}

// GenerateEvaluationKeys is a checkpoint: OpenFHE keeps evaluation keys in
// the context.
func (b *Backend) GenerateEvaluationKeys() error {
	if !b.relin {
		return uninitialized("relinearization key")
	}
	b.evalKeys = true
	return nil
}

func (b *Backend) NewEncoder() error {
	if b.ctx == nil {
		return uninitialized("context")
	}
	b.encoder = true
	return nil
}

func (b *Backend) NewEncryptor() error {
	if !b.public {
		return uninitialized("public key")
	}
	b.encryptor = true
	return nil
}

func (b *Backend) NewDecryptor() error {
	if !b.secret {
		return uninitialized("secret key")
	}
	b.decryptor = true
	return nil
}

func (b *Backend) NewEvaluator() error {
	if !b.evalKeys {
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

func (b *Backend) serializeKey(kind, k int) ([]byte, error) {
	var n C.int
	buf := C.ofhe_key_serialize(b.ctx, C.int(kind), C.int(k), &n)
	if buf == nil {
		return nil, orion.WrapBackend("serialize key", lastError())
	}
	defer C.free(unsafe.Pointer(buf))
	return C.GoBytes(unsafe.Pointer(buf), n), nil
}

func (b *Backend) loadKey(kind, k int, data []byte) error {
	if len(data) == 0 {
		return orion.WrapBackend("load key", errors.New("empty key"))
	}
	if C.ofhe_key_load(b.ctx, C.int(kind), C.int(k), (*C.uchar)(unsafe.Pointer(&data[0])), C.int(len(data))) < 0 {
		return orion.WrapBackend("load key", lastError())
	}
	return nil
}

func (b *Backend) SerializeSecretKey() ([]byte, error) {
	if !b.secret {
		return nil, uninitialized("secret key")
	}
	return b.serializeKey(keySecret, 0)
}

func (b *Backend) LoadSecretKey(data []byte) error {
	if err := b.loadKey(keySecret, 0, data); err != nil {
		return err
	}
	b.secret = true
	return nil
}

func (b *Backend) SerializePublicKey() ([]byte, error) {
	if !b.public {
		return nil, uninitialized("public key")
	}
	return b.serializeKey(keyPublic, 0)
}

func (b *Backend) LoadPublicKey(data []byte) error {
	if err := b.loadKey(keyPublic, 0, data); err != nil {
		return err
	}
	b.public = true
	return nil
}

func (b *Backend) GenerateRotationKey(k int) error {
	if !b.secret {
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
	if C.ofhe_rotation_keygen(b.ctx, C.int(k)) < 0 {
		return orion.WrapBackend("generate rotation key", lastError())
	}
	return b.keys.Persist(name, func() ([]byte, error) { return b.SerializeRotationKey(k) })
}

func (b *Backend) normalize(k int) int {
	slots := b.MaxSlots()
	k %= slots
	if k < 0 {
		k += slots
	}
	return k
}

func (b *Backend) HasRotationKey(k int) bool { return C.ofhe_has_rotation_key(b.ctx, C.int(k)) != 0 }

func (b *Backend) SerializeRotationKey(k int) ([]byte, error) {
	if !b.HasRotationKey(k) {
		return nil, fmt.Errorf("%w: %d", orion.ErrRotationKeyMissing, k)
	}
	return b.serializeKey(keyRotation, k)
}

func (b *Backend) LoadRotationKey(k int, data []byte) error { return b.loadKey(keyRotation, k, data) }

// DeleteRotationKeys drops every rotation key. OpenFHE stores bootstrapping
// keys with them, so bootstrappers are dropped too.
func (b *Backend) DeleteRotationKeys() { C.ofhe_rotation_keys_clear(b.ctx) }

func cdoubles(v []float64) (*C.double, C.int) {
	if len(v) == 0 {
		return nil, 0
	}
	return (*C.double)(unsafe.Pointer(&v[0])), C.int(len(v))
}

func (b *Backend) Encode(values []float64, level int, scale float64) (*Plaintext, error) {
	if !b.encoder {
		return nil, uninitialized("encoder")
	}
	if len(values) > b.MaxSlots() {
		return nil, fmt.Errorf("%w: %d values for %d slots", orion.ErrDimensionMismatch, len(values), b.MaxSlots())
	}
	if level < 0 || level > b.MaxLevel() {
		return nil, orion.WrapBackend("encode", fmt.Errorf("level %d outside [0, %d]", level, b.MaxLevel()))
	}
	ptr, n := cdoubles(values)
	pt := C.ofhe_encode(b.ctx, ptr, n, C.int(level), C.double(scale))
	runtime.KeepAlive(values)
	if pt == nil {
		return nil, orion.WrapBackend("encode", lastError())
	}
	return newPlaintext(pt), nil
}

func (b *Backend) Decode(pt *Plaintext) ([]float64, error) {
	if !b.encoder {
		return nil, uninitialized("encoder")
	}
	var n C.int
	buf := C.ofhe_decode(b.ctx, pt.ptr, &n)
	if buf == nil {
		return nil, orion.WrapBackend("decode", lastError())
	}
	defer C.free(unsafe.Pointer(buf))
	out := make([]float64, int(n))
	copy(out, unsafe.Slice((*float64)(unsafe.Pointer(buf)), int(n)))
	return out, nil
}

func (b *Backend) Encrypt(pt *Plaintext) (*Ciphertext, error) {
	if !b.encryptor {
		return nil, uninitialized("encryptor")
	}
	return b.ciphertext("encrypt", C.ofhe_encrypt(b.ctx, pt.ptr))
}

func (b *Backend) Decrypt(ct *Ciphertext) (*Plaintext, error) {
	if !b.decryptor {
		return nil, uninitialized("decryptor")
	}
	pt := C.ofhe_decrypt(b.ctx, ct.ptr)
	if pt == nil {
		return nil, orion.WrapBackend("decrypt", lastError())
	}
	return newPlaintext(pt), nil
}

func (b *Backend) PlaintextScale(pt *Plaintext) float64 {
	return float64(C.ofhe_plaintext_scale(b.ctx, pt.ptr))
}
func (b *Backend) SetPlaintextScale(pt *Plaintext, scale float64) {
	C.ofhe_plaintext_set_scale(pt.ptr, C.double(scale))
}
func (b *Backend) PlaintextLevel(pt *Plaintext) int { return int(C.ofhe_plaintext_level(b.ctx, pt.ptr)) }
func (b *Backend) PlaintextSlots(pt *Plaintext) int { return int(C.ofhe_plaintext_slots(pt.ptr)) }

func (b *Backend) CiphertextScale(ct *Ciphertext) float64 { return float64(C.ofhe_ciphertext_scale(ct.ptr)) }
func (b *Backend) SetCiphertextScale(ct *Ciphertext, scale float64) {
	C.ofhe_ciphertext_set_scale(ct.ptr, C.double(scale))
}
func (b *Backend) CiphertextLevel(ct *Ciphertext) int { return int(C.ofhe_ciphertext_level(b.ctx, ct.ptr)) }
func (b *Backend) CiphertextSlots(ct *Ciphertext) int { return int(C.ofhe_ciphertext_slots(ct.ptr)) }
func (b *Backend) CiphertextDegree(ct *Ciphertext) int { return int(C.ofhe_ciphertext_degree(ct.ptr)) }

func (b *Backend) ciphertext(op string, ptr C.OfheCiphertext) (*Ciphertext, error) {
	if ptr == nil {
		return nil, orion.WrapBackend(op, lastError())
	}
	return newCiphertext(ptr), nil
}

func (b *Backend) ready() error {
	if !b.evaluator {
		return uninitialized("evaluator")
	}
	return nil
}

func (b *Backend) binary(op string, kind C.int, x, y *Ciphertext) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.ciphertext(op, C.ofhe_binary(b.ctx, kind, x.ptr, y.ptr))
}

func (b *Backend) Add(x, y *Ciphertext) (*Ciphertext, error) { return b.binary("add", C.OFHE_ADD, x, y) }
func (b *Backend) Sub(x, y *Ciphertext) (*Ciphertext, error) { return b.binary("sub", C.OFHE_SUB, x, y) }
func (b *Backend) MulRelin(x, y *Ciphertext) (*Ciphertext, error) {
	return b.binary("mul relin", C.OFHE_MUL, x, y)
}

func (b *Backend) plain(op string, kind C.int, ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.ciphertext(op, C.ofhe_plain(b.ctx, kind, ct.ptr, pt.ptr))
}

func (b *Backend) AddPlain(ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	return b.plain("add plaintext", C.OFHE_ADD, ct, pt)
}
func (b *Backend) SubPlain(ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	return b.plain("sub plaintext", C.OFHE_SUB, ct, pt)
}
func (b *Backend) MulPlain(ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	return b.plain("mul plaintext", C.OFHE_MUL, ct, pt)
}

func (b *Backend) AddScalar(ct *Ciphertext, c float64) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.ciphertext("add scalar", C.ofhe_add_scalar(b.ctx, ct.ptr, C.double(c)))
}

func (b *Backend) SubScalar(ct *Ciphertext, c float64) (*Ciphertext, error) { return b.AddScalar(ct, -c) }

func (b *Backend) MulScalarInt(ct *Ciphertext, c int) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.ciphertext("mul scalar", C.ofhe_mul_int(b.ctx, ct.ptr, C.longlong(c)))
}

func (b *Backend) MulScalarFloat(ct *Ciphertext, c float64) (*Ciphertext, error) { return b.MulConst(ct, c) }

func (b *Backend) Negate(ct *Ciphertext) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.ciphertext("negate", C.ofhe_negate(b.ctx, ct.ptr))
}

func (b *Backend) MulConst(ct *Ciphertext, c float64) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.ciphertext("mul const", C.ofhe_mul_const(b.ctx, ct.ptr, C.double(c)))
}

func (b *Backend) MulVector(ct *Ciphertext, v []float64) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if len(v) != b.CiphertextSlots(ct) {
		return nil, fmt.Errorf("%w: vector of %d values on %d slots", orion.ErrDimensionMismatch, len(v), b.CiphertextSlots(ct))
	}
	ptr, n := cdoubles(v)
	out := C.ofhe_mul_vector(b.ctx, ct.ptr, ptr, n)
	runtime.KeepAlive(v)
	return b.ciphertext("mul diagonal", out)
}

func (b *Backend) Rotate(ct *Ciphertext, k int) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if !b.HasRotationKey(k) {
		if !b.lazy {
			return nil, fmt.Errorf("%w: %d", orion.ErrRotationKeyMissing, k)
		}
		if err := b.GenerateRotationKey(k); err != nil {
			return nil, err
		}
	}
	return b.ciphertext("rotate", C.ofhe_rotate(b.ctx, ct.ptr, C.int(k)))
}

func (b *Backend) Rescale(ct *Ciphertext) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if b.CiphertextLevel(ct) == 0 {
		return nil, orion.WrapBackend("rescale", errors.New("ciphertext at level 0"))
	}
	return b.ciphertext("rescale", C.ofhe_rescale(b.ctx, ct.ptr))
}

// EvaluatePolynomial evaluates p with OpenFHE's own scale management; the
// result scale is set to outScale afterwards.
func (b *Backend) EvaluatePolynomial(ct *Ciphertext, p orion.Polynomial, outScale float64) (*Ciphertext, error) {
	if !b.polyEval {
		return nil, uninitialized("polynomial evaluator")
	}
	ptr, n := cdoubles(p.Coeffs)
	var out C.OfheCiphertext
	if p.Basis == orion.Chebyshev {
		out = C.ofhe_eval_chebyshev(b.ctx, ct.ptr, ptr, n, C.double(p.Interval[0]), C.double(p.Interval[1]))
	} else {
		out = C.ofhe_eval_monomial(b.ctx, ct.ptr, ptr, n)
	}
	runtime.KeepAlive(p.Coeffs)
	res, err := b.ciphertext("evaluate polynomial", out)
	if err != nil {
		return nil, err
	}
	b.SetCiphertextScale(res, outScale)
	return res, nil
}

// NewBootstrapper sets up bootstrapping for slots. A two-entry logPs is
// taken as OpenFHE's level budget; anything else uses {3, 3}.
func (b *Backend) NewBootstrapper(logPs []int, slots int) error {
	if !b.secret {
		return uninitialized("secret key")
	}
	if b.HasBootstrapper(slots) {
		return nil
	}
	budget := make([]C.int, len(logPs))
	for i, v := range logPs {
		budget[i] = C.int(v)
	}
	var ptr *C.int
	if len(budget) > 0 {
		ptr = &budget[0]
	}
	if C.ofhe_bootstrap_setup(b.ctx, ptr, C.int(len(budget)), C.int(slots)) < 0 {
		return orion.WrapBackend("new bootstrapper", lastError())
	}
	return nil
}

func (b *Backend) Bootstrap(ct *Ciphertext, slots int) (*Ciphertext, error) {
	if !b.HasBootstrapper(slots) {
		return nil, fmt.Errorf("%w: %d", orion.ErrNoBootstrapper, slots)
	}
	return b.ciphertext("bootstrap", C.ofhe_bootstrap(b.ctx, ct.ptr, C.int(slots)))
}

func (b *Backend) HasBootstrapper(slots int) bool { return C.ofhe_has_bootstrapper(b.ctx, C.int(slots)) != 0 }
func (b *Backend) BootstrapperCount() int { return int(C.ofhe_bootstrapper_count(b.ctx)) }
func (b *Backend) DeleteBootstrappers() { C.ofhe_bootstrappers_clear(b.ctx) }
