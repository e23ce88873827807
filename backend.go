// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import "github.com/Anas-Seutia/orion/lintrans"

// Backend is a CKKS implementation a Session drives. P and C are the
// backend's plaintext and ciphertext types; both are expected to be pointer
// types so metadata setters act on the stored object.
//
// Evaluator methods never modify their operands.
type Backend[P, C any] interface {
	Scheme
	KeyManager
	Encoder[P]
	Encryptor[P, C]
	Inspector[P, C]
	Evaluator[P, C]
	PolynomialEvaluator[C]
	Bootstrapper[C]

	// Close releases every key, bootstrapper and native resource.
	Close() error
}

// Scheme covers the staged setup of a backend. Each step fails with
// ErrUninitialized when its prerequisite has not run.
type Scheme interface {
	NewKeyGenerator() error
	GenerateSecretKey() error
	GeneratePublicKey() error
	GenerateRelinearizationKey() error
	GenerateEvaluationKeys() error
	NewEncoder() error
	NewEncryptor() error
	NewDecryptor() error
	NewEvaluator() error
	NewPolynomialEvaluator() error

	// Initialized reports whether parameters were accepted.
	Initialized() bool

	LogN() int
	MaxSlots() int
	MaxLevel() int
	DefaultScale() float64
	// ModuliChain describes the Q and P moduli.
	ModuliChain() string
}

// KeyManager generates and (de)serializes keys. Serialized forms are the
// backend library's native encoding.
type KeyManager interface {
	GenerateRotationKey(k int) error
	HasRotationKey(k int) bool
	SerializeSecretKey() ([]byte, error)
	LoadSecretKey(data []byte) error
	SerializePublicKey() ([]byte, error)
	LoadPublicKey(data []byte) error
	SerializeRotationKey(k int) ([]byte, error)
	LoadRotationKey(k int, data []byte) error
}

// Encoder packs slot values into plaintexts.
type Encoder[P any] interface {
	Encode(values []float64, level int, scale float64) (P, error)
	Decode(pt P) ([]float64, error)
}

// Encryptor moves between plaintexts and ciphertexts.
type Encryptor[P, C any] interface {
	Encrypt(pt P) (C, error)
	Decrypt(ct C) (P, error)
}

// Inspector reads and adjusts plaintext and ciphertext metadata.
type Inspector[P, C any] interface {
	PlaintextScale(pt P) float64
	SetPlaintextScale(pt P, scale float64)
	PlaintextLevel(pt P) int
	PlaintextSlots(pt P) int
	CiphertextScale(ct C) float64
	SetCiphertextScale(ct C, scale float64)
	CiphertextLevel(ct C) int
	CiphertextDegree(ct C) int
}

// Evaluator is the homomorphic arithmetic of a backend. It includes the
// primitives the linear transform engine runs on.
type Evaluator[P, C any] interface {
	lintrans.Evaluator[C]

	Sub(a, b C) (C, error)
	MulRelin(a, b C) (C, error)
	AddPlain(ct C, pt P) (C, error)
	SubPlain(ct C, pt P) (C, error)
	MulPlain(ct C, pt P) (C, error)
	AddScalar(ct C, c float64) (C, error)
	SubScalar(ct C, c float64) (C, error)
	MulScalarInt(ct C, c int) (C, error)
	MulScalarFloat(ct C, c float64) (C, error)
	Negate(ct C) (C, error)
}

// PolynomialEvaluator evaluates polynomials on ciphertexts.
type PolynomialEvaluator[C any] interface {
	EvaluatePolynomial(ct C, p Polynomial, outScale float64) (C, error)
}

// Bootstrapper refreshes ciphertexts. Bootstrappers are keyed by the number
// of slots they act on.
type Bootstrapper[C any] interface {
	NewBootstrapper(logPs []int, slots int) error
	Bootstrap(ct C, slots int) (C, error)
	HasBootstrapper(slots int) bool
	BootstrapperCount() int
	DeleteBootstrappers()
}
