// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion_test

import (
	"io"
	"log"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anas-Seutia/orion"
	"github.com/Anas-Seutia/orion/backend/plain"
	"github.com/Anas-Seutia/orion/lintrans"
)

type session = orion.Session[*plain.Plaintext, *plain.Ciphertext]

var testParams = orion.ParametersLiteral{
	LogN:     5,
	LogQ:     []int{40, 30, 30, 30},
	LogP:     []int{40},
	LogScale: 30,
}

func newSession(t *testing.T, opts ...plain.Option) (*session, *plain.Backend) {
	t.Helper()
	b, err := plain.New(testParams, opts...)
	require.NoError(t, err)
	s := orion.NewSession[*plain.Plaintext, *plain.Ciphertext](b, orion.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, s.Setup())
	t.Cleanup(func() { s.Close() })
	return s, b
}

func encrypt(t *testing.T, s *session, values []float64) int {
	t.Helper()
	pt, err := s.CreatePlaintext(values)
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)
	return ct
}

func decrypt(t *testing.T, s *session, ct int) []float64 {
	t.Helper()
	v, err := s.DecryptValues(ct)
	require.NoError(t, err)
	return v
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestHandleReuse(t *testing.T) {
	s, _ := newSession(t)

	for want := 0; want < 3; want++ {
		h, err := s.CreatePlaintext([]float64{float64(want)})
		require.NoError(t, err)
		require.Equal(t, want, h)
	}
	require.True(t, s.DeletePlaintext(1))
	require.False(t, s.DeletePlaintext(1))

	h, err := s.CreatePlaintext([]float64{9})
	require.NoError(t, err)
	require.Equal(t, 1, h)

	values, err := s.PlaintextValues(1, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{9}, values)

	require.Equal(t, []int{0, 1, 2}, s.LivePlaintexts())
}

func TestRegistriesAreIndependent(t *testing.T) {
	s, _ := newSession(t)

	pt, err := s.CreatePlaintext([]float64{1})
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)
	lt, err := s.CreateLinearTransform([]float64{1}, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 0, pt)
	assert.Equal(t, 0, ct)
	assert.Equal(t, 0, lt)
}

func TestReset(t *testing.T) {
	s, _ := newSession(t)

	ct := encrypt(t, s, []float64{1, 2})
	_, err := s.CreateLinearTransform([]float64{1, 0, 0, 1}, 2, 2)
	require.NoError(t, err)
	_, err = s.GenerateMonomial([]float64{0, 1})
	require.NoError(t, err)
	require.Equal(t, 4, s.Stats().Total())

	s.Reset()

	require.Zero(t, s.Stats().Total())
	require.False(t, s.CiphertextExists(ct))
	require.Empty(t, s.LiveCiphertexts())

	pt, err := s.CreatePlaintext([]float64{1})
	require.NoError(t, err)
	require.Equal(t, 0, pt)
}

func TestMissingHandles(t *testing.T) {
	s, _ := newSession(t)

	_, err := s.CiphertextScale(42)
	require.ErrorIs(t, err, orion.ErrNotFound)
	require.Equal(t, orion.CodeNotFound, orion.Code(err))

	level, err := s.CiphertextLevel(42)
	require.ErrorIs(t, err, orion.ErrNotFound)
	require.Equal(t, -1, level)

	slots, err := s.PlaintextSlots(3)
	require.ErrorIs(t, err, orion.ErrNotFound)
	require.Equal(t, -1, slots)

	require.ErrorIs(t, s.SetPlaintextScale(3, 2), orion.ErrNotFound)

	_, err = s.ApplyLinearTransform(0, 0)
	require.ErrorIs(t, err, orion.ErrNotFound)

	_, err = s.AddCiphertextNew(0, 1)
	require.ErrorIs(t, err, orion.ErrNotFound)
}

func TestUninitialized(t *testing.T) {
	b, err := plain.New(testParams)
	require.NoError(t, err)
	s := orion.NewSession[*plain.Plaintext, *plain.Ciphertext](b)

	_, err = s.CreatePlaintext([]float64{1})
	require.ErrorIs(t, err, orion.ErrUninitialized)
	require.Equal(t, orion.CodeUninitialized, orion.Code(err))

	require.ErrorIs(t, b.GenerateSecretKey(), orion.ErrUninitialized)
	require.NoError(t, b.NewKeyGenerator())
	require.ErrorIs(t, b.NewEncryptor(), orion.ErrUninitialized)
	require.Empty(t, s.LivePlaintexts())
}

func TestTensorMetadata(t *testing.T) {
	s, b := newSession(t)

	pt, err := s.Encode([]float64{1, 2, 3}, 2, 1<<20)
	require.NoError(t, err)

	scale, err := s.PlaintextScale(pt)
	require.NoError(t, err)
	require.Equal(t, float64(1<<20), scale)

	require.NoError(t, s.SetPlaintextScale(pt, 1<<25))
	scale, _ = s.PlaintextScale(pt)
	require.Equal(t, float64(1<<25), scale)

	level, err := s.PlaintextLevel(pt)
	require.NoError(t, err)
	require.Equal(t, 2, level)

	slots, err := s.PlaintextSlots(pt)
	require.NoError(t, err)
	require.Equal(t, b.MaxSlots(), slots)

	ct, err := s.Encrypt(pt)
	require.NoError(t, err)
	degree, err := s.CiphertextDegree(ct)
	require.NoError(t, err)
	require.Equal(t, 1, degree)

	_, err = s.Encode(make([]float64, b.MaxSlots()+1), 0, 1)
	require.ErrorIs(t, err, orion.ErrDimensionMismatch)
}

func TestEvaluatorInPlaceAndNew(t *testing.T) {
	s, _ := newSession(t, plain.WithLazyRotationKeys(true))

	a := encrypt(t, s, []float64{1, 2, 3, 4})
	b := encrypt(t, s, []float64{10, 20, 30, 40})

	sum, err := s.AddCiphertextNew(a, b)
	require.NoError(t, err)
	require.NotEqual(t, a, sum)
	require.Equal(t, []float64{11, 22, 33, 44}, decrypt(t, s, sum)[:4])
	require.Equal(t, []float64{1, 2, 3, 4}, decrypt(t, s, a)[:4])

	h, err := s.SubCiphertext(a, b)
	require.NoError(t, err)
	require.Equal(t, a, h)
	require.Equal(t, []float64{-9, -18, -27, -36}, decrypt(t, s, a)[:4])

	h, err = s.Rotate(b, 1)
	require.NoError(t, err)
	require.Equal(t, b, h)
	require.Equal(t, []float64{20, 30, 40, 0}, decrypt(t, s, b)[:4])

	neg, err := s.Negate(b)
	require.NoError(t, err)
	require.Equal(t, []float64{-20, -30, -40, 0}, decrypt(t, s, neg)[:4])

	pt, err := s.CreatePlaintext([]float64{2, 2, 2, 2})
	require.NoError(t, err)
	prod, err := s.MulPlaintextNew(sum, pt)
	require.NoError(t, err)
	require.Equal(t, []float64{22, 44, 66, 88}, decrypt(t, s, prod)[:4])

	sq, err := s.MulRelinCiphertextNew(sum, sum)
	require.NoError(t, err)
	require.Equal(t, []float64{121, 484, 1089, 1936}, decrypt(t, s, sq)[:4])

	h, err = s.MulScalarFloat(sum, 0.5)
	require.NoError(t, err)
	h, err = s.Rescale(h)
	require.NoError(t, err)
	require.Equal(t, sum, h)
	level, _ := s.CiphertextLevel(sum)
	require.Equal(t, 2, level)
	require.Equal(t, []float64{5.5, 11, 16.5, 22}, decrypt(t, s, sum)[:4])

	h, err = s.AddScalarNew(sum, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{6.5, 12}, decrypt(t, s, h)[:2])

	h, err = s.MulScalarIntNew(sum, 3)
	require.NoError(t, err)
	require.Equal(t, 16.5, decrypt(t, s, h)[0])
}

func TestRotateWithoutKey(t *testing.T) {
	s, b := newSession(t)
	ct := encrypt(t, s, []float64{1, 2})

	_, err := s.RotateNew(ct, 3)
	require.ErrorIs(t, err, orion.ErrRotationKeyMissing)
	require.Equal(t, orion.CodeRotationKeyMissing, orion.Code(err))

	require.NoError(t, s.AddRotationKey(3))
	_, err = s.RotateNew(ct, 3)
	require.NoError(t, err)

	// rotation by the slot count is the identity
	require.NoError(t, s.AddRotationKey(16))

	b.DeleteRotationKeys()
	_, err = s.RotateNew(ct, 3)
	require.ErrorIs(t, err, orion.ErrRotationKeyMissing)
}

func TestLinearTransformCreate(t *testing.T) {
	s, _ := newSession(t)

	h, err := s.CreateLinearTransform(make([]float64, 5), 2, 3)
	require.ErrorIs(t, err, orion.ErrDimensionMismatch)
	require.Equal(t, -1, h)
	require.Zero(t, s.LinearTransformCount())

	_, err = s.CreateLinearTransformFromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, orion.ErrInconsistentRowLength)
	require.Equal(t, orion.CodeDimensionMismatch, orion.Code(err))

	h, err = s.CreateLinearTransformFromRows([][]float64{{2, 0}, {0, 3}})
	require.NoError(t, err)
	got, err := s.ApplyLinearTransformPlaintext(h, []float64{5, 7})
	require.NoError(t, err)
	require.Equal(t, []float64{10, 21}, got)

	require.True(t, s.LinearTransformExists(h))
	require.Equal(t, []int{h}, s.LiveLinearTransforms())
	require.True(t, s.DeleteLinearTransform(h))
	require.False(t, s.DeleteLinearTransform(h))
}

func TestLinearTransformCiphertextMatchesPlaintext(t *testing.T) {
	s, _ := newSession(t)

	m := []float64{
		1, 2, 0, -1, 0.5,
		0, 3, 1, 0, 0,
		4, 0, 0, 2, 1,
	}
	lt, err := s.CreateLinearTransform(m, 3, 5)
	require.NoError(t, err)
	v := []float64{1, -1, 2, 0.25, 3}

	rots, err := s.LinearTransformRotations(lt)
	require.NoError(t, err)
	require.Equal(t, []int{-5, 1, 2, 3}, rots)

	ct := encrypt(t, s, v)

	// lazy rotation keys are off: the apply aborts and leaves no result
	_, err = s.ApplyLinearTransform(ct, lt)
	require.ErrorIs(t, err, orion.ErrRotationKeyMissing)
	require.Equal(t, []int{ct}, s.LiveCiphertexts())

	require.NoError(t, s.GenerateLinearTransformRotationKeys(lt))
	out, err := s.ApplyLinearTransform(ct, lt)
	require.NoError(t, err)

	want, err := s.ApplyLinearTransformPlaintext(lt, v)
	require.NoError(t, err)
	got := decrypt(t, s, out)
	if diff := cmp.Diff(want, got[:3], approx); diff != "" {
		t.Fatalf("transform mismatch (-plaintext +ciphertext):\n%s", diff)
	}

	inLevel, _ := s.CiphertextLevel(ct)
	outLevel, _ := s.CiphertextLevel(out)
	require.Equal(t, inLevel-1, outLevel)
	inScale, _ := s.CiphertextScale(ct)
	outScale, _ := s.CiphertextScale(out)
	require.InDelta(t, inScale, outScale, 1e-6)

	require.Equal(t, v, decrypt(t, s, ct)[:5])
}

func TestLinearTransformSparsitySkip(t *testing.T) {
	s, b := newSession(t, plain.WithLazyRotationKeys(true))

	// second column is zero
	m := []float64{
		1, 0, 2, 0,
		0, 0, 0, 1,
		3, 0, 1, 0,
		0, 0, 0, 2,
	}
	lt, err := s.CreateLinearTransform(m, 4, 4)
	require.NoError(t, err)
	ct := encrypt(t, s, []float64{1, 2, 3, 4})

	before := b.RotationCount()
	skip, err := s.ApplyLinearTransform(ct, lt)
	require.NoError(t, err)
	skipped := b.RotationCount() - before

	before = b.RotationCount()
	full, err := s.ApplyLinearTransform(ct, lt, lintrans.WithoutSparsitySkip())
	require.NoError(t, err)
	require.LessOrEqual(t, skipped, b.RotationCount()-before)

	if diff := cmp.Diff(decrypt(t, s, full), decrypt(t, s, skip), approx); diff != "" {
		t.Fatalf("sparsity skip changed the result (-full +skip):\n%s", diff)
	}
	require.Equal(t, []float64{7, 4, 6, 8}, decrypt(t, s, skip)[:4])
}

func TestLinearTransformSaveLoad(t *testing.T) {
	s, _ := newSession(t)

	h, err := s.CreateDiagonalLinearTransform(map[int][]float64{
		0: {1, 1, 1, 1},
		1: {2, 0, 2, 0},
	}, 4)
	require.NoError(t, err)
	require.NoError(t, s.SaveLinearTransform(h, "layer0"))

	loaded, err := s.LoadLinearTransform("layer0")
	require.NoError(t, err)
	require.NotEqual(t, h, loaded)

	v := []float64{1, 2, 3, 4}
	want, err := s.ApplyLinearTransformPlaintext(h, v)
	require.NoError(t, err)
	got, err := s.ApplyLinearTransformPlaintext(loaded, v)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = s.LoadLinearTransform("missing")
	require.ErrorIs(t, err, orion.ErrNotFound)
}

func TestPolynomials(t *testing.T) {
	s, _ := newSession(t)

	mono, err := s.GenerateMonomial([]float64{1, 0, 2})
	require.NoError(t, err)
	depth, err := s.PolynomialDepth(mono)
	require.NoError(t, err)
	require.Equal(t, 2, depth)

	ct := encrypt(t, s, []float64{0, 1, 2})
	out, err := s.EvaluatePolynomial(ct, mono, 1<<30)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 9}, decrypt(t, s, out)[:3])

	cheb, err := s.GenerateChebyshev([]float64{0, 0, 1}, -2, 2)
	require.NoError(t, err)
	out, err = s.EvaluatePolynomial(ct, cheb, 1<<30)
	require.NoError(t, err)
	// T_2(x/2) = x^2/2 - 1
	want := []float64{-1, -0.5, 1}
	if diff := cmp.Diff(want, decrypt(t, s, out)[:3], approx); diff != "" {
		t.Fatalf("chebyshev (-want +got):\n%s", diff)
	}

	level, err := s.CiphertextLevel(out)
	require.NoError(t, err)
	require.Equal(t, 0, level, "change of variable takes a level")

	unit, err := s.GenerateChebyshev([]float64{0, 0, 1}, -1, 1)
	require.NoError(t, err)
	out, err = s.EvaluatePolynomial(ct, unit, 1<<30)
	require.NoError(t, err)
	level, err = s.CiphertextLevel(out)
	require.NoError(t, err)
	require.Equal(t, 1, level)

	low, err := s.RescaleNew(ct)
	require.NoError(t, err)
	_, err = s.EvaluatePolynomial(low, cheb, 1<<30)
	require.ErrorIs(t, err, orion.ErrBackend)

	_, err = s.GenerateChebyshev([]float64{1}, 1, -1)
	require.ErrorIs(t, err, orion.ErrInvalidConfig)

	require.True(t, s.DeletePolynomial(mono))
	_, err = s.EvaluatePolynomial(ct, mono, 1)
	require.ErrorIs(t, err, orion.ErrNotFound)
}

func TestBootstrap(t *testing.T) {
	s, b := newSession(t)
	ct := encrypt(t, s, []float64{0.5})

	_, err := s.Bootstrap(ct, 16)
	require.ErrorIs(t, err, orion.ErrNoBootstrapper)

	require.NoError(t, s.NewBootstrapper([]int{61, 61}, 16))
	require.True(t, s.HasBootstrapper(16))
	require.Equal(t, 1, s.BootstrapperCount())

	low, err := s.MulScalarFloatNew(ct, 1)
	require.NoError(t, err)
	low, err = s.Rescale(low)
	require.NoError(t, err)

	fresh, err := s.Bootstrap(low, 16)
	require.NoError(t, err)
	level, _ := s.CiphertextLevel(fresh)
	require.Equal(t, b.MaxLevel(), level)
	require.Equal(t, 0.5, decrypt(t, s, fresh)[0])

	s.DeleteBootstrappers()
	require.Zero(t, s.BootstrapperCount())
}

// trace runs a fixed call sequence and records every handle it receives.
func trace(t *testing.T) []int {
	s, _ := newSession(t, plain.WithLazyRotationKeys(true))
	var out []int
	push := func(h int, err error) int {
		require.NoError(t, err)
		out = append(out, h)
		return h
	}

	a := push(s.CreatePlaintext([]float64{1, 2}))
	b := push(s.CreatePlaintext([]float64{3, 4}))
	ca := push(s.Encrypt(a))
	cb := push(s.Encrypt(b))
	push(s.AddCiphertextNew(ca, cb))
	s.DeleteCiphertext(ca)
	push(s.RotateNew(cb, 1))
	lt := push(s.CreateLinearTransform([]float64{1, 2, 3, 4}, 2, 2))
	push(s.ApplyLinearTransform(cb, lt))
	s.DeletePlaintext(a)
	push(s.Decrypt(cb))
	return out
}

func TestHandleTraceDeterministic(t *testing.T) {
	first := trace(t)
	second := trace(t)
	require.Equal(t, first, second)
	require.Equal(t, []int{0, 1, 0, 1, 2, 0, 0, 3, 0}, first)
}

func TestPowerOfTwoRotations(t *testing.T) {
	require.Equal(t, []int{1, -1, 2, -2, 4, -4}, orion.PowerOfTwoRotations(8))

	s, b := newSession(t)
	require.NoError(t, s.GeneratePowerOfTwoRotationKeys())
	for _, k := range orion.PowerOfTwoRotations(b.MaxSlots()) {
		require.True(t, b.HasRotationKey(k), "rotation %d", k)
	}
}

func TestCodes(t *testing.T) {
	require.Equal(t, orion.CodeOK, orion.Code(nil))
	require.Equal(t, orion.CodeBackend, orion.Code(orion.WrapBackend("op", io.EOF)))
	require.ErrorIs(t, orion.WrapBackend("op", io.EOF), orion.ErrBackend)
	require.ErrorIs(t, orion.WrapBackend("op", io.EOF), io.EOF)
	require.NoError(t, orion.WrapBackend("op", nil))
}
