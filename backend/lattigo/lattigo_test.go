// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package lattigo

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/stretchr/testify/require"

	"github.com/Anas-Seutia/orion"
	"github.com/Anas-Seutia/orion/lintrans"
)

var testParams = orion.ParametersLiteral{
	LogN:     10,
	LogQ:     []int{55, 45, 45},
	LogP:     []int{61},
	LogScale: 45,
}

// close enough for CKKS noise at these parameters
var approx = cmpopts.EquateApprox(0, 1e-3)

func newSession(t *testing.T, opts ...Option) (*orion.Session[*rlwe.Plaintext, *rlwe.Ciphertext], *Backend) {
	t.Helper()
	b, err := New(testParams, opts...)
	require.NoError(t, err)
	s := orion.NewSession[*rlwe.Plaintext, *rlwe.Ciphertext](b, orion.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, s.Setup())
	t.Cleanup(func() { s.Close() })
	return s, b
}

func TestParameters(t *testing.T) {
	b, err := New(testParams)
	require.NoError(t, err)
	require.Equal(t, 10, b.LogN())
	require.Equal(t, 512, b.MaxSlots())
	require.Equal(t, 2, b.MaxLevel())
	require.Equal(t, float64(uint64(1)<<45), b.DefaultScale())
	require.Contains(t, b.ModuliChain(), "logN=10")

	_, err = New(orion.ParametersLiteral{LogN: 10, LogScale: 40})
	require.ErrorIs(t, err, orion.ErrInvalidConfig)
}

func TestSecretDistribution(t *testing.T) {
	for _, h := range []int{0, 64} {
		lit := testParams
		lit.H = h
		require.NoError(t, lit.Validate())

		b, err := New(lit)
		require.NoError(t, err, "H=%d", h)
		if h > 0 {
			require.Equal(t, h, b.Parameters().XsHammingWeight())
		}

		s := orion.NewSession[*rlwe.Plaintext, *rlwe.Ciphertext](b, orion.WithLogger(log.New(io.Discard, "", 0)))
		require.NoError(t, s.Setup(), "H=%d", h)
		pt, err := s.CreatePlaintext([]float64{0.25, -0.5})
		require.NoError(t, err)
		ct, err := s.Encrypt(pt)
		require.NoError(t, err)
		got, err := s.DecryptValues(ct)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{0.25, -0.5}, got[:2], approx); diff != "" {
			t.Fatalf("H=%d: %s", h, diff)
		}
		require.NoError(t, s.Close())
	}
}

func TestStagedSetup(t *testing.T) {
	b, err := New(testParams)
	require.NoError(t, err)

	require.ErrorIs(t, b.GenerateSecretKey(), orion.ErrUninitialized)
	require.ErrorIs(t, b.NewEvaluator(), orion.ErrUninitialized)
	_, err = b.Encode([]float64{1}, 0, 1<<20)
	require.ErrorIs(t, err, orion.ErrUninitialized)

	require.NoError(t, b.NewKeyGenerator())
	require.NoError(t, b.GenerateSecretKey())
	require.ErrorIs(t, b.NewEncryptor(), orion.ErrUninitialized)
	require.NoError(t, b.GeneratePublicKey())
	require.NoError(t, b.NewEncryptor())
}

func TestArithmetic(t *testing.T) {
	s, _ := newSession(t)

	encrypt := func(v []float64) int {
		pt, err := s.CreatePlaintext(v)
		require.NoError(t, err)
		ct, err := s.Encrypt(pt)
		require.NoError(t, err)
		return ct
	}
	decrypt := func(ct, n int) []float64 {
		v, err := s.DecryptValues(ct)
		require.NoError(t, err)
		return v[:n]
	}

	a := encrypt([]float64{0.5, -1, 2})
	b := encrypt([]float64{1, 0.25, -0.5})

	t.Run("EncryptDecrypt", func(t *testing.T) {
		if diff := cmp.Diff([]float64{0.5, -1, 2}, decrypt(a, 3), approx); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Add", func(t *testing.T) {
		h, err := s.AddCiphertextNew(a, b)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{1.5, -0.75, 1.5}, decrypt(h, 3), approx); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("MulRelinRescale", func(t *testing.T) {
		h, err := s.MulRelinCiphertextNew(a, b)
		require.NoError(t, err)
		_, err = s.Rescale(h)
		require.NoError(t, err)
		level, err := s.CiphertextLevel(h)
		require.NoError(t, err)
		require.Equal(t, 1, level)
		if diff := cmp.Diff([]float64{0.5, -0.25, -1}, decrypt(h, 3), approx); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Scalars", func(t *testing.T) {
		h, err := s.MulScalarFloatNew(a, 1)
		require.NoError(t, err)
		_, err = s.Rescale(h)
		require.NoError(t, err)
		scale, _ := s.CiphertextScale(h)
		want, _ := s.CiphertextScale(a)
		require.InEpsilon(t, want, scale, 1e-9)

		h, err = s.AddScalarNew(h, 1)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{1.5, 0, 3}, decrypt(h, 3), approx); diff != "" {
			t.Fatal(diff)
		}

		neg, err := s.Negate(a)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{-0.5, 1, -2}, decrypt(neg, 3), approx); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("Rotate", func(t *testing.T) {
		h, err := s.RotateNew(a, 1)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{-1, 2, 0}, decrypt(h, 3), approx); diff != "" {
			t.Fatal(diff)
		}
	})
}

func TestLinearTransform(t *testing.T) {
	s, b := newSession(t, WithLazyRotationKeys(false))

	m := []float64{
		1, 2, 0, -1, 0.5,
		0, 3, 1, 0, 0,
		4, 0, 0, 2, 1,
	}
	v := []float64{0.1, -0.2, 0.3, 0.4, -0.5}
	lt, err := s.CreateLinearTransform(m, 3, 5)
	require.NoError(t, err)

	pt, err := s.CreatePlaintext(v)
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)

	_, err = s.ApplyLinearTransform(ct, lt)
	require.ErrorIs(t, err, orion.ErrRotationKeyMissing)

	require.NoError(t, s.GenerateLinearTransformRotationKeys(lt))
	rots, err := s.LinearTransformRotations(lt)
	require.NoError(t, err)
	for _, k := range rots {
		require.True(t, b.HasRotationKey(k), "rotation %d", k)
	}

	out, err := s.ApplyLinearTransform(ct, lt)
	require.NoError(t, err)
	want, err := s.ApplyLinearTransformPlaintext(lt, v)
	require.NoError(t, err)
	got, err := s.DecryptValues(out)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got[:3], approx); diff != "" {
		t.Fatalf("transform mismatch (-plaintext +ciphertext):\n%s", diff)
	}

	dense, err := s.ApplyLinearTransform(ct, lt, lintrans.WithoutSparsitySkip())
	require.NoError(t, err)
	got, err = s.DecryptValues(dense)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got[:3], approx); diff != "" {
		t.Fatalf("dense transform mismatch:\n%s", diff)
	}
}

func TestPolynomial(t *testing.T) {
	s, b := newSession(t)

	h, err := s.GenerateMonomial([]float64{0.5, 0, 1})
	require.NoError(t, err)
	pt, err := s.CreatePlaintext([]float64{0, 0.5, -1})
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)

	out, err := s.EvaluatePolynomial(ct, h, b.DefaultScale())
	require.NoError(t, err)
	got, err := s.DecryptValues(out)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{0.5, 0.75, 1.5}, got[:3], cmpopts.EquateApprox(0, 1e-2)); diff != "" {
		t.Fatal(diff)
	}

	// Over [-1, 1] a degree 2 series fits in the two levels; over [-2, 2]
	// the change of variable needs a third one.
	unit, err := s.GenerateChebyshev([]float64{0, 0, 1}, -1, 1)
	require.NoError(t, err)
	out, err = s.EvaluatePolynomial(ct, unit, b.DefaultScale())
	require.NoError(t, err)
	got, err = s.DecryptValues(out)
	require.NoError(t, err)
	// T_2(x) = 2x^2 - 1
	if diff := cmp.Diff([]float64{-1, -0.5, 1}, got[:3], cmpopts.EquateApprox(0, 1e-2)); diff != "" {
		t.Fatal(diff)
	}

	wide, err := s.GenerateChebyshev([]float64{0, 0, 1}, -2, 2)
	require.NoError(t, err)
	_, err = s.EvaluatePolynomial(ct, wide, b.DefaultScale())
	require.ErrorIs(t, err, orion.ErrBackend)
	require.ErrorContains(t, err, "needs 3 levels")
}

func TestChebyshevInterval(t *testing.T) {
	lit := testParams
	lit.LogQ = []int{55, 45, 45, 45}
	b, err := New(lit)
	require.NoError(t, err)
	s := orion.NewSession[*rlwe.Plaintext, *rlwe.Ciphertext](b, orion.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, s.Setup())
	defer s.Close()

	// T_2(x/2) = x^2/2 - 1 over [-2, 2]
	h, err := s.GenerateChebyshev([]float64{0, 0, 1}, -2, 2)
	require.NoError(t, err)
	pt, err := s.CreatePlaintext([]float64{0, 1, -2, 1.5})
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)

	out, err := s.EvaluatePolynomial(ct, h, b.DefaultScale())
	require.NoError(t, err)
	level, err := s.CiphertextLevel(out)
	require.NoError(t, err)
	require.Equal(t, 0, level)
	got, err := s.DecryptValues(out)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{-1, -0.5, 1, 0.125}, got[:4], cmpopts.EquateApprox(0, 1e-2)); diff != "" {
		t.Fatal(diff)
	}
}

func TestKeyStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")

	save, err := orion.OpenKeyStore(dir, orion.IOSave)
	require.NoError(t, err)
	s1, b1 := newSession(t, WithKeyStore(save))
	require.NoError(t, s1.AddRotationKey(3))

	load, err := orion.OpenKeyStore(dir, orion.IOLoad)
	require.NoError(t, err)
	_, b2 := newSession(t, WithKeyStore(load), WithLazyRotationKeys(false))
	require.NoError(t, b2.GenerateRotationKey(3))

	pt, err := b1.Encode([]float64{0.25, 0.5}, b1.MaxLevel(), b1.DefaultScale())
	require.NoError(t, err)
	ct, err := b1.Encrypt(pt)
	require.NoError(t, err)
	rotated, err := b2.Rotate(ct, 3)
	require.NoError(t, err)

	dec, err := b2.Decrypt(ct)
	require.NoError(t, err)
	got, err := b2.Decode(dec)
	require.NoError(t, err)
	if diff := cmp.Diff([]float64{0.25, 0.5}, got[:2], approx); diff != "" {
		t.Fatalf("keys did not survive the store:\n%s", diff)
	}

	dec, err = b2.Decrypt(rotated)
	require.NoError(t, err)
	got, err = b2.Decode(dec)
	require.NoError(t, err)
	require.InDelta(t, 0.25, got[b2.MaxSlots()-3], 1e-3)

	data, err := b1.SerializeRotationKey(3)
	require.NoError(t, err)
	require.Error(t, b2.LoadRotationKey(5, data))
}

func TestMissingRotationKey(t *testing.T) {
	s, b := newSession(t, WithLazyRotationKeys(false))
	pt, err := s.CreatePlaintext([]float64{1})
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)

	_, err = s.RotateNew(ct, 7)
	require.ErrorIs(t, err, orion.ErrRotationKeyMissing)

	require.NoError(t, s.AddRotationKey(7))
	require.Equal(t, 1, b.RotationKeyCount())
	_, err = s.RotateNew(ct, 7)
	require.NoError(t, err)

	b.DeleteRotationKeys()
	require.False(t, b.HasRotationKey(7))
	require.True(t, b.HasRotationKey(b.MaxSlots()))
}
