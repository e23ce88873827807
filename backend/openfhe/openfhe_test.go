// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build cgo && openfhe

package openfhe

import (
	"io"
	"log"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/Anas-Seutia/orion"
)

var testParams = orion.ParametersLiteral{
	LogN:     12,
	LogQ:     []int{60, 40, 40, 40},
	LogP:     []int{60},
	LogScale: 40,
}

func newSession(t *testing.T, opts ...Option) *orion.Session[*Plaintext, *Ciphertext] {
	t.Helper()
	b, err := New(testParams, opts...)
	require.NoError(t, err)
	s := orion.NewSession[*Plaintext, *Ciphertext](b, orion.WithLogger(log.New(io.Discard, "", 0)))
	require.NoError(t, s.Setup())
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenFHE(t *testing.T) {
	s := newSession(t, WithLazyRotationKeys(false))
	approx := cmpopts.EquateApprox(0, 1e-3)

	pt, err := s.CreatePlaintext([]float64{0.5, -1, 2})
	require.NoError(t, err)
	ct, err := s.Encrypt(pt)
	require.NoError(t, err)

	t.Run("EncryptDecrypt", func(t *testing.T) {
		got, err := s.DecryptValues(ct)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{0.5, -1, 2}, got[:3], approx); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("MulScalarInt", func(t *testing.T) {
		h, err := s.MulScalarIntNew(ct, -3)
		require.NoError(t, err)
		got, err := s.DecryptValues(h)
		require.NoError(t, err)
		if diff := cmp.Diff([]float64{-1.5, 3, -6}, got[:3], approx); diff != "" {
			t.Fatal(diff)
		}
	})

	t.Run("LinearTransform", func(t *testing.T) {
		lt, err := s.CreateLinearTransformFromRows([][]float64{{1, 2, 0}, {0, 1, -1}, {3, 0, 1}})
		require.NoError(t, err)

		_, err = s.ApplyLinearTransform(ct, lt)
		require.ErrorIs(t, err, orion.ErrRotationKeyMissing)

		require.NoError(t, s.GenerateLinearTransformRotationKeys(lt))
		out, err := s.ApplyLinearTransform(ct, lt)
		require.NoError(t, err)
		want, err := s.ApplyLinearTransformPlaintext(lt, []float64{0.5, -1, 2})
		require.NoError(t, err)
		got, err := s.DecryptValues(out)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got[:3], approx); diff != "" {
			t.Fatal(diff)
		}
	})
}
