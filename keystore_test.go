// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion_test

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Anas-Seutia/orion"
	"github.com/Anas-Seutia/orion/backend/plain"
)

var keyParams = orion.ParametersLiteral{LogN: 6, LogQ: []int{40, 30}, LogScale: 30}

func plainSession(t *testing.T, ks *orion.KeyStore) (*orion.Session[*plain.Plaintext, *plain.Ciphertext], *plain.Backend) {
	t.Helper()
	b, err := plain.New(keyParams, plain.WithKeyStore(ks))
	require.NoError(t, err)
	s := orion.NewSession[*plain.Plaintext, *plain.Ciphertext](b,
		orion.WithLogger(log.New(io.Discard, "", 0)), orion.WithKeyStore(ks))
	require.NoError(t, s.Setup())
	return s, b
}

func TestKeyStoreModes(t *testing.T) {
	ks := orion.NewMemoryKeyStore(orion.IONone)
	require.Equal(t, orion.IONone, ks.Mode())
	require.NoError(t, ks.Persist("a", func() ([]byte, error) { return []byte("x"), nil }))
	_, err := ks.Get("a")
	require.ErrorIs(t, err, orion.ErrNotFound)

	require.NoError(t, ks.Put("a", []byte("x")))
	_, found, err := ks.Restore("a")
	require.NoError(t, err)
	require.False(t, found, "restore outside load mode")

	var nilStore *orion.KeyStore
	require.Equal(t, orion.IONone, nilStore.Mode())
	require.NoError(t, nilStore.Close())
}

func TestKeyStoreSaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "keys")

	save, err := orion.OpenKeyStore(dir, orion.IOSave)
	require.NoError(t, err)
	s1, b1 := plainSession(t, save)
	require.NoError(t, s1.AddRotationKey(5))
	secret, err := b1.SerializeSecretKey()
	require.NoError(t, err)

	names, err := save.Names("rotation/")
	require.NoError(t, err)
	require.Contains(t, names, orion.RotationKeyName(5))
	require.NoError(t, s1.Close())

	load, err := orion.OpenKeyStore(dir, orion.IOLoad)
	require.NoError(t, err)
	s2, b2 := plainSession(t, load)
	defer s2.Close()

	restored, err := b2.SerializeSecretKey()
	require.NoError(t, err)
	require.Equal(t, secret, restored)

	require.False(t, b2.HasRotationKey(5))
	require.NoError(t, s2.AddRotationKey(5))
	require.True(t, b2.HasRotationKey(5))

	_, found, err := load.Restore(orion.RotationKeyName(6))
	require.NoError(t, err)
	require.False(t, found)
}

func TestSaveLoadLinearTransform(t *testing.T) {
	s, _ := plainSession(t, orion.NewMemoryKeyStore(orion.IONone))
	defer s.Close()

	lt, err := s.CreateLinearTransform([]float64{1, 2, 3, 4}, 2, 2)
	require.NoError(t, err)
	require.NoError(t, s.SaveLinearTransform(lt, "mat"))

	h, err := s.LoadLinearTransform("mat")
	require.NoError(t, err)
	require.NotEqual(t, lt, h)
	got, err := s.ApplyLinearTransformPlaintext(h, []float64{1, 1})
	require.NoError(t, err)
	require.Equal(t, []float64{3, 7}, got)

	_, err = s.LoadLinearTransform("missing")
	require.ErrorIs(t, err, orion.ErrNotFound)
	require.Equal(t, orion.CodeNotFound, orion.Code(err))
}
