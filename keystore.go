// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Anas-Seutia/orion/internal/storage"
)

// Key names in a KeyStore.
const (
	SecretKeyName          = "secret_key"
	PublicKeyName          = "public_key"
	RelinearizationKeyName = "relinearization_key"
)

// RotationKeyName names the stored key of rotation k.
func RotationKeyName(k int) string { return "rotation/" + strconv.Itoa(k) }

// TransformName names a stored linear transform.
func TransformName(name string) string { return "transform/" + name }

// KeyStore persists keys according to an IOMode: with IOSave every
// generated key is written, with IOLoad keys are read back before falling
// back to generation, and with IONone nothing touches the store.
type KeyStore struct {
	store   storage.Storage
	mode    IOMode
	timeout time.Duration
}

// OpenKeyStore opens the store at path (see storage.Open) in the given mode.
func OpenKeyStore(path string, mode IOMode) (*KeyStore, error) {
	if mode == "" {
		mode = IONone
	}
	s, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open key store: %w", err)
	}
	return &KeyStore{store: s, mode: mode, timeout: 30 * time.Second}, nil
}

// NewMemoryKeyStore returns an in-memory store, mostly for tests.
func NewMemoryKeyStore(mode IOMode) *KeyStore {
	return &KeyStore{store: storage.NewMemoryStorage(0), mode: mode, timeout: 30 * time.Second}
}

// Mode returns the store's IO mode.
func (ks *KeyStore) Mode() IOMode {
	if ks == nil {
		return IONone
	}
	return ks.mode
}

// Restore returns the stored blob when the mode is IOLoad. found is false
// when the mode forbids loading or the key is absent.
func (ks *KeyStore) Restore(name string) (data []byte, found bool, err error) {
	if ks.Mode() != IOLoad {
		return nil, false, nil
	}
	data, err = ks.Get(name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Persist writes the blob produced by marshal when the mode is IOSave.
func (ks *KeyStore) Persist(name string, marshal func() ([]byte, error)) error {
	if ks.Mode() != IOSave {
		return nil
	}
	data, err := marshal()
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	return ks.Put(name, data)
}

// Put stores a blob regardless of the mode.
func (ks *KeyStore) Put(name string, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), ks.timeout)
	defer cancel()
	if err := ks.store.Store(ctx, name, data); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

// Get loads a blob regardless of the mode. A missing blob reports
// ErrNotFound.
func (ks *KeyStore) Get(name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ks.timeout)
	defer cancel()
	data, err := ks.store.Load(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, name, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return data, nil
}

// Names lists stored blob names with the given prefix.
func (ks *KeyStore) Names(prefix string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), ks.timeout)
	defer cancel()
	return ks.store.Keys(ctx, prefix)
}

// Close closes the underlying storage.
func (ks *KeyStore) Close() error {
	if ks == nil {
		return nil
	}
	return ks.store.Close()
}
