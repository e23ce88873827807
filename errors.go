// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import (
	"errors"

	"github.com/Anas-Seutia/orion/internal/heap"
	"github.com/Anas-Seutia/orion/lintrans"
)

// Errors returned by sessions and backends.
var (
	ErrNotFound              = heap.ErrNotFound
	ErrDimensionMismatch     = lintrans.ErrDimensionMismatch
	ErrInconsistentRowLength = lintrans.ErrInconsistentRowLength
	ErrUninitialized         = errors.New("component not initialized")
	ErrRotationKeyMissing    = errors.New("rotation key missing")
	ErrNoBootstrapper        = errors.New("no bootstrapper for slot count")
	ErrInvalidConfig         = errors.New("invalid configuration")
	ErrBackend               = errors.New("backend failure")
)

// Status codes reported across the C ABI.
const (
	CodeOK                 = 0
	CodeNotFound           = -1
	CodeDimensionMismatch  = -2
	CodeUninitialized      = -3
	CodeBackend            = -4
	CodeRotationKeyMissing = -5
	CodeInvalidConfig      = -6
)

// BackendError wraps a failure reported by the underlying CKKS library.
type BackendError struct {
	Op  string
	Err error
}

// WrapBackend returns err as a BackendError for op, or nil if err is nil.
func WrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

func (e *BackendError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *BackendError) Unwrap() error { return e.Err }

// Is makes every BackendError match ErrBackend.
func (e *BackendError) Is(target error) bool { return target == ErrBackend }

// Code classifies err into a status code.
func Code(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDimensionMismatch), errors.Is(err, ErrInconsistentRowLength):
		return CodeDimensionMismatch
	case errors.Is(err, ErrUninitialized):
		return CodeUninitialized
	case errors.Is(err, ErrRotationKeyMissing):
		return CodeRotationKeyMissing
	case errors.Is(err, ErrInvalidConfig):
		return CodeInvalidConfig
	default:
		return CodeBackend
	}
}
