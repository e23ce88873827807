// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package lintrans implements plaintext matrices applied to CKKS ciphertexts.
//
// A Transform is either dense (a rows x cols matrix in row-major order) or
// diagonal (a set of generalized diagonals over a fixed number of slots).
// Dense transforms are evaluated with the baby-step giant-step schedule of
// Halevi and Shoup over the generalized diagonals of the matrix padded to a
// square frame; diagonal transforms are evaluated with one rotation per
// diagonal.
//
// Diagonal d of an n x n frame is the vector
//
//	D_d[i] = M[i][(i+d) mod n]
//
// so that (M v)[i] = sum_d D_d[i] * v[(i+d) mod n].
package lintrans

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrDimensionMismatch is returned when a buffer, vector or ciphertext
	// does not have the size a transform requires.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrInconsistentRowLength is returned when the rows of a nested matrix
	// differ in length.
	ErrInconsistentRowLength = errors.New("inconsistent row length")
)

// Transform is an immutable plaintext matrix.
type Transform struct {
	rows, cols int
	data       []float64

	slots int
	diags map[int][]float64
}

// NewDense builds a transform from a row-major buffer.
func NewDense(data []float64, rows, cols int) (*Transform, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d matrix", ErrDimensionMismatch, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d values for a %dx%d matrix", ErrDimensionMismatch, len(data), rows, cols)
	}
	return &Transform{
		rows: rows,
		cols: cols,
		data: slices.Clone(data),
	}, nil
}

// NewFromRows builds a dense transform from a nested matrix.
func NewFromRows(m [][]float64) (*Transform, error) {
	if len(m) == 0 || len(m[0]) == 0 {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimensionMismatch)
	}
	cols := len(m[0])
	data := make([]float64, 0, len(m)*cols)
	for i, row := range m {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInconsistentRowLength, i, len(row), cols)
		}
		data = append(data, row...)
	}
	return &Transform{rows: len(m), cols: cols, data: data}, nil
}

// NewDiagonal builds a transform from its diagonals. Indexes are taken
// modulo slots; two indexes that reduce to the same diagonal are summed.
func NewDiagonal(diags map[int][]float64, slots int) (*Transform, error) {
	if slots <= 0 {
		return nil, fmt.Errorf("%w: %d slots", ErrDimensionMismatch, slots)
	}
	if len(diags) == 0 {
		return nil, fmt.Errorf("%w: no diagonals", ErrDimensionMismatch)
	}
	out := make(map[int][]float64, len(diags))
	for _, k := range slices.Sorted(maps.Keys(diags)) {
		d := diags[k]
		if len(d) != slots {
			return nil, fmt.Errorf("%w: diagonal %d has %d values, want %d", ErrDimensionMismatch, k, len(d), slots)
		}
		idx := mod(k, slots)
		if acc, ok := out[idx]; ok {
			for i := range acc {
				acc[i] += d[i]
			}
			continue
		}
		out[idx] = slices.Clone(d)
	}
	return &Transform{rows: slots, cols: slots, slots: slots, diags: out}, nil
}

// Rows returns the number of output values.
func (t *Transform) Rows() int { return t.rows }

// Cols returns the number of input values.
func (t *Transform) Cols() int { return t.cols }

// IsDiagonal reports whether t was built from diagonals.
func (t *Transform) IsDiagonal() bool { return t.diags != nil }

// Dim returns the side of the square frame the transform is evaluated in.
func (t *Transform) Dim() int {
	if t.IsDiagonal() {
		return t.slots
	}
	return max(t.rows, t.cols)
}

// At returns M[i][j] of a dense transform; indexes outside the matrix read 0.
func (t *Transform) At(i, j int) float64 {
	if t.IsDiagonal() {
		n := t.slots
		if d, ok := t.diags[mod(j-i, n)]; ok {
			return d[i]
		}
		return 0
	}
	if i < 0 || j < 0 || i >= t.rows || j >= t.cols {
		return 0
	}
	return t.data[i*t.cols+j]
}

// Diagonal returns D_d over the frame.
func (t *Transform) Diagonal(d int) []float64 {
	n := t.Dim()
	d = mod(d, n)
	if t.IsDiagonal() {
		if v, ok := t.diags[d]; ok {
			return slices.Clone(v)
		}
		return make([]float64, n)
	}
	out := make([]float64, n)
	for i := 0; i < t.rows; i++ {
		if j := (i + d) % n; j < t.cols {
			out[i] = t.data[i*t.cols+j]
		}
	}
	return out
}

// Indexes returns the diagonal indexes a diagonal transform stores, ascending.
// For a dense transform it returns every index of the frame.
func (t *Transform) Indexes() []int {
	if t.IsDiagonal() {
		return slices.Sorted(maps.Keys(t.diags))
	}
	out := make([]int, t.Dim())
	for i := range out {
		out[i] = i
	}
	return out
}

// ApplyPlaintext returns M v computed in the clear.
func (t *Transform) ApplyPlaintext(v []float64) ([]float64, error) {
	if len(v) != t.cols {
		return nil, fmt.Errorf("%w: vector of %d values for %d columns", ErrDimensionMismatch, len(v), t.cols)
	}
	if t.IsDiagonal() {
		n := t.slots
		out := make([]float64, n)
		for k, d := range t.diags {
			for i := range out {
				out[i] += d[i] * v[(i+k)%n]
			}
		}
		return out, nil
	}
	out := make([]float64, t.rows)
	for i := range out {
		row := t.data[i*t.cols : (i+1)*t.cols]
		var acc float64
		for j, m := range row {
			acc += m * v[j]
		}
		out[i] = acc
	}
	return out, nil
}

// transformWire is the gob encoding of a Transform.
type transformWire struct {
	Rows, Cols int
	Data       []float64
	Slots      int
	Diags      map[int][]float64
}

// MarshalBinary encodes t.
func (t *Transform) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	w := transformWire{Rows: t.rows, Cols: t.cols, Data: t.data, Slots: t.slots, Diags: t.diags}
	if err := gob.NewEncoder(&buf).Encode(&w); err != nil {
		return nil, fmt.Errorf("encode transform: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes data produced by MarshalBinary into t, validating
// it through the same checks as the constructors.
func (t *Transform) UnmarshalBinary(data []byte) error {
	var w transformWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&w); err != nil {
		return fmt.Errorf("decode transform: %w", err)
	}
	var (
		dec *Transform
		err error
	)
	if w.Diags != nil {
		dec, err = NewDiagonal(w.Diags, w.Slots)
	} else {
		dec, err = NewDense(w.Data, w.Rows, w.Cols)
	}
	if err != nil {
		return err
	}
	*t = *dec
	return nil
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
