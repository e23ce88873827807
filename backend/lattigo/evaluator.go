// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package lattigo

import (
	"fmt"

	"github.com/luxfi/lattice/v7/core/rlwe"
	"github.com/luxfi/lattice/v7/schemes/ckks"
	"github.com/luxfi/lattice/v7/utils/bignum"

	"github.com/Anas-Seutia/orion"
)

func (b *Backend) Encode(values []float64, level int, scale float64) (*rlwe.Plaintext, error) {
	if b.encoder == nil {
		return nil, uninitialized("encoder")
	}
	if len(values) > b.params.MaxSlots() {
		return nil, fmt.Errorf("%w: %d values for %d slots", orion.ErrDimensionMismatch, len(values), b.params.MaxSlots())
	}
	if level < 0 || level > b.params.MaxLevel() {
		return nil, orion.WrapBackend("encode", fmt.Errorf("level %d outside [0, %d]", level, b.params.MaxLevel()))
	}
	pt := ckks.NewPlaintext(b.params, level)
	pt.Scale = rlwe.NewScale(scale)
	if err := b.encoder.Encode(values, pt); err != nil {
		return nil, orion.WrapBackend("encode", err)
	}
	return pt, nil
}

func (b *Backend) Decode(pt *rlwe.Plaintext) ([]float64, error) {
	if b.encoder == nil {
		return nil, uninitialized("encoder")
	}
	values := make([]float64, b.params.MaxSlots())
	if err := b.encoder.Decode(pt, values); err != nil {
		return nil, orion.WrapBackend("decode", err)
	}
	return values, nil
}

func (b *Backend) Encrypt(pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if b.encryptor == nil {
		return nil, uninitialized("encryptor")
	}
	ct := ckks.NewCiphertext(b.params, 1, pt.Level())
	if err := b.encryptor.Encrypt(pt, ct); err != nil {
		return nil, orion.WrapBackend("encrypt", err)
	}
	return ct, nil
}

func (b *Backend) Decrypt(ct *rlwe.Ciphertext) (*rlwe.Plaintext, error) {
	if b.decryptor == nil {
		return nil, uninitialized("decryptor")
	}
	pt := ckks.NewPlaintext(b.params, ct.Level())
	b.decryptor.Decrypt(ct, pt)
	return pt, nil
}

func (b *Backend) PlaintextScale(pt *rlwe.Plaintext) float64 { return pt.Scale.Float64() }
func (b *Backend) SetPlaintextScale(pt *rlwe.Plaintext, scale float64) { pt.Scale = rlwe.NewScale(scale) }
func (b *Backend) PlaintextLevel(pt *rlwe.Plaintext) int { return pt.Level() }
func (b *Backend) PlaintextSlots(pt *rlwe.Plaintext) int { return 1 << pt.LogDimensions.Cols }

func (b *Backend) CiphertextScale(ct *rlwe.Ciphertext) float64 { return ct.Scale.Float64() }
func (b *Backend) SetCiphertextScale(ct *rlwe.Ciphertext, scale float64) { ct.Scale = rlwe.NewScale(scale) }
func (b *Backend) CiphertextLevel(ct *rlwe.Ciphertext) int { return ct.Level() }
func (b *Backend) CiphertextSlots(ct *rlwe.Ciphertext) int { return 1 << ct.LogDimensions.Cols }
func (b *Backend) CiphertextDegree(ct *rlwe.Ciphertext) int { return ct.Degree() }

func (b *Backend) ready() error {
	if b.eval == nil {
		return uninitialized("evaluator")
	}
	return nil
}

// wrap tags the error of a lattice call with op.
func wrap(op string) func(*rlwe.Ciphertext, error) (*rlwe.Ciphertext, error) {
	return func(ct *rlwe.Ciphertext, err error) (*rlwe.Ciphertext, error) {
		if err != nil {
			return nil, orion.WrapBackend(op, err)
		}
		return ct, nil
	}
}

func (b *Backend) Add(x, y *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("add")(b.eval.AddNew(x, y))
}

func (b *Backend) Sub(x, y *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("sub")(b.eval.SubNew(x, y))
}

func (b *Backend) MulRelin(x, y *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("mul relin")(b.eval.MulRelinNew(x, y))
}

func (b *Backend) AddPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("add plaintext")(b.eval.AddNew(ct, pt))
}

func (b *Backend) SubPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("sub plaintext")(b.eval.SubNew(ct, pt))
}

func (b *Backend) MulPlain(ct *rlwe.Ciphertext, pt *rlwe.Plaintext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("mul plaintext")(b.eval.MulNew(ct, pt))
}

func (b *Backend) AddScalar(ct *rlwe.Ciphertext, c float64) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("add scalar")(b.eval.AddNew(ct, c))
}

func (b *Backend) SubScalar(ct *rlwe.Ciphertext, c float64) (*rlwe.Ciphertext, error) {
	return b.AddScalar(ct, -c)
}

// MulScalarInt multiplies by an integer, which leaves the scale unchanged.
func (b *Backend) MulScalarInt(ct *rlwe.Ciphertext, c int) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return wrap("mul scalar")(b.eval.MulNew(ct, c))
}

func (b *Backend) Negate(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	return b.MulScalarInt(ct, -1)
}

// MulScalarFloat multiplies by c encoded at the scale of the ciphertext's
// last modulus, so the product needs one rescale.
func (b *Backend) MulScalarFloat(ct *rlwe.Ciphertext, c float64) (*rlwe.Ciphertext, error) {
	return b.MulConst(ct, c)
}

// MulConst multiplies by a constant plaintext, so the result scale matches
// MulVector whether or not c is integral.
func (b *Backend) MulConst(ct *rlwe.Ciphertext, c float64) (*rlwe.Ciphertext, error) {
	v := make([]float64, b.CiphertextSlots(ct))
	for i := range v {
		v[i] = c
	}
	return b.MulVector(ct, v)
}

func (b *Backend) MulVector(ct *rlwe.Ciphertext, v []float64) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if b.encoder == nil {
		return nil, uninitialized("encoder")
	}
	if len(v) != b.CiphertextSlots(ct) {
		return nil, fmt.Errorf("%w: vector of %d values on %d slots", orion.ErrDimensionMismatch, len(v), b.CiphertextSlots(ct))
	}
	level := ct.Level()
	pt := ckks.NewPlaintext(b.params, level)
	pt.LogDimensions = ct.LogDimensions
	pt.Scale = rlwe.NewScale(b.params.Q()[level])
	if err := b.encoder.Encode(v, pt); err != nil {
		return nil, orion.WrapBackend("encode diagonal", err)
	}
	return wrap("mul diagonal")(b.eval.MulNew(ct, pt))
}

func (b *Backend) Rotate(ct *rlwe.Ciphertext, k int) (*rlwe.Ciphertext, error) {
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
	if b.normalize(k) == 0 {
		return ct.CopyNew(), nil
	}
	return wrap("rotate")(b.eval.RotateNew(ct, k))
}

func (b *Backend) Rescale(ct *rlwe.Ciphertext) (*rlwe.Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if ct.Level() == 0 {
		return nil, orion.WrapBackend("rescale", fmt.Errorf("ciphertext at level 0"))
	}
	out := ct.CopyNew()
	if err := b.eval.Rescale(out, out); err != nil {
		return nil, orion.WrapBackend("rescale", err)
	}
	return out, nil
}

func (b *Backend) EvaluatePolynomial(ct *rlwe.Ciphertext, p orion.Polynomial, outScale float64) (*rlwe.Ciphertext, error) {
	if b.polyEval == nil {
		return nil, uninitialized("polynomial evaluator")
	}
	if levels := p.Levels(); levels > ct.Level() {
		return nil, orion.WrapBackend("evaluate polynomial",
			fmt.Errorf("%s polynomial needs %d levels, ciphertext has %d", p.Basis, levels, ct.Level()))
	}
	var poly bignum.Polynomial
	switch p.Basis {
	case orion.Chebyshev:
		poly = bignum.NewPolynomial(bignum.Chebyshev, p.Coeffs, p.Interval)
		if p.Interval != [2]float64{-1, 1} {
			y, err := b.toUnitInterval(ct, p.Interval[0], p.Interval[1])
			if err != nil {
				return nil, err
			}
			ct = y
		}
	default:
		poly = bignum.NewPolynomial(bignum.Monomial, p.Coeffs, nil)
	}
	return wrap("evaluate polynomial")(b.polyEval.Evaluate(ct, poly, rlwe.NewScale(outScale)))
}

// toUnitInterval maps [lo, hi] onto [-1, 1], y = (2x - lo - hi) / (hi - lo),
// consuming one level. The polynomial evaluator expects Chebyshev inputs
// already in [-1, 1].
func (b *Backend) toUnitInterval(ct *rlwe.Ciphertext, lo, hi float64) (*rlwe.Ciphertext, error) {
	y, err := b.MulConst(ct, 2/(hi-lo))
	if err != nil {
		return nil, err
	}
	if y, err = b.AddScalar(y, -(lo+hi)/(hi-lo)); err != nil {
		return nil, err
	}
	return b.Rescale(y)
}

// Bootstrap refreshes ct with the bootstrapper built for slots. The
// ciphertext is viewed at the bootstrapper's slot count and the result is
// scaled back up to the full slot count.
func (b *Backend) Bootstrap(ct *rlwe.Ciphertext, slots int) (*rlwe.Ciphertext, error) {
	btp, ok := b.bootstrappers[slots]
	if !ok {
		return nil, fmt.Errorf("%w: %d", orion.ErrNoBootstrapper, slots)
	}
	in := ct.CopyNew()
	in.LogDimensions.Cols = btp.LogMaxSlots()

	out, err := btp.Bootstrap(in)
	if err != nil {
		return nil, orion.WrapBackend("bootstrap", err)
	}
	postscale := 1 << (b.params.LogMaxSlots() - btp.LogMaxSlots())
	if err := b.eval.Mul(out, postscale, out); err != nil {
		return nil, orion.WrapBackend("bootstrap postscale", err)
	}
	out.LogDimensions.Cols = b.params.LogMaxSlots()
	return out, nil
}
