// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package plain

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/Anas-Seutia/orion"
)

func (b *Backend) Encode(values []float64, level int, scale float64) (*Plaintext, error) {
	if !b.encoder {
		return nil, uninitialized("encoder")
	}
	if len(values) > b.slots {
		return nil, fmt.Errorf("%w: %d values for %d slots", orion.ErrDimensionMismatch, len(values), b.slots)
	}
	if level < 0 || level > b.MaxLevel() {
		return nil, orion.WrapBackend("encode", fmt.Errorf("level %d outside [0, %d]", level, b.MaxLevel()))
	}
	v := make([]float64, b.slots)
	copy(v, values)
	return &Plaintext{Values: v, Level: level, Scale: scale}, nil
}

func (b *Backend) Decode(pt *Plaintext) ([]float64, error) {
	if !b.encoder {
		return nil, uninitialized("encoder")
	}
	return slices.Clone(pt.Values), nil
}

func (b *Backend) Encrypt(pt *Plaintext) (*Ciphertext, error) {
	if !b.encryptor {
		return nil, uninitialized("encryptor")
	}
	return &Ciphertext{Values: slices.Clone(pt.Values), Level: pt.Level, Scale: pt.Scale, Degree: 1}, nil
}

func (b *Backend) Decrypt(ct *Ciphertext) (*Plaintext, error) {
	if !b.decryptor {
		return nil, uninitialized("decryptor")
	}
	return &Plaintext{Values: slices.Clone(ct.Values), Level: ct.Level, Scale: ct.Scale}, nil
}

func (b *Backend) PlaintextScale(pt *Plaintext) float64 { return pt.Scale }
func (b *Backend) SetPlaintextScale(pt *Plaintext, scale float64) { pt.Scale = scale }
func (b *Backend) PlaintextLevel(pt *Plaintext) int { return pt.Level }
func (b *Backend) PlaintextSlots(pt *Plaintext) int { return len(pt.Values) }

func (b *Backend) CiphertextScale(ct *Ciphertext) float64 { return ct.Scale }
func (b *Backend) SetCiphertextScale(ct *Ciphertext, scale float64) { ct.Scale = scale }
func (b *Backend) CiphertextLevel(ct *Ciphertext) int { return ct.Level }
func (b *Backend) CiphertextSlots(ct *Ciphertext) int { return len(ct.Values) }
func (b *Backend) CiphertextDegree(ct *Ciphertext) int { return ct.Degree }

func (b *Backend) ready() error {
	if !b.evaluator {
		return uninitialized("evaluator")
	}
	return nil
}

func (b *Backend) mapValues(ct *Ciphertext, f func(i int, x float64) float64) *Ciphertext {
	out := &Ciphertext{Values: make([]float64, len(ct.Values)), Level: ct.Level, Scale: ct.Scale, Degree: ct.Degree}
	for i, x := range ct.Values {
		out.Values[i] = f(i, x)
	}
	return out
}

func (b *Backend) combine(x, y *Ciphertext, f func(a, b float64) float64) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	out := b.mapValues(x, func(i int, v float64) float64 { return f(v, y.Values[i]) })
	out.Level = min(x.Level, y.Level)
	return out, nil
}

func (b *Backend) Add(x, y *Ciphertext) (*Ciphertext, error) {
	return b.combine(x, y, func(a, c float64) float64 { return a + c })
}

func (b *Backend) Sub(x, y *Ciphertext) (*Ciphertext, error) {
	return b.combine(x, y, func(a, c float64) float64 { return a - c })
}

func (b *Backend) MulRelin(x, y *Ciphertext) (*Ciphertext, error) {
	out, err := b.combine(x, y, func(a, c float64) float64 { return a * c })
	if err != nil {
		return nil, err
	}
	out.Scale = x.Scale * y.Scale
	out.Degree = 1
	return out, nil
}

func (b *Backend) withPlain(ct *Ciphertext, pt *Plaintext, f func(a, c float64) float64) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	out := b.mapValues(ct, func(i int, v float64) float64 { return f(v, pt.Values[i]) })
	out.Level = min(ct.Level, pt.Level)
	return out, nil
}

func (b *Backend) AddPlain(ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	return b.withPlain(ct, pt, func(a, c float64) float64 { return a + c })
}

func (b *Backend) SubPlain(ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	return b.withPlain(ct, pt, func(a, c float64) float64 { return a - c })
}

func (b *Backend) MulPlain(ct *Ciphertext, pt *Plaintext) (*Ciphertext, error) {
	out, err := b.withPlain(ct, pt, func(a, c float64) float64 { return a * c })
	if err != nil {
		return nil, err
	}
	out.Scale = ct.Scale * pt.Scale
	return out, nil
}

func (b *Backend) scalar(ct *Ciphertext, f func(x float64) float64) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	return b.mapValues(ct, func(_ int, x float64) float64 { return f(x) }), nil
}

func (b *Backend) AddScalar(ct *Ciphertext, c float64) (*Ciphertext, error) {
	return b.scalar(ct, func(x float64) float64 { return x + c })
}

func (b *Backend) SubScalar(ct *Ciphertext, c float64) (*Ciphertext, error) {
	return b.scalar(ct, func(x float64) float64 { return x - c })
}

func (b *Backend) MulScalarInt(ct *Ciphertext, c int) (*Ciphertext, error) {
	return b.scalar(ct, func(x float64) float64 { return x * float64(c) })
}

func (b *Backend) Negate(ct *Ciphertext) (*Ciphertext, error) {
	return b.scalar(ct, func(x float64) float64 { return -x })
}

// MulScalarFloat encodes c at the scale of the current modulus, like the
// encrypted backends, so the product needs one rescale.
func (b *Backend) MulScalarFloat(ct *Ciphertext, c float64) (*Ciphertext, error) {
	return b.MulConst(ct, c)
}

func (b *Backend) MulConst(ct *Ciphertext, c float64) (*Ciphertext, error) {
	out, err := b.scalar(ct, func(x float64) float64 { return x * c })
	if err != nil {
		return nil, err
	}
	out.Scale *= b.moduli[ct.Level]
	return out, nil
}

func (b *Backend) MulVector(ct *Ciphertext, v []float64) (*Ciphertext, error) {
	if len(v) != len(ct.Values) {
		return nil, fmt.Errorf("%w: vector of %d values on %d slots", orion.ErrDimensionMismatch, len(v), len(ct.Values))
	}
	out, err := b.scalar(ct, func(x float64) float64 { return x })
	if err != nil {
		return nil, err
	}
	for i := range out.Values {
		out.Values[i] *= v[i]
	}
	out.Scale *= b.moduli[ct.Level]
	return out, nil
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
	b.rotations++
	n := len(ct.Values)
	return b.mapValues(ct, func(i int, _ float64) float64 { return ct.Values[(i+b.normalize(k))%n] }), nil
}

func (b *Backend) Rescale(ct *Ciphertext) (*Ciphertext, error) {
	if err := b.ready(); err != nil {
		return nil, err
	}
	if ct.Level == 0 {
		return nil, orion.WrapBackend("rescale", fmt.Errorf("ciphertext at level 0"))
	}
	out := b.mapValues(ct, func(_ int, x float64) float64 { return x })
	out.Scale = ct.Scale / b.moduli[ct.Level]
	out.Level = ct.Level - 1
	return out, nil
}

func (b *Backend) EvaluatePolynomial(ct *Ciphertext, p orion.Polynomial, outScale float64) (*Ciphertext, error) {
	if !b.polyEval {
		return nil, uninitialized("polynomial evaluator")
	}
	levels := p.Levels()
	if levels > ct.Level {
		return nil, orion.WrapBackend("evaluate polynomial",
			fmt.Errorf("%s polynomial needs %d levels, ciphertext has %d", p.Basis, levels, ct.Level))
	}
	out := b.mapValues(ct, func(_ int, x float64) float64 { return p.Evaluate(x) })
	out.Level = ct.Level - levels
	out.Scale = outScale
	return out, nil
}

func (b *Backend) NewBootstrapper(logPs []int, slots int) error {
	if err := b.ready(); err != nil {
		return err
	}
	if slots <= 0 || slots > b.slots || bits.OnesCount(uint(slots)) != 1 {
		return orion.WrapBackend("new bootstrapper", fmt.Errorf("invalid slot count %d", slots))
	}
	b.bootstrappers[slots] = slices.Clone(logPs)
	return nil
}

func (b *Backend) Bootstrap(ct *Ciphertext, slots int) (*Ciphertext, error) {
	if _, ok := b.bootstrappers[slots]; !ok {
		return nil, fmt.Errorf("%w: %d", orion.ErrNoBootstrapper, slots)
	}
	out := b.mapValues(ct, func(_ int, x float64) float64 { return x })
	out.Level = b.MaxLevel()
	out.Scale = b.DefaultScale()
	return out, nil
}

func (b *Backend) HasBootstrapper(slots int) bool {
	_, ok := b.bootstrappers[slots]
	return ok
}

func (b *Backend) BootstrapperCount() int { return len(b.bootstrappers) }

func (b *Backend) DeleteBootstrappers() { b.bootstrappers = make(map[int][]int) }
