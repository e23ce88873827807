// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

package orion

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RingType selects the CKKS ring.
type RingType string

const (
	RingStandard           RingType = "standard"
	RingConjugateInvariant RingType = "conjugate_invariant"
)

// IOMode controls whether keys are persisted to or restored from the key
// store.
type IOMode string

const (
	IONone IOMode = "none"
	IOSave IOMode = "save"
	IOLoad IOMode = "load"
)

// ParametersLiteral carries the arguments of scheme creation.
type ParametersLiteral struct {
	LogN     int      `yaml:"LogN"`
	LogQ     []int    `yaml:"LogQ"`
	LogP     []int    `yaml:"LogP"`
	LogScale int      `yaml:"LogScale"`
	H        int      `yaml:"H"`
	RingType RingType `yaml:"RingType"`
	KeysPath string   `yaml:"KeysPath"`
	IOMode   IOMode   `yaml:"IOMode"`
}

// Backend names.
const (
	BackendLattigo = "lattigo"
	BackendOpenFHE = "openfhe"
	BackendPlain   = "plain"
)

// Config is the YAML file format.
//
//	ckks_params:
//	  LogN: 12
//	  LogQ: [40, 30]
//	  LogP: [40]
//	  LogScale: 30
//	orion:
//	  backend: lattigo
//	  keys_path: ./keys
//	  io_mode: save
type Config struct {
	CKKS  ParametersLiteral `yaml:"ckks_params"`
	Orion struct {
		Backend  string `yaml:"backend"`
		KeysPath string `yaml:"keys_path"`
		IOMode   IOMode `yaml:"io_mode"`
		// Bootstrap lists the slot counts to build bootstrappers for.
		Bootstrap []int `yaml:"bootstrap_slots"`
	} `yaml:"orion"`
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration bytes. Keys path and
// IO mode in the orion section override the ones in ckks_params.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if cfg.Orion.KeysPath != "" {
		cfg.CKKS.KeysPath = cfg.Orion.KeysPath
	}
	if cfg.Orion.IOMode != "" {
		cfg.CKKS.IOMode = cfg.Orion.IOMode
	}
	if cfg.Orion.Backend == "" {
		cfg.Orion.Backend = BackendLattigo
	}
	cfg.CKKS.setDefaults()
	if err := cfg.CKKS.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Orion.Backend {
	case BackendLattigo, BackendOpenFHE, BackendPlain:
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, cfg.Orion.Backend)
	}
	return &cfg, nil
}

func (p *ParametersLiteral) setDefaults() {
	if p.RingType == "" {
		p.RingType = RingStandard
	}
	p.RingType = RingType(strings.ToLower(string(p.RingType)))
	if p.IOMode == "" {
		p.IOMode = IONone
	}
}

// Validate checks the literal for values no backend accepts. Empty ring type
// and IO mode are accepted as their defaults.
func (p ParametersLiteral) Validate() error {
	p.setDefaults()
	if p.LogN < 1 || p.LogN > 17 {
		return fmt.Errorf("%w: LogN %d", ErrInvalidConfig, p.LogN)
	}
	if len(p.LogQ) == 0 {
		return fmt.Errorf("%w: empty LogQ", ErrInvalidConfig)
	}
	for _, q := range append(append([]int(nil), p.LogQ...), p.LogP...) {
		if q <= 0 || q > 61 {
			return fmt.Errorf("%w: modulus of %d bits", ErrInvalidConfig, q)
		}
	}
	if p.LogScale <= 0 || p.LogScale > 61 {
		return fmt.Errorf("%w: LogScale %d", ErrInvalidConfig, p.LogScale)
	}
	if p.H < 0 {
		return fmt.Errorf("%w: H %d", ErrInvalidConfig, p.H)
	}
	switch p.RingType {
	case RingStandard, RingConjugateInvariant:
	default:
		return fmt.Errorf("%w: ring type %q", ErrInvalidConfig, p.RingType)
	}
	switch p.IOMode {
	case IONone, IOSave, IOLoad:
	default:
		return fmt.Errorf("%w: io mode %q", ErrInvalidConfig, p.IOMode)
	}
	return nil
}

// WithDefaults returns a copy of p with the default ring type and IO mode
// filled in.
func (p ParametersLiteral) WithDefaults() ParametersLiteral {
	p.setDefaults()
	return p
}

// MaxSlots returns the slot count of the literal's ring.
func (p ParametersLiteral) MaxSlots() int {
	if p.RingType == RingConjugateInvariant {
		return 1 << p.LogN
	}
	return 1 << (p.LogN - 1)
}
