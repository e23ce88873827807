// Copyright (c) 2025, The Orion Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command orion-check runs a fixed call sequence against a backend and
// against the cleartext reference backend, then compares decrypted results
// and handle traces.
//
//	orion-check -config params.yml
//	orion-check -config params.yml -backend plain
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/luxfi/lattice/v7/core/rlwe"

	"github.com/Anas-Seutia/orion"
	"github.com/Anas-Seutia/orion/backend/lattigo"
	"github.com/Anas-Seutia/orion/backend/plain"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		backend    = flag.String("backend", "", "backend override (lattigo, plain)")
		tolerance  = flag.Float64("tol", 1e-2, "absolute tolerance of the value comparison")
		verbose    = flag.Bool("v", false, "log session activity")
		cpuProfile = flag.String("cpu", "", "write cpu profile to file")
		memProfile = flag.String("mem", "", "write memory profile to file")
	)
	flag.Parse()

	if *configPath == "" {
		return errors.New("missing -config")
	}
	cfg, err := orion.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *backend != "" {
		cfg.Orion.Backend = *backend
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "orion: ", log.LstdFlags)
	}

	prof := &profiler{cpuPath: *cpuProfile, memPath: *memProfile}
	if err := prof.Start(); err != nil {
		return err
	}
	defer func() {
		if err := prof.Stop(); err != nil {
			log.Printf("profile: %v", err)
		}
		log.Printf("done in %v", prof.Elapsed())
	}()

	log.Printf("orion-check starting...")
	log.Printf("  Backend: %s", cfg.Orion.Backend)
	log.Printf("  LogN: %d, LogQ: %v, LogP: %v", cfg.CKKS.LogN, cfg.CKKS.LogQ, cfg.CKKS.LogP)

	ref, err := plain.New(cfg.CKKS)
	if err != nil {
		return fmt.Errorf("reference backend: %w", err)
	}
	want, err := check(orion.NewSession[*plain.Plaintext, *plain.Ciphertext](ref,
		orion.WithLogger(logger)), cfg)
	if err != nil {
		return fmt.Errorf("reference run: %w", err)
	}

	var got *report
	switch cfg.Orion.Backend {
	case orion.BackendPlain:
		got = want
	case orion.BackendLattigo:
		ks, err := orion.OpenKeyStore(cfg.CKKS.KeysPath, cfg.CKKS.IOMode)
		if err != nil {
			return err
		}
		b, err := lattigo.New(cfg.CKKS, lattigo.WithKeyStore(ks))
		if err != nil {
			ks.Close()
			return err
		}
		log.Printf("  Moduli: %s", b.ModuliChain())
		s := orion.NewSession[*rlwe.Plaintext, *rlwe.Ciphertext](b,
			orion.WithLogger(logger), orion.WithKeyStore(ks))
		if got, err = check(s, cfg); err != nil {
			return err
		}
	default:
		return fmt.Errorf("backend %q is only reachable through the C library", cfg.Orion.Backend)
	}

	fmt.Printf("handles: %v\n", got.Trace)
	fmt.Printf("values:  %.6f\n", got.Values)
	if diff := cmp.Diff(want.Trace, got.Trace); diff != "" {
		return fmt.Errorf("handle trace differs from reference (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Values, got.Values, cmpopts.EquateApprox(0, *tolerance)); diff != "" {
		return fmt.Errorf("values differ from reference (-want +got):\n%s", diff)
	}
	fmt.Println("ok")
	return nil
}
