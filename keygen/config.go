// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package keygen

import (
	"math"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	// MinBits and MaxBits bound the accepted modulus size.
	MinBits = 512
	MaxBits = 8192

	maxRetries = 10
)

// Config carries every tunable of a key generation run. DefaultConfig fills
// the values a plain CLI invocation uses.
type Config struct {
	// Bits is the modulus size. Each prime is searched at Bits/2.
	Bits int
	// E is the public exponent.
	E uint64
	// BumpP and BumpQ shift the derivation tags of the two prime searches,
	// so repeated runs from one seed can reach sibling keys.
	BumpP int
	BumpQ int
	// MaxAttempts is the candidate budget of the fallback search; the
	// estimate-guided search runs with half of it.
	MaxAttempts uint64
	// Concurrency is handed to the candidate search. 0 sizes the worker
	// pool from GOMAXPROCS.
	Concurrency int
	// ValidityDays spans the self-signed certificate.
	ValidityDays int
	// Certificate subject and SAN.
	CommonName   string
	Organization string
	DNSName      string
	// OutputDir receives the key and certificate files.
	OutputDir string
}

// DefaultConfig returns the stock configuration: a 4096-bit key under the
// usual public exponent, a month of certificate validity and distinct
// derivation tags for the two primes.
func DefaultConfig() *Config {
	return &Config{
		Bits:         4096,
		E:            65537,
		BumpP:        0,
		BumpQ:        1,
		MaxAttempts:  10000,
		Concurrency:  0,
		ValidityDays: 30,
		CommonName:   "ZKEYGEN_SECURE_RSA_KEY_GEN",
		Organization: "ZKEYGEN SECURE RSA KEY GENERATOR (CRYPTOGRAPHICALLY SECURE)",
		DNSName:      "secure.zkeygen.crypto",
		OutputDir:    "generated",
	}
}

// Validate reports every violated constraint at once.
func (cfg *Config) Validate() error {
	var result *multierror.Error
	if cfg.Bits < MinBits || cfg.Bits > MaxBits {
		result = multierror.Append(result,
			errors.Errorf("keygen: bits must be in [%d, %d], got %d", MinBits, MaxBits, cfg.Bits))
	}
	if cfg.Bits%2 != 0 {
		result = multierror.Append(result,
			errors.Errorf("keygen: bits must be even, got %d", cfg.Bits))
	}
	if cfg.E < 3 || cfg.E%2 == 0 {
		result = multierror.Append(result,
			errors.Errorf("keygen: public exponent must be an odd number >= 3, got %d", cfg.E))
	}
	if cfg.E > math.MaxInt32 {
		result = multierror.Append(result,
			errors.Errorf("keygen: public exponent %d does not fit the key type", cfg.E))
	}
	if cfg.BumpP < 0 || cfg.BumpQ < 0 {
		result = multierror.Append(result,
			errors.Errorf("keygen: bumps must not be negative, got p=%d q=%d", cfg.BumpP, cfg.BumpQ))
	}
	if cfg.MaxAttempts < 2 {
		result = multierror.Append(result,
			errors.Errorf("keygen: attempt budget must be at least 2, got %d", cfg.MaxAttempts))
	}
	if cfg.Concurrency < 0 {
		result = multierror.Append(result,
			errors.Errorf("keygen: concurrency must not be negative, got %d", cfg.Concurrency))
	}
	if cfg.ValidityDays < 1 {
		result = multierror.Append(result,
			errors.Errorf("keygen: certificate validity must be at least 1 day, got %d", cfg.ValidityDays))
	}
	if cfg.CommonName == "" {
		result = multierror.Append(result, errors.New("keygen: common name must not be empty"))
	}
	if cfg.OutputDir == "" {
		result = multierror.Append(result, errors.New("keygen: output directory must not be empty"))
	}
	return result.ErrorOrNil()
}
