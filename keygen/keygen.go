// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

// Package keygen assembles RSA keypairs from seeded prime searches and wraps
// them in self-signed certificates and PEM output files.
//
// Key Generation Overview:
// Both primes come from the candidate search in the prime package, driven by
// material derived from one master seed:
//
// 1. Role Derivation:
//   - Each prime owns a child seed derived under its role tag ("p" or "q");
//     a non-zero bump joins the tag so sibling keys from one master seed
//     stay in disjoint derivation domains
//
// 2. Guided Search:
//   - The role seed expands to a full-width starting integer with the top
//     and bottom bits forced, and the segmented guided search walks the
//     fixed-width space from there with half the attempt budget
//
// 3. Fallback Search:
//   - If the guided walk exhausts its budget, a second starting integer is
//     derived under a per-role fallback tag and searched with the full
//     budget, clamping at the width ceiling instead of stopping
//
// 4. Distinctness:
//   - The q search carries p as its proximity reference, so the pair can
//     never share leading bits; an equality retry loop re-derives q under
//     shifted bumps as a final guard
//
// 5. Assembly:
//   - n, λ = lcm(p-1, q-1) and d = e⁻¹ mod λ are computed with math/big,
//     the CRT values are filled in explicitly and the finished key must
//     pass the standard library's own validation before it is returned
package keygen

import (
	"context"
	"crypto/rsa"
	"fmt"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/zframework/zkeygen/common"
	"github.com/zframework/zkeygen/prime"
	"github.com/zframework/zkeygen/seed"
)

// SearchStats describes one prime search.
type SearchStats struct {
	// Attempts is the zero-based index of the winning candidate.
	Attempts uint64
	// Parallel records whether the parallel search path won.
	Parallel bool
	// Fallback is set when the guided search missed and the prime came
	// from the fallback derivation.
	Fallback bool
}

// Stats summarizes a key generation run.
type Stats struct {
	P        SearchStats
	Q        SearchStats
	Retries  int
	Duration time.Duration
}

// GenerateKey derives both primes from the master seed per cfg and returns
// the assembled private key. The returned key has passed Validate. The run
// aborts early when ctx is cancelled.
func GenerateKey(ctx context.Context, master *seed.Seed, cfg *Config) (*rsa.PrivateKey, *Stats, error) {
	if master == nil {
		return nil, nil, errors.New("keygen: master seed is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	begin := time.Now()
	width := uint(cfg.Bits / 2)
	stats := &Stats{}

	common.Logger.Debugf("generating %d-bit key for seed %s (bumps p=%d q=%d)",
		cfg.Bits, master.Fingerprint(), cfg.BumpP, cfg.BumpQ)

	p, pStats, err := searchRolePrime(ctx, master, "p", cfg.BumpP, width, nil, cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "searching p")
	}
	stats.P = pStats

	q, qStats, err := searchRolePrime(ctx, master, "q", cfg.BumpQ, width, p, cfg)
	if err != nil {
		return nil, nil, errors.Wrap(err, "searching q")
	}
	stats.Q = qStats

	// The proximity reference already keeps q away from p; the retry loop
	// backstops it by re-deriving q under shifted bumps.
	for retry := 0; p.Cmp(q) == 0 && retry < maxRetries; retry++ {
		common.Logger.Debugf("p == q, re-deriving q (retry %d/%d)", retry+1, maxRetries)
		q, qStats, err = searchRolePrime(ctx, master, "q", cfg.BumpQ+retry+2, width, p, cfg)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "re-searching q, retry %d", retry+1)
		}
		stats.Q = qStats
		stats.Retries = retry + 1
	}
	if p.Cmp(q) == 0 {
		return nil, nil, errors.Errorf("keygen: p and q still collide after %d retries", maxRetries)
	}

	key, err := assembleKey(p, q, cfg.E)
	if err != nil {
		return nil, nil, err
	}
	stats.Duration = time.Since(begin)
	common.Logger.Debugf("key ready: n is %d bits, %d+%d attempts, %v",
		key.N.BitLen(), stats.P.Attempts, stats.Q.Attempts, stats.Duration)
	return key, stats, nil
}

// searchRolePrime runs the guided search for one role and falls back to the
// clamped full-budget search when the guided walk misses.
func searchRolePrime(ctx context.Context, master *seed.Seed, role string, bump int, width uint, reference *big.Int, cfg *Config) (*big.Int, SearchStats, error) {
	var stats SearchStats

	roleTag := role
	if bump != 0 {
		roleTag = fmt.Sprintf("%s%d", role, bump)
	}
	roleSeed := master.DeriveChild(roleTag)
	defer roleSeed.Wipe()

	start := expandStart(roleSeed, width)
	opts := &prime.Options{
		Concurrency: cfg.Concurrency,
		WidthBits:   width,
		Reference:   reference,
	}

	res, err := prime.GuidedSearch(ctx, start, cfg.MaxAttempts/2, master, uint64(bump), opts)
	if err == nil {
		stats.Attempts = res.Attempts
		stats.Parallel = res.UsedParallel
		return res.Prime, stats, nil
	}
	if !errors.Is(err, prime.ErrNotFound) {
		return nil, stats, err
	}

	common.Logger.Debugf("guided search for %s exhausted, switching to fallback derivation", role)
	fbSeed := master.DeriveChild(fmt.Sprintf("prime_%s%d", role, bump))
	defer fbSeed.Wipe()
	fbStart := expandStart(fbSeed, width)
	fbOpts := *opts
	fbOpts.LimitBit = width
	fbOpts.ClampOnLimit = true

	res, err = prime.Search(ctx, fbStart, cfg.MaxAttempts, master, uint64(bump), &fbOpts)
	if err != nil {
		return nil, stats, err
	}
	stats.Attempts = res.Attempts
	stats.Parallel = res.UsedParallel
	stats.Fallback = true
	return res.Prime, stats, nil
}

// expandStart stretches a role seed to a width-bit integer with the top and
// bottom bits forced, so the search space keeps its exact width and the walk
// begins on an odd value.
func expandStart(roleSeed *seed.Seed, width uint) *big.Int {
	raw := roleSeed.Derive(fmt.Sprintf("%dbit", width), int(width/8))
	start := new(big.Int).SetBytes(raw)
	seed.WipeBytes(raw)
	start.SetBit(start, int(width)-1, 1)
	start.SetBit(start, 0, 1)
	return start
}

// assembleKey builds the private key from the prime pair: n = p*q,
// d = e⁻¹ mod lcm(p-1, q-1), explicit CRT values, then the standard
// library's full validation.
func assembleKey(p, q *big.Int, e uint64) (*rsa.PrivateKey, error) {
	if p.Cmp(q) < 0 {
		p, q = q, p
	}
	pMinus1 := new(big.Int).Sub(p, big.NewInt(1))
	qMinus1 := new(big.Int).Sub(q, big.NewInt(1))

	gcd := new(big.Int).GCD(nil, nil, pMinus1, qMinus1)
	lambda := new(big.Int).Mul(pMinus1, qMinus1)
	lambda.Div(lambda, gcd)

	bigE := new(big.Int).SetUint64(e)
	d := new(big.Int).ModInverse(bigE, lambda)
	if d == nil {
		return nil, errors.Errorf("keygen: e=%d is not invertible against the derived primes", e)
	}

	key := &rsa.PrivateKey{
		PublicKey: rsa.PublicKey{
			N: new(big.Int).Mul(p, q),
			E: int(e),
		},
		D:      d,
		Primes: []*big.Int{p, q},
	}
	key.Precomputed = rsa.PrecomputedValues{
		Dp:        new(big.Int).Mod(d, pMinus1),
		Dq:        new(big.Int).Mod(d, qMinus1),
		Qinv:      new(big.Int).ModInverse(q, p),
		CRTValues: []rsa.CRTValue{},
	}
	if err := key.Validate(); err != nil {
		return nil, errors.Wrap(err, "keygen: assembled key failed validation")
	}
	return key, nil
}
