// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

// Package prime implements the seeded prime candidate search at the core of
// zkeygen key generation.
//
// Candidate Search Overview:
// The engine walks an arithmetic progression of odd candidates and subjects
// each to a fourteen-round Miller-Rabin battery whose first six bases are
// derived from a secret seed. Several techniques combine:
//
// 1. Small Prime Sieving:
//   - Candidates are reduced once against the product of the odd primes up
//     to 53, eliminating most composites before any modular exponentiation
//   - A sieved-out candidate still consumes its attempt index, keeping the
//     progression arithmetic identical with and without the sieve
//
// 2. Seed-Derived Witnesses:
//   - Six Miller-Rabin bases are hashed from the candidate bytes, the master
//     seed, a caller hint and the witness index
//   - The bases cannot be anticipated without the seed, yet replay exactly
//     for anyone holding it
//
// 3. Fixed Witness Battery:
//   - The first eight primes always run as additional bases after the
//     seeded witnesses, whatever the seeded rounds drew
//
// 4. Parallel Lane Partitioning:
//   - Worker k owns candidates base + 2k, base + 2(k+W), ... and attempt
//     indices k, k+W, ..., so W lanes tile exactly the attempts the
//     sequential path would consume, with no shared candidate state
//   - Coordination is limited to two atomic flags, one mutex-guarded winner
//     slot and a WaitGroup join before the result is read
//
// 5. Bit-Width Ceiling:
//   - An optional limit bit keeps candidates inside a fixed width; an
//     overflowing candidate is either clamped back under the ceiling or
//     stops the search, as configured
package prime

import (
	"context"
	"math/big"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/zframework/zkeygen/common"
	"github.com/zframework/zkeygen/seed"
)

const (
	// DefaultProximityBits is the width of the leading-bit comparison
	// against a reference prime when Options does not set one.
	DefaultProximityBits = 100
	// DefaultWidthBits is the candidate width GuidedSearch uses when
	// Options does not set one.
	DefaultWidthBits = 2048
	// ctxPollInterval is how many sequential attempts run between
	// cancellation checks.
	ctxPollInterval = 1024
)

// ErrNotFound reports an exhausted attempt budget or a stop at the width
// ceiling. It is an expected search outcome, not an engine failure.
var ErrNotFound = errors.New("prime: no probable prime found within the attempt budget")

// Options tunes a candidate search. The zero value searches with full
// parallelism, no width ceiling and no reference guard.
type Options struct {
	// Concurrency is the worker count. 0 uses runtime.GOMAXPROCS(0) and 1
	// forces the sequential path. The engine never runs more workers than
	// it has attempts.
	Concurrency int

	// LimitBit stops or clamps the search when an advanced candidate sets
	// this bit. 0 disables the ceiling.
	LimitBit uint

	// ClampOnLimit folds an overflowing candidate back under the ceiling,
	// clearing LimitBit and setting the bit below, instead of stopping.
	ClampOnLimit bool

	// Reference, when non-nil, makes the search skip candidates whose
	// leading bits match it. Used to keep RSA prime pairs apart.
	Reference *big.Int

	// ProximityBits is the width of the leading-bit comparison against
	// Reference. 0 means DefaultProximityBits.
	ProximityBits uint

	// WidthBits anchors the proximity comparison and, in GuidedSearch, the
	// fixed candidate width. 0 anchors the comparison to the operand sizes
	// and makes GuidedSearch use DefaultWidthBits.
	WidthBits uint

	// DisableSieve switches off the small-prime pre-filter so that every
	// candidate meets the full witness battery.
	DisableSieve bool
}

// normalized returns a defensive copy with defaults applied.
func (o *Options) normalized() *Options {
	out := Options{}
	if o != nil {
		out = *o
	}
	if out.Concurrency == 0 {
		out.Concurrency = runtime.GOMAXPROCS(0)
	}
	if out.Concurrency < 1 {
		out.Concurrency = 1
	}
	if out.ProximityBits == 0 {
		out.ProximityBits = DefaultProximityBits
	}
	return &out
}

// Result reports a successful search.
type Result struct {
	// Prime is the accepted candidate.
	Prime *big.Int
	// Attempts is the zero-based index of the winning attempt. Candidate
	// and index stay coupled: the winner sat at base + 2*Attempts unless
	// clamping rebased its lane.
	Attempts uint64
	// UsedParallel records whether the parallel path produced the result.
	UsedParallel bool
}

// Search walks the odd progression start, start+2, start+4, ... until a
// candidate passes the witness battery or maxAttempts candidates have been
// consumed. An even start is first normalized to the next odd value.
// Candidates rejected by the sieve, the battery or the reference guard all
// consume their attempt. Returns ErrNotFound when the budget is exhausted or
// the ceiling stops the search.
func Search(ctx context.Context, start *big.Int, maxAttempts uint64, master *seed.Seed, hint uint64, opts *Options) (*Result, error) {
	if start == nil || master == nil {
		return nil, errors.New("prime: start and master seed are required")
	}
	if start.Sign() < 0 {
		return nil, errors.New("prime: start must not be negative")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if maxAttempts == 0 {
		return nil, ErrNotFound
	}
	o := opts.normalized()
	workers := o.Concurrency
	if uint64(workers) > maxAttempts {
		workers = int(maxAttempts)
	}

	base := new(big.Int).Set(start)
	if base.Bit(0) == 0 {
		base.Add(base, one)
	}

	var (
		res *Result
		err error
	)
	if workers > 1 {
		res, err = searchParallel(ctx, base, maxAttempts, master, hint, o, workers)
	} else {
		res, err = searchSequential(ctx, base, maxAttempts, master, hint, o)
	}
	if err == nil {
		common.Logger.Debugf("probable prime ..%s found after %d attempts (parallel=%v)",
			common.FormatBigInt(res.Prime), res.Attempts, res.UsedParallel)
	}
	return res, err
}

// acceptCandidate runs the sieve, the witness battery and the reference
// guard. True means candidate is the search result.
func acceptCandidate(tr *tester, candidate *big.Int, master *seed.Seed, hintValue uint64, o *Options) bool {
	if !o.DisableSieve && common.HasSmallFactor(candidate) {
		return false
	}
	if !tr.isProbablePrime(candidate, master, hintValue) {
		return false
	}
	return !tooCloseToReference(candidate, o.Reference, o.WidthBits, o.ProximityBits)
}

func searchSequential(ctx context.Context, base *big.Int, maxAttempts uint64, master *seed.Seed, hint uint64, o *Options) (*Result, error) {
	candidate := new(big.Int).Set(base)
	tr := newTester()
	for attempt := uint64(0); attempt < maxAttempts; attempt++ {
		if attempt%ctxPollInterval == 0 && ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), "prime: search cancelled")
		}
		if acceptCandidate(tr, candidate, master, hint^attempt, o) {
			return &Result{Prime: candidate, Attempts: attempt}, nil
		}
		candidate.Add(candidate, two)
		if o.LimitBit > 0 && candidate.Bit(int(o.LimitBit)) == 1 {
			if !o.ClampOnLimit {
				return nil, ErrNotFound
			}
			candidate.SetBit(candidate, int(o.LimitBit), 0)
			candidate.SetBit(candidate, int(o.LimitBit)-1, 1)
		}
	}
	return nil, ErrNotFound
}

// searchParallel fans the progression out across worker lanes. Shared state
// is two atomic flags and one mutex-guarded winner slot; everything else is
// lane-local. Ties between simultaneous finders go to the first lane through
// the lock. Losing lanes may complete one extra test before they observe the
// found flag.
func searchParallel(ctx context.Context, base *big.Int, maxAttempts uint64, master *seed.Seed, hint uint64, o *Options, workers int) (*Result, error) {
	var (
		found        int32
		limitReached int32
		mu           sync.Mutex
		winner       *Result
		wg           sync.WaitGroup
	)
	stride := new(big.Int).SetUint64(2 * uint64(workers))
	wg.Add(workers)
	for k := 0; k < workers; k++ {
		go func(lane uint64) {
			defer wg.Done()
			tr := newTester()
			candidate := new(big.Int).SetUint64(2 * lane)
			candidate.Add(candidate, base)
			// The lane's first candidate may already sit past the ceiling.
			if o.LimitBit > 0 && candidate.Bit(int(o.LimitBit)) == 1 {
				if !o.ClampOnLimit {
					atomic.StoreInt32(&limitReached, 1)
					return
				}
				candidate.SetBit(candidate, int(o.LimitBit), 0)
				candidate.SetBit(candidate, int(o.LimitBit)-1, 1)
			}
			for attempt := lane; attempt < maxAttempts; attempt += uint64(workers) {
				if atomic.LoadInt32(&found) == 1 || atomic.LoadInt32(&limitReached) == 1 || ctx.Err() != nil {
					return
				}
				if acceptCandidate(tr, candidate, master, hint^attempt, o) {
					mu.Lock()
					if winner == nil {
						winner = &Result{
							Prime:        new(big.Int).Set(candidate),
							Attempts:     attempt,
							UsedParallel: true,
						}
					}
					mu.Unlock()
					atomic.StoreInt32(&found, 1)
					return
				}
				candidate.Add(candidate, stride)
				if o.LimitBit > 0 && candidate.Bit(int(o.LimitBit)) == 1 {
					if !o.ClampOnLimit {
						atomic.StoreInt32(&limitReached, 1)
						return
					}
					candidate.SetBit(candidate, int(o.LimitBit), 0)
					candidate.SetBit(candidate, int(o.LimitBit)-1, 1)
				}
			}
		}(uint64(k))
	}
	wg.Wait()

	if winner != nil {
		return winner, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "prime: search cancelled")
	}
	return nil, ErrNotFound
}

// tooCloseToReference implements the X9.31 style closeness rule: a candidate
// is rejected when its leading proximityBits bits equal the reference's.
// widthBits anchors the comparison; when zero the wider operand anchors it.
func tooCloseToReference(candidate, reference *big.Int, widthBits, proximityBits uint) bool {
	if reference == nil {
		return false
	}
	width := widthBits
	if width == 0 {
		width = uint(candidate.BitLen())
		if rl := uint(reference.BitLen()); rl > width {
			width = rl
		}
	}
	if width <= proximityBits {
		return candidate.Cmp(reference) == 0
	}
	shift := width - proximityBits
	a := new(big.Int).Rsh(candidate, shift)
	b := new(big.Int).Rsh(reference, shift)
	return a.Cmp(b) == 0
}
