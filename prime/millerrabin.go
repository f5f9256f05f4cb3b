// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package prime

import (
	"math/big"

	"github.com/zframework/zkeygen/seed"
)

// witnessRound runs one Miller-Rabin round for base a against the candidate
// behind mc. x is caller-owned scratch. A false return proves the candidate
// composite; true means a did not witness compositeness.
func (mc *modulusContext) witnessRound(a, x *big.Int) bool {
	x.Exp(a, mc.d, mc.n)
	if x.Cmp(one) == 0 || x.Cmp(mc.nMinus1) == 0 {
		return true
	}
	for i := uint(1); i < mc.r; i++ {
		x.Mul(x, x)
		x.Mod(x, mc.n)
		if x.Cmp(mc.nMinus1) == 0 {
			return true
		}
	}
	return false
}

// tester bundles one goroutine's scratch state for primality testing, so the
// hot path allocates nothing per candidate.
type tester struct {
	mc        *modulusContext
	witnesses []*big.Int
	base      *big.Int
	x         *big.Int
}

func newTester() *tester {
	tr := &tester{
		mc:        newModulusContext(),
		witnesses: make([]*big.Int, geodesicWitnessCount),
		base:      new(big.Int),
		x:         new(big.Int),
	}
	for i := range tr.witnesses {
		tr.witnesses[i] = new(big.Int)
	}
	return tr
}

func (tr *tester) isProbablePrime(candidate *big.Int, master *seed.Seed, hint uint64) bool {
	if candidate.Cmp(two) < 0 {
		return false
	}
	if candidate.Cmp(two) == 0 {
		return true
	}
	if candidate.Bit(0) == 0 {
		return false
	}
	tr.mc.reset(candidate)
	tr.mc.deriveWitnesses(tr.witnesses, master, hint)
	for _, w := range tr.witnesses {
		if !tr.mc.witnessRound(w, tr.x) {
			return false
		}
	}
	for _, b := range standardBases {
		tr.base.SetUint64(uint64(b))
		tr.mc.mapWitnessIntoRange(tr.base)
		if !tr.mc.witnessRound(tr.base, tr.x) {
			return false
		}
	}
	return true
}

// IsProbablePrime subjects candidate to the full fourteen-round battery: six
// witnesses derived from the master seed and the hint, then the first eight
// primes as fixed bases. A single failing round rejects the candidate; a
// passing candidate has cleared every round of both sets. A nil candidate or
// seed is never prime.
func IsProbablePrime(candidate *big.Int, master *seed.Seed, hint uint64) bool {
	if candidate == nil || master == nil {
		return false
	}
	return newTester().isProbablePrime(candidate, master, hint)
}
