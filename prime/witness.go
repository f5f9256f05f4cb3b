// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package prime

import (
	"encoding/binary"
	"math/big"

	"github.com/zframework/zkeygen/common"
	"github.com/zframework/zkeygen/seed"
)

const (
	// geodesicWitnessCount is how many seed-derived witnesses run per
	// candidate, ahead of the fixed battery.
	geodesicWitnessCount = 6
	// standardWitnessCount is the size of the fixed small-prime battery.
	standardWitnessCount = 8
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
)

// standardBases holds the first eight primes. Each base is folded into the
// candidate's witness range before its round runs.
var standardBases = common.GetFirstNPrimes(standardWitnessCount)

// modulusContext carries the per-candidate terms shared by every witness
// round: n-1, n-3 and the decomposition n-1 = d * 2^r with d odd. A context
// is owned by exactly one goroutine.
type modulusContext struct {
	n       *big.Int // aliased candidate, never modified here
	nMinus1 *big.Int
	nMinus3 *big.Int
	d       *big.Int
	r       uint
}

func newModulusContext() *modulusContext {
	return &modulusContext{
		nMinus1: new(big.Int),
		nMinus3: new(big.Int),
		d:       new(big.Int),
	}
}

// reset points the context at a candidate. n must be odd and >= 3.
func (mc *modulusContext) reset(n *big.Int) {
	mc.n = n
	mc.nMinus1.Sub(n, one)
	mc.nMinus3.Sub(n, three)
	mc.d.Set(mc.nMinus1)
	mc.r = 0
	for mc.d.Bit(0) == 0 {
		mc.d.Rsh(mc.d, 1)
		mc.r++
	}
}

// mapWitnessIntoRange folds an arbitrary non-negative value into the witness
// range [2, n-2] in place. Candidates too small to hold that range collapse
// every witness to 2.
func (mc *modulusContext) mapWitnessIntoRange(w *big.Int) {
	if w.Cmp(two) < 0 {
		w.Set(two)
		return
	}
	if w.Cmp(mc.nMinus1) >= 0 {
		if mc.nMinus3.Cmp(one) <= 0 {
			w.Set(two)
			return
		}
		w.Mod(w, mc.nMinus3)
		w.Add(w, two)
	}
}

// deriveWitnesses fills dst with witnesses hashed from the candidate bytes,
// the master seed, the caller's hint and the witness index. The same inputs
// always reproduce the same bases; without the seed the bases cannot be
// predicted. The exported candidate bytes are wiped before returning.
func (mc *modulusContext) deriveWitnesses(dst []*big.Int, master *seed.Seed, hint uint64) {
	if mc.nMinus3.Cmp(one) <= 0 {
		for _, w := range dst {
			w.Set(two)
		}
		return
	}
	candidateBytes := mc.n.Bytes()
	defer seed.WipeBytes(candidateBytes)

	var hintBz, idxBz [8]byte
	binary.LittleEndian.PutUint64(hintBz[:], hint)
	for i, w := range dst {
		binary.LittleEndian.PutUint64(idxBz[:], uint64(i))
		digest := common.SHA256(candidateBytes, master.Bytes(), hintBz[:], idxBz[:])
		w.SetBytes(digest)
		seed.WipeBytes(digest)
		mc.mapWitnessIntoRange(w)
	}
}
