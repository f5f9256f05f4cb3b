// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package common

import (
	"math/big"
	"sync"
)

// smallPrimes contains the first 15 odd primes (excluding 2).
// Their product fits in a uint64, so trial division against all of them
// reduces to a single modular reduction of the candidate.
var smallPrimes = []uint64{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53,
}

// smallPrimesProduct is the product of smallPrimes.
var smallPrimesProduct = new(big.Int).SetUint64(16294579238595022365)

// HasSmallFactor reports whether n is divisible by one of the sieve primes
// (3..53). A candidate equal to a sieve prime is never reported, so the
// sieve cannot rule out the primes it is built from.
func HasSmallFactor(n *big.Int) bool {
	if n.Sign() <= 0 {
		return false
	}
	m := new(big.Int).Mod(n, smallPrimesProduct).Uint64()
	for _, p := range smallPrimes {
		if m%p == 0 && n.Cmp(new(big.Int).SetUint64(p)) != 0 {
			return true
		}
	}
	return false
}

var (
	primeTableOnce sync.Once
	primeTable     []uint
)

// GetFirstNPrimes returns the first n prime numbers. The table behind the
// common cases is built once, on first use; the returned slice is always a
// copy the caller may keep or modify.
func GetFirstNPrimes(n int) []uint {
	if n <= 0 {
		return nil
	}
	primeTableOnce.Do(func() {
		primeTable = GetPrimesUpTo(1000)
	})
	if n <= len(primeTable) {
		out := make([]uint, n)
		copy(out, primeTable[:n])
		return out
	}

	// Beyond the cached table, sieve with an overestimated limit.
	// For n >= 6: p_n < n * (ln(n) + ln(ln(n))).
	limit := n * 20
	primes := GetPrimesUpTo(limit)
	for len(primes) < n {
		limit *= 2
		primes = GetPrimesUpTo(limit)
	}
	return primes[:n]
}

// GetPrimesUpTo generates all prime numbers up to the given limit using the
// Sieve of Eratosthenes.
func GetPrimesUpTo(limit int) []uint {
	if limit < 2 {
		return nil
	}
	isComposite := make([]bool, limit+1)
	isComposite[0], isComposite[1] = true, true
	for p := 2; p*p <= limit; p++ {
		if !isComposite[p] {
			for i := p * p; i <= limit; i += p {
				isComposite[i] = true
			}
		}
	}
	var primes []uint
	for i := 2; i <= limit; i++ {
		if !isComposite[i] {
			primes = append(primes, uint(i))
		}
	}
	return primes
}
