// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package common

import (
	"fmt"
	"math/big"

	"github.com/ipfs/go-log"
)

var Logger = log.Logger("zkeygen")

// FormatBigInt renders only the low 32 bits of a value so that candidate
// primes and witnesses never appear in full in log output.
func FormatBigInt(a *big.Int) string {
	if a == nil {
		return "<nil>"
	}
	var aux = new(big.Int).SetInt64(0xFFFFFFFF)
	return new(big.Int).And(a, aux).Text(16)
}

func BigIntsToString(array []*big.Int) string {
	r := ""
	for a, b := range array {
		r = fmt.Sprintf("%s %d:%s ", r, a, FormatBigInt(b))
	}
	return r
}
