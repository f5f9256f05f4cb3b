// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package prime_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/zframework/zkeygen/prime"
)

func TestGuidedSearchFindsPrimeInFoldedSpace(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	// the estimate overshoots the width; only its low 128 bits survive the
	// fold, with the top bit forced back on
	estimate := new(big.Int).Lsh(big.NewInt(1), 200)
	estimate.Add(estimate, big.NewInt(12345))
	expectedBase := new(big.Int).Lsh(big.NewInt(1), 127)
	expectedBase.Add(expectedBase, big.NewInt(12345))

	res, err := GuidedSearch(context.Background(), estimate, 20000, master, 0, &Options{
		Concurrency: 1,
		WidthBits:   128,
	})
	require.NoError(t, err)
	assert.Equal(t, 128, res.Prime.BitLen())
	assert.Equal(t, uint(1), res.Prime.Bit(0))
	assert.True(t, res.Prime.ProbablyPrime(20))

	walked := new(big.Int).SetUint64(2 * res.Attempts)
	walked.Add(walked, expectedBase)
	assert.Zerof(t, res.Prime.Cmp(walked), "prime %s decoupled from attempt %d", res.Prime, res.Attempts)
}

func TestGuidedSearchFoldIsPeriodic(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	estimate := new(big.Int).Lsh(big.NewInt(1), 200)
	estimate.Add(estimate, big.NewInt(12345))
	shifted := new(big.Int).Lsh(big.NewInt(1), 128)
	shifted.Add(shifted, estimate)

	opts := &Options{Concurrency: 1, WidthBits: 128}
	first, err := GuidedSearch(context.Background(), estimate, 20000, master, 0, opts)
	require.NoError(t, err)
	second, err := GuidedSearch(context.Background(), shifted, 20000, master, 0, opts)
	require.NoError(t, err)
	assert.Zero(t, first.Prime.Cmp(second.Prime))
	assert.Equal(t, first.Attempts, second.Attempts)
}

func TestGuidedSearchZeroEstimate(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	// a zero estimate folds to the forced top bit plus the forced odd bit;
	// from 32769 the second candidate is prime
	res, err := GuidedSearch(context.Background(), big.NewInt(0), 50, master, 0, &Options{
		Concurrency: 1,
		WidthBits:   16,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(32771), res.Prime.Int64())
	assert.Equal(t, uint64(1), res.Attempts)
}

func TestGuidedSearchStopsAtBoundary(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	// only two candidates fit between the fold and the top of the space,
	// and both carry small factors
	estimate := new(big.Int).Lsh(big.NewInt(1), 2048)
	estimate.Sub(estimate, big.NewInt(3))

	_, err := GuidedSearch(context.Background(), estimate, 1000, master, 0, &Options{Concurrency: 1})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGuidedSearchProximityToReference(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	estimate := new(big.Int).Lsh(big.NewInt(1), 127)
	estimate.Add(estimate, big.NewInt(12345))

	first, err := GuidedSearch(context.Background(), estimate, 20000, master, 0, &Options{
		Concurrency: 1,
		WidthBits:   128,
	})
	require.NoError(t, err)

	// every candidate the budget reaches shares its top hundred bits with
	// the first result, so a repeat run against it finds nothing
	_, err = GuidedSearch(context.Background(), estimate, 2000, master, 0, &Options{
		Concurrency: 1,
		WidthBits:   128,
		Reference:   first.Prime,
	})
	assert.True(t, errors.Is(err, ErrNotFound))

	// narrowing the guard to all but the last bit rejects only the exact
	// reference, so the walk continues to the next prime
	res, err := GuidedSearch(context.Background(), estimate, 20000, master, 0, &Options{
		Concurrency:   1,
		WidthBits:     128,
		Reference:     first.Prime,
		ProximityBits: 127,
	})
	require.NoError(t, err)
	assert.NotZero(t, res.Prime.Cmp(first.Prime))
	assert.True(t, res.Prime.Cmp(first.Prime) > 0)
	assert.True(t, res.Prime.ProbablyPrime(20))
}

func TestGuidedSearchHintMovesWitnessesNotVerdicts(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	estimate := new(big.Int).Lsh(big.NewInt(1), 127)
	estimate.Add(estimate, big.NewInt(999))
	opts := &Options{Concurrency: 1, WidthBits: 128}

	first, err := GuidedSearch(context.Background(), estimate, 20000, master, 1, opts)
	require.NoError(t, err)
	second, err := GuidedSearch(context.Background(), estimate, 20000, master, 99, opts)
	require.NoError(t, err)
	assert.Zero(t, first.Prime.Cmp(second.Prime))
	assert.Equal(t, first.Attempts, second.Attempts)
}

func TestGuidedSearchZeroBudget(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	_, err := GuidedSearch(context.Background(), big.NewInt(12345), 0, master, 0, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestGuidedSearchArgumentErrors(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	_, err := GuidedSearch(context.Background(), nil, 10, master, 0, nil)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))

	_, err = GuidedSearch(context.Background(), big.NewInt(1), 10, nil, 0, nil)
	assert.Error(t, err)

	_, err = GuidedSearch(context.Background(), big.NewInt(1), 10, master, 0, &Options{WidthBits: 1})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestGuidedSearchDeterministic(t *testing.T) {
	t.Parallel()
	master := fixedSeed(t, 0x42)

	estimate := new(big.Int).Lsh(big.NewInt(1), 127)
	estimate.Add(estimate, big.NewInt(54321))
	opts := &Options{Concurrency: 1, WidthBits: 128}

	first, err := GuidedSearch(context.Background(), estimate, 20000, master, 5, opts)
	require.NoError(t, err)
	second, err := GuidedSearch(context.Background(), estimate, 20000, master, 5, opts)
	require.NoError(t, err)
	assert.Zero(t, first.Prime.Cmp(second.Prime))
	assert.Equal(t, first.Attempts, second.Attempts)
}
