// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package prime

import (
	"context"
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/zframework/zkeygen/common"
	"github.com/zframework/zkeygen/seed"
)

// GuidedSearch folds an externally estimated start into the fixed candidate
// width and searches forward in segments, never wrapping past the width
// boundary.
//
// The fold takes the start modulo 2^width, forces the top bit so the value
// keeps its full width, and forces it odd. Each segment runs Search with the
// width as a hard ceiling and the cumulative attempt offset added to the
// hint; a segment that would cross the boundary is shortened to half the
// remaining headroom, one attempt minimum. After an exhausted segment the
// origin re-bases to foldedStart + 2*consumed, so cumulative attempt i
// always sits at foldedStart + 2i. The search stops outright once the next
// origin would reach the boundary.
func GuidedSearch(ctx context.Context, estimatedStart *big.Int, maxAttempts uint64, master *seed.Seed, hint uint64, opts *Options) (*Result, error) {
	if estimatedStart == nil || master == nil {
		return nil, errors.New("prime: start and master seed are required")
	}
	if maxAttempts == 0 {
		return nil, ErrNotFound
	}
	o := opts.normalized()
	if o.WidthBits == 0 {
		o.WidthBits = DefaultWidthBits
	}
	if o.WidthBits < 2 {
		return nil, errors.Errorf("prime: %d bits cannot hold a candidate", o.WidthBits)
	}
	width := o.WidthBits

	modulus := new(big.Int).Lsh(one, width)
	base := new(big.Int).Mod(estimatedStart, modulus)
	base.SetBit(base, int(width)-1, 1)
	if base.Bit(0) == 0 {
		base.SetBit(base, 0, 1)
	}
	common.Logger.Debugf("guided search: %d attempts across %d-bit space from ..%s",
		maxAttempts, width, common.FormatBigInt(base))

	segOpts := *o
	segOpts.LimitBit = width
	segOpts.ClampOnLimit = false

	current := new(big.Int).Set(base)
	remaining := maxAttempts
	var offset uint64

	for remaining > 0 {
		distance := new(big.Int).Sub(modulus, current)
		if distance.Sign() <= 0 {
			break
		}
		segment := remaining
		twiceSeg := uint64(math.MaxUint64)
		if segment <= math.MaxUint64/2 {
			twiceSeg = segment * 2
		}
		if distance.Cmp(new(big.Int).SetUint64(twiceSeg)) <= 0 {
			safeSteps := distance.Uint64() / 2
			if safeSteps == 0 {
				safeSteps = 1
			}
			if safeSteps < segment {
				segment = safeSteps
			}
		}

		res, err := Search(ctx, current, segment, master, hint+offset, &segOpts)
		if err == nil {
			res.Attempts += offset
			return res, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}

		offset += segment
		remaining -= segment
		if remaining == 0 {
			break
		}
		advance := new(big.Int).SetUint64(offset)
		advance.Lsh(advance, 1)
		current.Add(base, advance)
		if current.Cmp(modulus) >= 0 {
			break
		}
		common.Logger.Debugf("guided search: segment exhausted, re-basing at offset %d", offset)
	}
	return nil, ErrNotFound
}
