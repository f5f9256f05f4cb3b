// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package seed

import "crypto/sha256"

// tagPrefixMax caps how many tag bytes enter the derivation context. Longer
// tags are truncated, never rejected.
const tagPrefixMax = 32

// Derive expands the seed into n bytes bound to the given domain tag.
//
// The stream is an iterated SHA-256 chain: the first digest covers
// tag || seed, each later digest covers its predecessor, and the last chunk
// is truncated to fit. The same (seed, tag, n) always yields the same bytes;
// distinct tags yield unrelated streams. Returns nil when n <= 0.
func (s *Seed) Derive(tag string, n int) []byte {
	if n <= 0 {
		return nil
	}
	tagBytes := []byte(tag)
	if len(tagBytes) > tagPrefixMax {
		tagBytes = tagBytes[:tagPrefixMax]
	}
	context := make([]byte, 0, len(tagBytes)+Size)
	context = append(context, tagBytes...)
	context = append(context, s[:]...)
	digest := sha256.Sum256(context)
	WipeBytes(context)

	out := make([]byte, 0, n)
	for remaining := n; remaining > 0; {
		chunk := remaining
		if chunk > sha256.Size {
			chunk = sha256.Size
		}
		out = append(out, digest[:chunk]...)
		remaining -= chunk
		if remaining > 0 {
			digest = sha256.Sum256(digest[:])
		}
	}
	WipeBytes(digest[:])
	return out
}

// DeriveChild derives a full-size child seed under the given tag. Used to
// split one master seed into independent per-role seeds.
func (s *Seed) DeriveChild(tag string) *Seed {
	raw := s.Derive(tag, Size)
	child := new(Seed)
	copy(child[:], raw)
	WipeBytes(raw)
	return child
}
