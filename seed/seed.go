// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

// Package seed produces and derives the 256-bit master seeds that drive all
// deterministic material in zkeygen. Seeds come from the operating system
// CSPRNG only; every failure of that source is fatal, never silently papered
// over with a weaker generator.
package seed

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Size is the seed length in bytes.
const Size = 32

var (
	ErrEntropyUnavailable = errors.New("seed: system entropy source unavailable")
	ErrEntropyShortRead   = errors.New("seed: short read from entropy source")
	ErrMixingFailure      = errors.New("seed: entropy mixing failed")
	ErrInvalidHex         = errors.New("seed: invalid hex encoding")
)

// Reader is the entropy source. Tests may swap it out; production code must
// leave it pointing at crypto/rand.
var Reader io.Reader = rand.Reader

var processStart = time.Now()

// Seed is a 256-bit master seed. Treat it as secret key material: derive from
// it, log only its Fingerprint, and Wipe it when done.
type Seed [Size]byte

// Generate reads exactly Size bytes from the entropy source and mixes in a
// process-local salt. Any shortfall from the source aborts generation; there
// is no fallback path.
func Generate() (*Seed, error) {
	s := new(Seed)
	if n, err := io.ReadFull(Reader, s[:]); err != nil {
		s.Wipe()
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrapf(ErrEntropyShortRead, "read %d of %d bytes", n, Size)
		}
		return nil, errors.Wrapf(ErrEntropyUnavailable, "reading entropy: %v", err)
	}
	if err := s.mix(); err != nil {
		s.Wipe()
		return nil, err
	}
	return s, nil
}

// MustGenerate panics if the entropy source fails.
func MustGenerate() *Seed {
	s, err := Generate()
	if err != nil {
		panic(errors.Wrap(err, "MustGenerate"))
	}
	return s
}

// mix folds a time/pid salt into the seed. The salt is XORed in through a
// SHA-256 digest, so the result is never weaker than what the OS returned.
func (s *Seed) mix() error {
	var salt [32]byte
	now := time.Now()
	binary.LittleEndian.PutUint64(salt[0:], uint64(now.Unix()))
	binary.LittleEndian.PutUint64(salt[8:], uint64(now.Nanosecond()))
	binary.LittleEndian.PutUint64(salt[16:], uint64(os.Getpid()))
	binary.LittleEndian.PutUint64(salt[24:], uint64(time.Since(processStart)))
	defer WipeBytes(salt[:])

	h := sha256.New()
	if _, err := h.Write(s[:]); err != nil {
		return errors.Wrapf(ErrMixingFailure, "hashing seed: %v", err)
	}
	if _, err := h.Write(salt[:]); err != nil {
		return errors.Wrapf(ErrMixingFailure, "hashing salt: %v", err)
	}
	digest := h.Sum(nil)
	defer WipeBytes(digest)
	if len(digest) < Size {
		return errors.Wrapf(ErrMixingFailure, "digest is %d bytes, need %d", len(digest), Size)
	}
	for i := range s {
		s[i] ^= digest[i]
	}
	return nil
}

// FromBytes copies a raw 32-byte seed. The input slice is not consumed; the
// caller remains responsible for wiping it.
func FromBytes(b []byte) (*Seed, error) {
	if len(b) != Size {
		return nil, errors.Errorf("seed: need exactly %d bytes, got %d", Size, len(b))
	}
	s := new(Seed)
	copy(s[:], b)
	return s, nil
}

// FromHex is the exact inverse of Hex.
func FromHex(h string) (*Seed, error) {
	if len(h) != Size*2 {
		return nil, errors.Wrapf(ErrInvalidHex, "want %d hex characters, got %d", Size*2, len(h))
	}
	raw, err := hex.DecodeString(h)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidHex, "%v", err)
	}
	s := new(Seed)
	copy(s[:], raw)
	WipeBytes(raw)
	return s, nil
}

// Hex encodes the seed as 64 lowercase hex characters.
func (s *Seed) Hex() string {
	return hex.EncodeToString(s[:])
}

// Bytes exposes the backing array. The view stays live until Wipe.
func (s *Seed) Bytes() []byte {
	return s[:]
}

// Fingerprint returns the first 4 bytes of SHA-256(seed) in hex. It is safe
// to log and is used to tag generated artifacts.
func (s *Seed) Fingerprint() string {
	sum := sha256.Sum256(s[:])
	return hex.EncodeToString(sum[:4])
}

// String renders only the fingerprint so a Seed can never leak through
// formatted output.
func (s *Seed) String() string {
	return fmt.Sprintf("seed(%s)", s.Fingerprint())
}

// Wipe zeroes the seed in place.
func (s *Seed) Wipe() {
	WipeBytes(s[:])
}
