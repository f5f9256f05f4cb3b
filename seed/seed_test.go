// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package seed_test

import (
	"bytes"
	"io"
	"testing"
	"testing/iotest"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zframework/zkeygen/seed"
)

func TestGenerateUnique(t *testing.T) {
	const trials = 100
	seen := make(map[string]struct{}, trials)
	zero := new(seed.Seed)
	for i := 0; i < trials; i++ {
		s, err := seed.Generate()
		require.NoError(t, err)
		require.NotEqual(t, zero[:], s.Bytes(), "all-zero seed")
		hx := s.Hex()
		_, dup := seen[hx]
		require.Falsef(t, dup, "duplicate seed on trial %d", i)
		seen[hx] = struct{}{}
		s.Wipe()
	}
}

func TestGenerateEntropyUnavailable(t *testing.T) {
	old := seed.Reader
	defer func() { seed.Reader = old }()
	seed.Reader = iotest.ErrReader(errors.New("no entropy device"))

	s, err := seed.Generate()
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, seed.ErrEntropyUnavailable), "got: %v", err)
}

func TestGenerateShortRead(t *testing.T) {
	old := seed.Reader
	defer func() { seed.Reader = old }()
	seed.Reader = bytes.NewReader(make([]byte, seed.Size-10))

	s, err := seed.Generate()
	assert.Nil(t, s)
	assert.True(t, errors.Is(err, seed.ErrEntropyShortRead), "got: %v", err)
}

func TestGenerateEmptySource(t *testing.T) {
	old := seed.Reader
	defer func() { seed.Reader = old }()
	seed.Reader = bytes.NewReader(nil)

	_, err := seed.Generate()
	assert.True(t, errors.Is(err, seed.ErrEntropyShortRead), "got: %v", err)
}

func TestMustGeneratePanics(t *testing.T) {
	old := seed.Reader
	defer func() { seed.Reader = old }()
	seed.Reader = iotest.ErrReader(io.ErrClosedPipe)

	assert.Panics(t, func() { seed.MustGenerate() })
}

func TestHexRoundTrip(t *testing.T) {
	t.Parallel()
	s := seed.MustGenerate()
	defer s.Wipe()

	hx := s.Hex()
	assert.Len(t, hx, seed.Size*2)
	back, err := seed.FromHex(hx)
	require.NoError(t, err)
	assert.Equal(t, s.Bytes(), back.Bytes())
	assert.Equal(t, hx, back.Hex())
}

func TestFromHexRejectsMalformed(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"too short", "abcd"},
		{"too long", string(make([]byte, seed.Size*2+2))},
		{"bad characters", "zz" + string(bytes.Repeat([]byte("00"), seed.Size-1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := seed.FromHex(tt.in)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, seed.ErrInvalidHex), "got: %v", err)
		})
	}
}

func TestFromBytes(t *testing.T) {
	t.Parallel()
	raw := bytes.Repeat([]byte{0xA5}, seed.Size)
	s, err := seed.FromBytes(raw)
	require.NoError(t, err)
	assert.Equal(t, raw, s.Bytes())

	_, err = seed.FromBytes(raw[:seed.Size-1])
	assert.Error(t, err)
}

func TestWipe(t *testing.T) {
	t.Parallel()
	s, err := seed.FromBytes(bytes.Repeat([]byte{0xFF}, seed.Size))
	require.NoError(t, err)
	s.Wipe()
	assert.Equal(t, make([]byte, seed.Size), s.Bytes())
}

func TestFingerprint(t *testing.T) {
	t.Parallel()
	s := new(seed.Seed)
	fp := s.Fingerprint()
	assert.Len(t, fp, 8)
	assert.Equal(t, fp, s.Fingerprint())
	assert.Contains(t, s.String(), fp)
	assert.NotContains(t, s.String(), s.Hex())
}
