// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

// Package hr implements the hyper-rotation key schedule: every message key
// lives inside a short time window, and both ends of a channel re-derive the
// window keys from one shared secret instead of ever exchanging them.
//
// Key Schedule Overview:
// For window w of a channel, keys derive in four steps (RFC 5869 layout):
//
// 1. windowSeed = HMAC-SHA256(sharedSecret, LE64(w))
// 2. PRK = HKDF-Extract(salt = SHA256(channelID), IKM = windowSeed)
// 3. OKM = HKDF-Expand(PRK, info = "ZK-HR:v1|<channel>|<role>", 64 bytes)
// 4. K_enc = OKM[0:32], K_mac = OKM[32:64]
//
// The role joins the info string so the two directions of a channel never
// share keys. Receivers tolerate clock drift by deriving the keys of
// adjacent windows.
package hr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"

	"golang.org/x/crypto/hkdf"

	"github.com/zframework/zkeygen/seed"
)

const (
	// Version tags the derivation context; bumping it re-keys every
	// channel.
	Version = 1
	// KeyLen is the size of each derived key.
	KeyLen = 32
	// MinSecretLen is the smallest accepted shared secret.
	MinSecretLen = 16

	okmLen = 2 * KeyLen
)

// RoleA and RoleB are the two directions of a channel.
const (
	RoleA = "A"
	RoleB = "B"
)

// rotationSeconds lists the supported window lengths.
var rotationSeconds = map[int]bool{1: true, 3: true, 5: true, 10: true}

// WindowKeys is the key material of one time window.
type WindowKeys struct {
	Window int64
	Enc    []byte
	MAC    []byte
}

// Wipe zeroes the key material.
func (wk *WindowKeys) Wipe() {
	seed.WipeBytes(wk.Enc)
	seed.WipeBytes(wk.MAC)
}

// Schedule derives per-window keys for one role of one channel.
type Schedule struct {
	secret   []byte
	rotation int64
	salt     []byte
	info     []byte
}

// NewSchedule validates the channel parameters and returns a schedule. The
// secret is copied; the caller keeps ownership of its own buffer.
func NewSchedule(sharedSecret []byte, channelID, role string, rotationSecs int) (*Schedule, error) {
	if len(sharedSecret) < MinSecretLen {
		return nil, errors.Errorf("hr: shared secret must be at least %d bytes, got %d", MinSecretLen, len(sharedSecret))
	}
	if role != RoleA && role != RoleB {
		return nil, errors.Errorf("hr: role must be %q or %q, got %q", RoleA, RoleB, role)
	}
	if !rotationSeconds[rotationSecs] {
		return nil, errors.Errorf("hr: rotation must be 1, 3, 5 or 10 seconds, got %d", rotationSecs)
	}
	salt := sha256.Sum256([]byte(channelID))
	s := &Schedule{
		secret:   append([]byte(nil), sharedSecret...),
		rotation: int64(rotationSecs),
		salt:     salt[:],
		info:     []byte(fmt.Sprintf("ZK-HR:v%d|%s|%s", Version, channelID, role)),
	}
	return s, nil
}

// Window maps a point in time onto its window id.
func (s *Schedule) Window(t time.Time) int64 {
	return t.Unix() / s.rotation
}

// DeriveWindowKeys derives the encryption and MAC keys of one window.
func (s *Schedule) DeriveWindowKeys(window int64) (*WindowKeys, error) {
	if window < 0 {
		return nil, errors.Errorf("hr: window id must not be negative, got %d", window)
	}
	var windowBz [8]byte
	binary.LittleEndian.PutUint64(windowBz[:], uint64(window))
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(windowBz[:])
	windowSeed := mac.Sum(nil)
	defer seed.WipeBytes(windowSeed)

	prk := hkdf.Extract(sha256.New, windowSeed, s.salt)
	defer seed.WipeBytes(prk)

	okm := make([]byte, okmLen)
	if _, err := io.ReadFull(hkdf.Expand(sha256.New, prk, s.info), okm); err != nil {
		return nil, errors.Wrap(err, "hr: expanding window keys")
	}
	keys := &WindowKeys{
		Window: window,
		Enc:    append([]byte(nil), okm[:KeyLen]...),
		MAC:    append([]byte(nil), okm[KeyLen:]...),
	}
	seed.WipeBytes(okm)
	return keys, nil
}

// CurrentKeys derives the keys of the window containing t.
func (s *Schedule) CurrentKeys(t time.Time) (*WindowKeys, error) {
	return s.DeriveWindowKeys(s.Window(t))
}

// KeysWithDrift derives keys for every window in [window-maxDrift,
// window+maxDrift], skipping windows before the epoch. Receivers use the
// set to absorb clock skew between peers.
func (s *Schedule) KeysWithDrift(window int64, maxDrift int) ([]*WindowKeys, error) {
	if maxDrift < 0 {
		return nil, errors.Errorf("hr: drift must not be negative, got %d", maxDrift)
	}
	out := make([]*WindowKeys, 0, 2*maxDrift+1)
	for w := window - int64(maxDrift); w <= window+int64(maxDrift); w++ {
		if w < 0 {
			continue
		}
		keys, err := s.DeriveWindowKeys(w)
		if err != nil {
			return nil, err
		}
		out = append(out, keys)
	}
	return out, nil
}

// TimeUntilRotation reports how long the window containing t remains
// current.
func (s *Schedule) TimeUntilRotation(t time.Time) time.Duration {
	next := (s.Window(t) + 1) * s.rotation
	return time.Duration(next*int64(time.Second) - t.UnixNano())
}

// Close wipes the shared secret. The schedule must not derive keys
// afterwards.
func (s *Schedule) Close() {
	seed.WipeBytes(s.secret)
	seed.WipeBytes(s.salt)
}
