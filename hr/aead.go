// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package hr

import (
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/pkg/errors"

	"golang.org/x/crypto/chacha20poly1305"
)

// NonceSize is the XChaCha20-Poly1305 nonce width. Nonces this wide are
// drawn at random per message without bookkeeping.
const NonceSize = chacha20poly1305.NonceSizeX

// ErrAuthFailed reports a ciphertext whose authentication tag did not
// verify, covering both tampering and a key from the wrong window.
var ErrAuthFailed = errors.New("hr: message authentication failed")

// Cipher seals and opens messages under one window key with
// XChaCha20-Poly1305.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher wraps a derived encryption key. The key must be KeyLen bytes.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, errors.Errorf("hr: key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, errors.Wrap(err, "hr: initializing cipher")
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce and binds associatedData
// into the authentication tag. Returns the nonce and the ciphertext, which
// carries the tag at its tail.
func (c *Cipher) Encrypt(plaintext, associatedData []byte) ([]byte, []byte, error) {
	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, errors.Wrap(err, "hr: drawing nonce")
	}
	return nonce, c.aead.Seal(nil, nonce, plaintext, associatedData), nil
}

// Decrypt opens a sealed message. The associated data must byte-match the
// value sealed in, or ErrAuthFailed is returned.
func (c *Cipher) Decrypt(nonce, ciphertext, associatedData []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, errors.Errorf("hr: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, associatedData)
	if err != nil {
		return nil, errors.Wrapf(ErrAuthFailed, "%v", err)
	}
	return plaintext, nil
}
