// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package common

import (
	"crypto/sha256"
	"encoding/binary"
)

const hashInputDelimiter = byte('$')

// SHA256 hashes the given byte slices with a block-count prefix and a
// delimiter plus length suffix after every input, so that two distinct input
// vectors can never collide by concatenation.
func SHA256(in ...[]byte) []byte {
	inLen := len(in)
	if inLen == 0 {
		return nil
	}
	state := sha256.New()
	bzSize := 0
	inLenBz := make([]byte, 8)
	binary.LittleEndian.PutUint64(inLenBz, uint64(inLen))
	for _, bz := range in {
		bzSize += len(bz)
	}
	data := make([]byte, 0, len(inLenBz)+bzSize+inLen+(inLen*8))
	data = append(data, inLenBz...)
	for _, bz := range in {
		data = append(data, bz...)
		data = append(data, hashInputDelimiter)
		dataLen := make([]byte, 8)
		binary.LittleEndian.PutUint64(dataLen, uint64(len(bz)))
		data = append(data, dataLen...)
	}
	if _, err := state.Write(data); err != nil {
		Logger.Errorf("SHA256 Write() failed: %v", err)
		return nil
	}
	return state.Sum(nil)
}
