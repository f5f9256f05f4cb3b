// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package seed

import "runtime"

// WipeBytes zeroes b in place. The KeepAlive barrier keeps the compiler from
// dropping the stores when b is about to go out of scope.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
