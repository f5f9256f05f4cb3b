// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package common_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/zframework/zkeygen/common"
)

func TestSHA256(t *testing.T) {
	input := [][]byte{[]byte("abc"), []byte("def"), []byte("ghi")}
	input2 := [][]byte{[]byte("abc"), []byte("def"), []byte("gh")}
	input3 := [][]byte{[]byte("abcdef"), []byte("ghi")}
	type args struct {
		in [][]byte
	}
	tests := []struct {
		name     string
		args     args
		want     []byte
		wantDiff bool
		wantLen  int
	}{{
		name:    "same inputs produce the same hash",
		args:    args{input},
		want:    SHA256(input...),
		wantLen: 256 / 8,
	}, {
		name:     "different inputs produce a differing hash",
		args:     args{input2},
		want:     SHA256(input...),
		wantDiff: true,
		wantLen:  256 / 8,
	}, {
		name:     "shifting bytes between inputs produces a differing hash",
		args:     args{input3},
		want:     SHA256(input...),
		wantDiff: true,
		wantLen:  256 / 8,
	}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SHA256(tt.args.in...)
			if tt.wantDiff {
				if !assert.NotEqualf(t, tt.want, got, "SHA256(%v)", tt.args.in) {
					t.Errorf("SHA256() = %v, do not want %v", got, tt.want)
				}
			} else {
				if !assert.Equalf(t, tt.want, got, "SHA256(%v)", tt.args.in) {
					t.Errorf("SHA256() = %v, want %v", got, tt.want)
				}
			}
			if tt.wantLen != len(got) {
				t.Errorf("SHA256() = len %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestSHA256NoInputs(t *testing.T) {
	assert.Nil(t, SHA256())
}
