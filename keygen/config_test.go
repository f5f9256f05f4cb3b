// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package keygen_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/zframework/zkeygen/keygen"
)

func TestDefaultConfigIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, DefaultConfig().Validate())
}

func TestConfigValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bits below minimum", func(c *Config) { c.Bits = 100 }},
		{"bits above maximum", func(c *Config) { c.Bits = 16384 }},
		{"odd bits", func(c *Config) { c.Bits = 1025 }},
		{"even exponent", func(c *Config) { c.E = 4 }},
		{"exponent below 3", func(c *Config) { c.E = 1 }},
		{"oversized exponent", func(c *Config) { c.E = 1 << 40 }},
		{"negative bump p", func(c *Config) { c.BumpP = -1 }},
		{"negative bump q", func(c *Config) { c.BumpQ = -3 }},
		{"attempt budget too small", func(c *Config) { c.MaxAttempts = 1 }},
		{"negative concurrency", func(c *Config) { c.Concurrency = -2 }},
		{"zero validity", func(c *Config) { c.ValidityDays = 0 }},
		{"empty common name", func(c *Config) { c.CommonName = "" }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfigValidateAggregatesViolations(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Bits = 0
	cfg.E = 2
	cfg.ValidityDays = 0
	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "bits")
	assert.Contains(t, err.Error(), "exponent")
	assert.Contains(t, err.Error(), "validity")
}
