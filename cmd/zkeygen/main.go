// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

// Command zkeygen generates a seeded RSA keypair with a self-signed
// certificate and writes both under the output directory. The seed is always
// drawn fresh from the system entropy source; no flag accepts key material.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	log "github.com/ipfs/go-log"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/zframework/zkeygen/keygen"
	"github.com/zframework/zkeygen/seed"
)

var quiet bool

func printAlways(format string, args ...interface{}) {
	if !quiet {
		fmt.Printf(format, args...)
	}
}

// seedExitCode maps a seed failure onto the documented process exit codes:
// 2 entropy unavailable, 3 short read, 4 mixing failure, 1 anything else.
func seedExitCode(err error) int {
	switch {
	case errors.Is(err, seed.ErrEntropyUnavailable):
		return 2
	case errors.Is(err, seed.ErrEntropyShortRead):
		return 3
	case errors.Is(err, seed.ErrMixingFailure):
		return 4
	}
	return 1
}

func reportSeedFailure(err error) {
	switch {
	case errors.Is(err, seed.ErrEntropyUnavailable):
		fmt.Fprintln(os.Stderr, "ERROR: entropy source unavailable")
	case errors.Is(err, seed.ErrEntropyShortRead):
		fmt.Fprintln(os.Stderr, "ERROR: entropy read failure")
	case errors.Is(err, seed.ErrMixingFailure):
		fmt.Fprintln(os.Stderr, "ERROR: cryptographic mixing failure")
	default:
		fmt.Fprintln(os.Stderr, "ERROR: internal seed generator failure")
	}
}

func summarize(master *seed.Seed, stats *keygen.Stats) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Prime", "Attempts", "Parallel", "Fallback"})
	table.Append([]string{"p", strconv.FormatUint(stats.P.Attempts, 10),
		strconv.FormatBool(stats.P.Parallel), strconv.FormatBool(stats.P.Fallback)})
	table.Append([]string{"q", strconv.FormatUint(stats.Q.Attempts, 10),
		strconv.FormatBool(stats.Q.Parallel), strconv.FormatBool(stats.Q.Fallback)})
	table.SetFooter([]string{"seed " + master.Fingerprint(), "", "retries",
		strconv.Itoa(stats.Retries)})
	table.Render()
}

func run() int {
	defaults := keygen.DefaultConfig()

	bits := flag.Int("bits", defaults.Bits, "key size in bits")
	pubExp := flag.Uint64("e", defaults.E, "public exponent")
	validityDays := flag.Int("validity-days", defaults.ValidityDays, "certificate validity in days")
	bumpP := flag.Int("bump-p", defaults.BumpP, "derivation bump for p")
	bumpQ := flag.Int("bump-q", defaults.BumpQ, "derivation bump for q")
	attempts := flag.Uint64("attempts", defaults.MaxAttempts, "candidate budget per prime search")
	concurrency := flag.Int("concurrency", defaults.Concurrency, "search workers (0 = all CPUs)")
	outDir := flag.String("out", defaults.OutputDir, "output directory")
	commonName := flag.String("common-name", defaults.CommonName, "certificate common name")
	organization := flag.String("organization", defaults.Organization, "certificate organization")
	dnsName := flag.String("dns-name", defaults.DNSName, "certificate DNS subject alternative name")
	debug := flag.Bool("debug", false, "verbose output and search logging")
	flag.BoolVar(&quiet, "quiet", false, "suppress all non-error output")
	flag.Parse()

	if *debug {
		_ = log.SetLogLevel("zkeygen", "debug")
	} else {
		_ = log.SetLogLevel("zkeygen", "error")
	}

	cfg := &keygen.Config{
		Bits:         *bits,
		E:            *pubExp,
		BumpP:        *bumpP,
		BumpQ:        *bumpQ,
		MaxAttempts:  *attempts,
		Concurrency:  *concurrency,
		ValidityDays: *validityDays,
		CommonName:   *commonName,
		Organization: *organization,
		DNSName:      *dnsName,
		OutputDir:    *outDir,
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	begin := time.Now()
	printAlways("=== ZKEYGEN SECURE RSA Key Generator ===\n\n")

	master, err := seed.Generate()
	if err != nil {
		reportSeedFailure(err)
		return seedExitCode(err)
	}
	defer master.Wipe()

	printAlways("Configuration:\n")
	if *debug {
		printAlways("  Seed: %s (SYSTEM_GENERATED)\n", master.Hex())
	}
	printAlways("  Bits: %d\n", cfg.Bits)
	printAlways("  e: %d\n", cfg.E)
	printAlways("  Validity: %d days\n", cfg.ValidityDays)
	printAlways("  Bumps: p=%d, q=%d\n\n", cfg.BumpP, cfg.BumpQ)

	key, stats, err := keygen.GenerateKey(context.Background(), master, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generating keypair: %v\n", err)
		return 1
	}

	certDER, err := keygen.SelfSignedCertificate(key, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: generating certificate: %v\n", err)
		return 1
	}

	keyPath, certPath, err := keygen.WriteFiles(master, key, certDER, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: writing output files: %v\n", err)
		return 1
	}
	printAlways("Wrote private key: %s\n", keyPath)
	printAlways("Wrote certificate: %s\n", certPath)

	printAlways("\n=== Generation Complete ===\n")
	printAlways("Total generation time: %d ms\n", time.Since(begin).Milliseconds())
	if *debug && !quiet {
		summarize(master, stats)
	}
	return 0
}

func main() {
	os.Exit(run())
}
