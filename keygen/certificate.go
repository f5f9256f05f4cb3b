// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"time"

	"github.com/pkg/errors"

	"github.com/zframework/zkeygen/seed"
)

// serialBytes is the serial number width in octets.
const serialBytes = 20

// SelfSignedCertificate wraps the public half of key in a self-signed SHA-256
// certificate and returns its DER encoding. The serial number comes from a
// fresh seed, independent of the master seed, so serials cannot correlate
// runs that share key material.
func SelfSignedCertificate(key *rsa.PrivateKey, cfg *Config) ([]byte, error) {
	if key == nil {
		return nil, errors.New("keygen: private key is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	serialSeed, err := seed.Generate()
	if err != nil {
		return nil, errors.Wrap(err, "keygen: drawing certificate serial")
	}
	defer serialSeed.Wipe()
	raw := serialSeed.Bytes()
	serial := new(big.Int).SetBytes(raw[:serialBytes])
	seed.WipeBytes(raw)

	now := time.Now().UTC()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   cfg.CommonName,
			Organization: []string{cfg.Organization},
		},
		NotBefore:             now,
		NotAfter:              now.Add(time.Duration(cfg.ValidityDays) * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  false,
		SignatureAlgorithm:    x509.SHA256WithRSA,
	}
	if cfg.DNSName != "" {
		template.DNSNames = []string{cfg.DNSName}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, errors.Wrap(err, "keygen: signing certificate")
	}
	return der, nil
}
