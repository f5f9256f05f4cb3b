// Copyright © 2025 ZFramework Labs
//
// This file is part of zkeygen. The full copyright notice, including terms
// governing use, modification, and redistribution, is contained in the file
// LICENSE at the root of the source code distribution tree.

package keygen

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/zframework/zkeygen/common"
	"github.com/zframework/zkeygen/seed"
)

// WriteFiles persists the key and certificate under cfg.OutputDir with
// deterministic names carrying the seed fingerprint. The key file opens with
// comment lines recording the seed and the bumps, enough to regenerate the
// exact key, so it is written owner-readable only. Returns both paths.
func WriteFiles(master *seed.Seed, key *rsa.PrivateKey, certDER []byte, cfg *Config) (string, string, error) {
	if master == nil || key == nil || len(certDER) == 0 {
		return "", "", errors.New("keygen: seed, key and certificate are all required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0700); err != nil {
		return "", "", errors.Wrapf(err, "keygen: creating output directory %s", cfg.OutputDir)
	}

	base := fmt.Sprintf("zkeygen-%s", master.Fingerprint())
	keyPath := filepath.Join(cfg.OutputDir, base+".key")
	certPath := filepath.Join(cfg.OutputDir, base+".crt")

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", "", errors.Wrap(err, "keygen: encoding private key")
	}
	var keyBuf bytes.Buffer
	fmt.Fprintf(&keyBuf, "# ZKEYGEN SECURE RSA KEY GENERATOR\n")
	fmt.Fprintf(&keyBuf, "# seed_hex=%q; bumps: p=%d, q=%d; entropy: SYSTEM_GENERATED\n",
		master.Hex(), cfg.BumpP, cfg.BumpQ)
	if err := pem.Encode(&keyBuf, &pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}); err != nil {
		seed.WipeBytes(keyDER)
		return "", "", errors.Wrap(err, "keygen: encoding key PEM")
	}
	err = ioutil.WriteFile(keyPath, keyBuf.Bytes(), 0600)
	seed.WipeBytes(keyBuf.Bytes())
	seed.WipeBytes(keyDER)
	if err != nil {
		return "", "", errors.Wrapf(err, "keygen: writing %s", keyPath)
	}
	common.Logger.Debugf("wrote private key: %s", keyPath)

	var certBuf bytes.Buffer
	if err := pem.Encode(&certBuf, &pem.Block{Type: "CERTIFICATE", Bytes: certDER}); err != nil {
		return "", "", errors.Wrap(err, "keygen: encoding certificate PEM")
	}
	if err := ioutil.WriteFile(certPath, certBuf.Bytes(), 0600); err != nil {
		return "", "", errors.Wrapf(err, "keygen: writing %s", certPath)
	}
	common.Logger.Debugf("wrote certificate: %s", certPath)

	return keyPath, certPath, nil
}
