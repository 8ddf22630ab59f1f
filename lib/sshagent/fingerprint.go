// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package sshagent

import (
	"fmt"

	"golang.org/x/crypto/ssh"
)

// Fingerprint computes the SHA256 fingerprint of the public half of a
// PEM-encoded private key, in OpenSSH's "SHA256:..." display form.
// Used when a vault record carries key material but no stored
// fingerprint. Display only — never a trust decision.
func Fingerprint(privateKey []byte) (string, error) {
	signer, err := ssh.ParsePrivateKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("parsing private key: %w", err)
	}
	return ssh.FingerprintSHA256(signer.PublicKey()), nil
}
