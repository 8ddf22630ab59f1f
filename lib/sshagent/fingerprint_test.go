// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package sshagent

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func generateKeyPEM(t *testing.T) []byte {
	t.Helper()

	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(privateKey, "")
	if err != nil {
		t.Fatalf("marshalling key: %v", err)
	}
	return pem.EncodeToMemory(block)
}

func TestFingerprint(t *testing.T) {
	t.Parallel()

	fingerprint, err := Fingerprint(generateKeyPEM(t))
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	if !strings.HasPrefix(fingerprint, "SHA256:") {
		t.Errorf("fingerprint = %q, want SHA256: prefix", fingerprint)
	}
}

func TestFingerprint_InvalidMaterial(t *testing.T) {
	t.Parallel()

	if _, err := Fingerprint([]byte("not a key")); err == nil {
		t.Fatal("expected error for unparseable key material")
	}
}
