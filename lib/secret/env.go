// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"os"
)

// FromEnv captures a secret inherited from the calling environment
// (typically BW_SESSION exported by an earlier unlock). Returns nil
// when the variable is unset or blank after trimming whitespace.
//
// The process environment itself cannot be scrubbed — the shell that
// exported the variable still holds it — but moving the value into a
// locked buffer keeps our own copy off swap and out of core dumps.
func FromEnv(name string) *Buffer {
	value := os.Getenv(name)
	if value == "" {
		return nil
	}

	trimmed := bytes.TrimSpace([]byte(value))
	if len(trimmed) == 0 {
		return nil
	}

	buffer, err := NewFromBytes(trimmed)
	if err != nil {
		return nil
	}
	return buffer
}
