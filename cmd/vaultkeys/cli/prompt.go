// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/vaultkeys/vaultkeys/lib/secret"
)

// ReadMasterPassword reads the vault master password. If passwordFile
// is non-empty and not "-", the password is read from that file.
// Otherwise the password comes from stdin: with echo disabled when
// stdin is a terminal, or as a single line when stdin is a pipe
// (e.g. `pass show vault | vaultkeys`).
//
// The password never appears on a command line; it lives only in a
// locked secret.Buffer until handed to the vault CLI over stdin.
func ReadMasterPassword(passwordFile string) (*secret.Buffer, error) {
	if passwordFile != "" && passwordFile != "-" {
		return readSecretFile(passwordFile)
	}

	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return readSecretLine(os.Stdin)
	}

	// Interactive prompt — read from terminal with echo disabled.
	fmt.Fprint(os.Stderr, "Master password: ")
	passwordBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	buffer, err := secret.NewFromBytes(passwordBytes)
	if err != nil {
		secret.Zero(passwordBytes)
		return nil, err
	}
	return buffer, nil
}

// readSecretFile reads a secret from a file path into a secret.Buffer.
// Strips trailing newlines (common with echo/printf pipelines).
func readSecretFile(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data = stripTrailingNewlines(data)
	if len(data) == 0 {
		secret.Zero(data)
		return nil, fmt.Errorf("file %s is empty (after stripping trailing newlines)", path)
	}

	buffer, err := secret.NewFromBytes(data)
	if err != nil {
		secret.Zero(data)
		return nil, err
	}
	return buffer, nil
}

// readSecretLine reads a single line from a non-terminal stdin. Used
// when the password is piped in rather than typed.
func readSecretLine(source *os.File) (*secret.Buffer, error) {
	reader := bufio.NewReader(source)
	line, err := reader.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return nil, fmt.Errorf("reading password from stdin: %w", err)
	}

	line = stripTrailingNewlines(line)
	if len(line) == 0 {
		secret.Zero(line)
		return nil, fmt.Errorf("empty password on stdin")
	}

	buffer, err := secret.NewFromBytes(line)
	if err != nil {
		secret.Zero(line)
		return nil, err
	}
	return buffer, nil
}

func stripTrailingNewlines(data []byte) []byte {
	for len(data) > 0 && (data[len(data)-1] == '\n' || data[len(data)-1] == '\r') {
		data = data[:len(data)-1]
	}
	return data
}
