// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package invoke runs external commands and captures their output.
//
// Everything vaultkeys does goes through two external trust-boundary
// tools: the Bitwarden CLI and the OpenSSH agent tools. This package is
// the single place where child processes are spawned. The [Runner]
// interface exists so the CLI wrapper packages (lib/bitwarden,
// lib/sshagent) can be tested against a fake without real binaries.
//
// Two deliberate properties of [Exec]:
//
//   - A child never inherits the parent's stdin. Secret material
//     (master password, private keys) is supplied only through an
//     explicit [Spec].Stdin reader, and never as a command-line
//     argument where it would be visible in process listings.
//   - A non-zero exit code is not an error at this layer. It is
//     recorded in [Result].ExitCode for the caller to interpret;
//     only failures to spawn or a cancelled context return an error.
package invoke
