// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package bitwarden provides typed access to the Bitwarden CLI (bw).
// Vaultkeys never speaks to the vault service directly — every vault
// operation goes through the bw binary, which owns authentication,
// sync state, and record encryption. This package wraps the four
// subcommands the workflow needs: --version (prerequisite probe),
// status, unlock, and list items.
//
// All operations that require an unlocked vault take the session token
// explicitly. The token travels to the child process as BW_SESSION in
// its environment, never as a command-line argument. The master
// password is piped to "bw unlock" on stdin for the same reason: argv
// is world-readable via the process listing.
package bitwarden
