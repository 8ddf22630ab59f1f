// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the vaultkeys
// binary: a small pflag-based command tree with structured help,
// typo suggestions, tagged-struct flag binding, a terminal password
// prompt, and the shared logger setup. Commands are assembled into
// the tree in cmd/vaultkeys/commands.
package cli
