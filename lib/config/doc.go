// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for vaultkeys.
//
// Configuration is loaded from a single file specified by either the
// VAULTKEYS_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks and no automatic file
// search; when neither source names a file, [Default] applies. This
// keeps configuration deterministic and auditable — no hidden
// overrides.
//
// Every field has a working default: the tool runs with no config
// file at all on any machine with bw and the OpenSSH tools in PATH.
// Variable expansion (${HOME}, ${VAR:-default}) is performed on the
// binary path fields after loading.
package config
