// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision implements the provisioning workflow: verify the
// vault CLI and agent are usable, acquire an unlocked vault session,
// select the vault entries carrying SSH key material, and load each
// one into the agent.
//
// The workflow is a small sequential state machine:
//
//	Init → PrereqChecked → SessionAcquired → KeysListed → Provisioning → Done
//
// with Aborted terminal from any of the first three stages and
// Suspended entered while the display pauses for the master password
// prompt. The first three stages are fail-fast: an error ends the run
// with a categorized [Error]. Key loading is fail-soft: each key is
// attempted independently and its outcome recorded in the [Summary],
// so one rejected key never blocks the rest.
//
// The vault and agent are abstracted behind the [Vault] and [Agent]
// interfaces, implemented by lib/bitwarden and lib/sshagent and faked
// in tests.
package provision
