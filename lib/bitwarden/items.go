// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package bitwarden

import "strings"

// SSHKey is the SSH-key sub-record of a vault item. Only items whose
// sub-record carries a non-empty private key qualify for provisioning;
// the fingerprint is display-only.
type SSHKey struct {
	PrivateKey     string `json:"privateKey"`
	PublicKey      string `json:"publicKey"`
	KeyFingerprint string `json:"keyFingerprint"`
}

// Item is one vault entry as returned by "bw list items". Items are
// immutable snapshots fetched fresh on each run; nothing is cached
// across runs. Fields the workflow does not read are not modeled.
type Item struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	SSHKey *SSHKey `json:"sshKey,omitempty"`
}

// HasSSHKey reports whether the item carries usable SSH key material.
// An sshKey sub-record with an empty privateKey does not count: the
// vault UI creates such records for public-key-only entries.
func (item Item) HasSSHKey() bool {
	return item.SSHKey != nil && item.SSHKey.PrivateKey != ""
}

// FilterSSHKeys returns the items that qualify as SSH keys, preserving
// the vault's original ordering. When nameFilter is non-empty, only
// items whose name contains it as a case-insensitive substring are
// kept. An empty result is a valid outcome, not an error.
func FilterSSHKeys(items []Item, nameFilter string) []Item {
	lowered := strings.ToLower(nameFilter)

	var keys []Item
	for _, item := range items {
		if !item.HasSSHKey() {
			continue
		}
		if lowered != "" && !strings.Contains(strings.ToLower(item.Name), lowered) {
			continue
		}
		keys = append(keys, item)
	}
	return keys
}
