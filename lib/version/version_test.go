// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package version

import "testing"

func TestString_NeverEmpty(t *testing.T) {
	if String() == "" {
		t.Fatal("String() returned an empty version")
	}
}

func TestString_PrefersLinkTimeValue(t *testing.T) {
	original := Version
	defer func() { Version = original }()

	Version = "v9.9.9"
	if got := String(); got != "v9.9.9" {
		t.Errorf("String() = %q, want the link-time value", got)
	}
}
