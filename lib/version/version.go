// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build version of the running binary.
package version

import "runtime/debug"

// Version is the release version, overridable at link time with
// -ldflags "-X github.com/vaultkeys/vaultkeys/lib/version.Version=v1.2.3".
var Version = "dev"

// String returns the most specific version available: the link-time
// value when set, otherwise the module version or VCS revision from
// the embedded build info.
func String() string {
	if Version != "dev" {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	if info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" && len(setting.Value) >= 12 {
			return "dev-" + setting.Value[:12]
		}
	}
	return Version
}
