// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the vaultkeys CLI command tree. The root
// command is the provisioning run itself: `vaultkeys` with no
// subcommand loads SSH keys from the vault into ssh-agent.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli"
	"github.com/vaultkeys/vaultkeys/lib/version"
)

// Root builds and returns the complete vaultkeys command tree.
func Root() *cli.Command {
	root := &cli.Command{
		Name:    "vaultkeys",
		Summary: "Load SSH keys from a Bitwarden vault into ssh-agent",
		Description: `vaultkeys: SSH key provisioning from a password vault.

Reads SSH key items from the Bitwarden CLI (bw), unlocking the vault
if needed, and loads their private keys into a running ssh-agent.
Starts an agent when none is reachable.`,
		Usage: "vaultkeys [flags]",
		Examples: []cli.Example{
			{
				Description: "Load all vault SSH keys into ssh-agent",
				Command:     "vaultkeys",
			},
			{
				Description: "Preview without touching the agent",
				Command:     "vaultkeys --dry-run",
			},
			{
				Description: "Load only keys whose name contains \"github\"",
				Command:     "vaultkeys --filter github",
			},
			{
				Description: "Check environment prerequisites",
				Command:     "vaultkeys doctor",
			},
		},
		Subcommands: []*cli.Command{
			listCommand(),
			doctorCommand(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("vaultkeys %s\n", version.String())
					return nil
				},
			},
		},
	}

	// The root command carries the load behavior directly.
	params := &loadParams{}
	root.Params = func() any { return params }
	root.Run = func(ctx context.Context, args []string, logger *slog.Logger) error {
		if len(args) > 0 {
			return fmt.Errorf("unexpected argument %q\n\nRun 'vaultkeys --help' for usage.", args[0])
		}
		return runLoad(ctx, params, logger)
	}

	return root
}
