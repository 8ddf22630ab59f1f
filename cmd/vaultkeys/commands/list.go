// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli"
	"github.com/vaultkeys/vaultkeys/lib/bitwarden"
	"github.com/vaultkeys/vaultkeys/lib/invoke"
	"github.com/vaultkeys/vaultkeys/lib/secret"
)

type listParams struct {
	Filter       string `flag:"filter,f" desc:"only show keys whose item name contains this substring (case-insensitive)"`
	Config       string `flag:"config" desc:"path to a YAML config file (default: $VAULTKEYS_CONFIG if set)"`
	PasswordFile string `flag:"password-file" desc:"read the master password from this file instead of prompting"`
}

// listCommand returns the "vaultkeys list" command: show the SSH key
// items in the vault without touching ssh-agent.
func listCommand() *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List SSH key items in the vault",
		Usage:   "vaultkeys list [flags]",
		Examples: []cli.Example{
			{Description: "List all vault SSH keys", Command: "vaultkeys list"},
			{Description: "List keys matching a name", Command: "vaultkeys list --filter github"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runList(ctx, &params, logger)
		},
	}
}

func runList(ctx context.Context, params *listParams, logger *slog.Logger) error {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return err
	}

	vault := bitwarden.NewClient(
		invoke.WithTimeout(invoke.Exec{}, cfg.Vault.Timeout),
		cfg.Vault.Binary,
	)

	token, err := vaultSession(ctx, vault, params.PasswordFile, logger)
	if err != nil {
		return err
	}
	defer token.Close()

	items, err := vault.ListItems(ctx, token)
	if err != nil {
		return fmt.Errorf("listing vault items: %w", err)
	}

	filter := params.Filter
	if filter == "" {
		filter = cfg.Filter
	}
	keys := bitwarden.FilterSSHKeys(items, filter)
	if len(keys) == 0 {
		fmt.Println("No SSH keys found in vault")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tFINGERPRINT\tID")
	for _, key := range keys {
		fingerprint := key.SSHKey.KeyFingerprint
		if fingerprint == "" {
			fingerprint = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\n", key.Name, fingerprint, key.ID)
	}
	return writer.Flush()
}

// vaultSession returns a usable session token: the inherited
// BW_SESSION when the vault reports unlocked, otherwise a fresh token
// from an interactive unlock.
func vaultSession(ctx context.Context, vault *bitwarden.Client, passwordFile string, logger *slog.Logger) (*secret.Buffer, error) {
	if token := secret.FromEnv(bitwarden.SessionVariable); token != nil {
		status, err := vault.Status(ctx, token)
		if err == nil && status.Unlocked() {
			return token, nil
		}
		if err != nil {
			logger.Warn("vault status check failed, unlocking instead", "error", err)
		}
		token.Close()
	}

	password, err := cli.ReadMasterPassword(passwordFile)
	if err != nil {
		return nil, err
	}
	defer password.Close()

	token, err := vault.Unlock(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("unlocking vault: %w", err)
	}
	return token, nil
}
