// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli"
	"github.com/vaultkeys/vaultkeys/lib/bitwarden"
	"github.com/vaultkeys/vaultkeys/lib/config"
	"github.com/vaultkeys/vaultkeys/lib/invoke"
	"github.com/vaultkeys/vaultkeys/lib/progress"
	"github.com/vaultkeys/vaultkeys/lib/provision"
	"github.com/vaultkeys/vaultkeys/lib/secret"
	"github.com/vaultkeys/vaultkeys/lib/sshagent"
)

var (
	addedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("114")) // green
	failedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")) // red
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")) // gray
)

// loadParams holds the flags for the root (load) command.
type loadParams struct {
	Filter       string `flag:"filter,f" desc:"only load keys whose item name contains this substring (case-insensitive)"`
	DryRun       bool   `flag:"dry-run" desc:"report what would be loaded without invoking ssh-add"`
	Verbose      bool   `flag:"verbose,v" desc:"enable debug logging of subprocess invocations"`
	Config       string `flag:"config" desc:"path to a YAML config file (default: $VAULTKEYS_CONFIG if set)"`
	PasswordFile string `flag:"password-file" desc:"read the master password from this file instead of prompting"`
}

// runLoad is the default vaultkeys action: check prerequisites, ensure
// an agent, unlock the vault if needed, and load every SSH key item
// into the agent.
func runLoad(ctx context.Context, params *loadParams, logger *slog.Logger) error {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return err
	}

	vault := bitwarden.NewClient(
		invoke.WithTimeout(invoke.Exec{}, cfg.Vault.Timeout),
		cfg.Vault.Binary,
	)
	agent := sshagent.NewAgent(
		invoke.WithTimeout(invoke.Exec{}, cfg.Agent.Timeout),
		cfg.Agent.AddBinary,
		cfg.Agent.LaunchBinary,
	)

	filter := params.Filter
	if filter == "" {
		filter = cfg.Filter
	}

	reporter := progress.Nop()
	if term.IsTerminal(int(os.Stderr.Fd())) {
		reporter = progress.NewTerminal(os.Stderr)
	}

	prompt := func() (*secret.Buffer, error) {
		return cli.ReadMasterPassword(params.PasswordFile)
	}

	inherited := secret.FromEnv(bitwarden.SessionVariable)
	if inherited != nil {
		defer inherited.Close()
	}

	workflow := provision.New(vault, agent, prompt, reporter, logger, provision.Options{
		NameFilter:   filter,
		DryRun:       params.DryRun,
		SessionToken: inherited,
	})

	summary, err := workflow.Run(ctx)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, summary)
	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// printSummary writes the per-key outcome lines and the closing count.
// Per-key failures are reported but do not change the exit code: a
// partially provisioned agent is still a useful outcome.
func printSummary(w io.Writer, summary *provision.Summary) {
	if len(summary.Keys) == 0 {
		fmt.Fprintln(w, "No SSH keys found in vault")
		return
	}

	for _, key := range summary.Keys {
		switch {
		case key.Err != nil:
			fmt.Fprintf(w, "%s %s: %v\n", failedStyle.Render("✗"), key.Name, key.Err)
		case summary.DryRun:
			fmt.Fprintf(w, "%s %s %s\n", faintStyle.Render("-"), key.Name, faintStyle.Render(key.Fingerprint))
		default:
			fmt.Fprintf(w, "%s %s %s\n", addedStyle.Render("✓"), key.Name, faintStyle.Render(key.Fingerprint))
		}
	}

	if summary.DryRun {
		fmt.Fprintf(w, "\nWould add %d of %d key(s) to ssh-agent.\n", summary.Added(), len(summary.Keys))
		return
	}
	fmt.Fprintf(w, "\nAdded %d of %d key(s) to ssh-agent.\n", summary.Added(), len(summary.Keys))
}
