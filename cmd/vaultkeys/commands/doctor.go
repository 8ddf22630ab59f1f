// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli"
	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli/doctor"
	"github.com/vaultkeys/vaultkeys/lib/bitwarden"
	"github.com/vaultkeys/vaultkeys/lib/config"
	"github.com/vaultkeys/vaultkeys/lib/invoke"
	"github.com/vaultkeys/vaultkeys/lib/secret"
	"github.com/vaultkeys/vaultkeys/lib/sshagent"
)

type doctorParams struct {
	Fix    bool   `flag:"fix" desc:"attempt automatic repair of fixable failures"`
	DryRun bool   `flag:"dry-run" desc:"show which fixes would run without applying them"`
	JSON   bool   `flag:"json" desc:"machine-readable output"`
	Config string `flag:"config" desc:"path to a YAML config file (default: $VAULTKEYS_CONFIG if set)"`
}

// doctorCommand returns the "vaultkeys doctor" command: diagnose the
// environment a provisioning run depends on.
func doctorCommand() *cli.Command {
	var params doctorParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Check environment prerequisites",
		Description: `Check everything a provisioning run needs: the vault CLI, vault
authentication state, the ssh-agent environment, and agent
connectivity. For each failure, prints what to do about it.`,
		Usage: "vaultkeys doctor [flags]",
		Examples: []cli.Example{
			{Description: "Check environment health", Command: "vaultkeys doctor"},
			{Description: "Repair what can be repaired", Command: "vaultkeys doctor --fix"},
			{Description: "Machine-readable output", Command: "vaultkeys doctor --json"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument %q", args[0])
			}
			return runDoctor(ctx, &params, logger)
		},
	}
}

func runDoctor(ctx context.Context, params *doctorParams, logger *slog.Logger) error {
	cfg, err := loadConfig(params.Config)
	if err != nil {
		return err
	}

	results := runChecks(ctx, cfg)
	outcome := doctor.Outcome{}
	if params.Fix {
		outcome = doctor.ExecuteFixes(ctx, results, params.DryRun)
		// Fixes may have changed the environment; re-check so the
		// checklist reflects the repaired state.
		if outcome.FixedCount > 0 {
			fixed := make(map[string]bool)
			for _, result := range results {
				if result.Status == doctor.StatusFixed {
					fixed[result.Name] = true
				}
			}
			results = runChecks(ctx, cfg)
			for i := range results {
				if results[i].Status == doctor.StatusPass && fixed[results[i].Name] {
					results[i].Status = doctor.StatusFixed
				}
			}
		}
	}

	if params.JSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doctor.BuildJSON(results, params.DryRun)); err != nil {
			return err
		}
		for _, result := range results {
			if result.Status == doctor.StatusFail {
				return &cli.ExitError{Code: 1}
			}
		}
		return nil
	}

	return doctor.PrintChecklist(os.Stdout, results, params.Fix, params.DryRun, outcome)
}

// runChecks runs every health check in dependency order.
func runChecks(ctx context.Context, cfg *config.Config) []doctor.Result {
	var results []doctor.Result

	vaultRunner := invoke.WithTimeout(invoke.Exec{}, cfg.Vault.Timeout)
	agentRunner := invoke.WithTimeout(invoke.Exec{}, cfg.Agent.Timeout)
	vault := bitwarden.NewClient(vaultRunner, cfg.Vault.Binary)

	// Vault CLI on PATH and responding.
	cliVersion, err := vault.Version(ctx)
	if err != nil {
		results = append(results,
			doctor.Fail("vault CLI", fmt.Sprintf("%s not usable: %v", cfg.Vault.Binary, err)),
			doctor.Skip("vault status", "vault CLI not available"),
		)
	} else {
		results = append(results, doctor.Pass("vault CLI", fmt.Sprintf("%s %s", cfg.Vault.Binary, cliVersion)))

		token := secret.FromEnv(bitwarden.SessionVariable)
		status, err := vault.Status(ctx, token)
		switch {
		case err != nil:
			results = append(results, doctor.Warn("vault status", fmt.Sprintf("status unreadable: %v", err)))
		case status.Unlocked():
			results = append(results, doctor.Pass("vault status", "unlocked"))
		case status.Status == "locked":
			results = append(results, doctor.Warn("vault status", "locked (vaultkeys will prompt for the master password)"))
		default:
			results = append(results, doctor.Fail("vault status", fmt.Sprintf("%s (run '%s login' first)", status.Status, cfg.Vault.Binary)))
		}
		if token != nil {
			token.Close()
		}
	}

	// Agent environment and connectivity.
	env, ok := sshagent.Current()
	if !ok {
		results = append(results,
			doctor.FailWithFix("ssh-agent environment",
				sshagent.SocketVariable+" not set or socket missing",
				"start a new ssh-agent",
				func(ctx context.Context) error {
					started, err := sshagent.Start(ctx, agentRunner, cfg.Agent.LaunchBinary)
					if err != nil {
						return err
					}
					return started.Export()
				}),
			doctor.Skip("ssh-agent connectivity", "no agent environment"),
		)
	} else {
		results = append(results, doctor.Pass("ssh-agent environment", env.SocketPath))
		if env.Reachable() {
			results = append(results, doctor.Pass("ssh-agent connectivity", "agent responds to list requests"))
		} else {
			results = append(results, doctor.Fail("ssh-agent connectivity",
				"socket exists but the agent does not respond (stale "+sshagent.SocketVariable+"?)"))
		}
	}

	return results
}
