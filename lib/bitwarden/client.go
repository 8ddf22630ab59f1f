// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package bitwarden

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vaultkeys/vaultkeys/lib/invoke"
	"github.com/vaultkeys/vaultkeys/lib/secret"
)

// SessionVariable is the environment variable the bw CLI reads its
// session token from. Vaultkeys both consumes it (a token inherited
// from the calling shell) and produces it (for bw child processes).
const SessionVariable = "BW_SESSION"

// VaultStatus is the parsed response of "bw status". The CLI reports
// more fields (serverUrl, lastSync, userEmail); only the status value
// drives any decision here.
type VaultStatus struct {
	Status string `json:"status"`
}

// Unlocked reports whether the vault is usable with the current
// session token.
func (s VaultStatus) Unlocked() bool {
	return s.Status == "unlocked"
}

// Client invokes the bw binary. The runner is injected so tests can
// script responses without a real vault.
type Client struct {
	runner invoke.Runner
	binary string
}

// NewClient returns a Client running the given binary ("bw" resolved
// from PATH when empty).
func NewClient(runner invoke.Runner, binary string) *Client {
	if binary == "" {
		binary = "bw"
	}
	return &Client{runner: runner, binary: binary}
}

// Version returns the CLI's version string. This doubles as the
// prerequisite probe: a missing or broken bw install fails here,
// before any vault interaction.
func (c *Client) Version(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, invoke.Spec{
		Command: c.binary,
		Args:    []string{"--version"},
	})
	if err != nil {
		return "", fmt.Errorf("bitwarden CLI not available: %w", err)
	}
	if result.ExitCode != 0 {
		return "", fmt.Errorf("bw --version exited %d: %s", result.ExitCode, strings.TrimSpace(string(result.Stderr)))
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

// Status queries the vault's lock state. When token is non-nil it is
// attached to the query, so the answer reflects that specific session.
// A malformed response is a parse error, never silently "locked" —
// the caller decides how to degrade.
func (c *Client) Status(ctx context.Context, token *secret.Buffer) (VaultStatus, error) {
	result, err := c.runner.Run(ctx, invoke.Spec{
		Command: c.binary,
		Args:    []string{"status"},
		Env:     sessionEnv(token),
	})
	if err != nil {
		return VaultStatus{}, err
	}
	if result.ExitCode != 0 {
		return VaultStatus{}, fmt.Errorf("bw status exited %d: %s", result.ExitCode, strings.TrimSpace(string(result.Stderr)))
	}

	var status VaultStatus
	if err := json.Unmarshal(result.Stdout, &status); err != nil {
		return VaultStatus{}, fmt.Errorf("parsing bw status response: %w", err)
	}
	return status, nil
}

// Unlock exchanges the master password for a fresh session token. The
// password is piped to the child on stdin, never on argv, where it
// would be visible in the process listing. Stdout is the raw token;
// stderr carries the CLI's own error detail on rejection.
func (c *Client) Unlock(ctx context.Context, password *secret.Buffer) (*secret.Buffer, error) {
	result, err := c.runner.Run(ctx, invoke.Spec{
		Command: c.binary,
		Args:    []string{"unlock", "--raw"},
		Stdin:   password.Reader(),
	})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("vault unlock rejected: %s", strings.TrimSpace(string(result.Stderr)))
	}

	raw := []byte(strings.TrimSpace(string(result.Stdout)))
	if len(raw) == 0 {
		return nil, fmt.Errorf("vault unlock returned an empty session token")
	}
	token, err := secret.NewFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("storing session token: %w", err)
	}
	return token, nil
}

// ListItems fetches every vault entry visible to the session. The
// token is required: listing without one would trigger the CLI's own
// interactive prompt, which a child without stdin cannot answer.
func (c *Client) ListItems(ctx context.Context, token *secret.Buffer) ([]Item, error) {
	if token == nil {
		return nil, fmt.Errorf("listing vault items requires a session token")
	}

	result, err := c.runner.Run(ctx, invoke.Spec{
		Command: c.binary,
		Args:    []string{"list", "items"},
		Env:     sessionEnv(token),
	})
	if err != nil {
		return nil, err
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("bw list items exited %d: %s", result.ExitCode, strings.TrimSpace(string(result.Stderr)))
	}

	var items []Item
	if err := json.Unmarshal(result.Stdout, &items); err != nil {
		return nil, fmt.Errorf("parsing bw list items response: %w", err)
	}
	return items, nil
}

// sessionEnv builds the BW_SESSION entry for a child process. The
// conversion to string is an unavoidable boundary copy — the child's
// environment block is assembled by the kernel from plain strings.
func sessionEnv(token *secret.Buffer) []string {
	if token == nil {
		return nil
	}
	return []string{SessionVariable + "=" + string(token.Bytes())}
}
