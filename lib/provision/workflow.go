// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vaultkeys/vaultkeys/lib/bitwarden"
	"github.com/vaultkeys/vaultkeys/lib/progress"
	"github.com/vaultkeys/vaultkeys/lib/secret"
	"github.com/vaultkeys/vaultkeys/lib/sshagent"
)

// Vault is the subset of the Bitwarden CLI the workflow needs.
// Implemented by *bitwarden.Client.
type Vault interface {
	Version(ctx context.Context) (string, error)
	Status(ctx context.Context, token *secret.Buffer) (bitwarden.VaultStatus, error)
	Unlock(ctx context.Context, password *secret.Buffer) (*secret.Buffer, error)
	ListItems(ctx context.Context, token *secret.Buffer) ([]bitwarden.Item, error)
}

// Agent is the subset of the SSH agent tooling the workflow needs.
// Implemented by *sshagent.Agent.
type Agent interface {
	Ensure(ctx context.Context) (sshagent.Env, error)
	AddKey(ctx context.Context, env sshagent.Env, privateKey string) error
}

// PasswordPrompt supplies the master password interactively. The
// workflow suspends the progress display around the call. The
// returned buffer is closed by the workflow after the unlock.
type PasswordPrompt func() (*secret.Buffer, error)

// Options configures one workflow run.
type Options struct {
	// NameFilter keeps only entries whose name contains this
	// case-insensitive substring. Empty keeps everything.
	NameFilter string

	// DryRun lists what would be added without touching the agent.
	DryRun bool

	// SessionToken is a token inherited from the calling environment
	// (BW_SESSION). When it still opens the vault, the password prompt
	// is skipped. Owned by the caller.
	SessionToken *secret.Buffer
}

// KeyResult is the per-key outcome of the fail-soft provisioning
// stage.
type KeyResult struct {
	// Name is the vault entry name.
	Name string

	// Fingerprint identifies the key for display: the vault's stored
	// fingerprint when present, otherwise computed from the key
	// material, otherwise "unknown".
	Fingerprint string

	// Err is nil for a key that was added (or would be, in dry-run).
	Err error
}

// Added reports whether the key was registered with the agent.
func (r KeyResult) Added() bool { return r.Err == nil }

// Summary is the outcome of a completed run. Added()+Failed() always
// equals the number of selected keys.
type Summary struct {
	// Keys holds one result per selected vault entry, in vault order.
	Keys []KeyResult

	// DryRun records whether the agent was deliberately skipped.
	DryRun bool
}

// Added returns the count of successfully registered keys.
func (s *Summary) Added() int {
	count := 0
	for _, key := range s.Keys {
		if key.Added() {
			count++
		}
	}
	return count
}

// Failed returns the count of keys the agent rejected.
func (s *Summary) Failed() int {
	return len(s.Keys) - s.Added()
}

// Workflow runs the provisioning sequence once. Not reusable: a run
// ends in StateDone or StateAborted and a new run needs a new
// Workflow.
type Workflow struct {
	vault    Vault
	agent    Agent
	prompt   PasswordPrompt
	reporter progress.Reporter
	logger   *slog.Logger
	options  Options

	state    State
	agentEnv sshagent.Env
	token    *secret.Buffer
	owned    bool // token was produced by this run and must be closed
}

// New assembles a workflow. All collaborators are required except the
// reporter, which defaults to discarding events.
func New(vault Vault, agent Agent, prompt PasswordPrompt, reporter progress.Reporter, logger *slog.Logger, options Options) *Workflow {
	if reporter == nil {
		reporter = progress.Nop()
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Workflow{
		vault:    vault,
		agent:    agent,
		prompt:   prompt,
		reporter: reporter,
		logger:   logger,
		options:  options,
		state:    StateInit,
	}
}

// State returns the workflow's current state.
func (w *Workflow) State() State { return w.state }

// Run executes the sequence. On a fail-fast error the returned error
// is a categorized *Error and the summary is nil. An empty key
// selection is success with an empty summary.
func (w *Workflow) Run(ctx context.Context) (*Summary, error) {
	defer w.closeToken()

	keys, err := w.selectKeys(ctx)
	if err != nil {
		w.abort()
		return nil, err
	}

	if len(keys) == 0 {
		w.state = StateDone
		w.logger.Info("no SSH keys matched", "filter", w.options.NameFilter)
		return &Summary{DryRun: w.options.DryRun}, nil
	}

	summary := w.provisionKeys(ctx, keys)
	w.state = StateDone
	return summary, nil
}

// selectKeys walks the fail-fast stages: prerequisites, session,
// listing, filtering.
func (w *Workflow) selectKeys(ctx context.Context) ([]bitwarden.Item, error) {
	w.reporter.Begin(3, "Checking prerequisites...")
	defer w.reporter.End()

	version, err := w.vault.Version(ctx)
	if err != nil {
		return nil, prerequisiteMissing("bitwarden CLI (bw) is not installed or not in PATH: %w", err)
	}
	w.logger.Debug("bitwarden CLI available", "version", version)

	agentEnv, err := w.agent.Ensure(ctx)
	if err != nil {
		return nil, agentUnavailable("ssh-agent is not running and could not be started: %w", err)
	}
	w.agentEnv = agentEnv
	w.logger.Debug("ssh-agent ready", "socket", agentEnv.SocketPath, "pid", agentEnv.PID)

	w.state = StatePrereqChecked
	w.reporter.Advance(1, "Acquiring vault session...")

	if err := w.acquireSession(ctx); err != nil {
		return nil, err
	}
	w.state = StateSessionAcquired
	w.reporter.Advance(1, "Retrieving SSH keys...")

	items, err := w.vault.ListItems(ctx, w.token)
	if err != nil {
		return nil, vaultQueryFailed("listing vault items: %w", err)
	}
	keys := bitwarden.FilterSSHKeys(items, w.options.NameFilter)
	w.state = StateKeysListed
	w.reporter.Advance(1, "")
	w.logger.Info("vault listing complete", "items", len(items), "ssh_keys", len(keys))

	return keys, nil
}

// acquireSession reuses the inherited token when the vault reports it
// unlocked, otherwise prompts for the master password and exchanges
// it for a fresh token.
func (w *Workflow) acquireSession(ctx context.Context) error {
	if w.options.SessionToken != nil {
		status, err := w.vault.Status(ctx, w.options.SessionToken)
		switch {
		case err != nil:
			// A malformed or failed status answer is a real parse
			// error, surfaced in the log — but it does not prove the
			// token is good, so the prompt still happens.
			w.logger.Warn("vault status check failed, falling back to unlock", "error", err)
		case status.Unlocked():
			w.logger.Debug("reusing session token from environment")
			w.token = w.options.SessionToken
			return nil
		default:
			w.logger.Debug("inherited session token is not usable", "status", status.Status)
		}
	}

	if w.prompt == nil {
		return authFailed("vault is locked and no password prompt is available")
	}

	// Explicit suspend/resume around interactive input: the progress
	// display owns the terminal otherwise.
	resumeTo := w.state
	w.state = StateSuspended
	w.reporter.Suspend()
	password, err := w.prompt()
	w.reporter.Resume()
	w.state = resumeTo

	if err != nil {
		return authFailed("reading master password: %w", err)
	}
	defer password.Close()

	token, err := w.vault.Unlock(ctx, password)
	if err != nil {
		return authFailed("unlocking vault: %w", err)
	}
	w.token = token
	w.owned = true
	return nil
}

// provisionKeys runs the fail-soft stage: every selected key is
// attempted, failures are recorded and never abort the sequence. In
// dry-run mode the agent is never invoked.
func (w *Workflow) provisionKeys(ctx context.Context, keys []bitwarden.Item) *Summary {
	summary := &Summary{DryRun: w.options.DryRun}

	if w.options.DryRun {
		for _, item := range keys {
			summary.Keys = append(summary.Keys, KeyResult{
				Name:        item.Name,
				Fingerprint: displayFingerprint(item),
			})
		}
		return summary
	}

	w.state = StateProvisioning
	w.reporter.Begin(len(keys), "Adding SSH keys...")
	defer w.reporter.End()

	for _, item := range keys {
		w.reporter.Advance(0, fmt.Sprintf("Adding key: %s", item.Name))

		result := KeyResult{
			Name:        item.Name,
			Fingerprint: displayFingerprint(item),
		}
		if err := w.agent.AddKey(ctx, w.agentEnv, item.SSHKey.PrivateKey); err != nil {
			result.Err = keyAddFailed("adding %s to agent: %w", item.Name, err)
			w.logger.Warn("key rejected by agent", "name", item.Name, "error", err)
		} else {
			w.logger.Info("key added", "name", item.Name, "fingerprint", result.Fingerprint)
		}
		summary.Keys = append(summary.Keys, result)
		w.reporter.Advance(1, "")
	}

	return summary
}

func (w *Workflow) abort() {
	w.state = StateAborted
}

// closeToken releases a token this run produced. Inherited tokens
// belong to the caller.
func (w *Workflow) closeToken() {
	if w.owned && w.token != nil {
		w.token.Close()
		w.token = nil
	}
}

// displayFingerprint picks the fingerprint shown for an entry: the
// vault's stored value, a locally computed one, or "unknown".
func displayFingerprint(item bitwarden.Item) string {
	if item.SSHKey == nil {
		return "unknown"
	}
	if item.SSHKey.KeyFingerprint != "" {
		return item.SSHKey.KeyFingerprint
	}
	if fingerprint, err := sshagent.Fingerprint([]byte(item.SSHKey.PrivateKey)); err == nil {
		return fingerprint
	}
	return "unknown"
}
