// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"errors"
	"fmt"
)

// Kind classifies workflow failures so the CLI can choose exit codes
// and phrasing without parsing error text.
type Kind string

const (
	// KindPrerequisiteMissing means the vault CLI is absent or broken.
	// Fatal; nothing else was attempted.
	KindPrerequisiteMissing Kind = "prerequisite_missing"

	// KindAgentUnavailable means no agent is reachable and none could
	// be started. Fatal, before any vault interaction.
	KindAgentUnavailable Kind = "agent_unavailable"

	// KindAuthFailed means no valid session token could be obtained:
	// rejected password, failed unlock, or an unusable status
	// response. Fatal; the operator re-runs the tool.
	KindAuthFailed Kind = "auth_failed"

	// KindVaultQueryFailed means the item listing failed with a valid
	// session. Fatal.
	KindVaultQueryFailed Kind = "vault_query_failed"

	// KindKeyAddFailed means one key's agent submission failed. Never
	// fatal — recorded per key in the run summary.
	KindKeyAddFailed Kind = "key_add_failed"
)

// Error is a categorized workflow failure. It wraps the underlying
// error, preserving the chain for errors.Is/As while carrying the
// category for exit-code decisions.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the category of a workflow error, or "" for nil and
// uncategorized errors.
func KindOf(err error) Kind {
	var workflowError *Error
	if errors.As(err, &workflowError) {
		return workflowError.Kind
	}
	return ""
}

func prerequisiteMissing(format string, args ...any) *Error {
	return &Error{Kind: KindPrerequisiteMissing, Err: fmt.Errorf(format, args...)}
}

func agentUnavailable(format string, args ...any) *Error {
	return &Error{Kind: KindAgentUnavailable, Err: fmt.Errorf(format, args...)}
}

func authFailed(format string, args ...any) *Error {
	return &Error{Kind: KindAuthFailed, Err: fmt.Errorf(format, args...)}
}

func vaultQueryFailed(format string, args ...any) *Error {
	return &Error{Kind: KindVaultQueryFailed, Err: fmt.Errorf(format, args...)}
}

func keyAddFailed(format string, args ...any) *Error {
	return &Error{Kind: KindKeyAddFailed, Err: fmt.Errorf(format, args...)}
}
