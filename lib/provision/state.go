// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package provision

// State identifies where the workflow is in its sequence. States only
// ever move forward, except Suspended, which returns to the state it
// interrupted.
type State int

const (
	// StateInit is the starting state, before any external call.
	StateInit State = iota

	// StatePrereqChecked means the vault CLI answered and an agent is
	// reachable or was started.
	StatePrereqChecked

	// StateSuspended means the display is paused for interactive
	// input (the master password prompt). Resumes to the stage that
	// suspended.
	StateSuspended

	// StateSessionAcquired means an unlocked session token is held.
	StateSessionAcquired

	// StateKeysListed means the vault listing completed and the key
	// selection is fixed.
	StateKeysListed

	// StateProvisioning means keys are being submitted to the agent.
	StateProvisioning

	// StateDone is the successful terminal state, reached regardless
	// of individual per-key outcomes.
	StateDone

	// StateAborted is the failure terminal state, reached from any
	// fail-fast stage.
	StateAborted
)

var stateNames = map[State]string{
	StateInit:            "init",
	StatePrereqChecked:   "prereq_checked",
	StateSuspended:       "suspended",
	StateSessionAcquired: "session_acquired",
	StateKeysListed:      "keys_listed",
	StateProvisioning:    "provisioning",
	StateDone:            "done",
	StateAborted:         "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
