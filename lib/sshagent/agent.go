// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package sshagent

import (
	"context"
	"fmt"
	"strings"

	"github.com/vaultkeys/vaultkeys/lib/invoke"
)

// Agent adds identities to a running key agent via the ssh-add binary.
type Agent struct {
	runner       invoke.Runner
	addBinary    string
	launchBinary string
}

// NewAgent returns an Agent using the given binaries. Empty names
// resolve to "ssh-add" and "ssh-agent" from PATH.
func NewAgent(runner invoke.Runner, addBinary, launchBinary string) *Agent {
	if addBinary == "" {
		addBinary = "ssh-add"
	}
	if launchBinary == "" {
		launchBinary = "ssh-agent"
	}
	return &Agent{runner: runner, addBinary: addBinary, launchBinary: launchBinary}
}

// Ensure returns a usable agent environment: the one inherited from
// the calling shell when its socket still exists, otherwise the
// environment of a freshly launched agent. A freshly launched agent is
// exported into the process environment for any later external tool;
// it is not visible to the parent shell.
func (a *Agent) Ensure(ctx context.Context) (Env, error) {
	if env, ok := Current(); ok {
		return env, nil
	}

	env, err := Start(ctx, a.runner, a.launchBinary)
	if err != nil {
		return Env{}, err
	}
	if err := env.Export(); err != nil {
		return Env{}, fmt.Errorf("exporting agent environment: %w", err)
	}
	return env, nil
}

// AddKey submits PEM-encoded private key material to the agent via
// "ssh-add -". The key travels on stdin only. ssh-add requires the PEM
// footer to end with a newline; vault records often store the key
// without one, so it is appended when missing.
func (a *Agent) AddKey(ctx context.Context, env Env, privateKey string) error {
	if !strings.HasSuffix(privateKey, "\n") {
		privateKey += "\n"
	}

	result, err := a.runner.Run(ctx, invoke.Spec{
		Command: a.addBinary,
		Args:    []string{"-"},
		Stdin:   strings.NewReader(privateKey),
		Env:     env.Environ(),
	})
	if err != nil {
		return err
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("ssh-add exited %d: %s", result.ExitCode, strings.TrimSpace(string(result.Stderr)))
	}
	return nil
}
