// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package sshagent

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh/agent"

	"github.com/vaultkeys/vaultkeys/lib/invoke"
)

// Environment variables announced by ssh-agent and consumed by every
// OpenSSH client tool.
const (
	SocketVariable = "SSH_AUTH_SOCK"
	PIDVariable    = "SSH_AGENT_PID"
)

// Env describes how to reach a running agent. The zero value means
// "no agent known".
type Env struct {
	// SocketPath is the Unix socket the agent listens on.
	SocketPath string

	// PID is the agent's process ID. Zero when the agent was inherited
	// from the environment without an SSH_AGENT_PID entry (common under
	// systemd user services and forwarded agents).
	PID int
}

// Environ returns the variable assignments a child process needs to
// reach this agent.
func (e Env) Environ() []string {
	env := []string{SocketVariable + "=" + e.SocketPath}
	if e.PID > 0 {
		env = append(env, PIDVariable+"="+strconv.Itoa(e.PID))
	}
	return env
}

// Export writes the agent location into the current process
// environment so that external tools spawned later inherit it. This is
// the documented boundary write: nothing inside vaultkeys reads these
// variables back.
func (e Env) Export() error {
	if err := os.Setenv(SocketVariable, e.SocketPath); err != nil {
		return err
	}
	if e.PID > 0 {
		return os.Setenv(PIDVariable, strconv.Itoa(e.PID))
	}
	return nil
}

// Current returns the agent environment inherited from the calling
// shell. The second return is false when SSH_AUTH_SOCK is unset or the
// socket path no longer exists on disk (stale after a reboot).
func Current() (Env, bool) {
	socketPath := os.Getenv(SocketVariable)
	if socketPath == "" {
		return Env{}, false
	}
	if _, err := os.Stat(socketPath); err != nil {
		return Env{}, false
	}

	env := Env{SocketPath: socketPath}
	if pid, err := strconv.Atoi(os.Getenv(PIDVariable)); err == nil {
		env.PID = pid
	}
	return env, true
}

// Reachable reports whether a live agent answers on the socket. A
// socket file can outlive its agent; a successful identity listing is
// the only reliable liveness signal.
func (e Env) Reachable() bool {
	connection, err := net.DialTimeout("unix", e.SocketPath, 2*time.Second)
	if err != nil {
		return false
	}
	defer connection.Close()

	_, err = agent.NewClient(connection).List()
	return err == nil
}

// Start launches a new agent via "ssh-agent -s" and parses its
// announced environment from stdout. Single attempt, no retry: if the
// launch fails the whole run is over anyway.
func Start(ctx context.Context, runner invoke.Runner, binary string) (Env, error) {
	if binary == "" {
		binary = "ssh-agent"
	}

	result, err := runner.Run(ctx, invoke.Spec{
		Command: binary,
		Args:    []string{"-s"},
	})
	if err != nil {
		return Env{}, fmt.Errorf("starting ssh-agent: %w", err)
	}
	if result.ExitCode != 0 {
		return Env{}, fmt.Errorf("ssh-agent exited %d: %s", result.ExitCode, strings.TrimSpace(string(result.Stderr)))
	}

	return ParseStartOutput(string(result.Stdout))
}

// ParseStartOutput extracts the socket path and agent PID from
// ssh-agent's Bourne-shell output, which looks like:
//
//	SSH_AUTH_SOCK=/tmp/ssh-XXXX/agent.123; export SSH_AUTH_SOCK;
//	SSH_AGENT_PID=124; export SSH_AGENT_PID;
//	echo Agent pid 124;
//
// Both variables are required; an announcement missing either one is
// malformed.
func ParseStartOutput(output string) (Env, error) {
	var env Env
	for _, line := range strings.Split(output, "\n") {
		name, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		// Drop everything from the first ';' — the export clause.
		value, _, _ = strings.Cut(value, ";")

		switch name {
		case SocketVariable:
			env.SocketPath = value
		case PIDVariable:
			pid, err := strconv.Atoi(value)
			if err != nil {
				return Env{}, fmt.Errorf("ssh-agent announced a non-numeric PID %q", value)
			}
			env.PID = pid
		}
	}

	if env.SocketPath == "" || env.PID == 0 {
		return Env{}, fmt.Errorf("ssh-agent output missing %s or %s", SocketVariable, PIDVariable)
	}
	return env, nil
}
