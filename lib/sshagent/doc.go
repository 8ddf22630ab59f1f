// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

// Package sshagent locates or starts the OpenSSH key agent and loads
// private keys into it.
//
// The agent's location is carried as an explicit [Env] value (socket
// path plus agent PID) threaded from the probe to the provisioner,
// rather than smuggled through the process environment. The one place
// the environment is still written is [Export]: ssh-add and any tool
// the operator runs afterwards find the agent through SSH_AUTH_SOCK,
// which is a requirement of the external tools, not of this package.
// An agent started here is not visible to the parent shell — the
// environment of a parent process cannot be modified, so the operator
// must re-run or eval the agent output themselves to keep it across
// commands.
//
// Key material reaches the agent through "ssh-add -", piped on stdin.
// No temp files, no argv.
package sshagent
