// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Spec describes a single external command invocation.
type Spec struct {
	// Command is the binary name or path, resolved via PATH when bare.
	Command string

	// Args are the command arguments. Never put secret material here:
	// arguments are visible to every user on the machine via the
	// process listing. Use Stdin instead.
	Args []string

	// Stdin is the child's standard input. When nil the child gets no
	// input at all (not the parent's stdin) — interactive prompts in
	// the child fail immediately instead of hanging the run.
	Stdin io.Reader

	// Env holds additional KEY=value entries appended to the parent's
	// environment for this invocation only.
	Env []string
}

// Result is the captured outcome of a completed command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external commands. The production implementation is
// [Exec]; tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// Exec runs commands via os/exec, blocking until the child exits.
type Exec struct{}

// Run executes the command described by spec. Both output streams are
// captured in full. A non-zero exit status is returned as data in
// Result.ExitCode with a nil error; an error is returned only when the
// command cannot be started (missing binary, bad path) or the context
// is cancelled before the child exits.
func (Exec) Run(ctx context.Context, spec Spec) (Result, error) {
	if spec.Command == "" {
		return Result{}, fmt.Errorf("invoke: empty command")
	}

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, spec.Command, spec.Args...)
	command.Stdout = &stdout
	command.Stderr = &stderr
	command.Stdin = spec.Stdin
	if len(spec.Env) > 0 {
		command.Env = append(os.Environ(), spec.Env...)
	}

	err := command.Run()
	result := Result{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}

	if err != nil {
		// Context cancellation wins over whatever exit status the
		// killed child reported.
		if ctx.Err() != nil {
			return result, fmt.Errorf("invoke: %s: %w", spec.Command, ctx.Err())
		}
		var exitError *exec.ExitError
		if errors.As(err, &exitError) {
			result.ExitCode = exitError.ExitCode()
			return result, nil
		}
		return result, fmt.Errorf("invoke: %s: %w", spec.Command, err)
	}

	return result, nil
}

// WithTimeout wraps a Runner so every invocation runs under its own
// deadline. An unresponsive vault CLI or agent launch would otherwise
// hang the whole run, since each workflow step blocks on the previous
// one. A non-positive duration returns the runner unchanged.
func WithTimeout(runner Runner, timeout time.Duration) Runner {
	if timeout <= 0 {
		return runner
	}
	return timeoutRunner{runner: runner, timeout: timeout}
}

type timeoutRunner struct {
	runner  Runner
	timeout time.Duration
}

func (r timeoutRunner) Run(ctx context.Context, spec Spec) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.runner.Run(ctx, spec)
}
