// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Call records one invocation seen by a [Fake] runner. Stdin is the
// fully drained input, so assertions can check what was piped to the
// child without touching the original reader.
type Call struct {
	Command string
	Args    []string
	Stdin   []byte
	Env     []string
}

// Response is what a [Fake] returns for a matched invocation.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Fake is a scripted Runner for tests. Responses are keyed by the
// joined command line ("bw status", "ssh-add -"); unmatched commands
// fail the invocation with a descriptive error so a test that forgot
// to script a command fails loudly instead of silently succeeding.
//
// Fake is safe for concurrent use, although the workflow it fakes is
// strictly sequential.
type Fake struct {
	mu        sync.Mutex
	responses map[string][]Response
	calls     []Call
}

// NewFake returns an empty Fake with no scripted responses.
func NewFake() *Fake {
	return &Fake{responses: make(map[string][]Response)}
}

// Respond scripts a response for the given command line. Multiple
// responses for the same command line are consumed in order; the last
// one repeats once the queue is drained.
func (f *Fake) Respond(commandLine string, response Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[commandLine] = append(f.responses[commandLine], response)
}

// Calls returns a copy of every invocation seen so far, in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallCount returns how many invocations matched the command line.
func (f *Fake) CallCount(commandLine string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, call := range f.calls {
		if commandKey(call.Command, call.Args) == commandLine {
			count++
		}
	}
	return count
}

// Run implements Runner against the scripted responses.
func (f *Fake) Run(ctx context.Context, spec Spec) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var stdin []byte
	if spec.Stdin != nil {
		data, err := io.ReadAll(spec.Stdin)
		if err != nil {
			return Result{}, fmt.Errorf("fake: reading stdin: %w", err)
		}
		stdin = data
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	key := commandKey(spec.Command, spec.Args)
	f.calls = append(f.calls, Call{
		Command: spec.Command,
		Args:    append([]string(nil), spec.Args...),
		Stdin:   stdin,
		Env:     append([]string(nil), spec.Env...),
	})

	queue := f.responses[key]
	if len(queue) == 0 {
		return Result{}, fmt.Errorf("fake: no response scripted for %q", key)
	}
	response := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}

	if response.Err != nil {
		return Result{}, response.Err
	}
	return Result{
		Stdout:   []byte(response.Stdout),
		Stderr:   []byte(response.Stderr),
		ExitCode: response.ExitCode,
	}, nil
}

func commandKey(command string, args []string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
