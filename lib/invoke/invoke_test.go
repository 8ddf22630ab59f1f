// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestExec_CapturesStdoutAndStderr(t *testing.T) {
	t.Parallel()

	result, err := Exec{}.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "echo out; echo err >&2"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "out" {
		t.Errorf("stdout = %q, want %q", got, "out")
	}
	if got := strings.TrimSpace(string(result.Stderr)); got != "err" {
		t.Errorf("stderr = %q, want %q", got, "err")
	}
	if result.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", result.ExitCode)
	}
}

func TestExec_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	result, err := Exec{}.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	})
	if err != nil {
		t.Fatalf("Run: %v (non-zero exit must be data, not an error)", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
}

func TestExec_StdinIsExplicit(t *testing.T) {
	t.Parallel()

	// With a wired reader the child sees exactly the provided bytes.
	result, err := Exec{}.Run(context.Background(), Spec{
		Command: "cat",
		Stdin:   strings.NewReader("secret material\n"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(result.Stdout); got != "secret material\n" {
		t.Errorf("stdout = %q, want piped input echoed back", got)
	}

	// Without a reader, the child gets EOF immediately rather than
	// the parent's stdin: cat must produce nothing and exit 0.
	result, err = Exec{}.Run(context.Background(), Spec{Command: "cat"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Stdout) != 0 || result.ExitCode != 0 {
		t.Errorf("stdout = %q exit = %d, want empty and 0", result.Stdout, result.ExitCode)
	}
}

func TestExec_ExtraEnvironment(t *testing.T) {
	t.Parallel()

	result, err := Exec{}.Run(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "printf %s \"$VAULTKEYS_TEST_VALUE\""},
		Env:     []string{"VAULTKEYS_TEST_VALUE=attached"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := string(result.Stdout); got != "attached" {
		t.Errorf("stdout = %q, want %q", got, "attached")
	}
}

func TestExec_MissingBinaryIsAnError(t *testing.T) {
	t.Parallel()

	_, err := Exec{}.Run(context.Background(), Spec{
		Command: "vaultkeys-test-no-such-binary",
	})
	if err == nil {
		t.Fatal("expected error for missing binary, got nil")
	}
}

func TestWithTimeout_KillsHangingChild(t *testing.T) {
	t.Parallel()

	runner := WithTimeout(Exec{}, 100*time.Millisecond)
	start := time.Now()
	_, err := runner.Run(context.Background(), Spec{
		Command: "sleep",
		Args:    []string{"30"},
	})
	if err == nil {
		t.Fatal("expected deadline error, got nil")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("runner blocked %v past its deadline", elapsed)
	}
}

func TestFake_RecordsStdinAndOrdersResponses(t *testing.T) {
	t.Parallel()

	fake := NewFake()
	fake.Respond("bw unlock --raw", Response{Stdout: "token-1"})
	fake.Respond("bw unlock --raw", Response{Stdout: "token-2", ExitCode: 1})

	result, err := fake.Run(context.Background(), Spec{
		Command: "bw",
		Args:    []string{"unlock", "--raw"},
		Stdin:   strings.NewReader("hunter2"),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(result.Stdout) != "token-1" {
		t.Errorf("first response stdout = %q", result.Stdout)
	}

	result, _ = fake.Run(context.Background(), Spec{Command: "bw", Args: []string{"unlock", "--raw"}})
	if result.ExitCode != 1 {
		t.Errorf("second response exit = %d, want 1", result.ExitCode)
	}

	calls := fake.Calls()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if string(calls[0].Stdin) != "hunter2" {
		t.Errorf("recorded stdin = %q, want %q", calls[0].Stdin, "hunter2")
	}
}

func TestFake_UnscriptedCommandFails(t *testing.T) {
	t.Parallel()

	fake := NewFake()
	if _, err := fake.Run(context.Background(), Spec{Command: "bw", Args: []string{"status"}}); err == nil {
		t.Fatal("expected error for unscripted command")
	}
}
