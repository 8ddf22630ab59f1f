// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli"
	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like doctor) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Ctrl-C cancels the context, which kills any in-flight vault or
	// agent subprocess.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := cli.NewCommandLogger(verboseRequested(os.Args[1:]))
	return commands.Root().Execute(ctx, os.Args[1:], logger)
}

// verboseRequested pre-scans the arguments for the verbose flag. The
// logger must exist before flag parsing runs, so this cannot wait for
// pflag.
func verboseRequested(args []string) bool {
	for _, arg := range args {
		if arg == "--verbose" || arg == "-v" {
			return true
		}
	}
	return false
}
