// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command represents a CLI command or subcommand.
type Command struct {
	// Name is the command name as typed by the user.
	Name string

	// Summary is a one-line description shown in the parent's help
	// listing.
	Summary string

	// Description is a detailed multi-line description shown in the
	// command's own help output.
	Description string

	// Usage is the usage string. If empty, it is synthesized from the
	// command path.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Params returns a pointer to the command's parameter struct.
	// Tagged fields become pflag entries (see [BindFlags]); the struct
	// is populated before Run is called. Nil means no flags.
	Params func() any

	// Subcommands are nested commands dispatched by the first
	// positional argument.
	Subcommands []*Command

	// Run executes the command with the remaining args after flag
	// parsing. When both Run and Subcommands are set, Run handles the
	// case where no subcommand matches.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error

	// parent is set during dispatch to build the full command path
	// for help output.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and dispatches to the appropriate subcommand or
// Run function. This is the entry point for the command tree.
func (c *Command) Execute(ctx context.Context, args []string, logger *slog.Logger) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(os.Stderr)
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name := args[0]
		for _, sub := range c.Subcommands {
			if sub.Name == name {
				sub.parent = c
				return sub.Execute(ctx, args[1:], logger)
			}
		}

		if c.Run == nil {
			suggestion := suggestCommand(name, c.Subcommands)
			if suggestion != "" {
				return fmt.Errorf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
					name, suggestion, c.fullName())
			}
			return fmt.Errorf("unknown command %q\n\nRun '%s --help' for usage.",
				name, c.fullName())
		}
		// Fall through: the root command treats unmatched positional
		// arguments as its own.
	}

	var flagSet *pflag.FlagSet
	if c.Params != nil {
		flagSet = pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
		if err := BindFlags(c.Params(), flagSet); err != nil {
			return fmt.Errorf("binding flags for %s: %w", c.fullName(), err)
		}

		// Suppress pflag's own error output; errors are formatted
		// below with a suggestion where possible.
		flagSet.SetOutput(io.Discard)

		if err := flagSet.Parse(args); err != nil {
			message := err.Error()
			if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand") {
				if suggestion := suggestFlag(args, flagSet); suggestion != "" {
					return fmt.Errorf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
						message, suggestion, c.fullName())
				}
			}
			return fmt.Errorf("%s\n\nRun '%s --help' for usage.", message, c.fullName())
		}
		args = flagSet.Args()
	}

	if c.Run != nil {
		return c.Run(ctx, args, logger)
	}

	c.PrintHelp(os.Stderr)
	if len(c.Subcommands) > 0 {
		return fmt.Errorf("subcommand required")
	}
	return fmt.Errorf("no action defined for %q", c.fullName())
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", name)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Params != nil {
		flagSet := pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
		if err := BindFlags(c.Params(), flagSet); err == nil {
			var flagHelp strings.Builder
			flagSet.SetOutput(&flagHelp)
			flagSet.PrintDefaults()
			if flagHelp.Len() > 0 {
				fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
			}
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// fullName returns the complete command path (e.g., "vaultkeys doctor").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
