// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/vaultkeys/vaultkeys/cmd/vaultkeys/cli"
)

// PrintChecklist prints check results as a human-readable checklist.
// Returns a *cli.ExitError with code 1 when any check failed, so the
// doctor command exits non-zero without an extra error message.
func PrintChecklist(w io.Writer, results []Result, fixMode, dryRun bool, outcome Outcome) error {
	anyFailed := false
	fixableCount := 0
	fixedCount := 0

	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(w, "[%-5s]  %-32s  %s\n", prefix, result.Name, result.Message)

		switch result.Status {
		case StatusFail:
			anyFailed = true
			if result.FixHint != "" {
				fixableCount++
				if dryRun {
					fmt.Fprintf(w, "         %-32s  would fix: %s\n", "", result.FixHint)
				}
			}
		case StatusFixed:
			fixedCount++
		}
	}

	fmt.Fprintln(w)

	if anyFailed {
		if dryRun && fixableCount > 0 {
			fmt.Fprintf(w, "%d issue(s) would be repaired. Run without --dry-run to apply.\n", fixableCount)
		} else if !fixMode && fixableCount > 0 {
			fmt.Fprintf(w, "Run with --fix to repair %d issue(s).\n", fixableCount)
		} else {
			fmt.Fprintln(w, "Some checks failed.")
		}
		return &cli.ExitError{Code: 1}
	}

	if fixedCount > 0 {
		fmt.Fprintf(w, "%d issue(s) repaired.\n", fixedCount)
		return nil
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}
