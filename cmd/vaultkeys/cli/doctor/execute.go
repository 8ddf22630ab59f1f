// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
)

// ExecuteFixes runs the fix action for each fixable failure, updating
// results in place. In dry-run mode, no fixes are executed and an
// empty Outcome is returned.
func ExecuteFixes(ctx context.Context, results []Result, dryRun bool) Outcome {
	if dryRun {
		return Outcome{}
	}

	var outcome Outcome
	for i := range results {
		if results[i].Status != StatusFail || results[i].fix == nil {
			continue
		}
		if err := results[i].fix(ctx); err != nil {
			results[i].Message = fmt.Sprintf("%s (fix failed: %v)", results[i].Message, err)
			continue
		}
		results[i].Status = StatusFixed
		outcome.FixedCount++
	}

	return outcome
}

// BuildJSON builds the JSON output struct from results.
func BuildJSON(results []Result, dryRun bool) JSONOutput {
	anyFailed := false
	for _, result := range results {
		if result.Status == StatusFail {
			anyFailed = true
			break
		}
	}
	return JSONOutput{
		Checks: results,
		OK:     !anyFailed,
		DryRun: dryRun,
	}
}
