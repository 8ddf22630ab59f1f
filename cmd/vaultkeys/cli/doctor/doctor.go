// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import "context"

// Status is the outcome of a single health check.
type Status string

const (
	StatusPass  Status = "pass"
	StatusFail  Status = "fail"
	StatusWarn  Status = "warn"
	StatusSkip  Status = "skip"
	StatusFixed Status = "fixed"
)

// FixAction is a function that repairs a failed check. Domain-specific
// dependencies (subprocess runner, agent environment, config paths)
// are captured in the closure at check-construction time. The context
// carries cancellation and timeout.
type FixAction func(ctx context.Context) error

// Result holds the outcome of a single health check. Fixable failures
// carry a FixHint (human description) and an unexported fix function.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	FixHint string `json:"fix_hint,omitempty"`
	fix     FixAction
}

// HasFix reports whether this result carries a fix action.
func (r *Result) HasFix() bool {
	return r.fix != nil
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing check result with no automatic fix.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// FailWithFix creates a failing check result with an automatic fix.
func FailWithFix(name, message, fixHint string, fix FixAction) Result {
	return Result{Name: name, Status: StatusFail, Message: message, FixHint: fixHint, fix: fix}
}

// Warn creates a warning check result. Warnings do not cause the
// doctor command to exit with a non-zero status.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Skip creates a skipped check result. Checks are skipped when a
// prerequisite check failed (e.g., the vault status check skips when
// the vault CLI is not installed).
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// Outcome holds the aggregate results of a fix pass.
type Outcome struct {
	// FixedCount is the number of successfully applied fixes.
	FixedCount int
}

// JSONOutput is the JSON output structure for the doctor command.
type JSONOutput struct {
	Checks []Result `json:"checks"`
	OK     bool     `json:"ok"`
	DryRun bool     `json:"dry_run,omitempty"`
}
