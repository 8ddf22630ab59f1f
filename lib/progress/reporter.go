// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package progress

// Reporter receives progress events from the provisioning workflow.
// Implementations must tolerate any call order the workflow produces:
// Begin starts a stage, Advance moves it forward, End finishes it,
// and Suspend/Resume bracket interactive input in the middle of a
// stage.
type Reporter interface {
	// Begin starts a stage with the given number of steps.
	Begin(total int, description string)

	// Advance moves the stage forward by steps and, when description
	// is non-empty, replaces the displayed description.
	Advance(steps int, description string)

	// Suspend hides the display so the terminal is free for
	// interactive input.
	Suspend()

	// Resume restores the display after Suspend.
	Resume()

	// End finishes the stage and erases the display.
	End()
}

// Nop returns a Reporter that discards all events.
func Nop() Reporter {
	return nopReporter{}
}

type nopReporter struct{}

func (nopReporter) Begin(int, string)   {}
func (nopReporter) Advance(int, string) {}
func (nopReporter) Suspend()            {}
func (nopReporter) Resume()             {}
func (nopReporter) End()                {}
