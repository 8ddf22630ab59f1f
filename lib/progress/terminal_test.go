// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// syncWriter makes a bytes.Buffer safe against the animation goroutine.
type syncWriter struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func (w *syncWriter) Write(data []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.Write(data)
}

func (w *syncWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buffer.String()
}

func TestTerminal_RendersDescriptionAndPercent(t *testing.T) {
	t.Parallel()

	writer := &syncWriter{}
	terminal := NewTerminal(writer)

	terminal.Begin(4, "Checking prerequisites...")
	terminal.Advance(1, "Acquiring vault session...")
	terminal.End()

	output := writer.String()
	if !strings.Contains(output, "Checking prerequisites...") {
		t.Error("output missing initial description")
	}
	if !strings.Contains(output, "Acquiring vault session...") {
		t.Error("output missing advanced description")
	}
	if !strings.Contains(output, "25%") {
		t.Errorf("output missing percentage, got %q", output)
	}
}

func TestTerminal_SuspendStopsRendering(t *testing.T) {
	t.Parallel()

	writer := &syncWriter{}
	terminal := NewTerminal(writer)

	terminal.Begin(2, "stage")
	terminal.Suspend()
	baseline := len(writer.String())

	// Events while suspended must not draw anything.
	terminal.Advance(1, "hidden update")
	if written := writer.String()[baseline:]; written != "" {
		t.Errorf("suspended reporter wrote %q", written)
	}

	terminal.Resume()
	terminal.End()
	if !strings.Contains(writer.String(), "hidden update") {
		t.Error("resume did not redraw the pending state")
	}
}

func TestTerminal_EndIsIdempotent(t *testing.T) {
	t.Parallel()

	terminal := NewTerminal(&syncWriter{})
	terminal.Begin(1, "stage")
	terminal.End()
	terminal.End()

	// A finished reporter ignores further events.
	terminal.Advance(1, "late")
}

func TestNop_AcceptsAllEvents(t *testing.T) {
	t.Parallel()

	reporter := Nop()
	reporter.Begin(3, "x")
	reporter.Advance(1, "")
	reporter.Suspend()
	reporter.Resume()
	reporter.End()
}
