// Copyright 2026 The Vaultkeys Authors
// SPDX-License-Identifier: Apache-2.0

package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// spinnerFrames is the braille spinner used while a stage is active.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

var (
	spinnerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	descriptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	percentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// refreshInterval is how often the spinner animates between events.
const refreshInterval = 100 * time.Millisecond

// Terminal renders a transient progress line to a terminal. Safe for
// the workflow's sequential calls plus the internal animation tick.
type Terminal struct {
	mu          sync.Mutex
	output      *termenv.Output
	bar         progress.Model
	frame       int
	total       int
	done        int
	description string
	active      bool
	suspended   bool
	stop        chan struct{}
	stopped     chan struct{}
}

// NewTerminal returns a Terminal writing to the given writer
// (normally os.Stderr, so stdout stays clean for real output).
func NewTerminal(writer io.Writer) *Terminal {
	return &Terminal{
		output: termenv.NewOutput(writer),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

// Begin implements Reporter.
func (t *Terminal) Begin(total int, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total = total
	t.done = 0
	t.description = description
	t.active = true
	t.output.HideCursor()
	t.renderLocked()
	t.startTickerLocked()
}

// Advance implements Reporter.
func (t *Terminal) Advance(steps int, description string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active {
		return
	}
	t.done += steps
	if t.done > t.total {
		t.done = t.total
	}
	if description != "" {
		t.description = description
	}
	t.renderLocked()
}

// Suspend implements Reporter. The display is erased and the cursor
// restored so the terminal is usable for interactive input.
func (t *Terminal) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || t.suspended {
		return
	}
	t.suspended = true
	t.clearLocked()
	t.output.ShowCursor()
}

// Resume implements Reporter.
func (t *Terminal) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || !t.suspended {
		return
	}
	t.suspended = false
	t.output.HideCursor()
	t.renderLocked()
}

// End implements Reporter. Blocks until the animation goroutine has
// exited, so no write races with whatever the caller prints next.
func (t *Terminal) End() {
	t.mu.Lock()
	if !t.active {
		t.mu.Unlock()
		return
	}
	t.active = false
	t.suspended = false
	stop, stopped := t.stop, t.stopped
	t.stop, t.stopped = nil, nil
	t.clearLocked()
	t.output.ShowCursor()
	t.mu.Unlock()

	if stop != nil {
		close(stop)
		<-stopped
	}
}

// startTickerLocked launches the animation goroutine if one is not
// already running. Caller holds t.mu.
func (t *Terminal) startTickerLocked() {
	if t.stop != nil {
		return
	}
	stop := make(chan struct{})
	stopped := make(chan struct{})
	t.stop, t.stopped = stop, stopped

	go func() {
		defer close(stopped)
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				t.tick()
			}
		}
	}()
}

func (t *Terminal) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.active || t.suspended {
		return
	}
	t.frame++
	t.renderLocked()
}

// renderLocked redraws the progress line in place. Caller holds t.mu.
func (t *Terminal) renderLocked() {
	if t.suspended {
		return
	}

	fraction := 0.0
	if t.total > 0 {
		fraction = float64(t.done) / float64(t.total)
	}

	line := fmt.Sprintf("%s %s %s %s",
		spinnerStyle.Render(spinnerFrames[t.frame%len(spinnerFrames)]),
		descriptionStyle.Render(t.description),
		t.bar.ViewAs(fraction),
		percentStyle.Render(fmt.Sprintf("%3.0f%%", fraction*100)),
	)

	fmt.Fprint(t.output, "\r")
	t.output.ClearLine()
	fmt.Fprint(t.output, line)
}

// clearLocked erases the progress line. Caller holds t.mu.
func (t *Terminal) clearLocked() {
	fmt.Fprint(t.output, "\r")
	t.output.ClearLine()
}
