// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// Spinner is an ASCII loading indicator with an elapsed timer.
type Spinner struct {
	spinner   spinner.Model
	message   string
	startTime time.Time
	active    bool
	theme     *styles.Theme
}

// NewSpinner creates an idle spinner.
func NewSpinner(theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	s.Style = theme.Spinner
	return Spinner{spinner: s, message: "Loading", theme: theme}
}

// Start shows the spinner with message and returns its tick command.
func (s *Spinner) Start(message string) tea.Cmd {
	s.message = message
	s.startTime = time.Now()
	s.active = true
	return s.spinner.Tick
}

// Stop hides the spinner.
func (s *Spinner) Stop() {
	s.active = false
}

// Active reports whether the spinner is showing.
func (s *Spinner) Active() bool {
	return s.active
}

// Update advances the animation while active.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.active {
		return s, nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner, or nothing when idle.
func (s Spinner) View() string {
	if !s.active {
		return ""
	}
	out := s.spinner.View() + " " + s.theme.Subtitle.Render(s.message)
	if elapsed := time.Since(s.startTime); elapsed >= time.Second {
		out += " " + s.theme.Muted.Render(fmt.Sprintf("(%ds)", int(elapsed.Seconds())))
	}
	return out
}
