// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/orderdesk/internal/ui/styles"
	"github.com/jeranaias/orderdesk/internal/util"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the connection state shown in the status bar.
type Status int

const (
	StatusReady Status = iota
	StatusBusy
	StatusOffline
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusBusy:
		return "Working"
	case StatusOffline:
		return "Offline"
	default:
		return "Unknown"
	}
}

// Shortcut is a key hint.
type Shortcut struct {
	Key  string
	Desc string
}

// StatusBar is the bottom line: gateway, connection status, cart and keys.
type StatusBar struct {
	Gateway   string
	Status    Status
	CartItems int
	CartTotal float64
	Shortcuts []Shortcut
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetCart updates the cart summary.
func (s *StatusBar) SetCart(items int, total float64) {
	s.CartItems = items
	s.CartTotal = total
}

// View renders the status bar, dropping detail as the width shrinks.
func (s *StatusBar) View() string {
	t := s.theme
	parts := []string{s.renderStatus()}

	if s.Width >= 60 && s.Gateway != "" {
		parts = append(parts, t.Muted.Render(util.Truncate(s.Gateway, 32)))
	}
	if s.CartItems > 0 {
		parts = append(parts, t.Money.Render(fmt.Sprintf("cart: %d %s, $%.2f",
			s.CartItems, util.Plural(s.CartItems, "item"), s.CartTotal)))
	}

	left := strings.Join(parts, t.Muted.Render(" | "))
	right := ""
	if s.Width >= 60 {
		right = s.renderShortcuts()
	}

	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		right = ""
		gap = 1
	}
	return t.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

func (s *StatusBar) renderStatus() string {
	t := s.theme
	switch s.Status {
	case StatusBusy:
		return t.WarningStyle.Render(s.Status.String())
	case StatusOffline:
		return t.ErrorStyle.Render(styles.StatusIndicators.Error + " " + s.Status.String())
	default:
		return t.SuccessStyle.Render(s.Status.String())
	}
}

func (s *StatusBar) renderShortcuts() string {
	t := s.theme
	out := make([]string, 0, len(s.Shortcuts))
	for _, sc := range s.Shortcuts {
		out = append(out, t.ShortcutKey.Render(sc.Key)+" "+t.ShortcutDsc.Render(sc.Desc))
	}
	return strings.Join(out, "  ")
}
