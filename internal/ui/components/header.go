// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/orderdesk/internal/ui/styles"
	"github.com/jeranaias/orderdesk/internal/util"
)

// Tab is one navigable view in the header.
type Tab struct {
	Key    string
	Title  string
	Active bool
	// Locked tabs are shown but the current visitor cannot open them.
	Locked bool
}

// Header is the title bar: brand, view tabs and the signed-in user.
type Header struct {
	Title    string
	Username string
	Admin    bool
	Tabs     []Tab
	Width    int
	theme    *styles.Theme
}

// NewHeader creates a header with the orderdesk brand.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{Title: "orderdesk", Width: 80, theme: theme}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetUser sets the signed-in user. An empty username means signed out.
func (h *Header) SetUser(username string, admin bool) {
	h.Username = username
	h.Admin = admin
}

// View renders the header on one line.
func (h *Header) View() string {
	t := h.theme
	brand := t.HeaderBrand.Render(h.Title)

	tabs := make([]string, 0, len(h.Tabs))
	for _, tab := range h.Tabs {
		label := tab.Key + " " + tab.Title
		switch {
		case tab.Active:
			tabs = append(tabs, t.TabActive.Render(label))
		case tab.Locked:
			tabs = append(tabs, t.TabLocked.Render(label))
		default:
			tabs = append(tabs, t.Tab.Render(label))
		}
	}

	user := t.HeaderUser.Render("signed out")
	if h.Username != "" {
		user = t.HeaderUser.Render(util.Truncate(h.Username, 20))
		if h.Admin {
			user += " " + t.AdminBadge.Render("ADMIN")
		}
	}

	left := brand + "  " + strings.Join(tabs, "")
	width := h.Width
	if width < 40 {
		width = 40
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(user) - 2
	if gap < 1 {
		// Narrow terminals drop the tabs; the status bar still lists keys.
		left = brand
		gap = width - lipgloss.Width(left) - lipgloss.Width(user) - 2
		if gap < 1 {
			gap = 1
		}
	}
	return t.Header.Width(width).Render(left + strings.Repeat(" ", gap) + user)
}
