// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// Sender is the part of *tea.Program the navigator needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Navigator delivers forced logouts to the running program. It satisfies
// gateway.Navigator and is safe to call from any goroutine. Calls made
// before Attach are dropped; the guard catches the missing session on the
// next navigation.
type Navigator struct {
	target atomic.Pointer[Sender]
}

// NewNavigator creates a detached navigator.
func NewNavigator() *Navigator {
	return &Navigator{}
}

// Attach routes future redirects to s (normally the *tea.Program).
func (n *Navigator) Attach(s Sender) {
	n.target.Store(&s)
}

// RedirectToLogin implements gateway.Navigator.
func (n *Navigator) RedirectToLogin() {
	if s := n.target.Load(); s != nil {
		(*s).Send(ForceLogoutMsg{})
	}
}
