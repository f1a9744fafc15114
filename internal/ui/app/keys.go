// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keyboard bindings outside of forms.
type KeyMap struct {
	Home     key.Binding
	Products key.Binding
	Orders   key.Binding
	Admin    key.Binding
	Help     key.Binding
	Quit     key.Binding
	Logout   key.Binding
	Refresh  key.Binding
	Back     key.Binding

	AddToCart  key.Binding
	RemoveCart key.Binding
	ClearCart  key.Binding
	PlaceOrder key.Binding
	Cancel     key.Binding
	Advance    key.Binding
	SwitchPane key.Binding
	Verify     key.Binding
	Signup     key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Home:     key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "home")),
		Products: key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "products")),
		Orders:   key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "orders")),
		Admin:    key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "admin")),
		Help:     key.NewBinding(key.WithKeys("?", "f1"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Logout:   key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "sign out")),
		Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		AddToCart:  key.NewBinding(key.WithKeys("a", "enter"), key.WithHelp("a", "add to cart")),
		RemoveCart: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "remove from cart")),
		ClearCart:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear cart")),
		PlaceOrder: key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "place order")),
		Cancel:     key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "cancel order")),
		Advance:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next status")),
		SwitchPane: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Verify:     key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "check session")),
		Signup:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "create account")),
	}
}
