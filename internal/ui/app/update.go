// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/ui/components"
)

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		return m, tea.Quit
	}

	// Forms get every key except their own escapes.
	switch m.route {
	case router.RouteLogin:
		switch {
		case key.Matches(msg, m.keys.Signup):
			return m.navigate(router.RouteSignup)
		case msg.String() == "f1":
			return m.navigate(router.RouteHelp)
		}
		return m, m.loginForm.Update(msg)
	case router.RouteSignup:
		if key.Matches(msg, m.keys.Back) {
			return m.navigate(router.RouteLogin)
		}
		return m, m.signupForm.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		return m.navigate(router.RouteHelp)
	case key.Matches(msg, m.keys.Home):
		return m.navigate(router.RouteUser)
	case key.Matches(msg, m.keys.Products):
		return m.navigate(router.RouteProducts)
	case key.Matches(msg, m.keys.Orders):
		return m.navigate(router.RouteOrders)
	case key.Matches(msg, m.keys.Admin):
		return m.navigate(router.RouteAdmin)
	case key.Matches(msg, m.keys.Back):
		return m.navigate(m.deps.Guard.Landing())
	case key.Matches(msg, m.keys.Refresh):
		return m.navigate(m.route)
	case key.Matches(msg, m.keys.Logout):
		return m.logout()
	}

	switch m.route {
	case router.RouteProducts:
		return m.handleProductsKey(msg)
	case router.RouteOrders:
		return m.handleOrdersKey(msg)
	case router.RouteAdmin:
		return m.handleAdminKey(msg)
	case router.RouteUser:
		if key.Matches(msg, m.keys.Verify) {
			cmd := tea.Batch(m.spinner.Start("Checking session"), m.verifyCmd())
			return m, cmd
		}
	case router.RouteHelp:
		var cmd tea.Cmd
		m.help, cmd = m.help.Update(msg)
		return m, cmd
	}
	return m, nil
}

// logout ends the session and empties the cart. This is the explicit path;
// it never goes through the gateway's forced-logout navigator.
func (m Model) logout() (tea.Model, tea.Cmd) {
	ended, err := m.deps.Auth.Logout()
	if err != nil {
		cmd := m.notify(components.ToastError, "Could not sign out: "+err.Error())
		return m, cmd
	}
	var note tea.Cmd
	if ended {
		note = m.notify(components.ToastStatus, "Signed out.")
	}
	next, cmd := m.navigate(router.RouteLogin)
	return next, tea.Batch(note, cmd)
}

func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.AddToCart):
		i := m.productsTable.Cursor()
		if i < 0 || i >= len(m.products) {
			return m, nil
		}
		item := m.products[i]
		if !item.InStock() {
			cmd := m.notify(components.ToastWarning, item.ItemName+" is out of stock")
			return m, cmd
		}
		return m, m.addToCartCmd(item)
	case key.Matches(msg, m.keys.RemoveCart):
		i := m.productsTable.Cursor()
		if i < 0 || i >= len(m.products) {
			return m, nil
		}
		return m, m.removeFromCartCmd(m.products[i].ID)
	case key.Matches(msg, m.keys.ClearCart):
		return m, m.clearCartCmd()
	case key.Matches(msg, m.keys.PlaceOrder):
		if len(m.cart) == 0 {
			cmd := m.notify(components.ToastWarning, "Your cart is empty")
			return m, cmd
		}
		cmd := tea.Batch(m.spinner.Start("Placing order"), m.placeOrderCmd(m.cart))
		return m, cmd
	}
	var cmd tea.Cmd
	m.productsTable, cmd = m.productsTable.Update(msg)
	return m, cmd
}

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Cancel) {
		i := m.ordersTable.Cursor()
		if i < 0 || i >= len(m.orders) {
			return m, nil
		}
		o := m.orders[i]
		if !o.Cancellable() {
			cmd := m.notify(components.ToastWarning, fmt.Sprintf("Order #%d is %s and can no longer be cancelled", o.ID, o.Status))
			return m, cmd
		}
		return m, m.cancelOrderCmd(o.ID)
	}
	var cmd tea.Cmd
	m.ordersTable, cmd = m.ordersTable.Update(msg)
	return m, cmd
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.SwitchPane) {
		m.adminPane = 1 - m.adminPane
		if m.adminPane == 0 {
			m.usersTable.Focus()
			m.adminOrdersTable.Blur()
		} else {
			m.usersTable.Blur()
			m.adminOrdersTable.Focus()
		}
		return m, nil
	}

	if m.adminPane == 0 {
		var cmd tea.Cmd
		m.usersTable, cmd = m.usersTable.Update(msg)
		return m, cmd
	}

	i := m.adminOrdersTable.Cursor()
	valid := i >= 0 && i < len(m.adminOrders)
	switch {
	case key.Matches(msg, m.keys.Cancel) && valid:
		o := m.adminOrders[i]
		if !o.Cancellable() {
			cmd := m.notify(components.ToastWarning, fmt.Sprintf("Order #%d is %s and can no longer be cancelled", o.ID, o.Status))
			return m, cmd
		}
		return m, m.cancelOrderCmd(o.ID)
	case key.Matches(msg, m.keys.Advance) && valid:
		o := m.adminOrders[i]
		next := nextStatus(o.Status)
		if next == "" {
			cmd := m.notify(components.ToastWarning, fmt.Sprintf("Order #%d is already %s", o.ID, o.Status))
			return m, cmd
		}
		return m, m.advanceOrderCmd(o.ID, next)
	}
	var cmd tea.Cmd
	m.adminOrdersTable, cmd = m.adminOrdersTable.Update(msg)
	return m, cmd
}
