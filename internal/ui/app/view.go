// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/storage"
	"github.com/jeranaias/orderdesk/internal/ui/components"
	"github.com/jeranaias/orderdesk/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the whole screen: header, the current view, toasts and the
// status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.route == "" {
		return m.deps.Theme.Muted.Render("Starting...")
	}

	var body string
	switch m.route {
	case router.RouteLogin:
		body = m.viewForm(m.loginForm, "Sign in with your gateway account. ctrl+n creates one.")
	case router.RouteSignup:
		body = m.viewForm(m.signupForm, "All fields are required.")
	case router.RouteUser:
		body = m.viewUser()
	case router.RouteProducts:
		body = m.viewProducts()
	case router.RouteOrders:
		body = m.viewOrders()
	case router.RouteAdmin:
		body = m.viewAdmin()
	case router.RouteHelp:
		body = m.help.View()
	}

	if m.spinner.Active() {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", m.spinner.View())
	}
	if toasts := m.toasts.Toasts(); len(toasts) > 0 {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "",
			components.RenderToastStack(m.deps.Theme, toasts, min(m.width-2, 72)))
	}

	body = m.deps.Theme.NewStyle().
		Width(m.width).
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Render(body)

	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.status.View())
}

func (m Model) viewForm(f *components.Form, hint string) string {
	t := m.deps.Theme
	content := lipgloss.JoinVertical(lipgloss.Left, f.View(), "", t.Muted.Render(hint))
	return lipgloss.Place(m.width, m.bodyHeight()-2, lipgloss.Center, lipgloss.Center, content,
		lipgloss.WithWhitespaceChars(" "))
}

func (m Model) viewUser() string {
	t := m.deps.Theme
	role := m.profile.Role.String()
	if m.profile.IsAdmin() {
		role = t.AdminBadge.Render(role)
	}
	field := func(label, value string) string {
		return t.Label.Render(label) + t.Value.Render(value)
	}
	card := t.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		field("Username", m.profile.Username),
		field("Email", util.FirstNonEmpty(m.profile.Email, "-")),
		t.Label.Render("Role")+role,
		field("Gateway", m.status.Gateway),
	))

	cart := t.Muted.Render("Your cart is empty.")
	if len(m.cart) > 0 {
		cart = fmt.Sprintf("%d %s in your cart, %s. Press 2 to review.",
			len(m.cart), util.Plural(len(m.cart), "item"), t.Money.Render(money(storage.CartTotal(m.cart))))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("Welcome back, "+m.profile.Username),
		card,
		"",
		cart,
		t.Muted.Render("v checks the session with the gateway."),
	)
}

func (m Model) viewProducts() string {
	t := m.deps.Theme
	parts := []string{t.Title.Render("Products"), m.productsTable.View(), "", m.viewCart()}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewCart() string {
	t := m.deps.Theme
	if len(m.cart) == 0 {
		return t.Muted.Render("Cart is empty. Press a to add the selected product.")
	}
	lines := make([]string, 0, len(m.cart)+1)
	for _, c := range m.cart {
		lines = append(lines, fmt.Sprintf("%3dx %-28s %s",
			c.Quantity, util.Truncate(c.ItemName, 28), t.Money.Render(money(c.Subtotal()))))
	}
	lines = append(lines, fmt.Sprintf("%-33s %s", "Total", t.Money.Render(money(storage.CartTotal(m.cart)))))
	return t.Panel.Render(strings.Join(lines, "\n"))
}

func (m Model) viewOrders() string {
	t := m.deps.Theme
	if len(m.orders) == 0 && !m.spinner.Active() {
		return lipgloss.JoinVertical(lipgloss.Left,
			t.Title.Render("My orders"),
			t.Muted.Render("No orders yet."))
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("My orders"),
		m.ordersTable.View(),
		m.selectedOrderLine(m.orders, m.ordersTable.Cursor()))
}

func (m Model) viewAdmin() string {
	t := m.deps.Theme
	usersTitle, ordersTitle := t.Subtitle.Render("Users"), t.Subtitle.Render("All orders")
	if m.adminPane == 0 {
		usersTitle = t.FieldFocused.Render("> Users")
	} else {
		ordersTitle = t.FieldFocused.Render("> All orders")
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		t.Title.Render("Administration"),
		usersTitle,
		m.usersTable.View(),
		ordersTitle,
		m.adminOrdersTable.View(),
		m.selectedOrderLine(m.adminOrders, m.adminOrdersTable.Cursor()),
	)
}

// selectedOrderLine shows the colored status of the highlighted order.
func (m Model) selectedOrderLine(orders []gateway.Order, cursor int) string {
	if cursor < 0 || cursor >= len(orders) {
		return ""
	}
	o := orders[cursor]
	return fmt.Sprintf("#%d %s %s", o.ID, m.deps.Theme.OrderStatus(o.Status), m.deps.Theme.Muted.Render(orderSummary(o)))
}
