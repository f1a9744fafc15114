// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/orderdesk/internal/forms"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// =============================================================================
// GATEWAY COMMANDS
// =============================================================================

func (m Model) loginCmd(f forms.Login) tea.Cmd {
	seq, svc := m.seq, m.deps.Auth
	return func() tea.Msg {
		p, err := svc.Login(context.Background(), f)
		return loginResultMsg{seq: seq, profile: p, err: err}
	}
}

func (m Model) signupCmd(f forms.Signup) tea.Cmd {
	seq, svc := m.seq, m.deps.Auth
	return func() tea.Msg {
		u, err := svc.Signup(context.Background(), f)
		return signupResultMsg{seq: seq, user: u, err: err}
	}
}

func (m Model) loadProductsCmd() tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	return func() tea.Msg {
		items, err := gw.ListInventory(context.Background())
		return productsMsg{seq: seq, items: items, err: err}
	}
}

func (m Model) loadMyOrdersCmd() tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	return func() tea.Msg {
		orders, err := gw.MyOrders(context.Background())
		return ordersMsg{seq: seq, orders: orders, err: err}
	}
}

func (m Model) loadUsersCmd() tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	return func() tea.Msg {
		users, err := gw.Users(context.Background())
		return usersMsg{seq: seq, users: users, err: err}
	}
}

func (m Model) loadAllOrdersCmd() tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	return func() tea.Msg {
		orders, err := gw.ListOrders(context.Background())
		return adminOrdersMsg{seq: seq, orders: orders, err: err}
	}
}

func (m Model) placeOrderCmd(cart []storage.CartItem) tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	req := gateway.CreateOrderRequest{}
	for _, it := range cart {
		req.Items = append(req.Items, gateway.OrderLine{InventoryID: it.InventoryID, Quantity: it.Quantity})
	}
	return func() tea.Msg {
		o, err := gw.CreateOrder(context.Background(), req)
		return orderPlacedMsg{seq: seq, order: o, err: err}
	}
}

func (m Model) cancelOrderCmd(id int64) tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	return func() tea.Msg {
		o, err := gw.CancelOrder(context.Background(), id)
		return orderChangedMsg{seq: seq, order: o, action: "cancelled", err: err}
	}
}

func (m Model) advanceOrderCmd(id int64, status string) tea.Cmd {
	seq, gw := m.seq, m.deps.Gateway
	return func() tea.Msg {
		o, err := gw.UpdateOrder(context.Background(), id, gateway.UpdateOrderRequest{Status: status})
		return orderChangedMsg{seq: seq, order: o, action: "marked " + status, err: err}
	}
}

func (m Model) verifyCmd() tea.Cmd {
	seq, svc := m.seq, m.deps.Auth
	return func() tea.Msg {
		p, err := svc.Refresh(context.Background())
		if err == nil {
			return verifyMsg{seq: seq, accepted: true, profile: p}
		}
		return verifyMsg{seq: seq, err: err}
	}
}

// =============================================================================
// LOCAL COMMANDS
// =============================================================================

func (m Model) loadCartCmd() tea.Cmd {
	store := m.deps.Store
	return func() tea.Msg {
		items, err := store.Cart()
		return cartMsg{items: items, err: err}
	}
}

func (m Model) addToCartCmd(item gateway.InventoryItem) tea.Cmd {
	store := m.deps.Store
	return func() tea.Msg {
		items, err := store.AddToCart(storage.CartItem{
			InventoryID: item.ID,
			ItemName:    item.ItemName,
			ItemCode:    item.ItemCode,
			UnitPrice:   item.UnitPrice,
			Quantity:    1,
		})
		return cartMsg{items: items, err: err}
	}
}

func (m Model) removeFromCartCmd(id int64) tea.Cmd {
	store := m.deps.Store
	return func() tea.Msg {
		items, err := store.RemoveFromCart(id)
		return cartMsg{items: items, err: err}
	}
}

func (m Model) clearCartCmd() tea.Cmd {
	store := m.deps.Store
	return func() tea.Msg {
		if err := store.ClearCart(); err != nil {
			return cartMsg{err: err}
		}
		return cartMsg{}
	}
}

// waitForStoreChange blocks until the credential store changes on disk.
func waitForStoreChange(events <-chan struct{}) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-events; !ok {
			return nil
		}
		return SessionChangedMsg{}
	}
}

// nextStatus is the admin "advance" transition. Terminal states return "".
func nextStatus(status string) string {
	switch status {
	case gateway.OrderPending:
		return gateway.OrderConfirmed
	case gateway.OrderConfirmed:
		return gateway.OrderShipped
	case gateway.OrderShipped:
		return gateway.OrderDelivered
	}
	return ""
}
