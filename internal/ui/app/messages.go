// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/session"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// =============================================================================
// NAVIGATION AND SESSION
// =============================================================================

// NavigateMsg requests a view change through the guard.
type NavigateMsg struct {
	Route router.Route
}

// ForceLogoutMsg is sent when a gateway call was rejected with 401 and the
// session was cleared as a result.
type ForceLogoutMsg struct{}

// SessionChangedMsg is sent when the credential store changed on disk,
// usually because another orderdesk process signed in or out.
type SessionChangedMsg struct{}

// =============================================================================
// RESULTS
// =============================================================================

// Every result carries the navigation sequence number of the view that
// requested it.

type loginResultMsg struct {
	seq     uint64
	profile session.Profile
	err     error
}

type signupResultMsg struct {
	seq  uint64
	user *gateway.User
	err  error
}

type productsMsg struct {
	seq   uint64
	items []gateway.InventoryItem
	err   error
}

type cartMsg struct {
	items []storage.CartItem
	err   error
}

type ordersMsg struct {
	seq    uint64
	orders []gateway.Order
	err    error
}

type usersMsg struct {
	seq   uint64
	users []gateway.User
	err   error
}

type adminOrdersMsg struct {
	seq    uint64
	orders []gateway.Order
	err    error
}

type orderPlacedMsg struct {
	seq   uint64
	order *gateway.Order
	err   error
}

type orderChangedMsg struct {
	seq    uint64
	order  *gateway.Order
	action string
	err    error
}

type verifyMsg struct {
	seq      uint64
	accepted bool
	profile  session.Profile
	err      error
}
