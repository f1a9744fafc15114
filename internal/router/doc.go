// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router decides whether a view may be opened.
//
// Every navigation, in the TUI and in CLI commands, asks the Guard first.
// The Guard holds no state of its own: each Check re-reads the session, so a
// logout anywhere is honoured on the next navigation.
//
// # Decisions
//
//   - Allowed: build the view
//   - DeniedUnauth: no token, redirect to login
//   - DeniedForbidden: admin-only view without admin role, redirect to the
//     signed-in landing view (never to login, the session stays intact)
//
// # Usage
//
//	g := router.NewGuard(mgr)
//	res, err := g.Check(router.RouteAdmin)
//	if !res.Allowed() {
//	    navigate(res.Redirect)
//	}
package router
