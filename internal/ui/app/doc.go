// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app is the root Bubble Tea model of the orderdesk TUI.
//
// Every view change goes through router.Guard, including the ones the app
// makes on its own (after login, after a forced logout, when another process
// signs out). Gateway calls run as tea.Cmds and come back as messages tagged
// with the navigation sequence number that issued them; results for a view
// the user has already left are dropped.
//
// A 401 from any call reaches the model as ForceLogoutMsg through Navigator,
// which the gateway client invokes after the session manager has cleared
// the session.
package app
