// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the reusable pieces of the orderdesk TUI:
// the header with its view tabs, the status bar, toasts, a loading spinner
// and a multi-field form.
//
// Components render with a *styles.Theme and hold no application state
// beyond what they display. They never talk to the gateway or the session;
// the app model feeds them.
package components
