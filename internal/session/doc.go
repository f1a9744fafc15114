// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session owns the signed-in state of the local visitor.
//
// A Manager is the only writer of the credential store's token and profile.
// Everything else asks it questions:
//
//   - IsAuthenticated: a token is present locally. The token is never decoded,
//     so expiry is only learned from the gateway answering 401.
//   - IsAdmin: a profile is present and its role is RoleAdmin.
//   - CurrentProfile: the stored profile, for display.
//
// Commit and Clear are the only transitions. Clear reports whether it ended a
// session, which lets callers react to the authenticated to unauthenticated
// edge exactly once.
//
// # Usage
//
//	mgr := session.NewManager(store, logger)
//	if err := mgr.Init(); err != nil { ... }
//	err = mgr.Commit(token, session.Profile{Username: "bob", Role: session.RoleUser})
//	ended, err := mgr.Clear()
package session
