// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the one-shot commands of
// orderdesk.
//
// Every command runs against an [Env], which wires one session manager into
// the route guard, the gateway client and the auth service. Protected
// commands ask the guard first, the same way the terminal UI does before
// switching views, so a signed-out visitor never sends a request.
//
// # Usage
//
//	cmd, args := cli.Parse()
//	if cmd != cli.CmdTUI {
//	    os.Exit(cli.Run(cmd, args))
//	}
//
// # Commands
//
//   - login, signup, logout, whoami: account and session
//   - products: browse the inventory
//   - cart: the local cart, stored with the session
//   - orders: place, list and cancel orders; "orders all" is admin only
//   - config: view and modify configuration
//
// # Output
//
// --json wraps every result in a [JSONResponse] envelope. Errors map to
// stable exit codes, see [GetExitCode].
package cli
