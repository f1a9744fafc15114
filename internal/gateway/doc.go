// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the HTTP client for the OrderService API gateway.
//
// Every request attaches the session's bearer token when one exists. Every
// response goes through one policy:
//
//   - 2xx: the {data, message, errorCode} envelope is decoded; a non-zero
//     errorCode becomes a *DomainError
//   - 401: the session is cleared and, if that ended a session, the Navigator
//     is told to show login; the caller still gets the *APIError
//   - other statuses: returned verbatim as *APIError
//   - no response: ErrNetwork; the session is left alone
//
// There are no retries. A client-side rate limit can be configured.
//
// # Usage
//
//	c, err := gateway.New(cfg.Gateway, mgr, navigator, logger)
//	items, err := c.ListInventory(ctx)
//	if errors.Is(err, gateway.ErrUnauthorized) { ... }
package gateway
