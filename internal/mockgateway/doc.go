// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mockgateway is an in-memory stand-in for the OrderService API
// gateway, used for local development and end-to-end tests of the client.
//
// It serves every /gateway endpoint with the {data, message, errorCode}
// envelope, issues HS256 bearer tokens with a configurable lifetime (so an
// expired token produces a real 401), hashes passwords with bcrypt, and
// answers 403 when a non-admin calls an admin endpoint.
package mockgateway
