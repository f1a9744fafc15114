// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads and persists orderdesk settings.
//
// Settings live in ~/.orderdesk/config.toml (config.json is accepted as a
// fallback). A .env file in the working directory and ORDERDESK_* environment
// variables override file values, in that order.
//
// # Sections
//
//   - gateway: base URL, timeouts, TLS and client-side rate limit
//   - session: credential store backend (file or sqlite) and cross-process watch
//   - log: zap level, destination file and encoding
//   - ui: theme and landing view
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil { ... }
//	url := cfg.Gateway.BaseURL
package config
