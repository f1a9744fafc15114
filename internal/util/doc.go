// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across orderdesk.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writes for the credential store and config
//   - Truncate: display-width aware string fitting for tables
//   - Fingerprint: short, non-reversible identifier for a bearer token in logs
package util
