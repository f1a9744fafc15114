// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists the signed-in visitor's credentials and cart.
//
// The store is a small string key/value space, the terminal counterpart of a
// browser's localStorage: "token" holds the opaque bearer token, "user" the
// JSON profile snapshot and "cart" the JSON cart. Two backends exist:
//
//   - FileBackend: one JSON document written with util.AtomicWriteFile
//   - SQLiteBackend: a kv table in a modernc.org/sqlite database
//
// Every mutation is applied as one batch, so a reader never observes a token
// without its profile or the reverse.
//
// # Usage
//
//	store, err := storage.Open(config.BackendFile, dir)
//	creds, err := store.Credentials()
//	err = store.ClearSession()
package storage
