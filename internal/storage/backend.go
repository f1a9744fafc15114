// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
)

// Keys used in the store.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyCart  = "cart"
)

// SessionKeys are removed together when a session ends.
var SessionKeys = []string{KeyToken, KeyUser, KeyCart}

var (
	// ErrNotFound is returned for operations on a cart line that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("store is closed")
)

// Backend is a string key/value space that can apply a batch atomically.
type Backend interface {
	// Load returns a snapshot of every key.
	Load() (map[string]string, error)

	// Apply writes set and removes del as one atomic change.
	Apply(set map[string]string, del []string) error

	// Path is the file that changes when the backend is written.
	Path() string

	Close() error
}

// Open creates a Backend of the given kind ("file" or "sqlite") in dir and
// wraps it in a Store.
func Open(kind, dir string) (*Store, error) {
	var (
		b   Backend
		err error
	)
	switch kind {
	case "", "file":
		b, err = NewFileBackend(dir)
	case "sqlite":
		b, err = NewSQLiteBackend(dir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
	if err != nil {
		return nil, err
	}
	return New(b), nil
}
