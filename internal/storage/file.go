// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jeranaias/orderdesk/internal/util"
)

// CredentialsFileName is the FileBackend document name.
const CredentialsFileName = "credentials.json"

// FileBackend keeps all keys in a single JSON object on disk.
type FileBackend struct {
	mu     sync.Mutex
	path   string
	closed bool
}

// NewFileBackend creates a FileBackend storing credentials.json in dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileBackend{path: filepath.Join(dir, CredentialsFileName)}, nil
}

// Path returns the document path.
func (b *FileBackend) Path() string {
	return b.path
}

// Load reads the document. A missing file is an empty store.
func (b *FileBackend) Load() (map[string]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.read()
}

func (b *FileBackend) read() (map[string]string, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", b.path, err)
	}
	values := map[string]string{}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("corrupt credential store %s: %w", b.path, err)
	}
	return values, nil
}

// Apply rewrites the whole document with the batch applied.
func (b *FileBackend) Apply(set map[string]string, del []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}

	values, err := b.read()
	if err != nil {
		// A corrupt document is replaced rather than blocking logout forever.
		values = map[string]string{}
	}
	for _, k := range del {
		delete(values, k)
	}
	for k, v := range set {
		values[k] = v
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credential store: %w", err)
	}
	return util.AtomicWriteFile(b.path, data, 0600)
}

// Close marks the backend unusable.
func (b *FileBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
