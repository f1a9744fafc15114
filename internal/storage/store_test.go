// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backends runs fn against every Backend implementation.
func backends(t *testing.T, fn func(t *testing.T, s *Store)) {
	for _, kind := range []string{"file", "sqlite"} {
		t.Run(kind, func(t *testing.T) {
			s, err := Open(kind, t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			fn(t, s)
		})
	}
}

func TestStore_EmptyCredentials(t *testing.T) {
	backends(t, func(t *testing.T, s *Store) {
		creds, err := s.Credentials()
		require.NoError(t, err)
		assert.Empty(t, creds.Token)
		assert.Empty(t, creds.User)
	})
}

func TestStore_SaveAndClear(t *testing.T) {
	backends(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.SaveCredentials(Credentials{Token: "tok1", User: `{"username":"bob","isAdmin":false}`}))
		_, err := s.AddToCart(CartItem{InventoryID: 7, ItemName: "Laptop", UnitPrice: 999.5, Quantity: 1})
		require.NoError(t, err)

		creds, err := s.Credentials()
		require.NoError(t, err)
		assert.Equal(t, "tok1", creds.Token)
		assert.Contains(t, creds.User, "bob")

		require.NoError(t, s.ClearSession())
		require.NoError(t, s.ClearSession(), "clearing twice is harmless")

		creds, err = s.Credentials()
		require.NoError(t, err)
		assert.Equal(t, Credentials{}, creds)
		cart, err := s.Cart()
		require.NoError(t, err)
		assert.Empty(t, cart, "cart goes with the session")
	})
}

func TestStore_SaveEmptyFieldRemovesKey(t *testing.T) {
	backends(t, func(t *testing.T, s *Store) {
		require.NoError(t, s.SaveCredentials(Credentials{Token: "tok", User: "{}"}))
		require.NoError(t, s.SaveCredentials(Credentials{Token: "tok2"}))
		creds, err := s.Credentials()
		require.NoError(t, err)
		assert.Equal(t, "tok2", creds.Token)
		assert.Empty(t, creds.User)
	})
}

func TestStore_Cart(t *testing.T) {
	backends(t, func(t *testing.T, s *Store) {
		items, err := s.AddToCart(CartItem{InventoryID: 1, ItemName: "Phone", UnitPrice: 10, Quantity: 0})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity, "quantity floors at one")

		items, err = s.AddToCart(CartItem{InventoryID: 1, ItemName: "Phone", UnitPrice: 10, Quantity: 2})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 3, items[0].Quantity)

		items, err = s.AddToCart(CartItem{InventoryID: 2, ItemName: "Cable", UnitPrice: 2.5, Quantity: 2})
		require.NoError(t, err)
		assert.Len(t, items, 2)
		assert.InDelta(t, 35.0, CartTotal(items), 0.001)

		items, err = s.RemoveFromCart(1)
		require.NoError(t, err)
		assert.Len(t, items, 1)

		_, err = s.RemoveFromCart(99)
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SaveCredentials(Credentials{Token: "t", User: "{}"}))
		require.NoError(t, s.ClearCart())
		cart, _ := s.Cart()
		assert.Empty(t, cart)
		creds, _ := s.Credentials()
		assert.Equal(t, "t", creds.Token, "ClearCart keeps the session")
	})
}

func TestStore_ConcurrentCartAdds(t *testing.T) {
	backends(t, func(t *testing.T, s *Store) {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.AddToCart(CartItem{InventoryID: 5, Quantity: 1})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		items, err := s.Cart()
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 10, items[0].Quantity)
	})
}

func TestStore_PersistsAcrossOpen(t *testing.T) {
	for _, kind := range []string{"file", "sqlite"} {
		t.Run(kind, func(t *testing.T) {
			dir := t.TempDir()
			s, err := Open(kind, dir)
			require.NoError(t, err)
			require.NoError(t, s.SaveCredentials(Credentials{Token: "persisted", User: `{"username":"amy"}`}))
			require.NoError(t, s.Close())

			s2, err := Open(kind, dir)
			require.NoError(t, err)
			defer s2.Close()
			creds, err := s2.Credentials()
			require.NoError(t, err)
			assert.Equal(t, "persisted", creds.Token)
		})
	}
}

func TestFileBackend_Permissions(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBackend(dir)
	require.NoError(t, err)
	require.NoError(t, b.Apply(map[string]string{KeyToken: "x"}, nil))

	info, err := os.Stat(filepath.Join(dir, CredentialsFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestFileBackend_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CredentialsFileName), []byte("{not json"), 0600))
	b, err := NewFileBackend(dir)
	require.NoError(t, err)

	_, err = b.Load()
	assert.Error(t, err)

	require.NoError(t, b.Apply(nil, SessionKeys), "clearing must recover a corrupt store")
	values, err := b.Load()
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestFileBackend_Closed(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, b.Close())
	_, err = b.Load()
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, b.Apply(nil, nil), ErrClosed)
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("redis", t.TempDir())
	assert.Error(t, err)
}

func TestWatcher_SeesOtherWriter(t *testing.T) {
	dir := t.TempDir()
	s, err := Open("file", dir)
	require.NoError(t, err)
	defer s.Close()

	w, err := NewWatcher(s.Path(), 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	// A second store on the same directory stands in for another process.
	other, err := Open("file", dir)
	require.NoError(t, err)
	defer other.Close()
	require.NoError(t, other.SaveCredentials(Credentials{Token: "x", User: "{}"}))

	select {
	case <-w.Events():
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the write")
	}
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(filepath.Join(dir, CredentialsFileName), 20*time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("x"), 0600))

	select {
	case <-w.Events():
		t.Fatal("unrelated file triggered an event")
	case <-time.After(200 * time.Millisecond):
	}
}
