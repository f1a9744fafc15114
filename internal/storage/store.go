// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"fmt"
	"sync"
)

// =============================================================================
// TYPES
// =============================================================================

// Credentials is the raw persisted session. User is the JSON profile snapshot
// exactly as stored; decoding it is the session package's job.
type Credentials struct {
	Token string
	User  string
}

// CartItem is one line in the visitor's cart.
type CartItem struct {
	InventoryID int64   `json:"inventoryId"`
	ItemName    string  `json:"itemName"`
	ItemCode    string  `json:"itemCode,omitempty"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
}

// Subtotal is UnitPrice times Quantity.
func (c CartItem) Subtotal() float64 {
	return c.UnitPrice * float64(c.Quantity)
}

// =============================================================================
// STORE
// =============================================================================

// Store is the credential store. It serializes read-modify-write cycles made
// through it. Writes from other processes are only observed on the next read.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps a backend.
func New(b Backend) *Store {
	return &Store{backend: b}
}

// Path is the file a Watcher should observe.
func (s *Store) Path() string {
	return s.backend.Path()
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Credentials reads token and profile in one snapshot.
func (s *Store) Credentials() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, err := s.backend.Load()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{Token: values[KeyToken], User: values[KeyUser]}, nil
}

// SaveCredentials writes token and profile together. An empty field is
// removed rather than stored empty.
func (s *Store) SaveCredentials(c Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set := map[string]string{}
	var del []string
	if c.Token != "" {
		set[KeyToken] = c.Token
	} else {
		del = append(del, KeyToken)
	}
	if c.User != "" {
		set[KeyUser] = c.User
	} else {
		del = append(del, KeyUser)
	}
	return s.backend.Apply(set, del)
}

// ClearSession removes token, profile and cart in one batch.
func (s *Store) ClearSession() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Apply(nil, SessionKeys)
}

// =============================================================================
// CART
// =============================================================================

// Cart returns the stored cart. An unreadable cart is reported as empty.
func (s *Store) Cart() ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked()
}

func (s *Store) cartLocked() ([]CartItem, error) {
	values, err := s.backend.Load()
	if err != nil {
		return nil, err
	}
	raw := values[KeyCart]
	if raw == "" {
		return nil, nil
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, nil
	}
	return items, nil
}

func (s *Store) writeCartLocked(items []CartItem) error {
	if len(items) == 0 {
		return s.backend.Apply(nil, []string{KeyCart})
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	return s.backend.Apply(map[string]string{KeyCart: string(data)}, nil)
}

// AddToCart adds item, merging quantities with an existing line for the same
// inventory id. Quantity below one counts as one.
func (s *Store) AddToCart(item CartItem) ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	items, err := s.cartLocked()
	if err != nil {
		return nil, err
	}
	merged := false
	for i := range items {
		if items[i].InventoryID == item.InventoryID {
			items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, item)
	}
	if err := s.writeCartLocked(items); err != nil {
		return nil, err
	}
	return items, nil
}

// RemoveFromCart drops the line for inventoryID.
func (s *Store) RemoveFromCart(inventoryID int64) ([]CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.cartLocked()
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].InventoryID == inventoryID {
			items = append(items[:i], items[i+1:]...)
			if err := s.writeCartLocked(items); err != nil {
				return nil, err
			}
			return items, nil
		}
	}
	return items, ErrNotFound
}

// ClearCart empties the cart and leaves the session alone.
func (s *Store) ClearCart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Apply(nil, []string{KeyCart})
}

// CartTotal sums the subtotals of items.
func CartTotal(items []CartItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total
}
