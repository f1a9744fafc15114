// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// ListInventory returns every inventory item.
func (c *Client) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	var items []InventoryItem
	if err := c.do(ctx, http.MethodGet, "/inventory", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetInventory returns one item.
func (c *Client) GetInventory(ctx context.Context, id int64) (*InventoryItem, error) {
	var item InventoryItem
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/inventory/%d", id), nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateInventory adds an item (admin only).
func (c *Client) CreateInventory(ctx context.Context, item InventoryItem) (*InventoryItem, error) {
	var created InventoryItem
	if err := c.do(ctx, http.MethodPost, "/inventory", item, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateInventory replaces an item (admin only).
func (c *Client) UpdateInventory(ctx context.Context, id int64, item InventoryItem) (*InventoryItem, error) {
	var updated InventoryItem
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/inventory/%d", id), item, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteInventory removes an item (admin only).
func (c *Client) DeleteInventory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/inventory/%d", id), nil, nil)
}
