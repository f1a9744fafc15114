// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ListOrders returns every order (admin only).
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// MyOrders returns the signed-in visitor's orders.
func (c *Client) MyOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/orders/my-orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one order.
func (c *Client) GetOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/%d", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOrder places an order.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("order has no items")
	}
	var o Order
	if err := c.do(ctx, http.MethodPost, "/orders", req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// UpdateOrder changes an order.
func (c *Client) UpdateOrder(ctx context.Context, id int64, req UpdateOrderRequest) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/orders/%d", id), req, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// DeleteOrder removes an order (admin only).
func (c *Client) DeleteOrder(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/orders/%d", id), nil, nil)
}

// CancelOrder cancels an order.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	var o Order
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/orders/%d/cancel", id), nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}
