// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import "encoding/json"

// Envelope is the gateway's response wrapper.
type Envelope struct {
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorCode int             `json:"errorCode"`
}

// =============================================================================
// AUTH
// =============================================================================

// User is the gateway's account representation.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"isAdmin"`
}

// LoginRequest is the body of POST /gateway/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the data of a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SignupRequest is the body of POST /gateway/auth/signup.
type SignupRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// =============================================================================
// INVENTORY
// =============================================================================

// InventoryItem is one product in the inventory.
// Dates are kept as the gateway sends them.
type InventoryItem struct {
	ID                int64   `json:"id"`
	ItemName          string  `json:"itemName"`
	ItemCode          string  `json:"itemCode"`
	Description       string  `json:"description"`
	Category          string  `json:"category"`
	UnitPrice         float64 `json:"unitPrice"`
	QuantityAvailable int     `json:"quantityAvailable"`
	WarehouseLocation string  `json:"warehouseLocation"`
	CreatedDate       string  `json:"createdDate,omitempty"`
}

// InStock reports whether any units are available.
func (i InventoryItem) InStock() bool {
	return i.QuantityAvailable > 0
}

// =============================================================================
// ORDERS
// =============================================================================

// Order statuses the gateway uses.
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
	OrderShipped   = "Shipped"
	OrderDelivered = "Delivered"
	OrderCancelled = "Cancelled"
)

// OrderLine is one item of an order.
type OrderLine struct {
	InventoryID int64   `json:"inventoryId"`
	ItemName    string  `json:"itemName,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice,omitempty"`
}

// Order is a placed order.
type Order struct {
	ID          int64       `json:"id"`
	UserID      int64       `json:"userId"`
	Username    string      `json:"username,omitempty"`
	Items       []OrderLine `json:"items"`
	TotalAmount float64     `json:"totalAmount"`
	Status      string      `json:"status"`
	CreatedDate string      `json:"createdDate,omitempty"`
}

// Cancellable reports whether the order can still be cancelled.
func (o Order) Cancellable() bool {
	return o.Status == OrderPending || o.Status == OrderConfirmed
}

// CreateOrderRequest is the body of POST /gateway/orders.
type CreateOrderRequest struct {
	Items []OrderLine `json:"items"`
}

// UpdateOrderRequest is the body of PUT /gateway/orders/{id}.
type UpdateOrderRequest struct {
	Status string      `json:"status,omitempty"`
	Items  []OrderLine `json:"items,omitempty"`
}
