// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockgateway

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/forms"
	"github.com/jeranaias/orderdesk/internal/gateway"
)

// =============================================================================
// AUTH
// =============================================================================

func (s *Server) login(c *fiber.Ctx) error {
	var req gateway.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(http.StatusBadRequest, CodeValidation, "Invalid request body")
	}
	f := forms.Login{Username: req.Username, Password: req.Password}.Normalize()
	if err := f.Validate(); err != nil {
		return fail(http.StatusBadRequest, CodeValidation, strings.Join(forms.Fields(err).Sorted(), "; "))
	}

	u, found := s.db.userByName(f.Username)
	if !found || !comparePassword(u.PasswordHash, f.Password) {
		s.logger.Info("login rejected", zap.String("username", f.Username))
		return fail(http.StatusUnauthorized, CodeUnauthorized, "Invalid username or password")
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, gateway.LoginResult{Token: token, User: u.User}, "Login successful")
}

func (s *Server) signup(c *fiber.Ctx) error {
	var req gateway.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(http.StatusBadRequest, CodeValidation, "Invalid request body")
	}
	f := forms.Signup{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}.Normalize()
	if err := f.Validate(); err != nil {
		return fail(http.StatusBadRequest, CodeValidation, strings.Join(forms.Fields(err).Sorted(), "; "))
	}

	hash, err := hashPassword(f.Password, s.cost)
	if err != nil {
		return err
	}
	a, err := s.db.addUser(f.Username, f.Email, hash, false)
	if errors.Is(err, errUsernameTaken) {
		return fail(http.StatusConflict, CodeConflict, err.Error())
	}
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, a.User, "Account created")
}

func (s *Server) me(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, principal(c).User, "")
}

func (s *Server) users(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, s.db.listUsers(), "")
}

// =============================================================================
// INVENTORY
// =============================================================================

func (s *Server) listInventory(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, s.db.listItems(), "")
}

func (s *Server) getInventory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	item, err := s.db.item(id)
	if err != nil {
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	return ok(c, http.StatusOK, item, "")
}

func parseItem(c *fiber.Ctx) (gateway.InventoryItem, error) {
	var item gateway.InventoryItem
	if err := c.BodyParser(&item); err != nil {
		return item, fail(http.StatusBadRequest, CodeValidation, "Invalid request body")
	}
	item.ItemName = strings.TrimSpace(item.ItemName)
	item.ItemCode = strings.TrimSpace(item.ItemCode)
	switch {
	case item.ItemName == "":
		return item, fail(http.StatusBadRequest, CodeValidation, "Item name is required")
	case item.ItemCode == "":
		return item, fail(http.StatusBadRequest, CodeValidation, "Item code is required")
	case item.UnitPrice < 0:
		return item, fail(http.StatusBadRequest, CodeValidation, "Unit price cannot be negative")
	case item.QuantityAvailable < 0:
		return item, fail(http.StatusBadRequest, CodeValidation, "Quantity cannot be negative")
	}
	return item, nil
}

func (s *Server) createInventory(c *fiber.Ctx) error {
	item, err := parseItem(c)
	if err != nil {
		return err
	}
	return ok(c, http.StatusCreated, s.db.putItem(item), "Item created")
}

func (s *Server) updateInventory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	item, err := parseItem(c)
	if err != nil {
		return err
	}
	updated, err := s.db.updateItem(id, item)
	if err != nil {
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	return ok(c, http.StatusOK, updated, "Item updated")
}

func (s *Server) deleteInventory(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.db.deleteItem(id); err != nil {
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	return ok(c, http.StatusOK, nil, "Item deleted")
}

// =============================================================================
// ORDERS
// =============================================================================

func (s *Server) listOrders(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, s.db.listOrders(0), "")
}

func (s *Server) myOrders(c *fiber.Ctx) error {
	return ok(c, http.StatusOK, s.db.listOrders(principal(c).ID), "")
}

// ownedOrder loads an order the caller may see: their own, or any for admins.
func (s *Server) ownedOrder(c *fiber.Ctx) (gateway.Order, error) {
	id, err := paramID(c)
	if err != nil {
		return gateway.Order{}, err
	}
	o, err := s.db.order(id)
	if err != nil {
		return o, fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	u := principal(c)
	if !u.IsAdmin && o.UserID != u.ID {
		return o, fail(http.StatusForbidden, CodeForbidden, "You do not have access to this order")
	}
	return o, nil
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	o, err := s.ownedOrder(c)
	if err != nil {
		return err
	}
	return ok(c, http.StatusOK, o, "")
}

func (s *Server) createOrder(c *fiber.Ctx) error {
	var req gateway.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(http.StatusBadRequest, CodeValidation, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return fail(http.StatusBadRequest, CodeValidation, "Order must contain at least one item")
	}
	o, err := s.db.placeOrder(principal(c), req.Items)
	switch {
	case errors.Is(err, errInsufficientStock):
		return domainFailure(c, CodeInsufficientStock, err.Error())
	case errors.Is(err, errNoSuchItem):
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	case err != nil:
		return err
	}
	return ok(c, http.StatusCreated, o, "Order placed")
}

func validStatus(status string) bool {
	switch status {
	case gateway.OrderPending, gateway.OrderConfirmed, gateway.OrderShipped,
		gateway.OrderDelivered, gateway.OrderCancelled:
		return true
	}
	return false
}

func (s *Server) updateOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req gateway.UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(http.StatusBadRequest, CodeValidation, "Invalid request body")
	}
	if !validStatus(req.Status) {
		return fail(http.StatusBadRequest, CodeValidation, "Unknown order status")
	}
	o, err := s.db.setOrderStatus(id, req.Status)
	if err != nil {
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	return ok(c, http.StatusOK, o, "Order updated")
}

func (s *Server) deleteOrder(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := s.db.deleteOrder(id); err != nil {
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	return ok(c, http.StatusOK, nil, "Order deleted")
}

func (s *Server) cancelOrder(c *fiber.Ctx) error {
	o, err := s.ownedOrder(c)
	if err != nil {
		return err
	}
	cancelled, err := s.db.cancelOrder(o.ID)
	if errors.Is(err, errNotCancellable) {
		return domainFailure(c, CodeNotCancellable, err.Error())
	}
	if err != nil {
		return fail(http.StatusNotFound, CodeNotFound, err.Error())
	}
	return ok(c, http.StatusOK, cancelled, "Order cancelled")
}
