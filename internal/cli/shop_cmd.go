// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// shop_cmd.go - products, orders and cart.
//
// Each command checks the guard for the view it belongs to before talking
// to the gateway: products and cart need a session, "orders all" needs the
// admin role.
//
// Examples:
//   orderdesk products
//   orderdesk products show 3
//   orderdesk cart add 3 2
//   orderdesk cart checkout
//   orderdesk orders create 1:2 5:1
//   orderdesk orders cancel 12
//   orderdesk orders all --json

package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/storage"
	"github.com/jeranaias/orderdesk/internal/util"
)

// =============================================================================
// PRODUCTS
// =============================================================================

// HandleProducts handles the "products" command.
func (e *Env) HandleProducts(args Args) error {
	if err := e.Require(router.RouteProducts, "products"); err != nil {
		return err
	}
	p := NewArgParser(args.Raw)
	ctx, cancel := e.Context()
	defer cancel()

	switch sub := p.Subcommand(); sub {
	case "", "list", "ls":
		items, err := e.Gateway.ListInventory(ctx)
		if err != nil {
			return NewCommandError("products", "list", gateway.UserMessage(err), err)
		}
		return e.emit("products", ProductsData{Items: items}, func() {
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{
					strconv.FormatInt(it.ID, 10),
					it.ItemCode,
					util.Truncate(it.ItemName, 32),
					it.Category,
					money(it.UnitPrice),
					stock(it),
				})
			}
			fmt.Fprintln(e.Out, renderTable([]string{"#", "Code", "Name", "Category", "Price", "Stock"}, rows))
		})

	case "show", "get":
		id, err := ParseID(p.Positional(1), "product id")
		if err != nil {
			return err
		}
		it, err := e.Gateway.GetInventory(ctx, id)
		if err != nil {
			return NewCommandError("products", "show", gateway.UserMessage(err), err)
		}
		return e.emit("products", it, func() {
			fmt.Fprintln(e.Out, TitleStyle.Render(it.ItemName))
			fmt.Fprintln(e.Out, RenderLabel("Code")+ValueStyle.Render(it.ItemCode))
			fmt.Fprintln(e.Out, RenderLabel("Category")+ValueStyle.Render(it.Category))
			fmt.Fprintln(e.Out, RenderLabel("Price")+ValueStyle.Render(money(it.UnitPrice)))
			fmt.Fprintln(e.Out, RenderLabel("Stock")+stock(*it))
			fmt.Fprintln(e.Out, RenderLabel("Location")+ValueStyle.Render(it.WarehouseLocation))
			if it.Description != "" {
				fmt.Fprintln(e.Out, RenderLabel("Description")+ValueStyle.Render(it.Description))
			}
		})

	default:
		return ErrUnknownSubcommand("products", sub, []string{"list", "show"})
	}
}

// =============================================================================
// ORDERS
// =============================================================================

// HandleOrders handles the "orders" command.
func (e *Env) HandleOrders(args Args) error {
	p := NewArgParser(args.Raw)
	sub := p.Subcommand()

	route, action := router.RouteOrders, "orders "+sub
	if sub == "all" {
		route = router.RouteAdmin
	}
	if err := e.Require(route, action); err != nil {
		return err
	}

	ctx, cancel := e.Context()
	defer cancel()

	switch sub {
	case "", "mine", "list", "ls":
		orders, err := e.Gateway.MyOrders(ctx)
		if err != nil {
			return NewCommandError("orders", "list", gateway.UserMessage(err), err)
		}
		return e.emitOrders(orders, false)

	case "all":
		orders, err := e.Gateway.ListOrders(ctx)
		if err != nil {
			return NewCommandError("orders", "all", gateway.UserMessage(err), err)
		}
		return e.emitOrders(orders, true)

	case "show", "get":
		id, err := ParseID(p.Positional(1), "order id")
		if err != nil {
			return err
		}
		o, err := e.Gateway.GetOrder(ctx, id)
		if err != nil {
			return NewCommandError("orders", "show", gateway.UserMessage(err), err)
		}
		return e.emitOrder(o, "")

	case "cancel":
		id, err := ParseID(p.Positional(1), "order id")
		if err != nil {
			return err
		}
		o, err := e.Gateway.CancelOrder(ctx, id)
		if err != nil {
			return NewCommandError("orders", "cancel", gateway.Message(err, gateway.UserMessage(err)), err)
		}
		return e.emitOrder(o, "cancelled")

	case "create", "place":
		lines := p.PositionalFrom(1)
		if len(lines) == 0 {
			return ErrMissingArgument("order lines", "orderdesk orders create 3:2 5:1")
		}
		var req gateway.CreateOrderRequest
		for _, raw := range lines {
			id, qty, err := ParseOrderLine(raw)
			if err != nil {
				return err
			}
			req.Items = append(req.Items, gateway.OrderLine{InventoryID: id, Quantity: qty})
		}
		o, err := e.Gateway.CreateOrder(ctx, req)
		if err != nil {
			return NewCommandError("orders", "create", gateway.Message(err, gateway.UserMessage(err)), err)
		}
		return e.emitOrder(o, "placed")

	default:
		return ErrUnknownSubcommand("orders", sub, []string{"mine", "all", "show", "cancel", "create"})
	}
}

func (e *Env) emitOrders(orders []gateway.Order, withUser bool) error {
	return e.emit("orders", OrdersData{Orders: orders}, func() {
		if len(orders) == 0 {
			fmt.Fprintln(e.Out, DimStyle.Render("No orders."))
			return
		}
		headers := []string{"#", "Date", "Items", "Total", "Status"}
		if withUser {
			headers = []string{"#", "User", "Date", "Items", "Total", "Status"}
		}
		rows := make([][]string, 0, len(orders))
		for _, o := range orders {
			row := []string{strconv.FormatInt(o.ID, 10)}
			if withUser {
				row = append(row, util.FirstNonEmpty(o.Username, "#"+strconv.FormatInt(o.UserID, 10)))
			}
			row = append(row, o.CreatedDate, util.Truncate(orderItems(o), 40), money(o.TotalAmount), RenderOrderStatus(o.Status))
			rows = append(rows, row)
		}
		fmt.Fprintln(e.Out, renderTable(headers, rows))
	})
}

func (e *Env) emitOrder(o *gateway.Order, verb string) error {
	return e.emit("orders", o, func() {
		if verb != "" {
			fmt.Fprintf(e.Out, "%s Order #%d %s\n", SuccessStyle.Render("[OK]"), o.ID, verb)
		}
		fmt.Fprintln(e.Out, RenderLabel("Order")+ValueStyle.Render("#"+strconv.FormatInt(o.ID, 10)))
		fmt.Fprintln(e.Out, RenderLabel("Status")+RenderOrderStatus(o.Status))
		if o.CreatedDate != "" {
			fmt.Fprintln(e.Out, RenderLabel("Date")+ValueStyle.Render(o.CreatedDate))
		}
		rows := make([][]string, 0, len(o.Items))
		for _, l := range o.Items {
			rows = append(rows, []string{
				util.FirstNonEmpty(l.ItemName, "#"+strconv.FormatInt(l.InventoryID, 10)),
				strconv.Itoa(l.Quantity),
				money(l.UnitPrice),
			})
		}
		fmt.Fprintln(e.Out, renderTable([]string{"Item", "Qty", "Unit price"}, rows))
		fmt.Fprintln(e.Out, RenderLabel("Total")+ValueStyle.Render(money(o.TotalAmount)))
	})
}

// =============================================================================
// CART
// =============================================================================

// HandleCart handles the "cart" command. The cart is local and belongs to
// the session, so it is guarded like the products view.
func (e *Env) HandleCart(args Args) error {
	if err := e.Require(router.RouteProducts, "cart"); err != nil {
		return err
	}
	p := NewArgParser(args.Raw)

	switch sub := p.Subcommand(); sub {
	case "", "list", "ls":
		items, err := e.Store.Cart()
		if err != nil {
			return NewCommandError("cart", "list", "credential store", err)
		}
		return e.emitCart(items)

	case "add":
		id, err := ParseID(p.Positional(1), "product id")
		if err != nil {
			return err
		}
		qty, err := ParseQuantity(p.FlagOrDefault("qty", p.Positional(2)))
		if err != nil {
			return err
		}
		ctx, cancel := e.Context()
		defer cancel()
		it, err := e.Gateway.GetInventory(ctx, id)
		if err != nil {
			return NewCommandError("cart", "add", gateway.UserMessage(err), err)
		}
		if !it.InStock() {
			return NewCommandError("cart", "add", it.ItemName+" is out of stock", nil)
		}
		items, err := e.Store.AddToCart(storage.CartItem{
			InventoryID: it.ID,
			ItemName:    it.ItemName,
			ItemCode:    it.ItemCode,
			UnitPrice:   it.UnitPrice,
			Quantity:    qty,
		})
		if err != nil {
			return NewCommandError("cart", "add", "credential store", err)
		}
		e.notice("%s Added %d x %s", SuccessStyle.Render("[OK]"), qty, it.ItemName)
		return e.emitCart(items)

	case "remove", "rm":
		id, err := ParseID(p.Positional(1), "product id")
		if err != nil {
			return err
		}
		items, err := e.Store.RemoveFromCart(id)
		if err != nil {
			return NewCommandError("cart", "remove", fmt.Sprintf("product %d is not in the cart", id), err)
		}
		return e.emitCart(items)

	case "clear":
		if err := e.Store.ClearCart(); err != nil {
			return NewCommandError("cart", "clear", "credential store", err)
		}
		return e.emitCart(nil)

	case "checkout":
		items, err := e.Store.Cart()
		if err != nil {
			return NewCommandError("cart", "checkout", "credential store", err)
		}
		if len(items) == 0 {
			return NewCommandError("cart", "checkout", "the cart is empty", nil)
		}
		if err := e.Require(router.RouteOrders, "cart checkout"); err != nil {
			return err
		}
		var req gateway.CreateOrderRequest
		for _, it := range items {
			req.Items = append(req.Items, gateway.OrderLine{InventoryID: it.InventoryID, Quantity: it.Quantity})
		}
		ctx, cancel := e.Context()
		defer cancel()
		o, err := e.Gateway.CreateOrder(ctx, req)
		if err != nil {
			return NewCommandError("cart", "checkout", gateway.Message(err, gateway.UserMessage(err)), err)
		}
		if err := e.Store.ClearCart(); err != nil {
			e.Logger.Warn("order placed but the cart could not be cleared")
		}
		return e.emitOrder(o, "placed")

	default:
		return ErrUnknownSubcommand("cart", sub, []string{"list", "add", "remove", "clear", "checkout"})
	}
}

func (e *Env) emitCart(items []storage.CartItem) error {
	if items == nil {
		items = []storage.CartItem{}
	}
	total := storage.CartTotal(items)
	return e.emit("cart", CartData{Items: items, Total: total}, func() {
		if len(items) == 0 {
			fmt.Fprintln(e.Out, DimStyle.Render("Cart is empty."))
			return
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{
				strconv.FormatInt(it.InventoryID, 10),
				util.Truncate(it.ItemName, 32),
				strconv.Itoa(it.Quantity),
				money(it.Subtotal()),
			})
		}
		fmt.Fprintln(e.Out, renderTable([]string{"#", "Item", "Qty", "Subtotal"}, rows))
		fmt.Fprintf(e.Out, "%s %s\n", RenderLabel("Total"), ValueStyle.Render(money(total)))
	})
}

// =============================================================================
// FORMATTING
// =============================================================================

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(DimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		}).
		String()
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func stock(it gateway.InventoryItem) string {
	if !it.InStock() {
		return ErrorStyle.Render("out of stock")
	}
	return strconv.Itoa(it.QuantityAvailable)
}

func orderItems(o gateway.Order) string {
	s := ""
	for i, l := range o.Items {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%dx %s", l.Quantity, util.FirstNonEmpty(l.ItemName, "#"+strconv.FormatInt(l.InventoryID, 10)))
	}
	return s
}
