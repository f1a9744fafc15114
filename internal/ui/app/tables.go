// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/util"
)

func newTable(cols []table.Column) table.Model {
	return table.New(
		table.WithColumns(cols),
		table.WithFocused(true),
		table.WithHeight(10),
	)
}

// flexWidth gives the first column whatever the fixed columns leave over.
func flexWidth(total, fixed, minimum int) int {
	w := total - fixed - 4
	if w < minimum {
		return minimum
	}
	return w
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// =============================================================================
// PRODUCTS
// =============================================================================

func productColumns(width int) []table.Column {
	return []table.Column{
		{Title: "Item", Width: flexWidth(width, 10+12+10+8+10, 16)},
		{Title: "Code", Width: 10},
		{Title: "Category", Width: 12},
		{Title: "Price", Width: 10},
		{Title: "Stock", Width: 8},
		{Title: "Location", Width: 10},
	}
}

func productRows(items []gateway.InventoryItem, width int) []table.Row {
	nameWidth := productColumns(width)[0].Width
	rows := make([]table.Row, 0, len(items))
	for _, it := range items {
		stock := strconv.Itoa(it.QuantityAvailable)
		if !it.InStock() {
			stock = "out"
		}
		rows = append(rows, table.Row{
			util.Truncate(it.ItemName, nameWidth),
			it.ItemCode,
			util.Truncate(it.Category, 12),
			money(it.UnitPrice),
			stock,
			it.WarehouseLocation,
		})
	}
	return rows
}

// =============================================================================
// ORDERS
// =============================================================================

func orderColumns(width int, withUser bool) []table.Column {
	cols := []table.Column{{Title: "#", Width: 6}}
	fixed := 6 + 12 + 20 + 11
	if withUser {
		cols = append(cols, table.Column{Title: "User", Width: 14})
		fixed += 14
	}
	return append(cols,
		table.Column{Title: "Items", Width: flexWidth(width, fixed, 12)},
		table.Column{Title: "Total", Width: 12},
		table.Column{Title: "Placed", Width: 20},
		table.Column{Title: "Status", Width: 11},
	)
}

func orderRows(orders []gateway.Order, withUser bool) []table.Row {
	rows := make([]table.Row, 0, len(orders))
	for _, o := range orders {
		row := table.Row{strconv.FormatInt(o.ID, 10)}
		if withUser {
			row = append(row, util.Truncate(util.FirstNonEmpty(o.Username, "#"+strconv.FormatInt(o.UserID, 10)), 14))
		}
		row = append(row, orderSummary(o), money(o.TotalAmount), o.CreatedDate, o.Status)
		rows = append(rows, row)
	}
	return rows
}

// orderSummary is "2x Mouse, 1x Charger".
func orderSummary(o gateway.Order) string {
	s := ""
	for i, l := range o.Items {
		if i > 0 {
			s += ", "
		}
		name := util.FirstNonEmpty(l.ItemName, "item #"+strconv.FormatInt(l.InventoryID, 10))
		s += fmt.Sprintf("%dx %s", l.Quantity, name)
	}
	return s
}

// =============================================================================
// USERS
// =============================================================================

func userColumns(width int) []table.Column {
	return []table.Column{
		{Title: "#", Width: 6},
		{Title: "Username", Width: 20},
		{Title: "Email", Width: flexWidth(width, 6+20+8, 16)},
		{Title: "Role", Width: 8},
	}
}

func userRows(users []gateway.User) []table.Row {
	rows := make([]table.Row, 0, len(users))
	for _, u := range users {
		role := "user"
		if u.IsAdmin {
			role = "admin"
		}
		rows = append(rows, table.Row{strconv.FormatInt(u.ID, 10), util.Truncate(u.Username, 20), u.Email, role})
	}
	return rows
}
