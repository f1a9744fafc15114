// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockgateway

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/orderdesk/internal/gateway"
)

var (
	errUsernameTaken     = errors.New("Username already exists")
	errNoSuchItem        = errors.New("Inventory item not found")
	errNoSuchOrder       = errors.New("Order not found")
	errInsufficientStock = errors.New("Insufficient stock")
	errNotCancellable    = errors.New("Order can no longer be cancelled")
)

// dateLayout matches what the real gateway sends (no zone suffix).
const dateLayout = "2006-01-02T15:04:05"

type account struct {
	gateway.User
	PasswordHash string
}

// db is the in-memory state. All methods are safe for concurrent use.
type db struct {
	mu        sync.Mutex
	users     map[int64]*account
	inventory map[int64]*gateway.InventoryItem
	orders    map[int64]*gateway.Order
	nextUser  int64
	nextItem  int64
	nextOrder int64
}

func newDB() *db {
	return &db{
		users:     map[int64]*account{},
		inventory: map[int64]*gateway.InventoryItem{},
		orders:    map[int64]*gateway.Order{},
	}
}

func now() string {
	return time.Now().UTC().Format(dateLayout)
}

// --- users -------------------------------------------------------------------

func (d *db) addUser(username, email, hash string, isAdmin bool) (*account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Username, username) {
			return nil, errUsernameTaken
		}
	}
	d.nextUser++
	a := &account{
		User:         gateway.User{ID: d.nextUser, Username: username, Email: email, IsAdmin: isAdmin},
		PasswordHash: hash,
	}
	d.users[a.ID] = a
	return a, nil
}

func (d *db) userByName(username string) (*account, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, u := range d.users {
		if strings.EqualFold(u.Username, username) {
			return u, true
		}
	}
	return nil, false
}

func (d *db) user(id int64) (*account, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	return u, ok
}

func (d *db) listUsers() []gateway.User {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]gateway.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- inventory ---------------------------------------------------------------

func (d *db) putItem(item gateway.InventoryItem) gateway.InventoryItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextItem++
	item.ID = d.nextItem
	if item.CreatedDate == "" {
		item.CreatedDate = now()
	}
	d.inventory[item.ID] = &item
	return item
}

func (d *db) item(id int64) (gateway.InventoryItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	it, ok := d.inventory[id]
	if !ok {
		return gateway.InventoryItem{}, errNoSuchItem
	}
	return *it, nil
}

func (d *db) updateItem(id int64, item gateway.InventoryItem) (gateway.InventoryItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	existing, ok := d.inventory[id]
	if !ok {
		return gateway.InventoryItem{}, errNoSuchItem
	}
	item.ID = id
	item.CreatedDate = existing.CreatedDate
	d.inventory[id] = &item
	return item, nil
}

func (d *db) deleteItem(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.inventory[id]; !ok {
		return errNoSuchItem
	}
	delete(d.inventory, id)
	return nil
}

func (d *db) listItems() []gateway.InventoryItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]gateway.InventoryItem, 0, len(d.inventory))
	for _, it := range d.inventory {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// --- orders ------------------------------------------------------------------

// placeOrder reserves stock for every line or for none.
func (d *db) placeOrder(u *account, lines []gateway.OrderLine) (gateway.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, l := range lines {
		it, ok := d.inventory[l.InventoryID]
		if !ok {
			return gateway.Order{}, errNoSuchItem
		}
		if l.Quantity < 1 || it.QuantityAvailable < l.Quantity {
			return gateway.Order{}, errInsufficientStock
		}
	}

	d.nextOrder++
	o := gateway.Order{
		ID:          d.nextOrder,
		UserID:      u.ID,
		Username:    u.Username,
		Status:      gateway.OrderPending,
		CreatedDate: now(),
	}
	for _, l := range lines {
		it := d.inventory[l.InventoryID]
		it.QuantityAvailable -= l.Quantity
		line := gateway.OrderLine{
			InventoryID: it.ID,
			ItemName:    it.ItemName,
			Quantity:    l.Quantity,
			UnitPrice:   it.UnitPrice,
		}
		o.Items = append(o.Items, line)
		o.TotalAmount += line.UnitPrice * float64(line.Quantity)
	}
	d.orders[o.ID] = &o
	return o, nil
}

func (d *db) order(id int64) (gateway.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.orders[id]
	if !ok {
		return gateway.Order{}, errNoSuchOrder
	}
	return *o, nil
}

func (d *db) listOrders(userID int64) []gateway.Order {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []gateway.Order{}
	for _, o := range d.orders {
		if userID == 0 || o.UserID == userID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (d *db) setOrderStatus(id int64, status string) (gateway.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.orders[id]
	if !ok {
		return gateway.Order{}, errNoSuchOrder
	}
	if status == gateway.OrderCancelled && o.Status != gateway.OrderCancelled {
		d.restockLocked(o)
	}
	o.Status = status
	return *o, nil
}

func (d *db) cancelOrder(id int64) (gateway.Order, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	o, ok := d.orders[id]
	if !ok {
		return gateway.Order{}, errNoSuchOrder
	}
	if !o.Cancellable() {
		return gateway.Order{}, errNotCancellable
	}
	d.restockLocked(o)
	o.Status = gateway.OrderCancelled
	return *o, nil
}

func (d *db) restockLocked(o *gateway.Order) {
	for _, l := range o.Items {
		if it, ok := d.inventory[l.InventoryID]; ok {
			it.QuantityAvailable += l.Quantity
		}
	}
}

func (d *db) deleteOrder(id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.orders[id]; !ok {
		return errNoSuchOrder
	}
	delete(d.orders, id)
	return nil
}

// seedInventory is the catalogue a fresh mock gateway starts with.
var seedInventory = []gateway.InventoryItem{
	{ItemName: "ThinkPad X1 Carbon", ItemCode: "LAP-001", Description: "14-inch business ultrabook", Category: "Electronics", UnitPrice: 1649.00, QuantityAvailable: 12, WarehouseLocation: "A-01"},
	{ItemName: "MacBook Air 13", ItemCode: "LAP-002", Description: "M3, 16GB, 512GB", Category: "Electronics", UnitPrice: 1299.00, QuantityAvailable: 8, WarehouseLocation: "A-02"},
	{ItemName: "Pixel 9", ItemCode: "PHN-001", Description: "128GB, unlocked", Category: "Electronics", UnitPrice: 799.00, QuantityAvailable: 25, WarehouseLocation: "B-04"},
	{ItemName: "iPhone 16", ItemCode: "PHN-002", Description: "128GB", Category: "Electronics", UnitPrice: 829.00, QuantityAvailable: 0, WarehouseLocation: "B-05"},
	{ItemName: "USB-C Charger 65W", ItemCode: "ACC-001", Description: "GaN, two ports", Category: "Accessories", UnitPrice: 49.99, QuantityAvailable: 140, WarehouseLocation: "C-10"},
	{ItemName: "Wireless Mouse", ItemCode: "ACC-002", Description: "Bluetooth, silent clicks", Category: "Accessories", UnitPrice: 29.50, QuantityAvailable: 64, WarehouseLocation: "C-11"},
}
