// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ============================================================================
// ROUTES
// ============================================================================

// Route names a view.
type Route string

const (
	RouteLogin    Route = "login"
	RouteSignup   Route = "signup"
	RouteUser     Route = "user"
	RouteAdmin    Route = "admin"
	RouteProducts Route = "products"
	RouteOrders   Route = "orders"
	RouteHelp     Route = "help"
)

// DefaultLanding is where signed-in visitors land, and where a forbidden
// admin request is sent.
const DefaultLanding = RouteUser

// ErrUnknownRoute is returned for a name missing from the route table.
var ErrUnknownRoute = errors.New("unknown route")

// Access is the admission level a route requires.
type Access int

const (
	// AccessPublic routes are always allowed.
	AccessPublic Access = iota
	// AccessProtected routes need a session.
	AccessProtected
	// AccessAdmin routes need a session with the admin role.
	AccessAdmin
)

// String returns the access level name.
func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessAdmin:
		return "admin"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Definition describes one entry of the route table.
type Definition struct {
	Route  Route
	Title  string
	Access Access
	// Key is the single-key shortcut shown in the navigation bar.
	Key string
}

var table = map[Route]Definition{
	RouteLogin:    {RouteLogin, "Sign in", AccessPublic, ""},
	RouteSignup:   {RouteSignup, "Sign up", AccessPublic, ""},
	RouteHelp:     {RouteHelp, "Help", AccessPublic, "?"},
	RouteUser:     {RouteUser, "Home", AccessProtected, "1"},
	RouteProducts: {RouteProducts, "Products", AccessProtected, "2"},
	RouteOrders:   {RouteOrders, "My orders", AccessProtected, "3"},
	RouteAdmin:    {RouteAdmin, "Admin", AccessAdmin, "4"},
}

// Lookup returns the definition for r.
func Lookup(r Route) (Definition, error) {
	def, ok := table[r]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", ErrUnknownRoute, string(r))
	}
	return def, nil
}

// Parse resolves a user-typed route name, ignoring case and a leading slash.
func Parse(name string) (Route, error) {
	r := Route(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "/"))
	if _, err := Lookup(r); err != nil {
		return "", err
	}
	return r, nil
}

// Navigable lists routes that have a navigation key, in key order.
func Navigable() []Definition {
	var defs []Definition
	for _, d := range table {
		if d.Key != "" {
			defs = append(defs, d)
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })
	return defs
}
