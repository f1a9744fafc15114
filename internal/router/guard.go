// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"fmt"

	"go.uber.org/zap"
)

// ============================================================================
// DECISION
// ============================================================================

// Decision is the outcome of a guard check.
type Decision int

const (
	// Unchecked is the zero value; a Result is never returned in this state.
	Unchecked Decision = iota
	Allowed
	DeniedUnauth
	DeniedForbidden
)

// String returns the decision name.
func (d Decision) String() string {
	switch d {
	case Unchecked:
		return "unchecked"
	case Allowed:
		return "allowed"
	case DeniedUnauth:
		return "denied_unauth"
	case DeniedForbidden:
		return "denied_forbidden"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Result carries a decision and where to go instead when denied.
type Result struct {
	Requested Route
	Decision  Decision
	// Redirect is empty when Allowed.
	Redirect Route
}

// Allowed reports whether the requested view may be built.
func (r Result) Allowed() bool {
	return r.Decision == Allowed
}

// Target is the route to actually show.
func (r Result) Target() Route {
	if r.Allowed() {
		return r.Requested
	}
	return r.Redirect
}

// ============================================================================
// GUARD
// ============================================================================

// Authorizer answers the two questions the guard asks.
// *session.Manager satisfies it.
type Authorizer interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

// Guard evaluates route admission against the current session.
type Guard struct {
	auth    Authorizer
	landing Route
	logger  *zap.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithLanding overrides where signed-in non-admin visitors land.
// Public and admin routes are ignored.
func WithLanding(r Route) Option {
	return func(g *Guard) {
		if def, err := Lookup(r); err == nil && def.Access == AccessProtected {
			g.landing = r
		}
	}
}

// WithLogger attaches a logger for denied decisions.
func WithLogger(l *zap.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGuard creates a guard over auth.
func NewGuard(auth Authorizer, opts ...Option) *Guard {
	g := &Guard{auth: auth, landing: DefaultLanding, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check decides whether r may be opened right now. Nothing is cached.
func (g *Guard) Check(r Route) (Result, error) {
	def, err := Lookup(r)
	if err != nil {
		return Result{Requested: r}, err
	}

	res := Result{Requested: r}
	switch {
	case def.Access == AccessPublic:
		res.Decision = Allowed
	case !g.auth.IsAuthenticated():
		res.Decision = DeniedUnauth
		res.Redirect = RouteLogin
	case def.Access == AccessAdmin && !g.auth.IsAdmin():
		res.Decision = DeniedForbidden
		res.Redirect = g.landing
	default:
		res.Decision = Allowed
	}

	if !res.Allowed() {
		g.logger.Debug("navigation denied",
			zap.String("route", string(r)),
			zap.Stringer("decision", res.Decision),
			zap.String("redirect", string(res.Redirect)))
	}
	return res, nil
}

// Landing is where a freshly signed-in visitor goes: the admin view for
// admins, the configured landing view for everyone else.
func (g *Guard) Landing() Route {
	if g.auth.IsAdmin() {
		return RouteAdmin
	}
	return g.landing
}

// Resolve follows redirects until an allowed route is reached. Redirect
// targets are always admissible, so this takes at most two checks.
func (g *Guard) Resolve(r Route) (Result, error) {
	res, err := g.Check(r)
	if err != nil || res.Allowed() {
		return res, err
	}
	next, err := g.Check(res.Redirect)
	if err != nil {
		return res, err
	}
	if !next.Allowed() {
		// Landing view became unreachable between checks (concurrent logout).
		return Result{Requested: r, Decision: DeniedUnauth, Redirect: RouteLogin}, nil
	}
	return res, nil
}
