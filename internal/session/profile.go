// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"strings"
)

// Role is the visitor's authorization level. The set is closed.
type Role int

const (
	// RoleUser is any signed-in visitor.
	RoleUser Role = iota
	// RoleAdmin may open admin-only views.
	RoleAdmin
)

// String returns the lowercase role name.
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// RoleFromAdminFlag maps the gateway's isAdmin flag onto a Role.
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleUser
}

// ErrInvalidProfile is returned when a profile has no username.
var ErrInvalidProfile = errors.New("profile has no username")

// Profile is the display snapshot of the signed-in visitor.
type Profile struct {
	ID       int64
	Username string
	Email    string
	Role     Role
}

// IsAdmin reports whether the profile carries RoleAdmin.
func (p Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// Validate checks the profile can be committed.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return ErrInvalidProfile
	}
	return nil
}

// profileJSON is the persisted shape. isAdmin mirrors the gateway's user object.
type profileJSON struct {
	ID       int64  `json:"id,omitempty"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// MarshalJSON encodes the role as the gateway's isAdmin flag.
func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(profileJSON{
		ID:       p.ID,
		Username: p.Username,
		Email:    p.Email,
		IsAdmin:  p.Role == RoleAdmin,
	})
}

// UnmarshalJSON accepts the persisted shape. Only a literal true grants admin.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var raw profileJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile{
		ID:       raw.ID,
		Username: raw.Username,
		Email:    raw.Email,
		Role:     RoleFromAdminFlag(raw.IsAdmin),
	}
	return nil
}
