// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"errors"
	"net/http"
)

// Login exchanges credentials for a token and user. It does not touch the
// session; committing the result is the caller's decision.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &res); err != nil {
		return nil, err
	}
	if res.Token == "" || res.User.Username == "" {
		return nil, errors.New("login response is missing token or user")
	}
	return &res, nil
}

// Signup registers an account. The gateway does not sign the visitor in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Me returns the account the current token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Users lists every account (admin only).
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/auth/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
