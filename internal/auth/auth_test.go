// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/forms"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/session"
	"github.com/jeranaias/orderdesk/internal/storage"
)

func envelope(w http.ResponseWriter, status int, data interface{}, msg string) {
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(gateway.Envelope{Data: raw, Message: msg})
}

func setup(t *testing.T, h http.HandlerFunc) (*Service, *session.Manager) {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	store, err := storage.Open("file", t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	mgr := session.NewManager(store, nil)

	cfg := config.Default().Gateway
	cfg.BaseURL = server.URL
	gw := gateway.New(cfg, mgr, nil, nil)
	return NewService(gw, mgr, nil), mgr
}

func TestLogin_CommitsSession(t *testing.T) {
	svc, mgr := setup(t, func(w http.ResponseWriter, r *http.Request) {
		var req gateway.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "alice", req.Username)
		envelope(w, 200, gateway.LoginResult{Token: "jwt-abc", User: gateway.User{ID: 9, Username: "alice", IsAdmin: true}}, "")
	})

	p, err := svc.Login(context.Background(), forms.Login{Username: " alice ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, session.RoleAdmin, p.Role)
	assert.True(t, mgr.IsAuthenticated())
	assert.True(t, mgr.IsAdmin())
	assert.Equal(t, "jwt-abc", mgr.Token())
}

func TestLogin_InvalidFormSendsNothing(t *testing.T) {
	var hits atomic.Int32
	svc, mgr := setup(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	})

	_, err := svc.Login(context.Background(), forms.Login{Username: "al", Password: "x"})
	var inErr *InputError
	require.ErrorAs(t, err, &inErr)
	assert.Len(t, inErr.Fields, 2)
	assert.Equal(t, int32(0), hits.Load())
	assert.False(t, mgr.IsAuthenticated())
	assert.Equal(t, "Please fix the errors in the form", FailureMessage(err))
}

func TestLogin_Rejected(t *testing.T) {
	svc, mgr := setup(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusUnauthorized, nil, "")
	})

	_, err := svc.Login(context.Background(), forms.Login{Username: "alice", Password: "wrong-pw"})
	require.Error(t, err)
	assert.False(t, mgr.IsAuthenticated())
	assert.Equal(t, DefaultLoginFailure, FailureMessage(err))
}

func TestSignup_DoesNotSignIn(t *testing.T) {
	svc, mgr := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gateway/auth/signup", r.URL.Path)
		envelope(w, 201, gateway.User{ID: 3, Username: "newbie"}, "User created")
	})

	u, err := svc.Signup(context.Background(), forms.Signup{
		Username: "newbie", Email: "n@example.com", Password: "Secret1", ConfirmPassword: "Secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "newbie", u.Username)
	assert.False(t, mgr.IsAuthenticated())
}

func TestSignup_ServerMessage(t *testing.T) {
	svc, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusConflict, nil, "Username already exists")
	})
	_, err := svc.Signup(context.Background(), forms.Signup{
		Username: "taken", Email: "t@example.com", Password: "Secret1", ConfirmPassword: "Secret1",
	})
	assert.Equal(t, "Username already exists", FailureMessage(err))
}

func TestLogoutAndRefresh(t *testing.T) {
	var admin atomic.Bool
	svc, mgr := setup(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(w, 200, gateway.User{ID: 1, Username: "bob", IsAdmin: admin.Load()}, "")
	})

	_, err := svc.Refresh(context.Background())
	assert.ErrorIs(t, err, gateway.ErrUnauthorized, "nothing to refresh when signed out")

	require.NoError(t, mgr.Commit("tok", session.Profile{Username: "bob"}))
	admin.Store(true)
	p, err := svc.Refresh(context.Background())
	require.NoError(t, err)
	assert.True(t, p.IsAdmin())
	assert.True(t, mgr.IsAdmin())
	assert.Equal(t, "tok", mgr.Token(), "token is kept")

	ended, err := svc.Logout()
	require.NoError(t, err)
	assert.True(t, ended)
	assert.False(t, mgr.IsAuthenticated())
}
