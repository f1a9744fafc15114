// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/session"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

type countingNavigator struct{ n atomic.Int32 }

func (c *countingNavigator) RedirectToLogin() { c.n.Add(1) }

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	store, err := storage.Open("file", t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return session.NewManager(store, nil)
}

func newClient(t *testing.T, url string, mgr *session.Manager, nav Navigator) *Client {
	t.Helper()
	cfg := config.Default().Gateway
	cfg.BaseURL = url
	cfg.TimeoutSecs = 5
	return New(cfg, mgr, nav, nil)
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	raw, _ := json.Marshal(data)
	_ = json.NewEncoder(w).Encode(Envelope{Data: raw, Message: message, ErrorCode: code})
}

var bob = session.Profile{Username: "bob", Role: session.RoleUser}

// =============================================================================
// REQUEST PATH
// =============================================================================

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeEnvelope(w, 200, []InventoryItem{}, "", 0)
	}))
	defer server.Close()

	mgr := newManager(t)
	c := newClient(t, server.URL, mgr, nil)

	_, err := c.ListInventory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no token, no header")

	require.NoError(t, mgr.Commit("tok1", bob))
	_, err = c.ListInventory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok1", gotAuth)
}

// =============================================================================
// RESPONSE PATH
// =============================================================================

func TestClient_UnauthorizedClearsSessionAndNavigates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Token expired", 401)
	}))
	defer server.Close()

	mgr := newManager(t)
	require.NoError(t, mgr.Commit("tok1", bob))
	nav := &countingNavigator{}
	c := newClient(t, server.URL, mgr, nav)

	_, err := c.MyOrders(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Token expired", apiErr.Message)

	assert.False(t, mgr.IsAuthenticated())
	assert.Equal(t, int32(1), nav.n.Load())
}

func TestClient_ConcurrentUnauthorizedNavigatesOnce(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	mgr := newManager(t)
	require.NoError(t, mgr.Commit("tok1", bob))
	nav := &countingNavigator{}
	c := newClient(t, server.URL, mgr, nav)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.ListInventory(context.Background())
			assert.ErrorIs(t, err, ErrUnauthorized)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), nav.n.Load())
	assert.False(t, mgr.IsAuthenticated())
}

func TestClient_UnauthorizedWhileSignedOutDoesNotNavigate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, "Invalid username or password", 1)
	}))
	defer server.Close()

	nav := &countingNavigator{}
	c := newClient(t, server.URL, newManager(t), nav)

	_, err := c.Login(context.Background(), LoginRequest{Username: "bob", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "Invalid username or password", Message(err, ""))
	assert.Equal(t, int32(0), nav.n.Load())
}

func TestClient_ServerErrorPassesThrough(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("database exploded"))
	}))
	defer server.Close()

	mgr := newManager(t)
	require.NoError(t, mgr.Commit("tok1", bob))
	nav := &countingNavigator{}
	c := newClient(t, server.URL, mgr, nav)

	_, err := c.ListInventory(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 500, apiErr.Status)
	assert.Equal(t, "database exploded", string(apiErr.Body))
	assert.False(t, errors.Is(err, ErrUnauthorized))

	assert.True(t, mgr.IsAuthenticated(), "500 leaves the session alone")
	assert.Equal(t, int32(0), nav.n.Load())
	assert.Equal(t, int32(1), hits.Load(), "no retry")
}

func TestClient_StatusSentinels(t *testing.T) {
	for status, sentinel := range map[int]error{
		http.StatusForbidden: ErrForbidden,
		http.StatusNotFound:  ErrNotFound,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeEnvelope(w, status, nil, "nope", 0)
		}))
		c := newClient(t, server.URL, newManager(t), nil)
		_, err := c.GetOrder(context.Background(), 1)
		assert.ErrorIs(t, err, sentinel)
		server.Close()
	}
}

func TestClient_NetworkFailureKeepsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	mgr := newManager(t)
	require.NoError(t, mgr.Commit("tok1", bob))
	nav := &countingNavigator{}
	c := newClient(t, url, mgr, nav)

	_, err := c.MyOrders(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.True(t, mgr.IsAuthenticated())
	assert.Equal(t, int32(0), nav.n.Load())
	assert.Contains(t, UserMessage(err), "Cannot reach the server")
}

func TestClient_DomainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil, "Insufficient stock", 2001)
	}))
	defer server.Close()

	c := newClient(t, server.URL, newManager(t), nil)
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{Items: []OrderLine{{InventoryID: 1, Quantity: 99}}})
	var domErr *DomainError
	require.ErrorAs(t, err, &domErr)
	assert.Equal(t, 2001, domErr.ErrorCode)
	assert.Equal(t, "Insufficient stock", UserMessage(err))
}

func TestClient_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>proxy page</html>"))
	}))
	defer server.Close()

	c := newClient(t, server.URL, newManager(t), nil)
	_, err := c.ListInventory(context.Background())
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestClient_ResponseTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":"` + strings.Repeat("x", 4096) + `"}`))
	}))
	defer server.Close()

	cfg := config.Default().Gateway
	cfg.BaseURL = server.URL
	cfg.MaxResponseBytes = 1024
	c := New(cfg, newManager(t), nil, nil)

	_, err := c.ListInventory(context.Background())
	assert.ErrorIs(t, err, ErrResponseTooLarge)
}

func TestClient_RateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, []Order{}, "", 0)
	}))
	defer server.Close()

	cfg := config.Default().Gateway
	cfg.BaseURL = server.URL
	cfg.RateLimitRPS = 1
	cfg.RateLimitBurst = 1
	c := New(cfg, newManager(t), nil, nil)

	_, err := c.MyOrders(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.MyOrders(ctx)
	assert.True(t, IsNetwork(err), "limiter wait that cannot finish in time fails without a request")
}

// =============================================================================
// ENDPOINTS
// =============================================================================

func TestClient_EndpointRoutes(t *testing.T) {
	type call struct{ method, path string }
	var mu sync.Mutex
	var seen []call
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, call{r.Method, r.URL.Path})
		mu.Unlock()
		switch {
		case r.URL.Path == "/gateway/auth/login":
			writeEnvelope(w, 200, LoginResult{Token: "t", User: User{Username: "bob"}}, "", 0)
		case strings.HasSuffix(r.URL.Path, "/users"),
			r.URL.Path == "/gateway/inventory" && r.Method == http.MethodGet,
			strings.HasPrefix(r.URL.Path, "/gateway/orders") && r.Method == http.MethodGet && !strings.HasSuffix(r.URL.Path, "/1"):
			writeEnvelope(w, 200, []interface{}{}, "", 0)
		default:
			writeEnvelope(w, 200, map[string]interface{}{"id": 1}, "", 0)
		}
	}))
	defer server.Close()

	c := newClient(t, server.URL, newManager(t), nil)
	ctx := context.Background()

	_, err := c.Login(ctx, LoginRequest{Username: "bob", Password: "secret1"})
	require.NoError(t, err)
	_, err = c.Signup(ctx, SignupRequest{Username: "bob"})
	require.NoError(t, err)
	_, err = c.Me(ctx)
	require.NoError(t, err)
	_, err = c.Users(ctx)
	require.NoError(t, err)
	_, err = c.ListInventory(ctx)
	require.NoError(t, err)
	_, err = c.GetInventory(ctx, 1)
	require.NoError(t, err)
	_, err = c.CreateInventory(ctx, InventoryItem{ItemName: "x"})
	require.NoError(t, err)
	_, err = c.UpdateInventory(ctx, 1, InventoryItem{ItemName: "x"})
	require.NoError(t, err)
	require.NoError(t, c.DeleteInventory(ctx, 1))
	_, err = c.ListOrders(ctx)
	require.NoError(t, err)
	_, err = c.MyOrders(ctx)
	require.NoError(t, err)
	_, err = c.GetOrder(ctx, 1)
	require.NoError(t, err)
	_, err = c.CreateOrder(ctx, CreateOrderRequest{Items: []OrderLine{{InventoryID: 1, Quantity: 1}}})
	require.NoError(t, err)
	_, err = c.UpdateOrder(ctx, 1, UpdateOrderRequest{Status: OrderShipped})
	require.NoError(t, err)
	require.NoError(t, c.DeleteOrder(ctx, 1))
	_, err = c.CancelOrder(ctx, 1)
	require.NoError(t, err)

	want := []call{
		{"POST", "/gateway/auth/login"},
		{"POST", "/gateway/auth/signup"},
		{"GET", "/gateway/auth/me"},
		{"GET", "/gateway/auth/users"},
		{"GET", "/gateway/inventory"},
		{"GET", "/gateway/inventory/1"},
		{"POST", "/gateway/inventory"},
		{"PUT", "/gateway/inventory/1"},
		{"DELETE", "/gateway/inventory/1"},
		{"GET", "/gateway/orders"},
		{"GET", "/gateway/orders/my-orders"},
		{"GET", "/gateway/orders/1"},
		{"POST", "/gateway/orders"},
		{"PUT", "/gateway/orders/1"},
		{"DELETE", "/gateway/orders/1"},
		{"PATCH", "/gateway/orders/1/cancel"},
	}
	assert.Equal(t, want, seen)
}

func TestClient_LoginRequiresTokenAndUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 200, LoginResult{}, "", 0)
	}))
	defer server.Close()

	c := newClient(t, server.URL, newManager(t), nil)
	_, err := c.Login(context.Background(), LoginRequest{Username: "bob", Password: "secret1"})
	assert.Error(t, err)
}

func TestCreateOrder_RejectsEmpty(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", newManager(t), nil)
	_, err := c.CreateOrder(context.Background(), CreateOrderRequest{})
	assert.Error(t, err)
	assert.False(t, IsNetwork(err))
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Contains(t, UserMessage(&APIError{Status: 401}), "session has expired")
	assert.Equal(t, "Out of stock", UserMessage(&APIError{Status: 409, Message: "Out of stock"}))
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}
