// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/orderdesk/internal/auth"
	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/mockgateway"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/session"
	"github.com/jeranaias/orderdesk/internal/storage"
	"github.com/jeranaias/orderdesk/internal/ui/components"
	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// =============================================================================
// HARNESS
// =============================================================================

// recorder stands in for *tea.Program.
type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) Send(msg tea.Msg) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recorder) take() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

type harness struct {
	t      *testing.T
	server *mockgateway.Server
	mgr    *session.Manager
	store  *storage.Store
	sent   *recorder
	model  tea.Model
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	srv, err := mockgateway.New(mockgateway.Config{Secret: "test-secret", BcryptCost: bcrypt.MinCost, Seed: true}, nil)
	if err != nil {
		t.Fatalf("mock gateway: %v", err)
	}
	hs := httptest.NewServer(adaptor.FiberApp(srv.App()))
	t.Cleanup(hs.Close)

	store, err := storage.Open(config.BackendFile, t.TempDir())
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	mgr := session.NewManager(store, nil)
	if err := mgr.Init(); err != nil {
		t.Fatalf("session init: %v", err)
	}

	cfg := config.Default()
	cfg.Gateway.BaseURL = hs.URL
	cfg.Gateway.TimeoutSecs = 5

	sent := &recorder{}
	nav := NewNavigator()
	nav.Attach(sent)
	gw := gateway.New(cfg.Gateway, mgr, nav, nil)

	m := New(Deps{
		Config:  cfg,
		Session: mgr,
		Store:   store,
		Guard:   router.NewGuard(mgr),
		Gateway: gw,
		Auth:    auth.NewService(gw, mgr, nil),
		Theme:   styles.NewThemeFor(io.Discard, styles.ThemeMono),
	})

	h := &harness{t: t, server: srv, mgr: mgr, store: store, sent: sent, model: m}
	h.send(tea.WindowSizeMsg{Width: 100, Height: 30})
	h.run(m.Init())
	return h
}

// relevant filters out timers (cursor blink, spinner, toast expiry).
func relevant(msg tea.Msg) bool {
	switch msg.(type) {
	case NavigateMsg, ForceLogoutMsg, SessionChangedMsg, components.FormSubmitMsg,
		loginResultMsg, signupResultMsg, productsMsg, cartMsg, ordersMsg,
		usersMsg, adminOrdersMsg, orderPlacedMsg, orderChangedMsg, verifyMsg:
		return true
	}
	return false
}

// collect executes cmd and every batched command concurrently, like the
// runtime does, and returns the messages they produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	var (
		mu   sync.Mutex
		out  []tea.Msg
		wg   sync.WaitGroup
		exec func(tea.Cmd)
	)
	exec = func(c tea.Cmd) {
		defer wg.Done()
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, inner := range batch {
				if inner != nil {
					wg.Add(1)
					go exec(inner)
				}
			}
			return
		}
		if msg != nil && relevant(msg) {
			mu.Lock()
			out = append(out, msg)
			mu.Unlock()
		}
	}
	wg.Add(1)
	go exec(cmd)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
	mu.Lock()
	defer mu.Unlock()
	return append([]tea.Msg(nil), out...)
}

// run feeds the output of cmd back into the model until it settles.
// Forced logouts reach the model through the recorder, as they would
// through the program.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	queue := collect(cmd)
	for i := 0; i < 50; i++ {
		queue = append(queue, h.sent.take()...)
		if len(queue) == 0 {
			return
		}
		msg := queue[0]
		queue = queue[1:]
		var next tea.Cmd
		h.model, next = h.model.Update(msg)
		queue = append(queue, collect(next)...)
	}
	h.t.Fatalf("model did not settle")
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(msg)
	h.run(cmd)
}

func (h *harness) press(s string) {
	h.t.Helper()
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) m() Model {
	return h.model.(Model)
}

func (h *harness) login(username, password string) {
	h.t.Helper()
	if h.m().Route() != router.RouteLogin {
		h.t.Fatalf("expected the sign-in view, got %s", h.m().Route())
	}
	h.send(components.FormSubmitMsg{ID: string(router.RouteLogin), Values: map[string]string{
		"username": username,
		"password": password,
	}})
}

func countToasts(m Model, kind components.ToastKind) int {
	n := 0
	for _, t := range m.Toasts() {
		if t.Kind == kind {
			n++
		}
	}
	return n
}

// =============================================================================
// NAVIGATION
// =============================================================================

func TestStartWithoutSessionShowsLogin(t *testing.T) {
	h := newHarness(t)
	if got := h.m().Route(); got != router.RouteLogin {
		t.Errorf("Route() = %s, want login", got)
	}
	if !strings.Contains(h.m().View(), "Sign in") {
		t.Error("sign-in form not rendered")
	}
}

func TestProtectedKeysRedirectToLogin(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyF1})
	if got := h.m().Route(); got != router.RouteHelp {
		t.Fatalf("Route() = %s, want help", got)
	}
	for _, k := range []string{"1", "2", "3", "4"} {
		h.press(k)
		if got := h.m().Route(); got != router.RouteLogin {
			t.Errorf("key %s: Route() = %s, want login", k, got)
		}
		h.send(tea.KeyMsg{Type: tea.KeyF1})
	}
}

func TestSignupViewRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyCtrlN})
	if got := h.m().Route(); got != router.RouteSignup {
		t.Fatalf("Route() = %s, want signup", got)
	}
	h.send(tea.KeyMsg{Type: tea.KeyEsc})
	if got := h.m().Route(); got != router.RouteLogin {
		t.Errorf("Route() = %s, want login", got)
	}
}

func TestSignupThenLogin(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyCtrlN})
	h.send(components.FormSubmitMsg{ID: string(router.RouteSignup), Values: map[string]string{
		"username":        "carol",
		"email":           "carol@example.com",
		"password":        "Carol123",
		"confirmPassword": "Carol123",
	}})
	if got := h.m().Route(); got != router.RouteLogin {
		t.Fatalf("Route() = %s, want login after signup", got)
	}
	if got := h.m().loginForm.Value("username"); got != "carol" {
		t.Errorf("username prefill = %q, want carol", got)
	}
	if got := h.m().loginForm.Focused(); got != "password" {
		t.Errorf("focus after signup = %q, want password", got)
	}
	if h.mgr.IsAuthenticated() {
		t.Error("signup must not sign in")
	}

	h.login("carol", "Carol123")
	if got := h.m().Route(); got != router.RouteUser {
		t.Errorf("Route() = %s, want user", got)
	}
}

func TestLoginValidationStaysLocal(t *testing.T) {
	h := newHarness(t)
	h.login("", "")
	m := h.m()
	if m.Route() != router.RouteLogin {
		t.Fatalf("Route() = %s, want login", m.Route())
	}
	if len(m.loginForm.Errors()) == 0 {
		t.Error("expected field errors for empty credentials")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, "nope-nope")
	m := h.m()
	if m.Route() != router.RouteLogin {
		t.Fatalf("Route() = %s, want login", m.Route())
	}
	if m.loginForm.FormError() == "" {
		t.Error("expected a form-level error")
	}
	if m.loginForm.Disabled() {
		t.Error("form should be re-enabled after a failed attempt")
	}
}

func TestAdminLandsOnAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoAdminUser, mockgateway.DemoAdminPassword)
	m := h.m()
	if m.Route() != router.RouteAdmin {
		t.Fatalf("Route() = %s, want admin", m.Route())
	}
	if len(m.users) != 2 {
		t.Errorf("users = %d, want 2", len(m.users))
	}
	if !strings.Contains(m.View(), "Administration") {
		t.Error("admin view not rendered")
	}
}

func TestUserForbiddenFromAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	if got := h.m().Route(); got != router.RouteUser {
		t.Fatalf("Route() = %s, want user", got)
	}
	h.press("2")
	if got := h.m().Route(); got != router.RouteProducts {
		t.Fatalf("Route() = %s, want products", got)
	}
	h.press("4")
	if got := h.m().Route(); got != router.RouteUser {
		t.Errorf("Route() = %s, want user landing after forbidden admin", got)
	}
	if !h.mgr.IsAuthenticated() {
		t.Error("a forbidden route must not end the session")
	}
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	h.press("L")
	if got := h.m().Route(); got != router.RouteLogin {
		t.Errorf("Route() = %s, want login", got)
	}
	if h.mgr.IsAuthenticated() {
		t.Error("session still present after logout")
	}
	if len(h.sent.take()) != 0 {
		t.Error("explicit logout must not go through the navigator")
	}
}

// =============================================================================
// FORCED LOGOUT
// =============================================================================

func TestForcedLogoutNavigatesOnce(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoAdminUser, mockgateway.DemoAdminPassword)
	if h.m().Route() != router.RouteAdmin {
		t.Fatalf("Route() = %s, want admin", h.m().Route())
	}

	// Refresh fires two protected requests; both come back 401.
	h.server.RevokeAll()
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	msgs := collect(cmd)

	redirects := 0
	for _, msg := range h.sent.take() {
		if _, ok := msg.(ForceLogoutMsg); ok {
			redirects++
		}
		msgs = append(msgs, msg)
	}
	if redirects != 1 {
		t.Fatalf("redirects = %d, want 1", redirects)
	}
	for _, msg := range msgs {
		var next tea.Cmd
		h.model, next = h.model.Update(msg)
		h.run(next)
	}

	m := h.m()
	if m.Route() != router.RouteLogin {
		t.Errorf("Route() = %s, want login", m.Route())
	}
	if h.mgr.IsAuthenticated() {
		t.Error("session survived a 401")
	}
	if n := countToasts(m, components.ToastWarning); n != 1 {
		t.Errorf("expiry warnings = %d, want 1", n)
	}
	if n := countToasts(m, components.ToastError); n != 0 {
		t.Errorf("error toasts = %d, want 0; the 401 is reported by the redirect", n)
	}
}

func TestForceLogoutOnLoginDoesNotRenavigate(t *testing.T) {
	h := newHarness(t)
	before := h.m().Seq()
	h.send(ForceLogoutMsg{})
	if h.m().Route() != router.RouteLogin {
		t.Errorf("Route() = %s, want login", h.m().Route())
	}
	if h.m().Seq() != before {
		t.Error("already on sign-in; no navigation expected")
	}
}

func TestSessionClearedElsewhere(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	h.press("3")
	if h.m().Route() != router.RouteOrders {
		t.Fatalf("Route() = %s, want orders", h.m().Route())
	}

	// Another process removes the credentials.
	other := session.NewManager(h.store, nil)
	if _, err := other.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	h.send(SessionChangedMsg{})
	if got := h.m().Route(); got != router.RouteLogin {
		t.Errorf("Route() = %s, want login", got)
	}
}

func TestUnauthorizedAfterSessionLostElsewhere(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	h.press("2")
	h.press("a")
	if len(h.m().cart) != 1 {
		t.Fatalf("cart = %+v, want one line", h.m().cart)
	}

	// Credentials vanish without a store event reaching the view, so the
	// order is the first thing to notice.
	other := session.NewManager(h.store, nil)
	if _, err := other.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	h.press("o")

	m := h.m()
	if m.Route() != router.RouteLogin {
		t.Errorf("Route() = %s, want login", m.Route())
	}
	if h.mgr.IsAuthenticated() {
		t.Error("session should be gone")
	}
	if n := countToasts(m, components.ToastWarning); n != 1 {
		t.Errorf("expiry warnings = %d, want 1", n)
	}
	if n := countToasts(m, components.ToastError); n != 0 {
		t.Errorf("error toasts = %d, want 0", n)
	}
}

func TestLateLoginLeavesSignupView(t *testing.T) {
	h := newHarness(t)
	var cmd tea.Cmd
	h.model, cmd = h.model.Update(components.FormSubmitMsg{ID: string(router.RouteLogin), Values: map[string]string{
		"username": mockgateway.DemoUser,
		"password": mockgateway.DemoUserPassword,
	}})
	results := collect(cmd)

	// The user moves on before the sign-in result arrives.
	h.send(tea.KeyMsg{Type: tea.KeyCtrlN})
	if h.m().Route() != router.RouteSignup {
		t.Fatalf("Route() = %s, want signup", h.m().Route())
	}
	for _, msg := range results {
		var next tea.Cmd
		h.model, next = h.model.Update(msg)
		h.run(next)
	}

	if !h.mgr.IsAuthenticated() {
		t.Fatal("login result was not committed")
	}
	if got := h.m().Route(); got != router.RouteUser {
		t.Errorf("Route() = %s, want user", got)
	}
}

// =============================================================================
// DATA
// =============================================================================

func TestStaleResultsAreIgnored(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	h.press("2")
	m := h.m()
	loaded := len(m.products)
	if loaded == 0 {
		t.Fatal("no products loaded")
	}

	h.send(productsMsg{seq: m.Seq() - 1, items: []gateway.InventoryItem{{ID: 99, ItemName: "Ghost"}}})
	if got := len(h.m().products); got != loaded {
		t.Errorf("stale result replaced products: %d, want %d", got, loaded)
	}

	h.send(productsMsg{seq: m.Seq() - 1, err: gateway.ErrUnauthorized})
	if h.m().Route() != router.RouteProducts {
		t.Error("stale failure changed the view")
	}
}

func TestCartAndOrder(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	h.press("2")

	h.press("o")
	if n := countToasts(h.m(), components.ToastWarning); n != 1 {
		t.Fatalf("empty cart warning = %d, want 1", n)
	}

	h.press("a")
	h.press("a")
	cart := h.m().cart
	if len(cart) != 1 || cart[0].Quantity != 2 {
		t.Fatalf("cart = %+v, want one line with quantity 2", cart)
	}

	h.press("o")
	if got := len(h.m().cart); got != 0 {
		t.Errorf("cart after order = %d lines, want 0", got)
	}
	if n := countToasts(h.m(), components.ToastSuccess); n == 0 {
		t.Error("no success toast for the order")
	}

	h.press("3")
	orders := h.m().orders
	if len(orders) != 1 || orders[0].Status != gateway.OrderPending {
		t.Fatalf("orders = %+v, want one pending order", orders)
	}

	h.press("x")
	if got := h.m().orders[0].Status; got != gateway.OrderCancelled {
		t.Errorf("status = %s, want Cancelled", got)
	}
	h.press("x")
	if n := countToasts(h.m(), components.ToastWarning); n < 1 {
		t.Error("cancelling twice should warn")
	}
}

func TestAdminAdvancesOrder(t *testing.T) {
	h := newHarness(t)
	h.login(mockgateway.DemoUser, mockgateway.DemoUserPassword)
	h.press("2")
	h.press("a")
	h.press("o")
	h.press("L")

	h.login(mockgateway.DemoAdminUser, mockgateway.DemoAdminPassword)
	h.send(tea.KeyMsg{Type: tea.KeyTab})
	if h.m().adminPane != 1 {
		t.Fatal("tab did not switch to the orders pane")
	}
	h.press("n")
	orders := h.m().adminOrders
	if len(orders) != 1 || orders[0].Status != gateway.OrderConfirmed {
		t.Errorf("orders = %+v, want one confirmed order", orders)
	}
}

func TestNextStatus(t *testing.T) {
	tests := map[string]string{
		gateway.OrderPending:   gateway.OrderConfirmed,
		gateway.OrderConfirmed: gateway.OrderShipped,
		gateway.OrderShipped:   gateway.OrderDelivered,
		gateway.OrderDelivered: "",
		gateway.OrderCancelled: "",
	}
	for in, want := range tests {
		if got := nextStatus(in); got != want {
			t.Errorf("nextStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHelpMarkdownListsViews(t *testing.T) {
	md := HelpMarkdown()
	for _, def := range router.Navigable() {
		if !strings.Contains(md, def.Title) {
			t.Errorf("help is missing %q", def.Title)
		}
	}
}

func TestNavigatorBeforeAttachIsDropped(t *testing.T) {
	n := NewNavigator()
	n.RedirectToLogin()

	r := &recorder{}
	n.Attach(r)
	n.RedirectToLogin()
	if got := len(r.take()); got != 1 {
		t.Errorf("sent = %d, want 1", got)
	}
}
