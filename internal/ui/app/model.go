// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/auth"
	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/forms"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/session"
	"github.com/jeranaias/orderdesk/internal/storage"
	"github.com/jeranaias/orderdesk/internal/ui/components"
	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// =============================================================================
// MODEL
// =============================================================================

// Deps are the collaborators the TUI runs on. All are required except
// Logger and StoreEvents.
type Deps struct {
	Config  *config.Config
	Session *session.Manager
	Store   *storage.Store
	Guard   *router.Guard
	Gateway *gateway.Client
	Auth    *auth.Service
	Theme   *styles.Theme
	Logger  *zap.Logger
	// StoreEvents delivers credential store changes, normally
	// storage.Watcher.Events().
	StoreEvents <-chan struct{}
}

// Model is the root TUI model.
type Model struct {
	deps Deps
	keys KeyMap

	route    router.Route
	seq      uint64
	profile  session.Profile
	signedIn bool

	width  int
	height int

	header       *components.Header
	status       *components.StatusBar
	toasts       *components.ToastManager
	toastTicking bool
	spinner      components.Spinner

	loginForm  *components.Form
	signupForm *components.Form

	products      []gateway.InventoryItem
	productsTable table.Model
	cart          []storage.CartItem

	orders      []gateway.Order
	ordersTable table.Model

	users            []gateway.User
	usersTable       table.Model
	adminOrders      []gateway.Order
	adminOrdersTable table.Model
	adminPane        int

	help viewport.Model

	quitting bool
}

// New creates the root model. Nothing is shown until Init navigates.
func New(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.Named("tui")
	theme := deps.Theme

	m := Model{
		deps:    deps,
		keys:    DefaultKeyMap(),
		width:   80,
		height:  24,
		header:  components.NewHeader(theme),
		status:  components.NewStatusBar(theme),
		toasts:  components.NewToastManager(),
		spinner: components.NewSpinner(theme),
		loginForm: components.NewForm(theme, string(router.RouteLogin), "Sign in",
			components.FieldSpec{Name: "username", Label: "Username", Placeholder: "your username", CharLimit: 64},
			components.FieldSpec{Name: "password", Label: "Password", Secret: true, CharLimit: 128},
		),
		signupForm: components.NewForm(theme, string(router.RouteSignup), "Create account",
			components.FieldSpec{Name: "username", Label: "Username", Placeholder: "3 to 20 characters", CharLimit: 64},
			components.FieldSpec{Name: "email", Label: "Email", Placeholder: "you@example.com", CharLimit: 254},
			components.FieldSpec{Name: "password", Label: "Password", Secret: true, CharLimit: 128},
			components.FieldSpec{Name: "confirmPassword", Label: "Confirm password", Secret: true, CharLimit: 128},
		),
		productsTable:    newTable(productColumns(80)),
		ordersTable:      newTable(orderColumns(80, false)),
		usersTable:       newTable(userColumns(80)),
		adminOrdersTable: newTable(orderColumns(80, true)),
		help:             viewport.New(80, 20),
	}
	m.status.Gateway = deps.Gateway.BaseURL()
	m.adminOrdersTable.Blur()
	return m
}

// Route returns the current view.
func (m Model) Route() router.Route {
	return m.route
}

// Seq returns the navigation sequence number.
func (m Model) Seq() uint64 {
	return m.seq
}

// Toasts returns the visible toasts.
func (m Model) Toasts() []components.Toast {
	return m.toasts.Toasts()
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init navigates to the landing view; the guard turns that into the sign-in
// view when there is no session.
func (m Model) Init() tea.Cmd {
	start := m.deps.Guard.Landing()
	if m.deps.Config != nil && m.deps.Config.UI.ShowHelpOnStart {
		start = router.RouteHelp
	}
	cmds := []tea.Cmd{func() tea.Msg { return NavigateMsg{Route: start} }}
	if m.deps.StoreEvents != nil {
		cmds = append(cmds, waitForStoreChange(m.deps.StoreEvents))
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)

	case NavigateMsg:
		return m.navigate(msg.Route)
	case ForceLogoutMsg:
		return m.handleForceLogout()
	case SessionChangedMsg:
		return m.handleSessionChanged()

	case components.FormSubmitMsg:
		return m.handleSubmit(msg)
	case loginResultMsg:
		return m.handleLoginResult(msg)
	case signupResultMsg:
		return m.handleSignupResult(msg)
	case productsMsg:
		return m.handleProducts(msg)
	case cartMsg:
		return m.handleCart(msg)
	case ordersMsg:
		return m.handleOrders(msg)
	case usersMsg:
		return m.handleUsers(msg)
	case adminOrdersMsg:
		return m.handleAdminOrders(msg)
	case orderPlacedMsg:
		return m.handleOrderPlaced(msg)
	case orderChangedMsg:
		return m.handleOrderChanged(msg)
	case verifyMsg:
		return m.handleVerify(msg)

	case components.ToastTickMsg:
		if m.toasts.Tick(msg.Time) {
			return m, components.ToastTickCmd()
		}
		m.toastTicking = false
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Cursor blink and other input internals.
	switch m.route {
	case router.RouteLogin:
		return m, m.loginForm.Update(msg)
	case router.RouteSignup:
		return m, m.signupForm.Update(msg)
	}
	return m, nil
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width, m.height = msg.Width, msg.Height
	m.deps.Theme.SetSize(msg.Width, msg.Height)
	m.header.SetWidth(msg.Width)
	m.status.SetWidth(msg.Width)
	m.loginForm.SetWidth(msg.Width - 4)
	m.signupForm.SetWidth(msg.Width - 4)

	bodyHeight := m.bodyHeight()
	m.productsTable.SetColumns(productColumns(msg.Width))
	m.productsTable.SetHeight(max(bodyHeight-8, 3))
	m.ordersTable.SetColumns(orderColumns(msg.Width, false))
	m.ordersTable.SetHeight(max(bodyHeight-4, 3))
	m.usersTable.SetColumns(userColumns(msg.Width))
	m.usersTable.SetHeight(max(bodyHeight/2-3, 3))
	m.adminOrdersTable.SetColumns(orderColumns(msg.Width, true))
	m.adminOrdersTable.SetHeight(max(bodyHeight/2-3, 3))

	m.help.Width = msg.Width
	m.help.Height = bodyHeight
	if m.route == router.RouteHelp {
		m.renderHelpContent()
	}
	return m, nil
}

// bodyHeight is the space between header and status bar.
func (m Model) bodyHeight() int {
	return max(m.height-3, 5)
}

// =============================================================================
// NAVIGATION
// =============================================================================

// navigate asks the guard about r and enters whatever view it admits.
func (m Model) navigate(r router.Route) (tea.Model, tea.Cmd) {
	res, err := m.deps.Guard.Resolve(r)
	if err != nil {
		cmd := m.notify(components.ToastError, err.Error())
		return m, cmd
	}
	target := res.Target()
	m.deps.Logger.Debug("navigate",
		zap.String("requested", string(r)),
		zap.Stringer("decision", res.Decision),
		zap.String("target", string(target)))

	m.route = target
	m.seq++
	m.spinner.Stop()
	m.refreshIdentity()
	m.syncChrome()
	cmd := m.enter(target)
	return m, cmd
}

// enter starts whatever the view needs. Only admitted views get here.
func (m *Model) enter(r router.Route) tea.Cmd {
	switch r {
	case router.RouteLogin:
		m.loginForm.Reset()
		return m.loginForm.Focus()
	case router.RouteSignup:
		m.signupForm.Reset()
		return m.signupForm.Focus()
	case router.RouteUser:
		return m.loadCartCmd()
	case router.RouteProducts:
		return tea.Batch(m.spinner.Start("Loading products"), m.loadProductsCmd(), m.loadCartCmd())
	case router.RouteOrders:
		return tea.Batch(m.spinner.Start("Loading orders"), m.loadMyOrdersCmd())
	case router.RouteAdmin:
		m.adminPane = 0
		m.usersTable.Focus()
		m.adminOrdersTable.Blur()
		return tea.Batch(m.spinner.Start("Loading users and orders"), m.loadUsersCmd(), m.loadAllOrdersCmd())
	case router.RouteHelp:
		m.renderHelpContent()
	}
	return nil
}

func (m *Model) renderHelpContent() {
	out, err := RenderHelp(m.deps.Theme, m.width)
	if err != nil {
		m.deps.Logger.Warn("help rendering failed", zap.Error(err))
		out = HelpMarkdown()
	}
	m.help.SetContent(out)
	m.help.GotoTop()
}

// refreshIdentity re-reads the session for display.
func (m *Model) refreshIdentity() {
	m.signedIn = m.deps.Session.IsAuthenticated()
	m.profile, _ = m.deps.Session.CurrentProfile()
	if !m.signedIn {
		m.cart = nil
		m.status.SetCart(0, 0)
	}
}

// syncChrome updates the header tabs and status bar hints.
func (m *Model) syncChrome() {
	if m.signedIn {
		m.header.SetUser(m.profile.Username, m.profile.IsAdmin())
	} else {
		m.header.SetUser("", false)
	}

	var tabs []components.Tab
	for _, def := range router.Navigable() {
		res, err := m.deps.Guard.Check(def.Route)
		tabs = append(tabs, components.Tab{
			Key:    def.Key,
			Title:  def.Title,
			Active: def.Route == m.route,
			Locked: err != nil || !res.Allowed(),
		})
	}
	m.header.Tabs = tabs
	m.status.Shortcuts = m.shortcuts()
}

func (m Model) shortcuts() []components.Shortcut {
	hint := func(b key.Binding) components.Shortcut {
		return components.Shortcut{Key: b.Help().Key, Desc: b.Help().Desc}
	}
	k := m.keys
	switch m.route {
	case router.RouteLogin:
		return []components.Shortcut{hint(k.Signup), {Key: "f1", Desc: "help"}, {Key: "ctrl+c", Desc: "quit"}}
	case router.RouteSignup:
		return []components.Shortcut{{Key: "esc", Desc: "sign in"}, {Key: "ctrl+c", Desc: "quit"}}
	case router.RouteProducts:
		return []components.Shortcut{hint(k.AddToCart), hint(k.PlaceOrder), hint(k.ClearCart), hint(k.Help)}
	case router.RouteOrders:
		return []components.Shortcut{hint(k.Cancel), hint(k.Refresh), hint(k.Help)}
	case router.RouteAdmin:
		return []components.Shortcut{hint(k.SwitchPane), hint(k.Advance), hint(k.Cancel), hint(k.Help)}
	}
	return []components.Shortcut{hint(k.Logout), hint(k.Help), hint(k.Quit)}
}

// =============================================================================
// SESSION EVENTS
// =============================================================================

// handleForceLogout runs after the gateway client cleared a rejected
// session. Navigation happens only if the sign-in view is not already up.
func (m Model) handleForceLogout() (tea.Model, tea.Cmd) {
	m.deps.Logger.Info("session rejected by gateway")
	return m.sessionRejected()
}

// sessionRejected sends a signed-out user back to sign-in with one warning.
// The forced-logout message and the 401 result that caused it both land
// here, so whichever arrives second finds the login view and does nothing.
// A 401 seen after the session was already cleared elsewhere still redirects.
func (m Model) sessionRejected() (tea.Model, tea.Cmd) {
	m.refreshIdentity()
	if m.route == router.RouteLogin || m.deps.Session.IsAuthenticated() {
		m.syncChrome()
		return m, nil
	}
	note := m.notify(components.ToastWarning, "Your session has expired. Please sign in again.")
	next, cmd := m.navigate(router.RouteLogin)
	return next, tea.Batch(note, cmd)
}

// handleSessionChanged re-runs the guard for the current view after the
// store changed underneath us.
func (m Model) handleSessionChanged() (tea.Model, tea.Cmd) {
	wait := waitForStoreChange(m.deps.StoreEvents)
	wasSignedIn := m.signedIn
	m.refreshIdentity()

	if !wasSignedIn && m.signedIn && m.route == router.RouteLogin {
		next, cmd := m.navigate(m.deps.Guard.Landing())
		return next, tea.Batch(wait, cmd)
	}

	res, err := m.deps.Guard.Check(m.route)
	if err == nil && !res.Allowed() {
		var note tea.Cmd
		if wasSignedIn && !m.signedIn {
			note = m.notify(components.ToastStatus, "Signed out in another window.")
		}
		next, cmd := m.navigate(res.Target())
		return next, tea.Batch(wait, note, cmd)
	}
	m.syncChrome()
	if m.signedIn {
		return m, tea.Batch(wait, m.loadCartCmd())
	}
	return m, wait
}

// =============================================================================
// NOTIFICATIONS AND ERRORS
// =============================================================================

// notify shows a toast and makes sure expiry is ticking.
func (m *Model) notify(kind components.ToastKind, message string) tea.Cmd {
	m.toasts.Add(components.NewToast(kind, message))
	if m.toastTicking {
		return nil
	}
	m.toastTicking = true
	return components.ToastTickCmd()
}

// failure reports a gateway error. A 401 is not toasted; it redirects unless
// the forced logout already did.
func (m *Model) failure(err error) tea.Cmd {
	m.spinner.Stop()
	if errors.Is(err, gateway.ErrUnauthorized) {
		next, cmd := m.sessionRejected()
		*m = next.(Model)
		return cmd
	}
	if gateway.IsNetwork(err) {
		m.status.Status = components.StatusOffline
	}
	m.deps.Logger.Info("request failed", zap.String("route", string(m.route)), zap.Error(err))
	return m.notify(components.ToastError, gateway.UserMessage(err))
}

// succeeded marks the gateway reachable again.
func (m *Model) succeeded() {
	m.spinner.Stop()
	m.status.Status = components.StatusReady
}

func (m Model) stale(seq uint64) bool {
	return seq != m.seq
}

// =============================================================================
// FORMS
// =============================================================================

func (m Model) handleSubmit(msg components.FormSubmitMsg) (tea.Model, tea.Cmd) {
	switch router.Route(msg.ID) {
	case router.RouteLogin:
		if m.route != router.RouteLogin {
			return m, nil
		}
		f := forms.Login{Username: msg.Values["username"], Password: msg.Values["password"]}
		if err := f.Normalize().Validate(); err != nil {
			m.loginForm.SetErrors(forms.Fields(err))
			return m, nil
		}
		m.loginForm.SetErrors(nil)
		m.loginForm.SetDisabled(true)
		cmd := tea.Batch(m.spinner.Start("Signing in"), m.loginCmd(f))
		return m, cmd

	case router.RouteSignup:
		if m.route != router.RouteSignup {
			return m, nil
		}
		f := forms.Signup{
			Username:        msg.Values["username"],
			Email:           msg.Values["email"],
			Password:        msg.Values["password"],
			ConfirmPassword: msg.Values["confirmPassword"],
		}
		if err := f.Normalize().Validate(); err != nil {
			m.signupForm.SetErrors(forms.Fields(err))
			return m, nil
		}
		m.signupForm.SetErrors(nil)
		m.signupForm.SetDisabled(true)
		cmd := tea.Batch(m.spinner.Start("Creating account"), m.signupCmd(f))
		return m, cmd
	}
	return m, nil
}

func (m Model) handleLoginResult(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		// The session may have been committed anyway; keep the header honest
		// and leave the public forms the user moved to.
		if msg.err == nil && (m.route == router.RouteLogin || m.route == router.RouteSignup) {
			m.loginForm.SetDisabled(false)
			return m.navigate(m.deps.Guard.Landing())
		}
		m.refreshIdentity()
		m.syncChrome()
		return m, nil
	}
	m.spinner.Stop()
	m.loginForm.SetDisabled(false)

	if msg.err != nil {
		var inErr *auth.InputError
		if errors.As(msg.err, &inErr) {
			m.loginForm.SetErrors(inErr.Fields)
			return m, nil
		}
		if gateway.IsNetwork(msg.err) {
			m.status.Status = components.StatusOffline
		}
		m.loginForm.SetFormError(auth.FailureMessage(msg.err))
		return m, nil
	}

	m.status.Status = components.StatusReady
	note := m.notify(components.ToastSuccess, "Welcome, "+msg.profile.Username)
	next, cmd := m.navigate(m.deps.Guard.Landing())
	return next, tea.Batch(note, cmd)
}

func (m Model) handleSignupResult(msg signupResultMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	m.spinner.Stop()
	m.signupForm.SetDisabled(false)

	if msg.err != nil {
		var inErr *auth.InputError
		if errors.As(msg.err, &inErr) {
			m.signupForm.SetErrors(inErr.Fields)
			return m, nil
		}
		m.signupForm.SetFormError(gateway.Message(msg.err, gateway.UserMessage(msg.err)))
		return m, nil
	}

	note := m.notify(components.ToastSuccess, "Account created. Please sign in.")
	next, cmd := m.navigate(router.RouteLogin)
	var focus tea.Cmd
	if msg.user != nil {
		m.loginForm.SetValue("username", msg.user.Username)
		focus = m.loginForm.FocusField("password")
	}
	return next, tea.Batch(note, cmd, focus)
}

// =============================================================================
// DATA RESULTS
// =============================================================================

func (m Model) handleProducts(msg productsMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.failure(msg.err)
		return m, cmd
	}
	m.succeeded()
	m.products = msg.items
	m.productsTable.SetRows(productRows(msg.items, m.width))
	if m.productsTable.Cursor() >= len(msg.items) {
		m.productsTable.SetCursor(0)
	}
	return m, nil
}

func (m Model) handleCart(msg cartMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.deps.Logger.Warn("cart update failed", zap.Error(msg.err))
		cmd := m.notify(components.ToastError, "Could not update the cart: "+msg.err.Error())
		return m, cmd
	}
	if !m.deps.Session.IsAuthenticated() {
		m.cart = nil
	} else {
		m.cart = msg.items
	}
	m.status.SetCart(len(m.cart), storage.CartTotal(m.cart))
	return m, nil
}

func (m Model) handleOrders(msg ordersMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.failure(msg.err)
		return m, cmd
	}
	m.succeeded()
	m.orders = msg.orders
	m.ordersTable.SetRows(orderRows(msg.orders, false))
	if m.ordersTable.Cursor() >= len(msg.orders) {
		m.ordersTable.SetCursor(0)
	}
	return m, nil
}

func (m Model) handleUsers(msg usersMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.failure(msg.err)
		return m, cmd
	}
	m.succeeded()
	m.users = msg.users
	m.usersTable.SetRows(userRows(msg.users))
	return m, nil
}

func (m Model) handleAdminOrders(msg adminOrdersMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.failure(msg.err)
		return m, cmd
	}
	m.succeeded()
	m.adminOrders = msg.orders
	m.adminOrdersTable.SetRows(orderRows(msg.orders, true))
	if m.adminOrdersTable.Cursor() >= len(msg.orders) {
		m.adminOrdersTable.SetCursor(0)
	}
	return m, nil
}

// handleOrderPlaced empties the cart even when the view has changed: the
// order exists on the gateway either way.
func (m Model) handleOrderPlaced(msg orderPlacedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.stale(msg.seq) {
			return m, nil
		}
		var domErr *gateway.DomainError
		if errors.As(msg.err, &domErr) {
			m.spinner.Stop()
			cmd := m.notify(components.ToastWarning, gateway.Message(msg.err, "The order was rejected"))
			return m, cmd
		}
		cmd := m.failure(msg.err)
		return m, cmd
	}

	note := m.notify(components.ToastSuccess, fmt.Sprintf("Order #%d placed", msg.order.ID))
	cmds := []tea.Cmd{note, m.clearCartCmd()}
	if !m.stale(msg.seq) {
		m.succeeded()
		if m.route == router.RouteProducts {
			cmds = append(cmds, m.loadProductsCmd())
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleOrderChanged(msg orderChangedMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		var domErr *gateway.DomainError
		if errors.As(msg.err, &domErr) {
			m.spinner.Stop()
			cmd := m.notify(components.ToastWarning, gateway.Message(msg.err, "The change was rejected"))
			return m, cmd
		}
		cmd := m.failure(msg.err)
		return m, cmd
	}
	m.succeeded()
	note := m.notify(components.ToastSuccess, fmt.Sprintf("Order #%d %s", msg.order.ID, msg.action))
	switch m.route {
	case router.RouteOrders:
		return m, tea.Batch(note, m.loadMyOrdersCmd())
	case router.RouteAdmin:
		return m, tea.Batch(note, m.loadAllOrdersCmd())
	}
	return m, note
}

func (m Model) handleVerify(msg verifyMsg) (tea.Model, tea.Cmd) {
	if m.stale(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.failure(msg.err)
		return m, cmd
	}
	m.succeeded()
	note := m.notify(components.ToastSuccess, "The gateway accepted your session.")
	// The role may have changed server-side; let the guard decide again.
	m.refreshIdentity()
	m.syncChrome()
	if res, err := m.deps.Guard.Check(m.route); err == nil && !res.Allowed() {
		next, cmd := m.navigate(res.Target())
		return next, tea.Batch(note, cmd)
	}
	return m, note
}
