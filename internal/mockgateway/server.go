// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mockgateway

import (
	"errors"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/orderdesk/internal/gateway"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config controls a mock gateway instance.
type Config struct {
	// Secret signs bearer tokens. Empty generates a random one.
	Secret string
	// TokenTTL is how long an issued token stays valid.
	TokenTTL time.Duration
	// BcryptCost is the hashing cost; tests use bcrypt.MinCost.
	BcryptCost int
	// Seed adds the demo accounts and catalogue.
	Seed bool
}

// Demo accounts created when Config.Seed is true.
const (
	DemoAdminUser     = "admin"
	DemoAdminPassword = "Admin123"
	DemoUser          = "demo"
	DemoUserPassword  = "Demo123"
)

// Envelope error codes.
const (
	CodeOK                = 0
	CodeValidation        = 1001
	CodeUnauthorized      = 1002
	CodeForbidden         = 1003
	CodeNotFound          = 1004
	CodeConflict          = 1005
	CodeInsufficientStock = 2001
	CodeNotCancellable    = 2002
	CodeInternal          = 5000
)

// =============================================================================
// SERVER
// =============================================================================

// Server is a mock gateway.
type Server struct {
	app    *fiber.App
	db     *db
	tokens *TokenManager
	cost   int
	logger *zap.Logger
}

// New builds a server with routes registered.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Secret == "" {
		cfg.Secret = uuid.NewString()
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	s := &Server{
		db:     newDB(),
		tokens: NewTokenManager(cfg.Secret, cfg.TokenTTL),
		cost:   cfg.BcryptCost,
		logger: logger,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "orderdesk-mockgateway",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.app.Use(s.recoverAndLog)
	s.registerRoutes()

	if cfg.Seed {
		if err := s.seed(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// App exposes the fiber app (for app.Test and Listen).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// ListenTLS serves HTTPS on addr.
func (s *Server) ListenTLS(addr, certFile, keyFile string) error {
	return s.app.ListenTLS(addr, certFile, keyFile)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// RevokeAll invalidates every issued token by rotating the signing secret.
func (s *Server) RevokeAll() {
	s.tokens.Rotate(uuid.NewString())
	s.logger.Info("all tokens revoked")
}

// AddUser registers an account directly, bypassing signup validation.
func (s *Server) AddUser(username, email, password string, isAdmin bool) (gateway.User, error) {
	hash, err := hashPassword(password, s.cost)
	if err != nil {
		return gateway.User{}, err
	}
	a, err := s.db.addUser(username, email, hash, isAdmin)
	if err != nil {
		return gateway.User{}, err
	}
	return a.User, nil
}

// AddItem adds an inventory item directly.
func (s *Server) AddItem(item gateway.InventoryItem) gateway.InventoryItem {
	return s.db.putItem(item)
}

func (s *Server) seed() error {
	if _, err := s.AddUser(DemoAdminUser, "admin@orderdesk.local", DemoAdminPassword, true); err != nil {
		return err
	}
	if _, err := s.AddUser(DemoUser, "demo@orderdesk.local", DemoUserPassword, false); err != nil {
		return err
	}
	for _, it := range seedInventory {
		s.db.putItem(it)
	}
	return nil
}

func (s *Server) registerRoutes() {
	gw := s.app.Group("/gateway")

	authGroup := gw.Group("/auth")
	authGroup.Post("/login", s.login)
	authGroup.Post("/signup", s.signup)
	authGroup.Get("/me", s.authenticate, s.me)
	authGroup.Get("/users", s.authenticate, s.requireAdmin, s.users)

	inv := gw.Group("/inventory", s.authenticate)
	inv.Get("/", s.listInventory)
	inv.Post("/", s.requireAdmin, s.createInventory)
	inv.Get("/:id", s.getInventory)
	inv.Put("/:id", s.requireAdmin, s.updateInventory)
	inv.Delete("/:id", s.requireAdmin, s.deleteInventory)

	orders := gw.Group("/orders", s.authenticate)
	orders.Get("/", s.requireAdmin, s.listOrders)
	orders.Post("/", s.createOrder)
	orders.Get("/my-orders", s.myOrders)
	orders.Get("/:id", s.getOrder)
	orders.Put("/:id", s.requireAdmin, s.updateOrder)
	orders.Delete("/:id", s.requireAdmin, s.deleteOrder)
	orders.Patch("/:id/cancel", s.cancelOrder)
}

// =============================================================================
// ENVELOPE AND ERRORS
// =============================================================================

// apiError is turned into an envelope by handleError.
type apiError struct {
	status  int
	code    int
	message string
}

func (e *apiError) Error() string { return e.message }

func fail(status, code int, message string) error {
	return &apiError{status: status, code: code, message: message}
}

func ok(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(fiber.Map{"data": data, "message": message, "errorCode": CodeOK})
}

// domainFailure is a business-rule rejection: HTTP 200 with errorCode set.
func domainFailure(c *fiber.Ctx, code int, message string) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{"data": nil, "message": message, "errorCode": code})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	status, code, message := http.StatusInternalServerError, CodeInternal, "internal server error"

	var ae *apiError
	var fe *fiber.Error
	switch {
	case errors.As(err, &ae):
		status, code, message = ae.status, ae.code, ae.message
	case errors.As(err, &fe):
		status, message = fe.Code, fe.Message
		code = status
	}
	if status >= 500 {
		s.logger.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"data": nil, "message": message, "errorCode": code})
}

func (s *Server) recoverAndLog(c *fiber.Ctx) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			err = fail(http.StatusInternalServerError, CodeInternal, "internal server error")
		}
		s.logger.Debug("request",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("request_id", c.Get("X-Request-ID")),
			zap.Duration("duration", time.Since(start)))
	}()
	return c.Next()
}

// =============================================================================
// AUTH MIDDLEWARE
// =============================================================================

const principalKey = "principal"

func (s *Server) authenticate(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return fail(http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return fail(http.StatusUnauthorized, CodeUnauthorized, "Invalid authorization header")
	}
	claims, err := s.tokens.Parse(parts[1])
	if err != nil {
		return fail(http.StatusUnauthorized, CodeUnauthorized, "Invalid or expired token")
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return fail(http.StatusUnauthorized, CodeUnauthorized, "Invalid token subject")
	}
	u, found := s.db.user(id)
	if !found {
		return fail(http.StatusUnauthorized, CodeUnauthorized, "User no longer exists")
	}
	c.Locals(principalKey, u)
	return c.Next()
}

func principal(c *fiber.Ctx) *account {
	u, _ := c.Locals(principalKey).(*account)
	return u
}

func (s *Server) requireAdmin(c *fiber.Ctx) error {
	if u := principal(c); u == nil || !u.IsAdmin {
		return fail(http.StatusForbidden, CodeForbidden, "Admin access required")
	}
	return c.Next()
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, fail(http.StatusBadRequest, CodeValidation, "Invalid id")
	}
	return id, nil
}
