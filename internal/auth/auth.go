// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth runs the sign-in, sign-up and sign-out flows shared by the
// terminal UI and the CLI: validate the form, call the gateway, then let the
// session manager commit or clear.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/forms"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/logging"
	"github.com/jeranaias/orderdesk/internal/session"
)

// DefaultLoginFailure is shown when the gateway rejects a login without a message.
const DefaultLoginFailure = "Invalid username or password"

// InputError reports form validation failures. No request was sent.
type InputError struct {
	Fields forms.FieldErrors
}

func (e *InputError) Error() string {
	return "invalid input: " + strings.Join(e.Fields.Sorted(), "; ")
}

// Service wires the gateway client to the session manager.
type Service struct {
	gw     *gateway.Client
	mgr    *session.Manager
	logger *zap.Logger
}

// NewService creates the service. logger may be nil.
func NewService(gw *gateway.Client, mgr *session.Manager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{gw: gw, mgr: mgr, logger: logger.Named("auth")}
}

// ProfileFromUser converts the gateway's user into the stored profile.
func ProfileFromUser(u gateway.User) session.Profile {
	return session.Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     session.RoleFromAdminFlag(u.IsAdmin),
	}
}

// Login validates f, authenticates and commits the session.
func (s *Service) Login(ctx context.Context, f forms.Login) (session.Profile, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return session.Profile{}, &InputError{Fields: forms.Fields(err)}
	}

	res, err := s.gw.Login(ctx, f.Request())
	if err != nil {
		s.logger.Info("login failed", zap.String("username", f.Username), zap.Error(err))
		return session.Profile{}, err
	}

	p := ProfileFromUser(res.User)
	if err := s.mgr.Commit(res.Token, p); err != nil {
		return session.Profile{}, fmt.Errorf("failed to store session: %w", err)
	}
	return p, nil
}

// Signup validates f and registers the account. The visitor is not signed in.
func (s *Service) Signup(ctx context.Context, f forms.Signup) (*gateway.User, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, &InputError{Fields: forms.Fields(err)}
	}
	u, err := s.gw.Signup(ctx, f.Request())
	if err != nil {
		s.logger.Info("signup failed", zap.String("username", f.Username), zap.Error(err))
		return nil, err
	}
	s.logger.Info("account created", zap.String("username", f.Username))
	return u, nil
}

// Logout ends the session locally. The gateway has no logout endpoint.
func (s *Service) Logout() (bool, error) {
	return s.mgr.Clear()
}

// Refresh asks the gateway who the token belongs to and updates the stored
// profile, e.g. after an admin grant. A 401 clears the session through the
// gateway client's policy.
func (s *Service) Refresh(ctx context.Context) (session.Profile, error) {
	token := s.mgr.Token()
	if token == "" {
		return session.Profile{}, gateway.ErrUnauthorized
	}
	u, err := s.gw.Me(ctx)
	if err != nil {
		return session.Profile{}, err
	}
	p := ProfileFromUser(*u)
	// Skip the commit when a logout raced the request.
	if s.mgr.Token() != token {
		return p, gateway.ErrUnauthorized
	}
	if err := s.mgr.Commit(token, p); err != nil {
		return session.Profile{}, err
	}
	return p, nil
}

// FailureMessage renders a login or signup error for display.
func FailureMessage(err error) string {
	var inErr *InputError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &inErr):
		return "Please fix the errors in the form"
	case gateway.IsNetwork(err):
		return gateway.UserMessage(err)
	}
	return gateway.Message(err, DefaultLoginFailure)
}
