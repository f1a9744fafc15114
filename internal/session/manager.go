// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/logging"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// ErrEmptyToken is returned by Commit for a blank token.
var ErrEmptyToken = errors.New("token is empty")

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager derives the authorization state from the credential store and owns
// its transitions. State is re-read from the store on every query, so a logout
// by another process is seen immediately.
type Manager struct {
	mu     sync.Mutex
	store  *storage.Store
	logger *zap.Logger
}

// NewManager creates a manager over store. A nil logger discards logs.
func NewManager(store *storage.Store, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	// The instance field correlates log lines from one process.
	return &Manager{
		store:  store,
		logger: logger.With(zap.String("instance", uuid.NewString())),
	}
}

// Init reads the persisted state at startup and repairs it when token and
// profile disagree: a token without a readable profile, or a profile without
// a token, is cleared.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds, err := m.store.Credentials()
	if err != nil {
		return fmt.Errorf("failed to read credential store: %w", err)
	}
	if creds.Token == "" && creds.User == "" {
		m.logger.Debug("no persisted session")
		return nil
	}

	_, perr := decodeProfile(creds.User)
	if creds.Token != "" && perr == nil {
		m.logger.Info("restored session", logging.Token(creds.Token))
		return nil
	}

	m.logger.Warn("discarding inconsistent persisted session",
		zap.Bool("has_token", creds.Token != ""),
		zap.NamedError("profile_error", perr))
	if err := m.store.ClearSession(); err != nil {
		return fmt.Errorf("failed to repair credential store: %w", err)
	}
	return nil
}

// Commit stores token and profile together after a successful login.
func (m *Manager) Commit(token string, p Profile) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := p.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	m.mu.Lock()
	err = m.store.SaveCredentials(storage.Credentials{Token: token, User: string(data)})
	m.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.logger.Info("session committed",
		zap.String("username", p.Username),
		zap.Stringer("role", p.Role),
		logging.Token(token))
	return nil
}

// Clear removes token, profile and cart. It reports whether a session existed
// before the call; concurrent callers see true at most once per session.
func (m *Manager) Clear() (bool, error) {
	m.mu.Lock()
	creds, rerr := m.store.Credentials()
	existed := rerr == nil && creds.Token != ""
	err := m.store.ClearSession()
	m.mu.Unlock()

	if err != nil {
		return false, fmt.Errorf("failed to clear session: %w", err)
	}
	if existed {
		m.logger.Info("session cleared", logging.Token(creds.Token))
	}
	return existed, nil
}

// IsAuthenticated reports whether a token is stored. A store that cannot be
// read counts as signed out.
func (m *Manager) IsAuthenticated() bool {
	creds, err := m.read()
	return err == nil && creds.Token != ""
}

// IsAdmin reports whether the visitor is signed in with RoleAdmin.
func (m *Manager) IsAdmin() bool {
	p, ok := m.CurrentProfile()
	return ok && p.IsAdmin()
}

// CurrentProfile returns the stored profile. ok is false when signed out or
// the stored profile is unreadable.
func (m *Manager) CurrentProfile() (Profile, bool) {
	creds, err := m.read()
	if err != nil || creds.Token == "" {
		return Profile{}, false
	}
	p, err := decodeProfile(creds.User)
	if err != nil {
		return Profile{}, false
	}
	return p, true
}

// Token returns the stored bearer token, or "" when signed out.
func (m *Manager) Token() string {
	creds, err := m.read()
	if err != nil {
		return ""
	}
	return creds.Token
}

func (m *Manager) read() (storage.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, err := m.store.Credentials()
	if err != nil {
		m.logger.Error("credential store unreadable", zap.Error(err))
	}
	return creds, err
}

func decodeProfile(raw string) (Profile, error) {
	if raw == "" {
		return Profile{}, ErrInvalidProfile
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}
