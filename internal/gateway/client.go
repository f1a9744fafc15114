// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/logging"
)

// PathPrefix is prepended to every endpoint.
const PathPrefix = "/gateway"

// =============================================================================
// COLLABORATORS
// =============================================================================

// Session is what the client needs from the session manager: the token to
// attach and the one transition it may trigger. *session.Manager satisfies it.
type Session interface {
	Token() string
	Clear() (bool, error)
}

// Navigator forces the UI back to the login view after a rejected token.
type Navigator interface {
	RedirectToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

// RedirectToLogin calls f.
func (f NavigatorFunc) RedirectToLogin() { f() }

type nopNavigator struct{}

func (nopNavigator) RedirectToLogin() {}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the API gateway.
type Client struct {
	baseURL   string
	userAgent string
	maxBody   int64

	httpClient *http.Client
	limiter    *rate.Limiter

	session   Session
	navigator Navigator
	logger    *zap.Logger
}

// New builds a client from the gateway configuration. navigator may be nil
// (CLI mode prints instead of navigating) and logger may be nil.
func New(cfg config.GatewayConfig, sess Session, navigator Navigator, logger *zap.Logger) *Client {
	if navigator == nil {
		navigator = nopNavigator{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	maxBody := cfg.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = config.DefaultMaxResponseBytes
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSecs * time.Second
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		maxBody:   maxBody,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					MinVersion:         tls.VersionTLS12,
					InsecureSkipVerify: cfg.InsecureSkipVerify, // local gateways use self-signed certs
				},
			},
			Timeout: timeout,
		},
		session:   sess,
		navigator: navigator,
		logger:    logger.Named("gateway"),
	}
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}
	return c
}

// WithHTTPClient replaces the underlying HTTP client (tests use the one from
// httptest.NewTLSServer).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithNavigator replaces the navigator.
func (c *Client) WithNavigator(n Navigator) *Client {
	if n == nil {
		n = nopNavigator{}
	}
	c.navigator = n
	return c
}

// BaseURL returns the gateway base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// REQUEST PIPELINE
// =============================================================================

// do performs one request and decodes the envelope's data into out.
// out may be nil when the caller only cares about success.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := c.baseURL + PathPrefix + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token := ""
	if c.session != nil {
		token = c.session.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	// SECURITY: keep the token out of anything that might dump the request later
	req.Header.Del("Authorization")
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, readErr := c.readBody(resp)

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", reqID),
		zap.Bool("authenticated", token != ""))

	if resp.StatusCode == http.StatusUnauthorized {
		c.rejectSession(path)
		return c.apiError(resp.StatusCode, raw)
	}
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(resp.StatusCode, raw)
	}
	return decodeEnvelope(resp.StatusCode, raw, out)
}

// rejectSession applies the global 401 policy: clear the session and, when
// that ended one, navigate to login. Only the caller that ended the session
// navigates, so a burst of 401s produces one redirect.
func (c *Client) rejectSession(path string) {
	if c.session == nil {
		return
	}
	ended, err := c.session.Clear()
	if err != nil {
		c.logger.Error("failed to clear rejected session", zap.Error(err))
		return
	}
	if ended {
		c.logger.Info("token rejected, session cleared", zap.String("path", path))
		c.navigator.RedirectToLogin()
	}
}

func (c *Client) readBody(resp *http.Response) ([]byte, error) {
	// SECURITY: bound the read, a hostile or broken server cannot exhaust memory
	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrNetwork, err)
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("%w (%d bytes)", ErrResponseTooLarge, c.maxBody)
	}
	return raw, nil
}

// apiError builds the verbatim error for a non-2xx response. The envelope
// message is lifted out when the body has one.
func (c *Client) apiError(status int, raw []byte) error {
	apiErr := &APIError{Status: status, Body: raw}
	var env Envelope
	if len(raw) > 0 && json.Unmarshal(raw, &env) == nil {
		apiErr.Message = env.Message
		apiErr.ErrorCode = env.ErrorCode
	} else if len(raw) > 0 {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

func decodeEnvelope(status int, raw []byte, out interface{}) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if env.ErrorCode != 0 {
		return &DomainError{Status: status, ErrorCode: env.ErrorCode, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

// IsNetwork reports whether err means no response was received.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
