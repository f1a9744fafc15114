// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// env.go - Wiring shared by the CLI commands and the terminal UI.

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/auth"
	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/logging"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/session"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// Streams are the process's standard streams, replaceable in tests.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns os.Stdin, os.Stdout and os.Stderr.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Env holds the collaborators every command needs. One session manager is
// shared by the guard, the gateway client and the auth service.
type Env struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *storage.Store
	Session *session.Manager
	Guard   *router.Guard
	Gateway *gateway.Client
	Auth    *auth.Service

	Streams
	JSON bool

	// Interactive reports whether prompts may be shown.
	Interactive bool

	reader *bufio.Reader
}

// LoadConfig loads the configuration named by args (or the default one) and
// applies the --gateway override.
func LoadConfig(args Args) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if args.Gateway != "" {
		cfg.Gateway.BaseURL = args.Gateway
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid --gateway: %w", err)
		}
	}
	return cfg, nil
}

// NewLogger builds the process logger. --verbose sends debug output to
// stderr instead of the log file.
func NewLogger(cfg *config.Config, args Args) (*zap.Logger, error) {
	if args.Verbose {
		c := cfg.Clone()
		c.Log.Level = "debug"
		c.Log.File = "stderr"
		c.Log.Format = "console"
		return logging.New(c)
	}
	return logging.New(cfg)
}

// NewEnv opens the credential store and wires the session manager, guard,
// gateway client and auth service. Forced logouts print a notice once.
func NewEnv(cfg *config.Config, streams Streams, logger *zap.Logger) (*Env, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	dir, err := cfg.SessionDir()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(cfg.Session.Backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	mgr := session.NewManager(store, logger)
	if err := mgr.Init(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	opts := []router.Option{router.WithLogger(logger.Named("guard"))}
	if landing, err := router.Parse(cfg.UI.LandingView); err == nil {
		opts = append(opts, router.WithLanding(landing))
	}

	gw := gateway.New(cfg.Gateway, mgr, &expiredNotice{w: streams.Err}, logger)
	return &Env{
		Config:      cfg,
		Logger:      logger,
		Store:       store,
		Session:     mgr,
		Guard:       router.NewGuard(mgr, opts...),
		Gateway:     gw,
		Auth:        auth.NewService(gw, mgr, logger),
		Streams:     streams,
		Interactive: streams.In == os.Stdin && IsTTY(),
	}, nil
}

// Close releases the credential store.
func (e *Env) Close() error {
	return e.Store.Close()
}

// Context bounds one command's gateway calls by the configured timeout,
// plus slack for the rate limiter.
func (e *Env) Context() (context.Context, context.CancelFunc) {
	timeout := time.Duration(e.Config.Gateway.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultTimeoutSecs * time.Second
	}
	return context.WithTimeout(context.Background(), 2*timeout)
}

// =============================================================================
// GUARD
// =============================================================================

// Require runs the route guard for the view a command belongs to. Nothing
// is sent to the gateway when it fails.
func (e *Env) Require(route router.Route, action string) error {
	res, err := e.Guard.Check(route)
	if err != nil {
		return err
	}
	switch res.Decision {
	case router.DeniedUnauth:
		return ErrNotSignedIn
	case router.DeniedForbidden:
		p, _ := e.Session.CurrentProfile()
		return &PermissionError{Action: action, Username: p.Username, Role: session.RoleAdmin.String()}
	}
	return nil
}

// expiredNotice is the CLI's navigator: there is no view to switch to, so a
// rejected session is reported once on stderr.
type expiredNotice struct {
	once sync.Once
	w    io.Writer
}

func (n *expiredNotice) RedirectToLogin() {
	n.once.Do(func() {
		fmt.Fprintln(n.w, WarningStyle.Render("session expired, run `orderdesk login`"))
	})
}

// =============================================================================
// OUTPUT
// =============================================================================

// emit prints data as a JSON envelope, or calls human.
func (e *Env) emit(command string, data interface{}, human func()) error {
	if e.JSON {
		return NewJSONResponse(command, data).Print(e.Out)
	}
	human()
	return nil
}

// notice prints a human-readable status line. In JSON mode it goes to
// stderr so stdout stays parseable.
func (e *Env) notice(format string, a ...interface{}) {
	w := e.Out
	if e.JSON {
		w = e.Err
	}
	fmt.Fprintf(w, format+"\n", a...)
}
