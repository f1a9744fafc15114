// orderdesk - terminal client for the OrderService gateway.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/cli"
	"github.com/jeranaias/orderdesk/internal/storage"
	"github.com/jeranaias/orderdesk/internal/ui/app"
	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// storeDebounce coalesces the burst of writes a single session change makes.
const storeDebounce = 150 * time.Millisecond

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()
	if cmd != cli.CmdTUI {
		os.Exit(cli.Run(cmd, args))
	}
	if err := runTUI(args); err != nil {
		cli.DisplayError(os.Stdout, os.Stderr, cmd.String(), err, false)
		os.Exit(cli.GetExitCode(err))
	}
}

// runTUI starts the terminal UI.
func runTUI(args cli.Args) error {
	if err := cli.RequiresTTY("the terminal UI"); err != nil {
		return err
	}

	cfg, err := cli.LoadConfig(args)
	if err != nil {
		return err
	}
	logger, err := cli.NewLogger(cfg, args)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	env, err := cli.NewEnv(cfg, cli.StdStreams(), logger)
	if err != nil {
		return err
	}
	defer env.Close()

	// A rejected token switches the running program to the login view.
	nav := app.NewNavigator()
	env.Gateway.WithNavigator(nav)

	var events <-chan struct{}
	if cfg.Session.Watch {
		w, err := storage.NewWatcher(env.Store.Path(), storeDebounce)
		if err != nil {
			logger.Warn("credential store watch disabled", zap.Error(err))
		} else {
			defer w.Close()
			events = w.Events()
		}
	}

	m := app.New(app.Deps{
		Config:      cfg,
		Session:     env.Session,
		Store:       env.Store,
		Guard:       env.Guard,
		Gateway:     env.Gateway,
		Auth:        env.Auth,
		Theme:       styles.NewTheme(cfg.UI.Theme),
		Logger:      logger,
		StoreEvents: events,
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	nav.Attach(p)

	logger.Info("starting", zap.String("gateway", env.Gateway.BaseURL()), zap.String("version", Version))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running orderdesk: %w", err)
	}
	return nil
}
