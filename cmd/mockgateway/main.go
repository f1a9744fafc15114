// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main runs a local stand-in for the order gateway so the orderdesk
// client can be exercised without the real backend.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/logging"
	"github.com/jeranaias/orderdesk/internal/mockgateway"
)

const version = "1.0.0"

type options struct {
	addr     string
	secret   string
	ttl      time.Duration
	certFile string
	keyFile  string
	seed     bool
	verbose  bool
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		printHelp()
		os.Exit(2)
	}

	cfg := config.Default()
	cfg.Log.File = "stderr"
	cfg.Log.Format = "console"
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	srv, err := mockgateway.New(mockgateway.Config{
		Secret:   opts.secret,
		TokenTTL: opts.ttl,
		Seed:     opts.seed,
	}, logger)
	if err != nil {
		logger.Fatal("failed to start mock gateway", zap.Error(err))
	}

	// SIGHUP revokes every token so the client's forced logout can be tried.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGHUP {
				srv.RevokeAll()
				continue
			}
			logger.Info("shutting down", zap.String("signal", sig.String()))
			_ = srv.Shutdown()
			return
		}
	}()

	logger.Info("mock gateway listening",
		zap.String("addr", opts.addr),
		zap.Bool("tls", opts.certFile != ""),
		zap.Bool("seeded", opts.seed))
	if opts.seed {
		logger.Info("demo accounts",
			zap.String("admin", mockgateway.DemoAdminUser+"/"+mockgateway.DemoAdminPassword),
			zap.String("user", mockgateway.DemoUser+"/"+mockgateway.DemoUserPassword))
	}

	if opts.certFile != "" {
		err = srv.ListenTLS(opts.addr, opts.certFile, opts.keyFile)
	} else {
		err = srv.Listen(opts.addr)
	}
	if err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func parseArgs(args []string) (options, error) {
	opts := options{addr: "127.0.0.1:5000", ttl: time.Hour, seed: true}

	value := func(i *int, name string) (string, error) {
		if *i+1 >= len(args) {
			return "", fmt.Errorf("%s requires a value", name)
		}
		*i++
		return args[*i], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		var err error
		switch arg {
		case "--addr", "-a":
			opts.addr, err = value(&i, arg)
		case "--secret":
			opts.secret, err = value(&i, arg)
		case "--ttl":
			var raw string
			if raw, err = value(&i, arg); err == nil {
				opts.ttl, err = time.ParseDuration(raw)
			}
		case "--tls-cert":
			opts.certFile, err = value(&i, arg)
		case "--tls-key":
			opts.keyFile, err = value(&i, arg)
		case "--no-seed":
			opts.seed = false
		case "--verbose", "-V":
			opts.verbose = true
		case "--help", "-h":
			printHelp()
			os.Exit(0)
		case "--version", "-v":
			fmt.Printf("orderdesk mockgateway v%s\n", version)
			os.Exit(0)
		default:
			return opts, fmt.Errorf("unknown argument %q", arg)
		}
		if err != nil {
			return opts, err
		}
	}

	if (opts.certFile == "") != (opts.keyFile == "") {
		return opts, fmt.Errorf("--tls-cert and --tls-key must be given together")
	}
	if strings.TrimSpace(opts.addr) == "" {
		return opts, fmt.Errorf("--addr cannot be empty")
	}
	return opts, nil
}

func printHelp() {
	fmt.Println(`orderdesk mockgateway v` + version + `

Usage: mockgateway [OPTIONS]

Options:
  --addr, -a ADDR     Listen address (default 127.0.0.1:5000)
  --secret SECRET     Token signing secret (default: random per run)
  --ttl DURATION      Token lifetime, e.g. 15m (default 1h)
  --tls-cert FILE     Serve HTTPS with this certificate
  --tls-key FILE      Private key for --tls-cert
  --no-seed           Start without demo accounts and inventory
  --verbose, -V       Log every request
  --help, -h          Show this help
  --version, -v       Show version

Send SIGHUP to revoke every issued token.`)
}
