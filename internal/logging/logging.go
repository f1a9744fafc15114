// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used across orderdesk.
//
// The terminal UI owns stdout, so logs go to a file under the config
// directory unless the configuration names stderr or stdout explicitly.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/util"
)

// New creates a structured logger from the log section of cfg.
func New(cfg *config.Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if err := level.Set(strings.ToLower(cfg.Log.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	dest, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	if dest != "stderr" && dest != "stdout" {
		if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: cfg.Log.Format,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:  "message",
			LevelKey:    "level",
			TimeKey:     "ts",
			NameKey:     "logger",
			EncodeLevel: zapcore.LowercaseLevelEncoder,
			EncodeTime:  zapcore.ISO8601TimeEncoder,
			EncodeName:  zapcore.FullNameEncoder,
		},
		OutputPaths:      []string{dest},
		ErrorOutputPaths: []string{dest},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Named("orderdesk"), nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}

// Token is a zap field that identifies a bearer token by fingerprint only.
func Token(token string) zap.Field {
	return zap.String("token_fp", util.Fingerprint(token))
}
