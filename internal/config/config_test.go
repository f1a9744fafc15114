// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	for _, k := range []string{
		"ORDERDESK_GATEWAY_URL", "ORDERDESK_TIMEOUT", "ORDERDESK_INSECURE",
		"ORDERDESK_SESSION_BACKEND", "ORDERDESK_LOG_LEVEL", "ORDERDESK_LOG_FILE", "ORDERDESK_THEME",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultGatewayURL, cfg.Gateway.BaseURL)
	assert.Equal(t, BackendFile, cfg.Session.Backend)
	assert.Equal(t, "user", cfg.UI.LandingView)
	require.NoError(t, cfg.Validate())
}

func TestConfig_LoadWithoutFiles(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultGatewayURL, cfg.Gateway.BaseURL)
}

func TestConfig_LoadTOMLPartial(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[gateway]\nbase_url = \"http://127.0.0.1:8080/\"\n\n[session]\nbackend = \"sqlite\"\n"), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.Gateway.BaseURL, "trailing slash trimmed")
	assert.Equal(t, BackendSQLite, cfg.Session.Backend)
	assert.Equal(t, DefaultTimeoutSecs, cfg.Gateway.TimeoutSecs, "missing keys filled")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfig_LoadJSONFallback(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"ui":{"theme":"light"}}`), 0600))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestConfig_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("ORDERDESK_GATEWAY_URL", "http://gw.internal:9000")
	t.Setenv("ORDERDESK_TIMEOUT", "5")
	t.Setenv("ORDERDESK_INSECURE", "yes")
	t.Setenv("ORDERDESK_LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://gw.internal:9000", cfg.Gateway.BaseURL)
	assert.Equal(t, 5, cfg.Gateway.TimeoutSecs)
	assert.True(t, cfg.Gateway.InsecureSkipVerify)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"relative url", func(c *Config) { c.Gateway.BaseURL = "/gateway" }, "gateway.base_url"},
		{"ftp url", func(c *Config) { c.Gateway.BaseURL = "ftp://x" }, "gateway.base_url"},
		{"timeout", func(c *Config) { c.Gateway.TimeoutSecs = 0 }, "gateway.timeout_secs"},
		{"backend", func(c *Config) { c.Session.Backend = "redis" }, "session.backend"},
		{"level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"landing", func(c *Config) { c.UI.LandingView = "admin" }, "ui.landing_view"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var verrs ValidateErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Set("gateway.base_url", "http://localhost:5001"))
	v, err := cfg.Get("gateway.base_url")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5001", v)

	require.NoError(t, cfg.Set("gateway.timeout_secs", "12"))
	assert.Equal(t, 12, cfg.Gateway.TimeoutSecs)

	require.NoError(t, cfg.Set("session.watch", "false"))
	assert.False(t, cfg.Session.Watch)

	require.NoError(t, cfg.Set("gateway.rate_limit_rps", "2.5"))
	assert.Equal(t, 2.5, cfg.Gateway.RateLimitRPS)

	_, err = cfg.Get("gateway.nope")
	assert.Error(t, err)
	_, err = cfg.Get("gateway")
	assert.Error(t, err, "sections are not values")
	assert.Error(t, cfg.Set("gateway.timeout_secs", "abc"))
}

func TestConfig_KeysResolve(t *testing.T) {
	cfg := Default()
	keys := Keys()
	assert.Contains(t, keys, "gateway.base_url")
	assert.Contains(t, keys, "ui.landing_view")
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg := Default()
	cfg.UI.Theme = "dark"
	require.NoError(t, Save(cfg))

	loaded, err := LoadFromPath(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "dark", loaded.UI.Theme)
}

func TestConfig_LoadFileIgnoresEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"mono\"\n"), 0600))
	t.Setenv("ORDERDESK_GATEWAY_URL", "http://gw.internal:9000")
	t.Setenv("ORDERDESK_THEME", "light")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mono", cfg.UI.Theme)
	assert.Equal(t, DefaultGatewayURL, cfg.Gateway.BaseURL)

	missing, err := LoadFile(filepath.Join(dir, "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), missing)
}
