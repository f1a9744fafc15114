// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/orderdesk/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultGatewayURL is where the OrderService API gateway listens in development.
	DefaultGatewayURL = "https://localhost:5000"

	// DefaultTimeoutSecs bounds a single gateway round trip.
	DefaultTimeoutSecs = 30

	// DefaultMaxResponseBytes caps how much of a response body is read.
	DefaultMaxResponseBytes = 10 * 1024 * 1024

	// BackendFile stores credentials in a single JSON document.
	BackendFile = "file"
	// BackendSQLite stores credentials in a key/value table.
	BackendSQLite = "sqlite"

	// EnvHome overrides the configuration directory.
	EnvHome = "ORDERDESK_HOME"
)

// =============================================================================
// CONFIG STRUCTURE
// =============================================================================

// Config is the complete orderdesk configuration.
type Config struct {
	Gateway GatewayConfig `toml:"gateway" json:"gateway"`
	Session SessionConfig `toml:"session" json:"session"`
	Log     LogConfig     `toml:"log" json:"log"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// GatewayConfig controls how the gateway client reaches the backend.
type GatewayConfig struct {
	// BaseURL is the scheme+host of the API gateway, without the /gateway prefix.
	BaseURL string `toml:"base_url" json:"base_url"`

	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`

	// InsecureSkipVerify accepts self-signed certificates (local dev gateways).
	InsecureSkipVerify bool `toml:"insecure_skip_verify" json:"insecure_skip_verify"`

	MaxResponseBytes int64 `toml:"max_response_bytes" json:"max_response_bytes"`

	// RateLimitRPS limits outgoing requests per second. Zero disables limiting.
	RateLimitRPS   float64 `toml:"rate_limit_rps" json:"rate_limit_rps"`
	RateLimitBurst int     `toml:"rate_limit_burst" json:"rate_limit_burst"`

	UserAgent string `toml:"user_agent" json:"user_agent"`
}

// SessionConfig selects the credential store.
type SessionConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" json:"backend"`

	// Dir holds the credential store. Empty means the config directory.
	Dir string `toml:"dir" json:"dir"`

	// Watch makes the TUI react when another orderdesk process logs out.
	Watch bool `toml:"watch" json:"watch"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string `toml:"level" json:"level"`

	// File is the log destination. "stderr" and "stdout" are accepted.
	// Empty means orderdesk.log in the config directory.
	File string `toml:"file" json:"file"`

	// Format is "json" or "console".
	Format string `toml:"format" json:"format"`
}

// UIConfig holds terminal UI preferences.
type UIConfig struct {
	// Theme is "auto", "dark", "light" or "mono".
	Theme string `toml:"theme" json:"theme"`

	// LandingView overrides the view shown after login for non-admin users.
	LandingView string `toml:"landing_view" json:"landing_view"`

	ShowHelpOnStart bool `toml:"show_help_on_start" json:"show_help_on_start"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			BaseURL:          DefaultGatewayURL,
			TimeoutSecs:      DefaultTimeoutSecs,
			MaxResponseBytes: DefaultMaxResponseBytes,
			RateLimitRPS:     0,
			RateLimitBurst:   5,
			UserAgent:        "orderdesk",
		},
		Session: SessionConfig{
			Backend: BackendFile,
			Watch:   true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		UI: UIConfig{
			Theme:       "auto",
			LandingView: "user",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the orderdesk configuration directory.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".orderdesk"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// SessionDir resolves where the credential store lives.
func (c *Config) SessionDir() (string, error) {
	if c.Session.Dir != "" {
		return c.Session.Dir, nil
	}
	return ConfigDir()
}

// LogPath resolves the log destination.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orderdesk.log"), nil
}

// ensureSecurePermissions tightens config files to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration from the config directory.
// TOML is tried first, then JSON, then defaults. Environment overrides are
// applied last and the result is validated.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(tomlPath); statErr == nil {
		return LoadFromPath(tomlPath)
	}

	jsonPath, err := ConfigPathJSON()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(jsonPath); statErr == nil {
		return LoadFromPath(jsonPath)
	}

	cfg := Default()
	return finish(cfg)
}

// LoadFromPath reads a specific config file. The format follows the extension.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := decodeFile(cfg, path); err != nil {
		return nil, err
	}
	return finish(cfg)
}

// LoadFile reads only what is saved at path, without environment overrides
// and without validation. A missing file yields the defaults. Edits that are
// written back start from here so overrides never end up on disk.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := decodeFile(cfg, path); err != nil {
		return nil, err
	}
	fillDefaults(cfg)
	return cfg, nil
}

func decodeFile(cfg *Config, path string) error {
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		return LoadJSON(cfg, path)
	}
	return LoadTOML(cfg, path)
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	fillDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// fillDefaults replaces zero values a partial config file leaves behind.
func fillDefaults(cfg *Config) {
	d := Default()
	if cfg.Gateway.BaseURL == "" {
		cfg.Gateway.BaseURL = d.Gateway.BaseURL
	}
	cfg.Gateway.BaseURL = strings.TrimRight(cfg.Gateway.BaseURL, "/")
	if cfg.Gateway.TimeoutSecs == 0 {
		cfg.Gateway.TimeoutSecs = d.Gateway.TimeoutSecs
	}
	if cfg.Gateway.MaxResponseBytes == 0 {
		cfg.Gateway.MaxResponseBytes = d.Gateway.MaxResponseBytes
	}
	if cfg.Gateway.RateLimitBurst == 0 {
		cfg.Gateway.RateLimitBurst = d.Gateway.RateLimitBurst
	}
	if cfg.Gateway.UserAgent == "" {
		cfg.Gateway.UserAgent = d.Gateway.UserAgent
	}
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = d.Session.Backend
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = d.UI.Theme
	}
	if cfg.UI.LandingView == "" {
		cfg.UI.LandingView = d.UI.LandingView
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes cfg to the default TOML path.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# orderdesk configuration\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode TOML: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0600)
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return util.AtomicWriteFile(path, data, 0600)
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors collects every invalid field.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

var validViews = map[string]bool{"user": true, "products": true, "orders": true}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var errs ValidateErrors

	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{"gateway.base_url", "must be an absolute http(s) URL"})
	}
	if c.Gateway.TimeoutSecs < 1 || c.Gateway.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{"gateway.timeout_secs", "must be between 1 and 600"})
	}
	if c.Gateway.MaxResponseBytes < 1024 {
		errs = append(errs, ValidationError{"gateway.max_response_bytes", "must be at least 1024"})
	}
	if c.Gateway.RateLimitRPS < 0 {
		errs = append(errs, ValidationError{"gateway.rate_limit_rps", "must not be negative"})
	}
	if c.Gateway.RateLimitBurst < 1 {
		errs = append(errs, ValidationError{"gateway.rate_limit_burst", "must be at least 1"})
	}
	switch c.Session.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, ValidationError{"session.backend", "must be 'file' or 'sqlite'"})
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ValidationError{"log.level", "must be debug, info, warn or error"})
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, ValidationError{"log.format", "must be 'json' or 'console'"})
	}
	switch c.UI.Theme {
	case "auto", "dark", "light", "mono":
	default:
		errs = append(errs, ValidationError{"ui.theme", "must be auto, dark, light or mono"})
	}
	if !validViews[c.UI.LandingView] {
		errs = append(errs, ValidationError{"ui.landing_view", "must be user, products or orders"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides loads .env from the working directory (if present) and
// then applies ORDERDESK_* variables. Variables already set in the process
// environment win over .env entries.
func (c *Config) ApplyEnvOverrides() {
	_ = godotenv.Load()

	if v := os.Getenv("ORDERDESK_GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("ORDERDESK_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Gateway.TimeoutSecs = n
		}
	}
	if v := os.Getenv("ORDERDESK_INSECURE"); v != "" {
		c.Gateway.InsecureSkipVerify = parseBool(v)
	}
	if v := os.Getenv("ORDERDESK_SESSION_BACKEND"); v != "" {
		c.Session.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("ORDERDESK_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("ORDERDESK_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("ORDERDESK_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a value by dot-notation key, e.g. "gateway.base_url".
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns a value by dot-notation key. String input is converted to the
// field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")
	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			if field.Kind() == reflect.Struct {
				return reflect.Value{}, fmt.Errorf("%s is a section, not a value", key)
			}
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a section", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName turns snake_case or kebab-case into a Go field name.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

func setFieldValue(field reflect.Value, value interface{}) error {
	if s, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(s)
			return nil
		case reflect.Int, reflect.Int64:
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(n)
			return nil
		case reflect.Float64:
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(f)
			return nil
		case reflect.Bool:
			field.SetBool(parseBool(s))
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return errors.New("nil value")
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// Keys lists every settable key in dot notation, sorted.
func Keys() []string {
	var keys []string
	t := reflect.TypeOf(Config{})
	for i := 0; i < t.NumField(); i++ {
		section := t.Field(i)
		prefix := section.Tag.Get("toml")
		for j := 0; j < section.Type.NumField(); j++ {
			keys = append(keys, prefix+"."+section.Type.Field(j).Tag.Get("toml"))
		}
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
