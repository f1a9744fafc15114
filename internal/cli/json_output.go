// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - Machine-readable output for --json.
//
// Every command prints the same envelope so scripts can check "success"
// without knowing the command.

package cli

import (
	"encoding/json"
	"io"
	"time"

	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// JSONResponse is the standardized response format for all CLI commands.
type JSONResponse struct {
	// Success indicates whether the command completed successfully
	Success bool `json:"success"`

	// Data contains the command-specific response data
	Data interface{} `json:"data"`

	// Error contains the error message if Success is false, null otherwise
	Error *string `json:"error"`

	// ErrorType categorizes the error (auth_error, network_error, ...)
	ErrorType string `json:"error_type,omitempty"`

	// Timestamp is the RFC3339 time the response was generated
	Timestamp string `json:"timestamp"`

	// Command is the command that was executed
	Command string `json:"command,omitempty"`
}

// NewJSONResponse creates a new successful JSON response.
func NewJSONResponse(command string, data interface{}) *JSONResponse {
	return &JSONResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// NewJSONErrorResponse creates a new error JSON response.
func NewJSONErrorResponse(command string, err error) *JSONResponse {
	errStr := err.Error()
	return &JSONResponse{
		Success:   false,
		Error:     &errStr,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Command:   command,
	}
}

// Print writes the response as indented JSON.
// Human-readable messages go to stderr when JSON mode is enabled.
func (r *JSONResponse) Print(w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// =============================================================================
// COMMAND-SPECIFIC DATA STRUCTURES
// =============================================================================

// VersionData represents the data returned by the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// WhoamiData is returned by whoami and login.
type WhoamiData struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
	Gateway  string `json:"gateway"`
	// Verified is set by whoami --remote once the gateway accepted the token.
	Verified bool `json:"verified"`
}

// LogoutData is returned by logout.
type LogoutData struct {
	// Ended is false when there was no session to end.
	Ended bool `json:"ended"`
}

// CartData is returned by the cart command.
type CartData struct {
	Items []storage.CartItem `json:"items"`
	Total float64            `json:"total"`
}

// ProductsData is returned by products list.
type ProductsData struct {
	Items []gateway.InventoryItem `json:"items"`
}

// OrdersData is returned by orders mine and orders all.
type OrdersData struct {
	Orders []gateway.Order `json:"orders"`
}

// ConfigData is returned by config show.
type ConfigData struct {
	Path     string                 `json:"config_path"`
	Settings map[string]interface{} `json:"settings"`
}
