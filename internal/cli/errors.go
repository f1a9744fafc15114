// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes shared by every command.
//
// Handlers return errors; Run decides how to show them and which exit code
// to use. Nothing prints and returns nil.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/orderdesk/internal/auth"
	"github.com/jeranaias/orderdesk/internal/config"
	"github.com/jeranaias/orderdesk/internal/gateway"
	"github.com/jeranaias/orderdesk/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitAuthError indicates a missing session or a rejected one
	ExitAuthError = 4
	// ExitNetworkError indicates the gateway could not be reached
	ExitNetworkError = 5
	// ExitRejectedError indicates the gateway refused the request (errorCode != 0)
	ExitRejectedError = 6
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
	// ExitTimeoutError indicates an operation timed out
	ExitTimeoutError = 8
)

// ErrNotSignedIn is returned by protected commands when no session is stored.
var ErrNotSignedIn = errors.New("not signed in, run `orderdesk login`")

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "orders", "cart")
	Action  string // Action being performed (e.g., "cancel", "add")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ValidationError represents invalid command-line input.
type ValidationError struct {
	Field   string
	Value   string
	Reason  string
	Example string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	if e.Value != "" {
		msg += fmt.Sprintf(" (got: %s)", e.Value)
	}
	if e.Example != "" {
		msg += fmt.Sprintf("\nExample: %s", e.Example)
	}
	return msg
}

// PermissionError is a guard denial for a signed-in visitor without the
// required role.
type PermissionError struct {
	Action   string
	Username string
	Role     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s requires the %s role (signed in as %s)",
		e.Action, e.Role, e.Username)
}

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// ErrMissingArgument creates an error for a missing required argument.
func ErrMissingArgument(argName, usage string) error {
	return &ValidationError{Field: argName, Reason: "required argument missing", Example: usage}
}

// ErrInvalidFormat creates an error for a malformed argument.
func ErrInvalidFormat(field, value, expected string) error {
	return &ValidationError{Field: field, Value: value, Reason: "invalid format", Example: expected}
}

// ErrUnknownSubcommand reports a subcommand the command does not have.
func ErrUnknownSubcommand(command, sub string, valid []string) error {
	return &ValidationError{
		Field:   command + " subcommand",
		Value:   sub,
		Reason:  "unknown subcommand",
		Example: fmt.Sprintf("one of %v", valid),
	}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err in a consistent format. In JSON mode the error
// envelope goes to out; otherwise a styled line goes to errOut.
func DisplayError(out, errOut io.Writer, command string, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		resp := NewJSONErrorResponse(command, err)
		resp.ErrorType = errorType(err)
		_ = resp.Print(out)
		return
	}
	fmt.Fprintf(errOut, "%s %s\n", ErrorStyle.Render("[ERROR]"), err.Error())
}

// errorType names the category of err for JSON consumers.
func errorType(err error) string {
	var (
		validationErr *ValidationError
		permissionErr *PermissionError
		inputErr      *auth.InputError
		domainErr     *gateway.DomainError
		apiErr        *gateway.APIError
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return "validation_error"
	case errors.As(err, &permissionErr):
		return "permission_error"
	case errors.Is(err, ErrNotSignedIn), errors.Is(err, gateway.ErrUnauthorized):
		return "auth_error"
	case errors.As(err, &domainErr):
		return "rejected"
	case gateway.IsNetwork(err):
		return "network_error"
	case errors.As(err, &apiErr):
		return "gateway_error"
	}
	return "generic_error"
}

// GetExitCode determines the exit code for err.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var (
		validationErr *ValidationError
		inputErr      *auth.InputError
		permissionErr *PermissionError
		domainErr     *gateway.DomainError
		configErr     config.ValidateErrors
	)
	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return ExitUsageError
	case errors.As(err, &configErr):
		return ExitConfigError
	case errors.As(err, &permissionErr),
		errors.Is(err, ErrNotSignedIn),
		errors.Is(err, gateway.ErrUnauthorized),
		errors.Is(err, gateway.ErrForbidden):
		return ExitAuthError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case gateway.IsNetwork(err):
		return ExitNetworkError
	case errors.As(err, &domainErr):
		return ExitRejectedError
	case errors.Is(err, gateway.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		return ExitNotFoundError
	}
	return ExitGeneralError
}
