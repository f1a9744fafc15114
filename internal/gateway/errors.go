// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized matches any *APIError with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden matches any *APIError with status 403.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound matches any *APIError with status 404.
	ErrNotFound = errors.New("not found")

	// ErrNetwork wraps transport failures where no response arrived.
	ErrNetwork = errors.New("gateway unreachable")

	// ErrResponseTooLarge is returned when a body exceeds the configured cap.
	ErrResponseTooLarge = errors.New("response exceeded maximum size")

	// ErrMalformedResponse is returned when a 2xx body is not a valid envelope.
	ErrMalformedResponse = errors.New("malformed gateway response")
)

// APIError is a non-2xx HTTP response, passed through unmodified.
type APIError struct {
	Status    int
	Message   string
	ErrorCode int
	// Body is the raw response body.
	Body []byte
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway error (HTTP %d): %s", e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is match the status sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// DomainError is a 2xx response whose envelope reports errorCode != 0.
type DomainError struct {
	Status    int
	ErrorCode int
	Message   string
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway rejected request [%d]: %s", e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("gateway rejected request [%d]", e.ErrorCode)
}

// Message extracts the server-provided message from err, or returns fallback.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var domErr *DomainError
	if errors.As(err, &domErr) && domErr.Message != "" {
		return domErr.Message
	}
	return fallback
}

// UserMessage renders err for display.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNetwork):
		return "Cannot reach the server. Check your connection and try again."
	case errors.Is(err, ErrUnauthorized):
		return Message(err, "Your session has expired. Please sign in again.")
	case errors.Is(err, ErrForbidden):
		return Message(err, "You do not have permission to do that.")
	case errors.Is(err, ErrNotFound):
		return Message(err, "Not found.")
	}
	return Message(err, err.Error())
}
