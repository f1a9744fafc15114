// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package forms validates login and signup input before anything is sent to
// the gateway. Messages are shown next to the offending field.
package forms

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/orderdesk/internal/gateway"
)

var (
	hasUpper = regexp.MustCompile(`[A-Z]`)
	hasDigit = regexp.MustCompile(`[0-9]`)
)

// =============================================================================
// LOGIN
// =============================================================================

// Login is the sign-in form.
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Normalize trims the username and folds it to NFC so visually identical
// names typed on different keyboards compare equal.
func (f Login) Normalize() Login {
	f.Username = normalizeName(f.Username)
	return f
}

// Validate checks the form. The error is a validation.Errors keyed by field.
func (f Login) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username,
			validation.Required.Error("Username is required"),
			validation.RuneLength(3, 0).Error("Username must be at least 3 characters"),
		),
		validation.Field(&f.Password,
			validation.Required.Error("Password is required"),
			validation.RuneLength(6, 0).Error("Password must be at least 6 characters"),
		),
	)
}

// Request converts the form to the gateway body.
func (f Login) Request() gateway.LoginRequest {
	return gateway.LoginRequest{Username: f.Username, Password: f.Password}
}

// =============================================================================
// SIGNUP
// =============================================================================

// Signup is the registration form.
type Signup struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Normalize trims username and email and folds the username to NFC.
func (f Signup) Normalize() Signup {
	f.Username = normalizeName(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return f
}

// Validate checks the form. The error is a validation.Errors keyed by field.
func (f Signup) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username,
			validation.Required.Error("Username is required"),
			validation.RuneLength(3, 0).Error("Username must be at least 3 characters"),
			validation.RuneLength(0, 20).Error("Username must be less than 20 characters"),
		),
		validation.Field(&f.Email,
			validation.Required.Error("Email is required"),
			is.Email.Error("Please enter a valid email"),
		),
		validation.Field(&f.Password,
			validation.Required.Error("Password is required"),
			validation.RuneLength(6, 0).Error("Password must be at least 6 characters"),
			validation.Match(hasUpper).Error("Password must contain at least one uppercase letter"),
			validation.Match(hasDigit).Error("Password must contain at least one number"),
		),
		validation.Field(&f.ConfirmPassword,
			validation.Required.Error("Please confirm your password"),
			validation.By(stringEquals(f.Password, "Passwords must match")),
		),
	)
}

// Request converts the form to the gateway body.
func (f Signup) Request() gateway.SignupRequest {
	return gateway.SignupRequest{
		Username:        f.Username,
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

func stringEquals(want, message string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != want {
			return errors.New(message)
		}
		return nil
	}
}

// FieldErrors maps a field name to its message.
type FieldErrors map[string]string

// Fields flattens a validation error into FieldErrors. Errors that are not
// field errors are returned under the "form" key. nil yields nil.
func Fields(err error) FieldErrors {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": err.Error()}
	}
	out := FieldErrors{}
	for field, ferr := range verrs {
		if ferr != nil {
			out[field] = ferr.Error()
		}
	}
	return out
}

// Sorted returns the messages ordered by field name, for stable output.
func (fe FieldErrors) Sorted() []string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fe[k])
	}
	return msgs
}
