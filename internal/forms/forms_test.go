// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package forms

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogin_Validate(t *testing.T) {
	tests := []struct {
		name  string
		form  Login
		field string
		msg   string
	}{
		{"valid", Login{"bob", "secret"}, "", ""},
		{"missing username", Login{"", "secret"}, "username", "Username is required"},
		{"short username", Login{"bo", "secret"}, "username", "Username must be at least 3 characters"},
		{"missing password", Login{"bob", ""}, "password", "Password is required"},
		{"short password", Login{"bob", "12345"}, "password", "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fe := Fields(tt.form.Validate())
			if tt.field == "" {
				assert.Empty(t, fe)
				return
			}
			assert.Equal(t, tt.msg, fe[tt.field])
		})
	}
}

func TestSignup_Validate(t *testing.T) {
	valid := Signup{Username: "bobby", Email: "bob@example.com", Password: "Secret1", ConfirmPassword: "Secret1"}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(*Signup)
		field  string
		msg    string
	}{
		{"username required", func(s *Signup) { s.Username = "" }, "username", "Username is required"},
		{"username short", func(s *Signup) { s.Username = "ab" }, "username", "Username must be at least 3 characters"},
		{"username long", func(s *Signup) { s.Username = strings.Repeat("a", 21) }, "username", "Username must be less than 20 characters"},
		{"email required", func(s *Signup) { s.Email = "" }, "email", "Email is required"},
		{"email invalid", func(s *Signup) { s.Email = "bob@" }, "email", "Please enter a valid email"},
		{"password short", func(s *Signup) { s.Password, s.ConfirmPassword = "Ab1", "Ab1" }, "password", "Password must be at least 6 characters"},
		{"password upper", func(s *Signup) { s.Password, s.ConfirmPassword = "secret1", "secret1" }, "password", "Password must contain at least one uppercase letter"},
		{"password digit", func(s *Signup) { s.Password, s.ConfirmPassword = "Secrets", "Secrets" }, "password", "Password must contain at least one number"},
		{"confirm required", func(s *Signup) { s.ConfirmPassword = "" }, "confirmPassword", "Please confirm your password"},
		{"confirm mismatch", func(s *Signup) { s.ConfirmPassword = "Secret2" }, "confirmPassword", "Passwords must match"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.modify(&f)
			fe := Fields(f.Validate())
			assert.Equal(t, tt.msg, fe[tt.field])
		})
	}
}

func TestSignup_UsernameBoundary(t *testing.T) {
	f := Signup{Username: strings.Repeat("a", 20), Email: "a@b.co", Password: "Secret1", ConfirmPassword: "Secret1"}
	assert.NoError(t, f.Validate(), "20 characters is accepted")

	f.Username = strings.Repeat("\u00e9", 20)
	assert.NoError(t, f.Validate(), "length counts characters, not bytes")
}

func TestNormalize(t *testing.T) {
	decomposed := "Jose\u0301"
	l := Login{Username: "  " + decomposed + " ", Password: " pw with spaces "}.Normalize()
	assert.Equal(t, "Jos\u00e9", l.Username)
	assert.Equal(t, " pw with spaces ", l.Password, "passwords are never altered")

	s := Signup{Username: " amy ", Email: " amy@example.com "}.Normalize()
	assert.Equal(t, "amy", s.Username)
	assert.Equal(t, "amy@example.com", s.Email)
}

func TestRequests(t *testing.T) {
	req := Signup{Username: "amy", Email: "a@b.co", Password: "Secret1", ConfirmPassword: "Secret1"}.Request()
	assert.Equal(t, "Secret1", req.ConfirmPassword)
	assert.Equal(t, "amy", Login{Username: "amy"}.Request().Username)
}

func TestFields(t *testing.T) {
	assert.Nil(t, Fields(nil))
	assert.Equal(t, FieldErrors{"form": "boom"}, Fields(errors.New("boom")))

	fe := Fields(Login{}.Validate())
	assert.Equal(t, []string{"Password is required", "Username is required"}, fe.Sorted())
}
