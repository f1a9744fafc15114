// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - login, signup, logout and whoami.
//
// Examples:
//   orderdesk login                              Prompt for username and password
//   orderdesk login --username alice
//   printf 'Secret123\n' | orderdesk login alice --password-stdin
//   orderdesk signup --username bob --email bob@example.com
//   orderdesk whoami --remote --json

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/orderdesk/internal/auth"
	"github.com/jeranaias/orderdesk/internal/forms"
	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/session"
)

// HandleLogin handles the "login" command.
func (e *Env) HandleLogin(args Args) error {
	p := NewArgParser(args.Raw, "password-stdin")

	username := p.FlagOrDefault("username", p.Positional(0))
	if username == "" {
		var err error
		if username, err = e.promptLine("Username: "); err != nil {
			return err
		}
	}
	password, err := e.secret(p, "Password: ")
	if err != nil {
		return err
	}

	ctx, cancel := e.Context()
	defer cancel()
	profile, err := e.Auth.Login(ctx, forms.Login{Username: username, Password: password})
	if err != nil {
		return loginError("login", "sign in", err)
	}

	return e.emit("login", e.whoami(profile, false), func() {
		fmt.Fprintf(e.Out, "%s Signed in as %s (%s)\n",
			SuccessStyle.Render("[OK]"), profile.Username, profile.Role)
	})
}

// HandleSignup handles the "signup" command. It never signs in.
func (e *Env) HandleSignup(args Args) error {
	p := NewArgParser(args.Raw, "password-stdin")

	ask := func(flag, label string) (string, error) {
		if v := p.Flag(flag); v != "" {
			return v, nil
		}
		return e.promptLine(label)
	}
	username, err := ask("username", "Username: ")
	if err != nil {
		return err
	}
	email, err := ask("email", "Email: ")
	if err != nil {
		return err
	}
	password, err := e.secret(p, "Password: ")
	if err != nil {
		return err
	}
	confirm := password
	if !p.BoolFlag("password-stdin") {
		if confirm, err = e.promptPassword("Confirm password: "); err != nil {
			return err
		}
	}

	ctx, cancel := e.Context()
	defer cancel()
	user, err := e.Auth.Signup(ctx, forms.Signup{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return loginError("signup", "create account", err)
	}

	return e.emit("signup", user, func() {
		fmt.Fprintf(e.Out, "%s Account %s created. Run `orderdesk login` to sign in.\n",
			SuccessStyle.Render("[OK]"), user.Username)
	})
}

// HandleLogout handles the "logout" command. Logging out twice is fine.
func (e *Env) HandleLogout(args Args) error {
	ended, err := e.Auth.Logout()
	if err != nil {
		return NewCommandError("logout", "clear session", "credential store", err)
	}
	return e.emit("logout", LogoutData{Ended: ended}, func() {
		if ended {
			fmt.Fprintf(e.Out, "%s Signed out\n", SuccessStyle.Render("[OK]"))
		} else {
			fmt.Fprintln(e.Out, DimStyle.Render("Not signed in"))
		}
	})
}

// HandleWhoami handles the "whoami" command. --remote asks the gateway and
// refreshes the stored profile; a rejected token ends the session.
func (e *Env) HandleWhoami(args Args) error {
	if err := e.Require(router.RouteUser, "whoami"); err != nil {
		return err
	}
	p := NewArgParser(args.Raw, "remote")

	profile, _ := e.Session.CurrentProfile()
	verified := false
	if p.BoolFlag("remote") {
		ctx, cancel := e.Context()
		defer cancel()
		fresh, err := e.Auth.Refresh(ctx)
		if err != nil {
			return NewCommandError("whoami", "verify", "the gateway did not accept the session", err)
		}
		profile, verified = fresh, true
	}

	data := e.whoami(profile, verified)
	return e.emit("whoami", data, func() {
		fmt.Fprintln(e.Out, RenderLabel("Username")+ValueStyle.Render(data.Username))
		if data.Email != "" {
			fmt.Fprintln(e.Out, RenderLabel("Email")+ValueStyle.Render(data.Email))
		}
		fmt.Fprintln(e.Out, RenderLabel("Role")+ValueStyle.Render(data.Role))
		fmt.Fprintln(e.Out, RenderLabel("Gateway")+ValueStyle.Render(data.Gateway))
		if verified {
			fmt.Fprintln(e.Out, RenderLabel("Verified")+SuccessStyle.Render("yes"))
		}
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func (e *Env) whoami(p session.Profile, verified bool) WhoamiData {
	return WhoamiData{
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role.String(),
		Gateway:  e.Gateway.BaseURL(),
		Verified: verified,
	}
}

// secret reads the password from stdin with --password-stdin, otherwise
// prompts for it.
func (e *Env) secret(p *ArgParser, label string) (string, error) {
	if p.BoolFlag("password-stdin") {
		return e.readLine()
	}
	return e.promptPassword(label)
}

// loginError keeps validation errors as they are (exit code 2) and wraps
// everything else with the message a user should see.
func loginError(command, action string, err error) error {
	var inErr *auth.InputError
	if errors.As(err, &inErr) {
		return err
	}
	return NewCommandError(command, action, auth.FailureMessage(err), err)
}
