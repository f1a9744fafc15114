// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Interactive prompts for login and signup.
//
// On a terminal, lines are read with liner (editing, ctrl+c aborts) and
// passwords without echo. Otherwise one line per prompt is read from the
// input stream so scripts can pipe answers in.

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("aborted")

// promptLine asks for one line of text.
func (e *Env) promptLine(label string) (string, error) {
	if !e.Interactive {
		return e.readLine()
	}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	value, err := line.Prompt(label)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", ErrAborted
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// promptPassword asks for a secret without echoing it.
func (e *Env) promptPassword(label string) (string, error) {
	if !e.Interactive {
		return e.readLine()
	}

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	value, err := line.PasswordPrompt(label)
	line.Close()
	switch {
	case err == nil:
		return value, nil
	case errors.Is(err, liner.ErrPromptAborted):
		return "", ErrAborted
	case !errors.Is(err, liner.ErrNotTerminalOutput):
		return "", err
	}

	// stdout is redirected (e.g. --json > file); read from the terminal directly.
	fmt.Fprint(e.Err, label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(e.Err)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// readLine reads the next line from the input stream, without the line
// terminator. Whitespace inside the line is kept for passwords.
func (e *Env) readLine() (string, error) {
	if e.reader == nil {
		e.reader = bufio.NewReader(e.In)
	}
	s, err := e.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		if errors.Is(err, io.EOF) {
			return "", ErrMissingArgument("input", "pipe one value per line, or run in a terminal")
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}
