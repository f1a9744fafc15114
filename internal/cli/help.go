// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// help.go - Help command.
//
// Examples:
//   orderdesk help
//   orderdesk help --md       Key reference for the terminal UI
//   orderdesk help --md | less

package cli

import (
	"fmt"
	"io"

	"github.com/jeranaias/orderdesk/internal/ui/app"
	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// HandleHelp handles the "help" command. An unrecognized command prints the
// usage and fails with a usage error.
func HandleHelp(w io.Writer, args Args) error {
	if args.Unknown != "" {
		PrintUsage(w)
		return &ValidationError{
			Field:   "command",
			Value:   args.Unknown,
			Reason:  "unknown command",
			Example: "orderdesk help",
		}
	}

	p := NewArgParser(args.Raw, "md")
	if !p.BoolFlag("md") {
		PrintUsage(w)
		return nil
	}

	md := app.HelpMarkdown()
	if !IsStdoutTTY() || !ColorsEnabled() {
		_, err := io.WriteString(w, md)
		return err
	}
	out, err := app.RenderHelp(styles.NewThemeFor(w, styles.ThemeAuto), GetTerminalWidth())
	if err != nil {
		_, err = io.WriteString(w, md)
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}
