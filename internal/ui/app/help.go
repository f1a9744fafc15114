// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/orderdesk/internal/router"
	"github.com/jeranaias/orderdesk/internal/ui/styles"
)

// HelpMarkdown returns the key reference shown by the help view and by
// `orderdesk help --md`.
func HelpMarkdown() string {
	var b strings.Builder
	b.WriteString("# orderdesk\n\n")
	b.WriteString("A terminal client for the order gateway.\n\n")
	b.WriteString("## Views\n\n")
	b.WriteString("| Key | View | Access |\n|---|---|---|\n")
	for _, def := range router.Navigable() {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", def.Key, def.Title, def.Access)
	}
	b.WriteString(`
Views you cannot open are struck through in the header. Opening one anyway
sends you to the sign-in screen when you are signed out, or to your home view
when the view needs an administrator.

## Everywhere

| Key | Action |
|---|---|
| ` + "`L`" + ` | sign out (also empties the cart) |
| ` + "`r`" + ` | reload the current view |
| ` + "`q`" + ` / ` + "`ctrl+c`" + ` | quit |
| ` + "`esc`" + ` | back to home |

## Sign-in and sign-up forms

| Key | Action |
|---|---|
| ` + "`tab`" + ` / ` + "`shift+tab`" + ` | next / previous field |
| ` + "`enter`" + ` | next field, submit on the last one |
| ` + "`ctrl+n`" + ` | create an account (from sign-in) |
| ` + "`esc`" + ` | back to sign-in (from sign-up) |

## Products

| Key | Action |
|---|---|
| ` + "`a`" + ` / ` + "`enter`" + ` | add the selected item to the cart |
| ` + "`d`" + ` | remove the selected item from the cart |
| ` + "`c`" + ` | empty the cart |
| ` + "`o`" + ` | place an order for the cart |

## Orders and admin

| Key | Action |
|---|---|
| ` + "`x`" + ` | cancel the selected order |
| ` + "`n`" + ` | advance the order status (admin) |
| ` + "`tab`" + ` | switch between users and orders (admin) |
| ` + "`v`" + ` | ask the gateway whether your session is still valid (home) |

When the gateway rejects your session, orderdesk signs you out and returns to
the sign-in screen. Network errors never sign you out.
`)
	return b.String()
}

// RenderHelp renders the help markdown for the theme at the given width.
func RenderHelp(theme *styles.Theme, width int) (string, error) {
	style := "light"
	switch {
	case theme.Name == styles.ThemeMono:
		style = "ascii"
	case theme.IsDark:
		style = "dark"
	}
	if width < 40 {
		width = 40
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return "", err
	}
	return r.Render(HelpMarkdown())
}
