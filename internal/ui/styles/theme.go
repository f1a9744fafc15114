// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme names accepted by NewTheme.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
	ThemeMono  = "mono"
)

// Theme holds all the styled components for the application.
type Theme struct {
	Name         string
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	renderer *lipgloss.Renderer

	// ==========================================================================
	// CHROME
	// ==========================================================================

	Header      lipgloss.Style
	HeaderBrand lipgloss.Style
	HeaderUser  lipgloss.Style
	AdminBadge  lipgloss.Style
	Tab         lipgloss.Style
	TabActive   lipgloss.Style
	TabLocked   lipgloss.Style
	StatusBar   lipgloss.Style
	ShortcutKey lipgloss.Style
	ShortcutDsc lipgloss.Style

	// ==========================================================================
	// CONTENT
	// ==========================================================================

	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Body        lipgloss.Style
	Muted       lipgloss.Style
	Panel       lipgloss.Style
	Label       lipgloss.Style
	Value       lipgloss.Style
	Money       lipgloss.Style
	RowSelected lipgloss.Style

	// ==========================================================================
	// FORMS
	// ==========================================================================

	FormBox      lipgloss.Style
	FieldLabel   lipgloss.Style
	FieldFocused lipgloss.Style
	FieldError   lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style

	// ==========================================================================
	// FEEDBACK
	// ==========================================================================

	ErrorBox     lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	InfoStyle    lipgloss.Style
	Spinner      lipgloss.Style
}

// NewTheme creates a theme writing to stdout.
func NewTheme(name string) *Theme {
	return NewThemeFor(os.Stdout, name)
}

// NewThemeFor creates a theme for w. "auto" detects the background; "mono"
// disables color.
func NewThemeFor(w io.Writer, name string) *Theme {
	r := lipgloss.NewRenderer(w)
	switch name {
	case ThemeDark:
		r.SetHasDarkBackground(true)
	case ThemeLight:
		r.SetHasDarkBackground(false)
	case ThemeMono:
		r.SetColorProfile(termenv.Ascii)
	default:
		name = ThemeAuto
	}

	t := &Theme{
		Name:         name,
		IsDark:       r.HasDarkBackground(),
		ColorProfile: r.ColorProfile(),
		renderer:     r,
	}
	t.initStyles()
	return t
}

// Renderer returns the renderer all of the theme's styles were built with.
func (t *Theme) Renderer() *lipgloss.Renderer {
	return t.renderer
}

// NewStyle returns a blank style bound to the theme's renderer.
func (t *Theme) NewStyle() lipgloss.Style {
	return t.renderer.NewStyle()
}

func (t *Theme) initStyles() {
	s := t.renderer.NewStyle

	// Chrome
	t.Header = s().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderBrand = s().Bold(true).Foreground(Cyan)
	t.HeaderUser = s().Foreground(TextSecondary)
	t.AdminBadge = s().Bold(true).Foreground(TextInverse).Background(Amber).Padding(0, 1)
	t.Tab = s().Foreground(TextSecondary).Padding(0, 1)
	t.TabActive = s().Bold(true).Foreground(TextInverse).Background(Purple).Padding(0, 1)
	t.TabLocked = s().Foreground(TextMuted).Strikethrough(true).Padding(0, 1)
	t.StatusBar = s().Background(SurfaceDim).Foreground(TextSecondary).Padding(0, 1)
	t.ShortcutKey = s().Foreground(Cyan).Bold(true)
	t.ShortcutDsc = s().Foreground(TextMuted)

	// Content
	t.Title = s().Bold(true).Foreground(Purple).MarginBottom(1)
	t.Subtitle = s().Foreground(TextSecondary).Italic(true)
	t.Body = s().Foreground(TextPrimary)
	t.Muted = s().Foreground(TextMuted)
	t.Panel = s().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.Label = s().Foreground(TextMuted).Width(12)
	t.Value = s().Foreground(TextPrimary).Bold(true)
	t.Money = s().Foreground(Emerald)
	t.RowSelected = s().Background(Purple).Foreground(TextInverse).Bold(true)

	// Forms
	t.FormBox = s().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(1, 2)
	t.FieldLabel = s().Foreground(TextSecondary)
	t.FieldFocused = s().Foreground(Cyan).Bold(true)
	t.FieldError = s().Foreground(ErrorHighContrast)
	t.Button = s().Foreground(TextPrimary).Background(Overlay).Padding(0, 2)
	t.ButtonActive = s().Foreground(TextInverse).Background(Purple).Bold(true).Padding(0, 2)

	// Feedback
	t.ErrorBox = s().
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(Rose).
		Padding(0, 1)
	t.SuccessStyle = s().Foreground(SuccessHighContrast).Bold(true)
	t.ErrorStyle = s().Foreground(ErrorHighContrast).Bold(true)
	t.WarningStyle = s().Foreground(WarningHighContrast).Bold(true)
	t.InfoStyle = s().Foreground(InfoHighContrast).Bold(true)
	t.Spinner = s().Foreground(Purple)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// OrderStatus renders an order status in its color with a fixed width.
func (t *Theme) OrderStatus(status string) string {
	return t.renderer.NewStyle().Foreground(OrderStatusColor(status)).Width(10).Render(status)
}
