// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"bytes"
	"strings"
	"testing"

	"github.com/muesli/termenv"
)

func TestNewThemeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"dark", ThemeDark},
		{"light", ThemeLight},
		{"mono", ThemeMono},
		{"", ThemeAuto},
		{"neon", ThemeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.name, func(t *testing.T) {
			theme := NewThemeFor(&bytes.Buffer{}, tt.name)
			if theme.Name != tt.want {
				t.Errorf("Name = %q, want %q", theme.Name, tt.want)
			}
		})
	}
}

func TestThemeDarkLight(t *testing.T) {
	if !NewThemeFor(&bytes.Buffer{}, ThemeDark).IsDark {
		t.Error("dark theme should report a dark background")
	}
	if NewThemeFor(&bytes.Buffer{}, ThemeLight).IsDark {
		t.Error("light theme should report a light background")
	}
}

func TestMonoThemeHasNoEscapes(t *testing.T) {
	theme := NewThemeFor(&bytes.Buffer{}, ThemeMono)
	if theme.ColorProfile != termenv.Ascii {
		t.Fatalf("ColorProfile = %v, want Ascii", theme.ColorProfile)
	}
	out := theme.OrderStatus("Shipped")
	if strings.Contains(out, "\x1b[") {
		t.Errorf("mono output contains escape codes: %q", out)
	}
	if !strings.HasPrefix(out, "Shipped") {
		t.Errorf("OrderStatus = %q", out)
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewThemeFor(&bytes.Buffer{}, ThemeMono)
	cases := map[int]LayoutMode{40: LayoutNarrow, 80: LayoutMedium, 120: LayoutWide}
	for width, want := range cases {
		theme.SetSize(width, 24)
		if got := theme.GetLayoutMode(); got != want {
			t.Errorf("width %d: got %v, want %v", width, got, want)
		}
	}
}

func TestOrderStatusColor(t *testing.T) {
	if OrderStatusColor("Cancelled") != Rose {
		t.Error("cancelled orders should be rose")
	}
	if OrderStatusColor("Teleported") != TextMuted {
		t.Error("unknown statuses should be muted")
	}
}

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	if !strings.Contains(RenderSuccess("saved"), StatusIndicators.Success) {
		t.Error("success indicator missing")
	}
	if !strings.Contains(RenderError("failed"), StatusIndicators.Error) {
		t.Error("error indicator missing")
	}
	if !strings.Contains(RenderWarning("careful"), StatusIndicators.Warning) {
		t.Error("warning indicator missing")
	}
	if !strings.Contains(RenderInfo("note"), StatusIndicators.Info) {
		t.Error("info indicator missing")
	}
}
