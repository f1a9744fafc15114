// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the orderdesk TUI.
//
// Colors are Lip Gloss AdaptiveColors so light and dark terminals both read
// well. The Theme type collects the styles each view uses; the "mono" theme
// drops color entirely for terminals or users that want plain output.
//
// Every status rendering carries an ASCII indicator ([OK], [X], [!], [i]) so
// that meaning never depends on color alone.
package styles
