// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components of the monitor panel.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Label lipgloss.Style
	BPM   lipgloss.Style
	Unit  lipgloss.Style
	Pulse lipgloss.Style

	// ==========================================================================
	// STRIP AND FOOTER
	// ==========================================================================

	Panel   lipgloss.Style
	Caption lipgloss.Style
	Stats   lipgloss.Style
	Paused  lipgloss.Style
	Live    lipgloss.Style
	Help    lipgloss.Style
}

// NewTheme creates a theme for mode: "dark" and "light" force the
// background, anything else detects it.
func NewTheme(mode string) *Theme {
	colorProfile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
		lipgloss.SetHasDarkBackground(true)
	case "light":
		isDark = false
		lipgloss.SetHasDarkBackground(false)
	default:
		isDark = termenv.HasDarkBackground()
	}

	t := &Theme{
		IsDark:       isDark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Label = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextSecondary)

	t.BPM = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary)

	t.Unit = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Pulse = lipgloss.NewStyle().
		Foreground(Indigo)

	t.Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.Caption = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	t.Stats = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.Paused = lipgloss.NewStyle().
		Bold(true).
		Foreground(Amber)

	t.Live = lipgloss.NewStyle().
		Bold(true).
		Foreground(Emerald)

	t.Help = lipgloss.NewStyle().
		Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

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

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
