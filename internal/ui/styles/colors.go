// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/jeranaias/heartline/internal/config"
)

// =============================================================================
// CHROME COLORS
// =============================================================================

// Indigo - Accent for the label and pulse dot
var Indigo = lipgloss.AdaptiveColor{Light: "#4F46E5", Dark: "#818CF8"}

// Rose - Errors and feed failures
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// Amber - Paused state and warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Emerald - Live feed indicator
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Surface - Panel background
var Surface = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Overlay - Borders, separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// TextPrimary - The BPM number
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextSecondary - Labels
var TextSecondary = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}

// TextMuted - Captions and hints
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// =============================================================================
// STRIP PALETTE
// =============================================================================

// Palette is the parsed strip palette.
type Palette struct {
	Line       colorful.Color
	Glow       colorful.Color
	GlowAlpha  float64
	Background colorful.Color
	Baseline   colorful.Color
}

// NewPalette parses cfg. Colours that fail to parse fall back to the
// defaults.
func NewPalette(cfg config.PaletteConfig) Palette {
	d := config.Default().Palette
	alpha := cfg.GlowAlpha
	if alpha < 0 || alpha > 1 {
		alpha = d.GlowAlpha
	}
	return Palette{
		Line:       parseHex(cfg.Line, d.Line),
		Glow:       parseHex(cfg.Glow, d.Glow),
		GlowAlpha:  alpha,
		Background: parseHex(cfg.Background, d.Background),
		Baseline:   parseHex(cfg.Baseline, d.Baseline),
	}
}

// DefaultPalette returns the palette of the default configuration.
func DefaultPalette() Palette {
	return NewPalette(config.Default().Palette)
}

func parseHex(s, fallback string) colorful.Color {
	if c, err := colorful.Hex(s); err == nil {
		return c
	}
	c, _ := colorful.Hex(fallback)
	return c
}

// TraceColor is the trace colour at the given glow intensity (0..1). The
// trace brightens toward a whitened glow near the newest sample.
func (p Palette) TraceColor(glow float64) lipgloss.Color {
	if glow <= 0 {
		return lipgloss.Color(p.Line.Hex())
	}
	hot := p.Glow.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, 0.45)
	return lipgloss.Color(p.Line.BlendLab(hot, clamp01(glow*p.GlowAlpha)).Clamped().Hex())
}

// GlowBackground is the surface colour tinted by the glow at the given
// intensity.
func (p Palette) GlowBackground(glow float64) lipgloss.Color {
	if glow <= 0 {
		return lipgloss.Color(p.Background.Hex())
	}
	return lipgloss.Color(p.Background.BlendLab(p.Glow, clamp01(glow*p.GlowAlpha)).Clamped().Hex())
}

// BaselineColor returns the centerline colour.
func (p Palette) BaselineColor() lipgloss.Color {
	return lipgloss.Color(p.Baseline.Hex())
}

// BackgroundColor returns the strip surface colour.
func (p Palette) BackgroundColor() lipgloss.Color {
	return lipgloss.Color(p.Background.Hex())
}

// Hex returns the palette back in configuration form.
func (p Palette) Hex() config.PaletteConfig {
	return config.PaletteConfig{
		Line:       p.Line.Hex(),
		Glow:       p.Glow.Hex(),
		GlowAlpha:  p.GlowAlpha,
		Background: p.Background.Hex(),
		Baseline:   p.Baseline.Hex(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// =============================================================================
// STATUS RENDERING
// =============================================================================

// RenderError renders an error message with an ASCII marker.
func RenderError(message string) string {
	return lipgloss.NewStyle().Foreground(Rose).Bold(true).Render("[X] " + message)
}

// RenderWarning renders a warning message with an ASCII marker.
func RenderWarning(message string) string {
	return lipgloss.NewStyle().Foreground(Amber).Bold(true).Render("[!] " + message)
}
