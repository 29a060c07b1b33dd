// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/heartline/internal/config"
)

// =============================================================================
// PALETTE TESTS
// =============================================================================

func TestNewPalette_Defaults(t *testing.T) {
	p := DefaultPalette()
	if got := p.Line.Hex(); got != "#6366f1" {
		t.Errorf("Line = %s, want #6366f1", got)
	}
	if got := string(p.BaselineColor()); got != "#2b2d5c" {
		t.Errorf("BaselineColor = %s, want #2b2d5c", got)
	}
	if got := string(p.BackgroundColor()); got != "#0f1020" {
		t.Errorf("BackgroundColor = %s, want #0f1020", got)
	}
}

func TestNewPalette_BadValuesFallBack(t *testing.T) {
	p := NewPalette(config.PaletteConfig{
		Line:       "red",
		Glow:       "#00ff00",
		GlowAlpha:  7,
		Background: "",
		Baseline:   "#zzzzzz",
	})
	d := config.Default().Palette
	if p.Line.Hex() != d.Line {
		t.Errorf("Line = %s, want fallback %s", p.Line.Hex(), d.Line)
	}
	if p.Glow.Hex() != "#00ff00" {
		t.Errorf("Glow = %s, want #00ff00", p.Glow.Hex())
	}
	if p.GlowAlpha != d.GlowAlpha {
		t.Errorf("GlowAlpha = %v, want %v", p.GlowAlpha, d.GlowAlpha)
	}
	if p.Baseline.Hex() != d.Baseline {
		t.Errorf("Baseline = %s, want fallback %s", p.Baseline.Hex(), d.Baseline)
	}
}

func TestPalette_TraceColor(t *testing.T) {
	p := DefaultPalette()
	if got := string(p.TraceColor(0)); got != p.Line.Hex() {
		t.Errorf("TraceColor(0) = %s, want line colour %s", got, p.Line.Hex())
	}
	hot := string(p.TraceColor(1))
	if hot == p.Line.Hex() {
		t.Error("TraceColor(1) should differ from the plain line colour")
	}
	if !strings.HasPrefix(hot, "#") || len(hot) != 7 {
		t.Errorf("TraceColor(1) = %q, want #rrggbb", hot)
	}
}

func TestPalette_GlowBackground(t *testing.T) {
	p := DefaultPalette()
	if got := string(p.GlowBackground(0)); got != p.Background.Hex() {
		t.Errorf("GlowBackground(0) = %s, want %s", got, p.Background.Hex())
	}
	if got := string(p.GlowBackground(0.8)); got == p.Background.Hex() {
		t.Error("GlowBackground(0.8) should tint the surface")
	}
}

func TestPalette_HexRoundTrip(t *testing.T) {
	cfg := config.Default().Palette
	if got := NewPalette(cfg).Hex(); got != cfg {
		t.Errorf("Hex() = %+v, want %+v", got, cfg)
	}
}

// =============================================================================
// THEME TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	if !NewTheme("dark").IsDark {
		t.Error("NewTheme(dark) should be dark")
	}
	if NewTheme("light").IsDark {
		t.Error("NewTheme(light) should not be dark")
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme("dark")
	for name, out := range map[string]string{
		"Label":   theme.Label.Render("HEART RATE"),
		"BPM":     theme.BPM.Render(" 72"),
		"Caption": theme.Caption.Render("Simulated"),
		"Panel":   theme.Panel.Render("x"),
	} {
		if out == "" {
			t.Errorf("%s style rendered empty", name)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}
	theme := NewTheme("dark")
	for _, tt := range tests {
		theme.SetSize(tt.width, 20)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("width %d: GetLayoutMode() = %v, want %v", tt.width, got, tt.want)
		}
	}
}

// =============================================================================
// ANIMATION TESTS
// =============================================================================

func TestEasingEndpoints(t *testing.T) {
	funcs := map[string]EasingFunc{
		"EaseLinear":     EaseLinear,
		"EaseOutQuad":    EaseOutQuad,
		"EaseInOutQuad":  EaseInOutQuad,
		"EaseOutCubic":   EaseOutCubic,
		"EaseOutElastic": EaseOutElastic,
	}
	for name, fn := range funcs {
		if got := fn(0); got != 0 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := fn(1); got < 0.999 || got > 1.001 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestPulseIntensity(t *testing.T) {
	if got := PulseIntensity(0, PulseDuration, nil); got != 1 {
		t.Errorf("at beat = %v, want 1", got)
	}
	if got := PulseIntensity(PulseDuration, PulseDuration, nil); got != 0 {
		t.Errorf("after duration = %v, want 0", got)
	}
	if got := PulseIntensity(-time.Millisecond, PulseDuration, nil); got != 0 {
		t.Errorf("negative elapsed = %v, want 0", got)
	}
	mid := PulseIntensity(PulseDuration/2, PulseDuration, EaseLinear)
	if mid < 0.49 || mid > 0.51 {
		t.Errorf("linear midpoint = %v, want 0.5", mid)
	}
}

func TestPulseGlyph(t *testing.T) {
	if got := PulseGlyph(0); got != PulseGlyphs[0] {
		t.Errorf("PulseGlyph(0) = %q", got)
	}
	if got := PulseGlyph(1); got != PulseGlyphs[len(PulseGlyphs)-1] {
		t.Errorf("PulseGlyph(1) = %q", got)
	}
	if got := PulseGlyph(5); got != PulseGlyphs[len(PulseGlyphs)-1] {
		t.Errorf("PulseGlyph(5) = %q, want clamp", got)
	}
}
