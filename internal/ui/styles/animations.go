// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"math"
	"time"
)

// =============================================================================
// EASING
// =============================================================================

// EasingFunc is a function that maps progress (0-1) to output (0-1).
type EasingFunc func(t float64) float64

// EaseLinear - constant speed
func EaseLinear(t float64) float64 {
	return t
}

// EaseOutQuad - decelerating to zero
func EaseOutQuad(t float64) float64 {
	return t * (2 - t)
}

// EaseInOutQuad - acceleration until halfway, then deceleration
func EaseInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

// EaseOutCubic - decelerating to zero (smoother)
func EaseOutCubic(t float64) float64 {
	t--
	return t*t*t + 1
}

// EaseOutElastic - overshoot with elastic bounce
func EaseOutElastic(t float64) float64 {
	if t <= 0 || t >= 1 {
		return math.Max(0, math.Min(1, t))
	}
	const p = 0.3
	return math.Pow(2, -10*t)*math.Sin((t-p/4)*(2*math.Pi)/p) + 1
}

// =============================================================================
// PULSE DOT
// =============================================================================

// PulseDuration is how long the dot takes to settle after a beat.
const PulseDuration = 350 * time.Millisecond

// PulseGlyphs go from resting to fully swollen.
var PulseGlyphs = []string{"·", "∙", "•", "●"}

// PulseIntensity returns 1 right at a beat, easing to 0 after d.
func PulseIntensity(sinceBeat, d time.Duration, ease EasingFunc) float64 {
	if d <= 0 || sinceBeat < 0 || sinceBeat >= d {
		return 0
	}
	if ease == nil {
		ease = EaseOutCubic
	}
	return 1 - ease(float64(sinceBeat)/float64(d))
}

// PulseGlyph picks the dot for an intensity in 0..1.
func PulseGlyph(intensity float64) string {
	i := int(math.Round(clamp01(intensity) * float64(len(PulseGlyphs)-1)))
	return PulseGlyphs[i]
}
