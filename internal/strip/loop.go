// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package strip

import (
	"math"

	"github.com/jeranaias/heartline/internal/waveform"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultHeight is the logical surface height in pixels.
	DefaultHeight = 90
	// DefaultScrollSpeed is pixels scrolled per frame.
	DefaultScrollSpeed = 1.5
	// DefaultAmplitude is the deflection scale as a fraction of half height.
	DefaultAmplitude = 0.85
	// FallbackWidth is used when the surface width is not yet known.
	FallbackWidth = 400
)

// LoopConfig configures a Loop.
type LoopConfig struct {
	Height      float64
	ScrollSpeed float64
	Amplitude   float64

	// Shape overrides the canonical beat. It must be valid.
	Shape *waveform.Shape
}

// =============================================================================
// LOOP
// =============================================================================

// Loop advances the strip one frame at a time. It owns the beat phase and
// the sample history; beat boundaries reach it through ResetPhase.
type Loop struct {
	buf    *SampleBuffer
	width  int
	height float64

	scroll   float64
	ampRatio float64
	shape    *waveform.Shape

	phase  int
	ppb    int
	frames uint64
}

// NewLoop creates an unmounted loop. Call Resize to give it a width.
func NewLoop(cfg LoopConfig) *Loop {
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.ScrollSpeed <= 0 {
		cfg.ScrollSpeed = DefaultScrollSpeed
	}
	if cfg.Amplitude <= 0 {
		cfg.Amplitude = DefaultAmplitude
	}
	return &Loop{
		buf:      &SampleBuffer{},
		height:   cfg.Height,
		scroll:   cfg.ScrollSpeed,
		ampRatio: cfg.Amplitude,
		shape:    cfg.Shape,
	}
}

// Resize sets the surface width. A changed positive width rebuilds the
// history as a flat line at the baseline; the trace restarts. It reports
// whether the buffer was rebuilt.
func (l *Loop) Resize(width int) bool {
	if width <= 0 || width == l.width {
		return false
	}
	l.width = width
	l.buf.Reset(width, l.Mid())
	return true
}

// SetHeight changes the surface height and rebuilds the history.
func (l *Loop) SetHeight(h float64) {
	if h <= 0 || h == l.height {
		return
	}
	l.height = h
	if l.width > 0 {
		l.buf.Reset(l.width, l.Mid())
	}
}

// Mounted reports whether a width has been set.
func (l *Loop) Mounted() bool {
	return l.width > 0
}

// Advance runs one frame and returns the number of samples appended. An
// unmounted loop skips the frame.
func (l *Loop) Advance() int {
	if !l.Mounted() {
		return 0
	}
	mid, amp := l.Mid(), l.Amp()
	steps := l.StepsPerFrame()
	for i := 0; i < steps; i++ {
		f := l.Fraction()
		var y float64
		if l.shape != nil {
			y = l.shape.Sample(f, mid, amp)
		} else {
			y = waveform.QRSY(f, mid, amp)
		}
		l.buf.Push(y)
		l.phase++
	}
	l.frames++
	return steps
}

// StepsPerFrame returns ceil(scroll speed).
func (l *Loop) StepsPerFrame() int {
	return int(math.Ceil(l.scroll))
}

// ResetPhase marks a beat boundary.
func (l *Loop) ResetPhase() {
	l.phase = 0
}

// SetPixelsPerBeat sets the beat length in samples.
func (l *Loop) SetPixelsPerBeat(n int) {
	l.ppb = n
}

// Fraction returns the phase within the current beat, min(phase/ppb, 1).
// Without a beat length the phase holds at 1 and the trace stays flat.
func (l *Loop) Fraction() float64 {
	if l.ppb <= 0 {
		return 1
	}
	return math.Min(float64(l.phase)/float64(l.ppb), 1)
}

// Phase returns samples emitted since the last beat boundary.
func (l *Loop) Phase() int { return l.phase }

// PixelsPerBeat returns the current beat length in samples.
func (l *Loop) PixelsPerBeat() int { return l.ppb }

// Frames returns the number of frames advanced.
func (l *Loop) Frames() uint64 { return l.frames }

// Width returns the surface width, 0 when unmounted.
func (l *Loop) Width() int { return l.width }

// Height returns the surface height.
func (l *Loop) Height() float64 { return l.height }

// Mid returns the baseline.
func (l *Loop) Mid() float64 { return l.height / 2 }

// Amp returns the deflection scale.
func (l *Loop) Amp() float64 { return l.height / 2 * l.ampRatio }

// Buffer returns the sample history.
func (l *Loop) Buffer() *SampleBuffer { return l.buf }
