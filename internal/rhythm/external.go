// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rhythm

import (
	"math"
	"time"
)

// MaxPlausibleBPM is the highest measured rate Trigger accepts.
const MaxPlausibleBPM = 300.0

// External applies beat boundaries reported by a real feed. It replaces
// Driver and Scheduler while a feed is active.
type External struct {
	sink        PhaseSink
	bounds      Bounds
	frameRate   float64
	scrollSpeed float64

	bpm       int
	lastBeat  time.Time
	beats     uint64
	observers []func(bpm int)
}

// NewExternal creates a feed-driven beat source. Applied rates are clamped
// to bounds.
func NewExternal(sink PhaseSink, bounds Bounds, frameRate, scrollSpeed float64) *External {
	if bounds.Max < bounds.Min {
		bounds.Max = bounds.Min
	}
	return &External{
		sink:        sink,
		bounds:      bounds,
		frameRate:   frameRate,
		scrollSpeed: scrollSpeed,
	}
}

// Trigger applies one measured beat at time at. Rates that are not in
// (0, 300] are ignored and reported as not applied.
func (e *External) Trigger(measured float64, at time.Time) (int, bool) {
	if math.IsNaN(measured) || measured <= 0 || measured > MaxPlausibleBPM {
		return e.bpm, false
	}

	bpm := e.bounds.Clamp(int(math.Round(measured)))
	e.bpm = bpm
	e.lastBeat = at
	e.beats++

	if e.sink != nil {
		e.sink.SetPixelsPerBeat(PixelsPerBeat(bpm, e.frameRate, e.scrollSpeed))
		e.sink.ResetPhase()
	}
	for _, fn := range e.observers {
		fn(bpm)
	}
	return bpm, true
}

// Subscribe registers fn to be called with every applied rate.
func (e *External) Subscribe(fn func(bpm int)) {
	if fn != nil {
		e.observers = append(e.observers, fn)
	}
}

// BPM returns the last applied rate, 0 before the first beat.
func (e *External) BPM() int {
	return e.bpm
}

// LastBeat returns when the last beat was applied.
func (e *External) LastBeat() time.Time {
	return e.lastBeat
}

// Beats returns the number of applied beats.
func (e *External) Beats() uint64 {
	return e.beats
}

// SetBounds changes the clamp range for subsequent beats.
func (e *External) SetBounds(b Bounds) {
	if b.Max < b.Min {
		b.Max = b.Min
	}
	e.bounds = b
}
