// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rhythm

import (
	"math/rand"
	"time"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultBPM is the resting rate shown at startup.
	DefaultBPM = 72
	// DefaultMinBPM is the lower drift bound.
	DefaultMinBPM = 60
	// DefaultMaxBPM is the upper drift bound.
	DefaultMaxBPM = 85
	// DefaultMaxStep is the largest single drift step.
	DefaultMaxStep = 3

	DefaultDriftMin = 4000 * time.Millisecond
	DefaultDriftMax = 6000 * time.Millisecond
)

// Bounds is an inclusive BPM range.
type Bounds struct {
	Min int
	Max int
}

// DefaultBounds returns 60..85.
func DefaultBounds() Bounds {
	return Bounds{Min: DefaultMinBPM, Max: DefaultMaxBPM}
}

// Clamp limits bpm to the range. The result is never below 1, so it is
// always safe to divide by.
func (b Bounds) Clamp(bpm int) int {
	if bpm > b.Max {
		bpm = b.Max
	}
	if bpm < b.Min {
		bpm = b.Min
	}
	if bpm < 1 {
		bpm = 1
	}
	return bpm
}

// Contains reports whether bpm lies inside the range.
func (b Bounds) Contains(bpm int) bool {
	return bpm >= b.Min && bpm <= b.Max
}

// =============================================================================
// DRIVER
// =============================================================================

// DriverConfig configures a Driver. Zero values take the defaults.
type DriverConfig struct {
	Initial     int
	Bounds      Bounds
	MaxStep     int
	MinInterval time.Duration
	MaxInterval time.Duration

	// Source seeds the drift. Nil uses the wall clock.
	Source rand.Source
}

// DefaultDriverConfig returns the resting-rate configuration.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		Initial:     DefaultBPM,
		Bounds:      DefaultBounds(),
		MaxStep:     DefaultMaxStep,
		MinInterval: DefaultDriftMin,
		MaxInterval: DefaultDriftMax,
	}
}

// Driver owns the current heart rate and random-walks it.
//
// Driver is not safe for concurrent use; in the TUI it is only touched from
// the Update goroutine.
type Driver struct {
	bpm     int
	bounds  Bounds
	maxStep int

	minInterval time.Duration
	maxInterval time.Duration

	rng       *rand.Rand
	observers []func(bpm int)
	steps     int
}

// NewDriver creates a driver. The initial rate is clamped into bounds.
func NewDriver(cfg DriverConfig) *Driver {
	def := DefaultDriverConfig()
	if cfg.Bounds.Min <= 0 && cfg.Bounds.Max <= 0 {
		cfg.Bounds = def.Bounds
	}
	if cfg.Bounds.Max < cfg.Bounds.Min {
		cfg.Bounds.Max = cfg.Bounds.Min
	}
	if cfg.Initial == 0 {
		cfg.Initial = def.Initial
	}
	if cfg.MaxStep <= 0 {
		cfg.MaxStep = def.MaxStep
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = def.MinInterval
	}
	if cfg.MaxInterval < cfg.MinInterval {
		cfg.MaxInterval = cfg.MinInterval
	}
	if cfg.Source == nil {
		cfg.Source = rand.NewSource(time.Now().UnixNano())
	}

	return &Driver{
		bpm:         cfg.Bounds.Clamp(cfg.Initial),
		bounds:      cfg.Bounds,
		maxStep:     cfg.MaxStep,
		minInterval: cfg.MinInterval,
		maxInterval: cfg.MaxInterval,
		rng:         rand.New(cfg.Source),
	}
}

// BPM returns the current rate.
func (d *Driver) BPM() int {
	return d.bpm
}

// Bounds returns the drift range.
func (d *Driver) Bounds() Bounds {
	return d.bounds
}

// Steps returns how many drift steps have been taken.
func (d *Driver) Steps() int {
	return d.steps
}

// Subscribe registers fn to be called with every published rate.
func (d *Driver) Subscribe(fn func(bpm int)) {
	if fn == nil {
		return
	}
	d.observers = append(d.observers, fn)
}

// Delta draws one signed drift step: magnitude uniform in 1..MaxStep, sign
// 50/50.
func (d *Driver) Delta() int {
	mag := 1 + d.rng.Intn(d.maxStep)
	if d.rng.Float64() < 0.5 {
		return -mag
	}
	return mag
}

// Step applies a random drift step and returns the new rate.
func (d *Driver) Step() int {
	d.steps++
	return d.Apply(d.Delta())
}

// Apply adds delta, clamps into bounds, publishes and returns the new rate.
func (d *Driver) Apply(delta int) int {
	return d.Set(d.bpm + delta)
}

// Set replaces the rate, clamped into bounds, and publishes it.
func (d *Driver) Set(bpm int) int {
	d.bpm = d.bounds.Clamp(bpm)
	d.publish()
	return d.bpm
}

// SetBounds changes the drift range and re-clamps the current rate.
func (d *Driver) SetBounds(b Bounds) int {
	if b.Max < b.Min {
		b.Max = b.Min
	}
	d.bounds = b
	return d.Set(d.bpm)
}

// NextInterval draws the delay until the next drift step, uniform in
// [MinInterval, MaxInterval).
func (d *Driver) NextInterval() time.Duration {
	span := d.maxInterval - d.minInterval
	if span <= 0 {
		return d.minInterval
	}
	return d.minInterval + time.Duration(d.rng.Int63n(int64(span)))
}

func (d *Driver) publish() {
	for _, fn := range d.observers {
		fn(d.bpm)
	}
}
