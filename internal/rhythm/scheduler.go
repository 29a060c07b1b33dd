// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rhythm

import (
	"math"
	"time"
)

// =============================================================================
// INTERFACES
// =============================================================================

// RateSource supplies the current heart rate.
type RateSource interface {
	BPM() int
}

// RateNotifier is a RateSource that announces rate changes. The Driver
// implements it.
type RateNotifier interface {
	RateSource
	Subscribe(fn func(bpm int))
}

// PhaseSink receives beat boundaries. The render loop implements it.
type PhaseSink interface {
	ResetPhase()
	SetPixelsPerBeat(n int)
}

// =============================================================================
// BEAT GEOMETRY
// =============================================================================

// PixelsPerBeat returns how many scrolled pixels one beat occupies:
// round(60/bpm * frameRate * scrollSpeed). A non-positive rate yields 0.
func PixelsPerBeat(bpm int, frameRate, scrollSpeed float64) int {
	if bpm <= 0 {
		return 0
	}
	return PixelsPerBeatFloat(float64(bpm), frameRate, scrollSpeed)
}

// PixelsPerBeatFloat is PixelsPerBeat for a fractional measured rate.
func PixelsPerBeatFloat(bpm, frameRate, scrollSpeed float64) int {
	if !(bpm > 0) {
		return 0
	}
	return int(math.Round(60 / bpm * frameRate * scrollSpeed))
}

// BeatInterval returns 60/bpm seconds. A non-positive rate yields 0.
func BeatInterval(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(bpm)
}

// =============================================================================
// SCHEDULER
// =============================================================================

// State is the scheduler's position in its fire/wait cycle.
type State int

const (
	// Idle means no beat is armed.
	Idle State = iota
	// Waiting means a beat is armed for Deadline.
	Waiting
	// Firing is held only while a boundary is being applied.
	Firing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Waiting:
		return "waiting"
	case Firing:
		return "firing"
	default:
		return "unknown"
	}
}

// Scheduler marks beat boundaries. Each firing resets the sink's phase,
// recomputes pixels-per-beat from the current rate and arms the next firing
// 60/BPM later. When the rate source is a RateNotifier, pixels-per-beat is
// also pushed to the sink on every rate change, leaving phase and the armed
// deadline alone.
type Scheduler struct {
	rate        RateSource
	sink        PhaseSink
	frameRate   float64
	scrollSpeed float64

	state    State
	deadline time.Time
	beats    uint64
	lastPPB  int
}

// NewScheduler creates an idle scheduler.
func NewScheduler(rate RateSource, sink PhaseSink, frameRate, scrollSpeed float64) *Scheduler {
	s := &Scheduler{
		rate:        rate,
		sink:        sink,
		frameRate:   frameRate,
		scrollSpeed: scrollSpeed,
	}
	if n, ok := rate.(RateNotifier); ok {
		n.Subscribe(s.rateChanged)
	}
	return s
}

// rateChanged recomputes pixels-per-beat mid-beat.
func (s *Scheduler) rateChanged(bpm int) {
	s.lastPPB = PixelsPerBeat(bpm, s.frameRate, s.scrollSpeed)
	if s.sink != nil {
		s.sink.SetPixelsPerBeat(s.lastPPB)
	}
}

// Fire applies a beat boundary at now and returns the delay until the next
// one.
func (s *Scheduler) Fire(now time.Time) time.Duration {
	s.state = Firing

	bpm := s.rate.BPM()
	s.lastPPB = PixelsPerBeat(bpm, s.frameRate, s.scrollSpeed)
	if s.sink != nil {
		s.sink.SetPixelsPerBeat(s.lastPPB)
		s.sink.ResetPhase()
	}
	s.beats++

	delay := BeatInterval(bpm)
	s.deadline = now.Add(delay)
	s.state = Waiting
	return delay
}

// Due reports whether an armed beat has reached its deadline.
func (s *Scheduler) Due(now time.Time) bool {
	return s.state == Waiting && !now.Before(s.deadline)
}

// Tick fires if the armed beat is due and reports whether it did.
func (s *Scheduler) Tick(now time.Time) bool {
	if !s.Due(now) {
		return false
	}
	s.Fire(s.deadline)
	return true
}

// Stop disarms the scheduler.
func (s *Scheduler) Stop() {
	s.state = Idle
	s.deadline = time.Time{}
}

// State returns the current state.
func (s *Scheduler) State() State {
	return s.state
}

// Deadline returns when the armed beat fires. Zero when idle.
func (s *Scheduler) Deadline() time.Time {
	return s.deadline
}

// Beats returns the number of boundaries fired.
func (s *Scheduler) Beats() uint64 {
	return s.beats
}

// PixelsPerBeat returns the value last pushed to the sink.
func (s *Scheduler) PixelsPerBeat() int {
	return s.lastPPB
}

// SetTiming updates frame rate and scroll speed for subsequent boundaries.
func (s *Scheduler) SetTiming(frameRate, scrollSpeed float64) {
	s.frameRate = frameRate
	s.scrollSpeed = scrollSpeed
}
