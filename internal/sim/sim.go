// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package sim

import (
	"math"
	"math/rand"
	"time"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/export"
	"github.com/jeranaias/heartline/internal/feed"
	"github.com/jeranaias/heartline/internal/rhythm"
	"github.com/jeranaias/heartline/internal/session"
	"github.com/jeranaias/heartline/internal/strip"
)

// Beat is one beat boundary.
type Beat struct {
	BPM    int       `json:"bpm"`
	At     time.Time `json:"at"`
	Source string    `json:"source"`
}

// Sim is a headless monitor. It is not safe for concurrent use.
type Sim struct {
	mc config.MonitorConfig

	loop     *strip.Loop
	driver   *rhythm.Driver
	sched    *rhythm.Scheduler
	external *rhythm.External
	sess     *session.Manager

	feedName  string
	bpm       int
	now       time.Time
	nextDrift time.Time
	lastBeat  time.Time
	started   bool

	observers []func(Beat)
}

// New creates a stopped simulation whose clock reads start. The strip is
// monitor.width pixels wide, or the fallback width when that is 0.
func New(cfg *config.Config, start time.Time) *Sim {
	mc := cfg.Monitor
	s := &Sim{mc: mc, now: start}

	s.loop = strip.NewLoop(strip.LoopConfig{
		Height:      float64(mc.Height),
		ScrollSpeed: mc.ScrollSpeed,
		Amplitude:   mc.Amplitude,
	})
	width := mc.Width
	if width <= 0 {
		width = strip.FallbackWidth
	}
	s.loop.Resize(width)

	seed := mc.Seed
	if seed == 0 {
		seed = start.UnixNano()
	}
	s.driver = rhythm.NewDriver(rhythm.DriverConfig{
		Initial:     mc.BPMDefault,
		Bounds:      rhythm.Bounds{Min: mc.BPMMin, Max: mc.BPMMax},
		MaxStep:     mc.DriftMaxStep,
		MinInterval: mc.DriftMin(),
		MaxInterval: mc.DriftMax(),
		Source:      rand.NewSource(seed),
	})
	s.sched = rhythm.NewScheduler(s.driver, s.loop, mc.FrameRate, mc.ScrollSpeed)
	s.external = rhythm.NewExternal(s.loop, rhythm.Bounds{
		Min: int(math.Ceil(cfg.Feed.MinBPM)),
		Max: int(math.Floor(cfg.Feed.MaxBPM)),
	}, mc.FrameRate, mc.ScrollSpeed)
	s.sess = session.NewManager(session.Config{Now: func() time.Time { return s.now }})

	s.bpm = s.driver.BPM()
	s.driver.Subscribe(func(bpm int) { s.bpm = bpm })
	s.external.Subscribe(func(bpm int) { s.bpm = bpm })
	return s
}

// AttachFeed switches to feed mode: beats come from Feed and the simulated
// rhythm does not run.
func (s *Sim) AttachFeed(name string) {
	s.feedName = name
	s.sched.Stop()
}

// FeedMode reports whether beats come from a feed.
func (s *Sim) FeedMode() bool { return s.feedName != "" }

// OnBeat registers fn to be called at every beat boundary.
func (s *Sim) OnBeat(fn func(Beat)) {
	s.observers = append(s.observers, fn)
}

// Start fires the first beat at the current clock. It is a no-op in feed
// mode and on a started simulation.
func (s *Sim) Start() {
	if s.started {
		return
	}
	s.started = true
	if s.FeedMode() {
		return
	}
	s.sched.Fire(s.now)
	s.nextDrift = s.now.Add(s.driver.NextInterval())
	s.beat(s.now)
}

// Step moves the clock to now and advances one frame: a due drift step, a
// due beat boundary, then the strip.
func (s *Sim) Step(now time.Time) {
	s.now = now
	if s.started && !s.FeedMode() {
		if !now.Before(s.nextDrift) {
			s.driver.Step()
			s.nextDrift = s.nextDrift.Add(s.driver.NextInterval())
		}
		if s.sched.Tick(now) {
			s.beat(now)
		}
	}
	s.loop.Advance()
}

// Advance steps d of virtual time frame by frame.
func (s *Sim) Advance(d time.Duration) {
	frame := s.mc.FrameInterval()
	if frame <= 0 {
		return
	}
	for n := int(d / frame); n > 0; n-- {
		s.Step(s.now.Add(frame))
	}
}

// Feed applies a measured beat. It reports whether the beat was accepted.
func (s *Sim) Feed(b feed.Beat) bool {
	if _, ok := s.external.Trigger(b.BPM, b.At); !ok {
		return false
	}
	s.beat(s.now)
	return true
}

func (s *Sim) beat(at time.Time) {
	s.lastBeat = at
	s.sess.Record(float64(s.bpm), at)
	b := Beat{BPM: s.bpm, At: at, Source: s.Source()}
	for _, fn := range s.observers {
		fn(b)
	}
}

// BPM returns the current rate.
func (s *Sim) BPM() int { return s.bpm }

// Now returns the simulation clock.
func (s *Sim) Now() time.Time { return s.now }

// LastBeat returns when the last beat boundary fired.
func (s *Sim) LastBeat() time.Time { return s.lastBeat }

// Loop returns the strip loop.
func (s *Sim) Loop() *strip.Loop { return s.loop }

// Session returns the session manager.
func (s *Sim) Session() *session.Manager { return s.sess }

// Source names where the rate comes from.
func (s *Sim) Source() string {
	if s.feedName == "" {
		return config.FeedSimulated
	}
	return s.feedName
}

// Snapshot captures the strip for export.
func (s *Sim) Snapshot() export.Snapshot {
	return export.Snapshot{
		SessionID: s.sess.SessionID(),
		Taken:     s.now,
		BPM:       s.bpm,
		Source:    s.Source(),
		Width:     s.loop.Width(),
		Height:    s.loop.Height(),
		Samples:   s.loop.Buffer().Samples(),
		Stats:     s.sess.Stats(),
	}
}
