// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/export"
	"github.com/jeranaias/heartline/internal/feed"
	"github.com/jeranaias/heartline/internal/session"
	"github.com/jeranaias/heartline/internal/sim"
	"github.com/jeranaias/heartline/internal/storage"
)

// subscriberBuffer is the per-subscriber beat backlog. Beats beyond it are
// dropped for that subscriber.
const subscriberBuffer = 8

// Reading is the current rate as served by /bpm.
type Reading struct {
	BPM        int       `json:"bpm"`
	Source     string    `json:"source"`
	At         time.Time `json:"at"`
	LastBeat   time.Time `json:"last_beat"`
	Disclaimer string    `json:"disclaimer"`
}

// Disclaimer accompanies every reading.
const Disclaimer = "simulated or relayed rate, not medical data"

// Live runs a headless monitor in real time and fans its beats out to
// subscribers. It is safe for concurrent use.
type Live struct {
	mu    sync.Mutex
	sim   *sim.Sim
	now   func() time.Time
	frame time.Duration

	subs    map[int]chan sim.Beat
	nextSub int
	dropped atomic.Uint64
}

// NewLive creates a started live monitor. now supplies the clock.
func NewLive(cfg *config.Config, now func() time.Time) *Live {
	if now == nil {
		now = time.Now
	}
	l := &Live{
		sim:   sim.New(cfg, now()),
		now:   now,
		frame: cfg.Monitor.FrameInterval(),
		subs:  make(map[int]chan sim.Beat),
	}
	l.sim.OnBeat(l.publish)
	return l
}

// AttachFeed switches to feed mode. Call before Start.
func (l *Live) AttachFeed(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sim.AttachFeed(name)
}

// Start fires the first beat.
func (l *Live) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sim.Start()
}

// Step advances one frame at the current time.
func (l *Live) Step() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sim.Step(l.now())
}

// Feed applies a measured beat.
func (l *Live) Feed(b feed.Beat) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Feed(b)
}

// Run starts the monitor and steps it every frame until ctx is done. Beats
// from a non-nil beats channel are applied as they arrive.
func (l *Live) Run(ctx context.Context, beats <-chan feed.Beat) {
	l.Start()
	ticker := time.NewTicker(l.frame)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Step()
		case b, ok := <-beats:
			if !ok {
				log.Printf("FEED_CLOSED | source=%s", l.source())
				beats = nil
				continue
			}
			l.Feed(b)
		}
	}
}

func (l *Live) source() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Source()
}

// Reading returns the current rate.
func (l *Live) Reading() Reading {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Reading{
		BPM:        l.sim.BPM(),
		Source:     l.sim.Source(),
		At:         l.sim.Now(),
		LastBeat:   l.sim.LastBeat(),
		Disclaimer: Disclaimer,
	}
}

// Snapshot captures the strip.
func (l *Live) Snapshot() export.Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Snapshot()
}

// Stats returns the session statistics.
func (l *Live) Stats() session.Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Session().Stats()
}

// Record captures the session for the history database.
func (l *Live) Record(ended time.Time) storage.SessionRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return storage.NewRecord(l.sim.Session(), l.sim.Source(), ended)
}

// SessionID returns the session id.
func (l *Live) SessionID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sim.Session().SessionID()
}

// =============================================================================
// FAN-OUT
// =============================================================================

// Subscribe returns a channel of beat boundaries and a func that cancels
// the subscription. A slow subscriber loses beats rather than blocking the
// monitor.
func (l *Live) Subscribe() (<-chan sim.Beat, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSub
	l.nextSub++
	ch := make(chan sim.Beat, subscriberBuffer)
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.subs, id)
			l.mu.Unlock()
		})
	}
}

// Subscribers returns the number of active subscriptions.
func (l *Live) Subscribers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// Dropped returns the number of beats dropped for slow subscribers.
func (l *Live) Dropped() uint64 {
	return l.dropped.Load()
}

// publish runs under l.mu from the simulation's beat observer.
func (l *Live) publish(b sim.Beat) {
	for _, ch := range l.subs {
		select {
		case ch <- b:
		default:
			l.dropped.Add(1)
		}
	}
}
