// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"math"
	"sync/atomic"

	"golang.org/x/time/rate"
)

// Drop reasons.
const (
	DropOutOfRange = "out_of_range"
	DropTooFast    = "too_fast"
)

// Gate filters beats by plausibility and arrival rate.
type Gate struct {
	limiter *rate.Limiter
	minBPM  float64
	maxBPM  float64
	dropped atomic.Uint64
}

// NewGate allows at most maxPerSec beats per second with rates in
// [minBPM, maxBPM].
func NewGate(maxPerSec, minBPM, maxBPM float64) *Gate {
	limit := rate.Inf
	if maxPerSec > 0 {
		limit = rate.Limit(maxPerSec)
	}
	return &Gate{
		limiter: rate.NewLimiter(limit, 1),
		minBPM:  minBPM,
		maxBPM:  maxBPM,
	}
}

// Allow reports whether b should reach the monitor. The limiter is charged
// at the beat's own timestamp so replayed feeds are judged by their spacing.
func (g *Gate) Allow(b Beat) (bool, string) {
	if math.IsNaN(b.BPM) || b.BPM < g.minBPM || b.BPM > g.maxBPM {
		g.dropped.Add(1)
		return false, DropOutOfRange
	}
	if !g.limiter.AllowN(b.At, 1) {
		g.dropped.Add(1)
		return false, DropTooFast
	}
	return true, ""
}

// Dropped returns the number of beats rejected so far.
func (g *Gate) Dropped() uint64 {
	return g.dropped.Load()
}
