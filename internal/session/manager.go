// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Reading is one recorded rate.
type Reading struct {
	BPM float64
	At  time.Time
}

// Config holds configuration for the session manager.
type Config struct {
	// MaxReadings bounds the history; the oldest readings are dropped.
	MaxReadings int

	// Now supplies the clock. Nil uses time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		MaxReadings: 4096,
	}
}

// Manager records the rates shown during a session.
type Manager struct {
	mu sync.Mutex

	sessionID string
	startTime time.Time
	now       func() time.Time

	readings    []Reading
	maxReadings int
	total       int
}

// NewManager creates a new session manager.
func NewManager(cfg Config) *Manager {
	if cfg.MaxReadings <= 0 {
		cfg.MaxReadings = DefaultConfig().MaxReadings
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{
		sessionID:   uuid.NewString(),
		startTime:   cfg.Now(),
		now:         cfg.Now,
		maxReadings: cfg.MaxReadings,
	}
}

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// StartTime returns when the session started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Sub(m.startTime)
}

// =============================================================================
// READINGS
// =============================================================================

// Record appends a reading.
func (m *Manager) Record(bpm float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.readings) == m.maxReadings {
		copy(m.readings, m.readings[1:])
		m.readings = m.readings[:len(m.readings)-1]
	}
	m.readings = append(m.readings, Reading{BPM: bpm, At: at})
	m.total++
}

// Readings returns a copy of the retained history, oldest first.
func (m *Manager) Readings() []Reading {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Reading, len(m.readings))
	copy(out, m.readings)
	return out
}

// Reset starts a new session with a fresh id.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = uuid.NewString()
	m.startTime = m.now()
	m.readings = m.readings[:0]
	m.total = 0
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats summarises the retained readings.
type Stats struct {
	Count  int     `json:"count"`
	Total  int     `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Last   float64 `json:"last"`
}

// Stats computes the summary. A session without readings returns zeros.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	values := make([]float64, len(m.readings))
	for i, r := range m.readings {
		values[i] = r.BPM
	}
	total := m.total
	m.mu.Unlock()

	st := Stats{Count: len(values), Total: total}
	if len(values) == 0 {
		return st
	}

	st.Last = values[len(values)-1]
	st.Min = floats.Min(values)
	st.Max = floats.Max(values)
	if len(values) > 1 {
		st.Mean, st.StdDev = stat.MeanStdDev(values, nil)
	} else {
		st.Mean = values[0]
	}

	sort.Float64s(values)
	st.Median = stat.Quantile(0.5, stat.Empirical, values, nil)
	return st
}
