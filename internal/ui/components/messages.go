// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/feed"
)

// =============================================================================
// TICK MESSAGES
// =============================================================================

// Every tick carries the id of the monitor that armed it and the generation
// it was armed in. A monitor drops ticks whose generation is stale, which
// is how Stop cancels all three loops at once.

// DriftTickMsg asks the rhythm driver for one random-walk step.
type DriftTickMsg struct {
	ID   int
	Gen  int
	Time time.Time
}

// BeatMsg marks a beat boundary.
type BeatMsg struct {
	ID   int
	Gen  int
	Time time.Time
}

// FrameMsg advances the strip by one frame.
type FrameMsg struct {
	ID   int
	Gen  int
	Time time.Time
}

// =============================================================================
// FEED AND CONFIG MESSAGES
// =============================================================================

// FeedBeatMsg delivers one beat from an external feed.
type FeedBeatMsg struct {
	ID   int
	Beat feed.Beat
}

// FeedClosedMsg reports that the feed channel closed.
type FeedClosedMsg struct {
	ID int
}

// ConfigReloadedMsg carries a configuration reloaded from disk.
type ConfigReloadedMsg struct {
	Config *config.Config
}

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

func driftCmd(id, gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return DriftTickMsg{ID: id, Gen: gen, Time: t}
	})
}

func beatCmd(id, gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return BeatMsg{ID: id, Gen: gen, Time: t}
	})
}

func frameCmd(id, gen int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg{ID: id, Gen: gen, Time: t}
	})
}

func listenCmd(id int, ch <-chan feed.Beat) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return FeedClosedMsg{ID: id}
		}
		return FeedBeatMsg{ID: id, Beat: b}
	}
}
