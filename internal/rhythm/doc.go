// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package rhythm drives the simulated heart rate and the beat boundaries it
// implies.
//
// # Key Types
//
//   - Driver: owns the current BPM and random-walks it within bounds
//   - Scheduler: fires beat boundaries every 60/BPM seconds
//   - External: applies measured rates from a real beat feed instead
//
// Nothing here starts goroutines or timers. Callers own the clock and feed
// the current time in, which keeps stepping deterministic in tests and lets
// the TUI runtime act as the host scheduler.
package rhythm
