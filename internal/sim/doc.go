// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sim runs the monitor without a terminal.
//
// A Sim owns the same rhythm driver, beat scheduler and strip loop as the
// TUI component, but it is stepped by its caller with explicit timestamps.
// The snapshot command steps it on a virtual clock; the serve command steps
// it from a real ticker.
package sim
