// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the UI components of the heartline TUI.

# Components

HeartRateMonitor (monitor.go, monitor_view.go) - The strip-chart panel. It
hosts the rhythm driver, the beat scheduler and the render loop, and draws
the trace on a braille canvas with a pulse dot, the tabular BPM and a
caption.

ToastManager (toast.go) - Auto-dismissing one-line notices for snapshots,
clipboard copies and feed errors.

KeyMap (keys.go) - Key bindings with bubbles/help support.

# Ticks

The monitor arms three tea.Tick loops: DriftTickMsg, BeatMsg and FrameMsg.
Each message carries the monitor id and a generation; Stop bumps the
generation so every pending tick is ignored when it arrives.

# Usage

	mon := components.NewHeartRateMonitor(components.MonitorOptions{Config: cfg})
	cmd := mon.Start()
	...
	mon, cmd = mon.Update(msg)
*/
package components
