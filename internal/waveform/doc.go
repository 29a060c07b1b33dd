// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package waveform synthesizes one ECG-like heartbeat as a function of beat
// phase.
//
// A beat is described by a Shape: an ordered table of segments that tile the
// phase interval [0, 1]. Each segment is flat, a half sine or a triangle, and
// deflects either up or down from the baseline by a fraction of the
// amplitude. Screen coordinates grow downward, so an upward deflection
// subtracts from mid.
//
// # Usage
//
//	y := waveform.QRSY(0.32, 45, 38.25)
//
//	shape := waveform.CanonicalShape()
//	if seg, ok := shape.SegmentAt(0.32); ok {
//	    fmt.Println(seg.Name) // "R"
//	}
package waveform
