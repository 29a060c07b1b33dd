// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package strip implements the scrolling strip chart: a fixed-width sample
// history, the per-frame loop that appends new samples, and a braille dot
// canvas the history is drawn onto.
//
// One sample is one horizontal pixel. Each frame appends ceil(scroll speed)
// samples on the right and drops as many on the left, so the trace moves
// right to left at a constant speed while beat boundaries reset the phase.
package strip
