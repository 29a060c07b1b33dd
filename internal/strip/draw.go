// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package strip

import "math"

const (
	// DefaultGlowRadius is the glow radius in surface pixels.
	DefaultGlowRadius = 10.0

	dashOn  = 3
	dashOff = 8
)

// Draw paints one frame of the strip: background, dashed centerline, the
// sample polyline and a glow at the newest sample. height is the logical
// surface height the samples are expressed in.
//
// It reports false and leaves the canvas untouched when there is nothing to
// draw on or the history width does not match the canvas, which happens for
// the frame between a resize and the next buffer rebuild.
func Draw(c *Canvas, buf *SampleBuffer, height, glowRadius float64) bool {
	if c == nil || buf == nil || height <= 0 {
		return false
	}
	n := buf.Len()
	if n == 0 || n != c.DotWidth() || c.DotHeight() == 0 {
		return false
	}

	c.Clear()
	c.Fill()

	scale := float64(c.DotHeight()-1) / height
	toDot := func(y float64) int {
		d := int(math.Round(y * scale))
		if d < 0 {
			return 0
		}
		if d >= c.DotHeight() {
			return c.DotHeight() - 1
		}
		return d
	}

	c.DashedHLine(toDot(height/2), dashOn, dashOff, LayerBaseline)

	prevY := toDot(buf.At(0))
	c.Set(0, prevY, LayerTrace)
	for x := 1; x < n; x++ {
		y := toDot(buf.At(x))
		c.Line(x-1, prevY, x, y, LayerTrace)
		prevY = y
	}

	c.SetGlow(float64(n-1), buf.Newest()*scale, glowRadius, glowRadius*scale)
	return true
}
