// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package strip

import (
	"math"
	"strings"
)

// =============================================================================
// BRAILLE CANVAS
// =============================================================================

// Layer tags what was drawn into a cell.
type Layer uint8

const (
	// LayerBaseline is the dashed centerline.
	LayerBaseline Layer = 1 << iota
	// LayerTrace is the waveform polyline.
	LayerTrace
)

// Each terminal cell holds a 2x4 braille dot matrix.
const (
	dotsPerCol  = 2
	dotsPerRow  = 4
	brailleBase = 0x2800
)

// brailleBits maps [x][y] within a cell to its dot bit.
var brailleBits = [dotsPerCol][dotsPerRow]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// Cell is one rendered terminal cell.
type Cell struct {
	Rune   rune
	Layers Layer
	// Glow is the glow intensity at the cell centre, 0..1.
	Glow float64
}

// Canvas is a braille dot grid.
type Canvas struct {
	cols, rows int
	bits       []uint8
	layers     []Layer
	filled     bool

	glowOn         bool
	glowX, glowY   float64
	glowRX, glowRY float64
}

// NewCanvas creates a canvas of cols x rows terminal cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the grid and clears it.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols, c.rows = cols, rows
	c.bits = make([]uint8, cols*rows)
	c.layers = make([]Layer, cols*rows)
	c.filled = false
	c.glowOn = false
}

// Cols returns the width in cells.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height in cells.
func (c *Canvas) Rows() int { return c.rows }

// DotWidth returns the width in dots.
func (c *Canvas) DotWidth() int { return c.cols * dotsPerCol }

// DotHeight returns the height in dots.
func (c *Canvas) DotHeight() int { return c.rows * dotsPerRow }

// Filled reports whether the background was painted this frame.
func (c *Canvas) Filled() bool { return c.filled }

// Clear removes every dot, the background and the glow.
func (c *Canvas) Clear() {
	for i := range c.bits {
		c.bits[i] = 0
		c.layers[i] = 0
	}
	c.filled = false
	c.glowOn = false
}

// Fill paints the background.
func (c *Canvas) Fill() {
	c.filled = true
}

// Set turns on the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int, l Layer) {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return
	}
	i := (y/dotsPerRow)*c.cols + x/dotsPerCol
	c.bits[i] |= brailleBits[x%dotsPerCol][y%dotsPerRow]
	c.layers[i] |= l
}

// IsSet reports whether the dot at (x, y) is on.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x >= c.DotWidth() || y >= c.DotHeight() {
		return false
	}
	i := (y/dotsPerRow)*c.cols + x/dotsPerCol
	return c.bits[i]&brailleBits[x%dotsPerCol][y%dotsPerRow] != 0
}

// Line draws a Bresenham line between two dots, both ends included.
func (c *Canvas) Line(x0, y0, x1, y1 int, l Layer) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.Set(x0, y0, l)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DashedHLine draws a horizontal dashed line on dot row y: on dots lit,
// then off dots dark, repeated across the width.
func (c *Canvas) DashedHLine(y, on, off int, l Layer) {
	period := on + off
	if on <= 0 || period <= 0 {
		return
	}
	for x := 0; x < c.DotWidth(); x++ {
		if x%period < on {
			c.Set(x, y, l)
		}
	}
}

// SetGlow places a radial glow centred on dot (x, y) with radii rx and ry
// in dots.
func (c *Canvas) SetGlow(x, y, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		c.glowOn = false
		return
	}
	c.glowOn = true
	c.glowX, c.glowY = x, y
	c.glowRX, c.glowRY = rx, ry
}

// GlowAt returns the glow intensity at dot (x, y): 1 at the centre falling
// linearly to 0 at the radius.
func (c *Canvas) GlowAt(x, y float64) float64 {
	if !c.glowOn {
		return 0
	}
	dx := (x - c.glowX) / c.glowRX
	dy := (y - c.glowY) / c.glowRY
	d := math.Sqrt(dx*dx + dy*dy)
	if d >= 1 {
		return 0
	}
	return 1 - d
}

// Cell returns the rendered cell at (col, row).
func (c *Canvas) Cell(col, row int) Cell {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return Cell{Rune: ' '}
	}
	i := row*c.cols + col
	cell := Cell{
		Rune:   ' ',
		Layers: c.layers[i],
		Glow: c.GlowAt(
			float64(col*dotsPerCol)+float64(dotsPerCol-1)/2,
			float64(row*dotsPerRow)+float64(dotsPerRow-1)/2,
		),
	}
	if c.bits[i] != 0 {
		cell.Rune = rune(brailleBase + int(c.bits[i]))
	}
	return cell
}

// String renders the dots without colour, one line per row.
func (c *Canvas) String() string {
	var sb strings.Builder
	for row := 0; row < c.rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < c.cols; col++ {
			sb.WriteRune(c.Cell(col, row).Rune)
		}
	}
	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
