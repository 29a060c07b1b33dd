// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package strip

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var timeZero = time.Unix(0, 0)

type fixedRate int

func (f fixedRate) BPM() int { return int(f) }

// =============================================================================
// CANVAS TESTS
// =============================================================================

func TestCanvas_Dimensions(t *testing.T) {
	c := NewCanvas(10, 3)
	require.Equal(t, 20, c.DotWidth())
	require.Equal(t, 12, c.DotHeight())
	require.Equal(t, 10, c.Cols())
	require.Equal(t, 3, c.Rows())
}

func TestCanvas_BrailleBits(t *testing.T) {
	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, '⠁'},
		{0, 3, '⡀'},
		{1, 0, '⠈'},
		{1, 3, '⢀'},
	}
	for _, tt := range tests {
		c := NewCanvas(1, 1)
		c.Set(tt.x, tt.y, LayerTrace)
		if got := c.Cell(0, 0).Rune; got != tt.want {
			t.Errorf("dot (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}

	c := NewCanvas(1, 1)
	for x := 0; x < 2; x++ {
		for y := 0; y < 4; y++ {
			c.Set(x, y, LayerTrace)
		}
	}
	require.Equal(t, '⣿', c.Cell(0, 0).Rune)
}

func TestCanvas_SetOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	require.NotPanics(t, func() {
		c.Set(-1, 0, LayerTrace)
		c.Set(0, 99, LayerTrace)
		c.Set(4, 0, LayerTrace)
	})
	require.Equal(t, "  \n  ", c.String())
}

func TestCanvas_LineIsContinuous(t *testing.T) {
	c := NewCanvas(10, 4)
	c.Line(0, 0, 19, 15, LayerTrace)
	// Every column between the ends has at least one dot.
	for x := 0; x < 20; x++ {
		found := false
		for y := 0; y < 16; y++ {
			if c.IsSet(x, y) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("column %d empty", x)
		}
	}
	require.True(t, c.IsSet(0, 0))
	require.True(t, c.IsSet(19, 15))
}

func TestCanvas_VerticalLine(t *testing.T) {
	c := NewCanvas(1, 2)
	c.Line(0, 7, 0, 0, LayerTrace)
	for y := 0; y < 8; y++ {
		require.True(t, c.IsSet(0, y), "dot %d", y)
	}
}

func TestCanvas_DashedHLine(t *testing.T) {
	c := NewCanvas(11, 1)
	c.DashedHLine(2, 3, 8, LayerBaseline)
	for x := 0; x < 22; x++ {
		want := x%11 < 3
		if c.IsSet(x, 2) != want {
			t.Errorf("dash at %d = %v, want %v", x, c.IsSet(x, 2), want)
		}
	}
	require.Equal(t, LayerBaseline, c.Cell(0, 0).Layers)
}

func TestCanvas_Glow(t *testing.T) {
	c := NewCanvas(20, 4)
	c.SetGlow(10, 8, 10, 4)
	require.Equal(t, 1.0, c.GlowAt(10, 8))
	require.InDelta(t, 0.5, c.GlowAt(15, 8), 1e-9)
	require.Equal(t, 0.0, c.GlowAt(25, 8))
	require.Equal(t, 0.0, c.GlowAt(10, 13))

	c.Clear()
	require.Equal(t, 0.0, c.GlowAt(10, 8))
}

// =============================================================================
// DRAW TESTS
// =============================================================================

func TestDraw_FlatLine(t *testing.T) {
	c := NewCanvas(20, 6)
	buf := NewSampleBuffer(c.DotWidth(), 45)

	require.True(t, Draw(c, buf, 90, DefaultGlowRadius))
	require.True(t, c.Filled())

	row := 12 // round(45 * 23/90)
	for x := 0; x < c.DotWidth(); x++ {
		if !c.IsSet(x, row) {
			t.Errorf("trace missing at x=%d", x)
		}
	}
	cell := c.Cell(0, row/4)
	require.NotZero(t, cell.Layers&LayerTrace)
	require.NotZero(t, cell.Layers&LayerBaseline)

	// Glow sits on the newest sample at the right edge.
	require.Greater(t, c.Cell(c.Cols()-1, row/4).Glow, 0.0)
	require.Equal(t, 0.0, c.Cell(0, row/4).Glow)
}

func TestDraw_PeakReachesTop(t *testing.T) {
	l := NewLoop(LoopConfig{})
	c := NewCanvas(100, 8)
	l.Resize(c.DotWidth())
	l.SetPixelsPerBeat(75)
	for i := 0; i < 40; i++ {
		l.Advance()
	}
	require.True(t, Draw(c, l.Buffer(), l.Height(), DefaultGlowRadius))

	top := c.DotHeight()
	for y := 0; y < c.DotHeight(); y++ {
		for x := 0; x < c.DotWidth(); x++ {
			if c.IsSet(x, y) {
				top = y
				break
			}
		}
		if top != c.DotHeight() {
			break
		}
	}
	// R peak is 0.95*0.85 of half height above mid.
	require.Less(t, top, c.DotHeight()/4)
}

func TestDraw_Guards(t *testing.T) {
	c := NewCanvas(10, 2)
	require.False(t, Draw(nil, NewSampleBuffer(20, 1), 90, 10))
	require.False(t, Draw(c, nil, 90, 10))

	c.Set(0, 0, LayerTrace)
	require.False(t, Draw(c, NewSampleBuffer(19, 45), 90, 10))
	// A mismatched frame leaves the previous picture in place.
	require.True(t, c.IsSet(0, 0))
	require.False(t, c.Filled())
}

func TestCanvas_String(t *testing.T) {
	c := NewCanvas(3, 2)
	Draw(c, NewSampleBuffer(6, 45), 90, 10)
	lines := strings.Split(c.String(), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		require.Equal(t, 3, len([]rune(line)))
	}
}

func TestDraw_AfterResize(t *testing.T) {
	l := NewLoop(LoopConfig{})
	c := NewCanvas(200, 8)
	l.Resize(c.DotWidth())
	l.SetPixelsPerBeat(75)
	for i := 0; i < 30; i++ {
		l.Advance()
	}
	require.True(t, Draw(c, l.Buffer(), l.Height(), DefaultGlowRadius))

	// Surface shrinks 400 -> 250 dots; the stale canvas is skipped for one frame.
	require.True(t, l.Resize(250))
	l.Advance()
	require.NotPanics(t, func() {
		require.False(t, Draw(c, l.Buffer(), l.Height(), DefaultGlowRadius))
	})
	require.True(t, c.Filled(), "previous picture kept")

	c.Resize(125, 8)
	require.Equal(t, 250, c.DotWidth())
	require.NotPanics(t, func() {
		require.True(t, Draw(c, l.Buffer(), l.Height(), DefaultGlowRadius))
	})
	require.Equal(t, 250, l.Buffer().Len())
}
