// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/heartline/internal/strip"
	"github.com/jeranaias/heartline/internal/ui/styles"
	"github.com/jeranaias/heartline/internal/util"
)

// SimulatedCaption is the footer shown while the rhythm is simulated.
const SimulatedCaption = "Simulated · not medical data"

// =============================================================================
// VIEW
// =============================================================================

// View renders the monitor panel.
func (m *HeartRateMonitor) View() string {
	width := m.canvas.Cols()
	if width == 0 {
		return ""
	}
	parts := []string{
		m.renderHeader(width),
		m.stripView,
		m.renderFooter(width),
	}
	if m.showStats {
		parts = append(parts, m.renderStats(width))
	}
	return m.theme.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// StripView returns the last drawn strip without the panel.
func (m *HeartRateMonitor) StripView() string {
	return m.stripView
}

// BPMText is the tabular rate, always three columns.
func (m *HeartRateMonitor) BPMText() string {
	return util.PadLeft(strconv.Itoa(m.bpm), 3)
}

func (m *HeartRateMonitor) renderHeader(width int) string {
	pulse := styles.PulseIntensity(m.now().Sub(m.lastBeat), styles.PulseDuration, styles.EaseOutCubic)
	if m.lastBeat.IsZero() {
		pulse = 0
	}
	dot := styles.PulseGlyph(pulse)
	label := "HEART RATE"

	var status string
	switch {
	case !m.running:
		status = "PAUSED"
	case m.FeedMode():
		status = "LIVE"
	}

	left := dot + " " + label
	right := m.BPMText() + " BPM"
	if status != "" {
		right = status + "  " + right
	}

	gap := width - util.StringWidth(left) - util.StringWidth(right)
	if gap < 1 {
		return m.theme.BPM.Render(util.TruncateWidth(m.BPMText()+" BPM", width))
	}

	var sb strings.Builder
	sb.WriteString(m.theme.Pulse.Render(dot))
	sb.WriteString(" ")
	sb.WriteString(m.theme.Label.Render(label))
	sb.WriteString(strings.Repeat(" ", gap))
	switch status {
	case "PAUSED":
		sb.WriteString(m.theme.Paused.Render(status) + "  ")
	case "LIVE":
		sb.WriteString(m.theme.Live.Render(status) + "  ")
	}
	sb.WriteString(m.theme.BPM.Render(m.BPMText()))
	sb.WriteString(m.theme.Unit.Render(" BPM"))
	return sb.String()
}

// Caption returns the plain footer text.
func (m *HeartRateMonitor) Caption() string {
	if !m.FeedMode() {
		return SimulatedCaption
	}
	c := "Feed " + m.feedName
	if m.feedDone {
		c += " (closed)"
	}
	return c + " · not medical data"
}

func (m *HeartRateMonitor) renderFooter(width int) string {
	return m.theme.Caption.Render(util.TruncateWidth(m.Caption(), width))
}

// StatsText returns the plain statistics line.
func (m *HeartRateMonitor) StatsText() string {
	st := m.sess.Stats()
	if st.Count == 0 {
		return "no readings yet"
	}
	return fmt.Sprintf("mean %.1f  sd %.1f  median %.0f  range %.0f-%.0f  beats %d  %s",
		st.Mean, st.StdDev, st.Median, st.Min, st.Max, st.Total,
		m.sess.Duration().Truncate(time.Second))
}

func (m *HeartRateMonitor) renderStats(width int) string {
	return m.theme.Stats.Render(util.TruncateWidth(m.StatsText(), width))
}

// =============================================================================
// CANVAS RENDERING
// =============================================================================

type cellStyle struct {
	fg, bg lipgloss.Color
}

func (m *HeartRateMonitor) styleFor(cell strip.Cell) cellStyle {
	cs := cellStyle{bg: m.palette.GlowBackground(cell.Glow)}
	switch {
	case cell.Layers&strip.LayerTrace != 0:
		cs.fg = m.palette.TraceColor(cell.Glow)
	case cell.Layers&strip.LayerBaseline != 0:
		cs.fg = m.palette.BaselineColor()
	default:
		cs.fg = m.palette.TraceColor(0)
	}
	return cs
}

// renderCanvas colours the braille grid, one style per run of equally
// styled cells.
func (m *HeartRateMonitor) renderCanvas() string {
	c := m.canvas
	var sb strings.Builder
	var run strings.Builder
	for row := 0; row < c.Rows(); row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		var cur cellStyle
		run.Reset()
		flush := func() {
			if run.Len() == 0 {
				return
			}
			sb.WriteString(lipgloss.NewStyle().Foreground(cur.fg).Background(cur.bg).Render(run.String()))
			run.Reset()
		}
		for col := 0; col < c.Cols(); col++ {
			cell := c.Cell(col, row)
			cs := m.styleFor(cell)
			if col > 0 && cs != cur {
				flush()
			}
			cur = cs
			run.WriteRune(cell.Rune)
		}
		flush()
	}
	return sb.String()
}
