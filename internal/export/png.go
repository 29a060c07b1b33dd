// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PNGExporter draws the strip as a line chart.
type PNGExporter struct {
	palette Palette
	width   vg.Length
	height  vg.Length
}

// NewPNGExporter creates a PNG exporter.
func NewPNGExporter(opts *Options) *PNGExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &PNGExporter{
		palette: opts.Palette,
		width:   10 * vg.Inch,
		height:  3 * vg.Inch,
	}
}

// Export implements Exporter.
func (e *PNGExporter) Export(snap Snapshot) ([]byte, error) {
	if len(snap.Samples) == 0 {
		return nil, ErrEmptySnapshot
	}
	lineColor := hexColor(e.palette.Line, color.RGBA{R: 0x63, G: 0x66, B: 0xf1, A: 0xff})
	bgColor := hexColor(e.palette.Background, color.Black)
	baseColor := hexColor(e.palette.Baseline, color.Gray{Y: 0x40})

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Heart rate %d BPM (simulated)", snap.BPM)
	p.Title.TextStyle.Color = lineColor
	p.BackgroundColor = bgColor
	p.X.Label.Text = "sample"
	p.Y.Label.Text = "deflection"
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Color = baseColor
		ax.Label.TextStyle.Color = baseColor
		ax.Tick.Color = baseColor
		ax.Tick.Label.Color = baseColor
	}

	// Screen y grows downward; plot deflection above the baseline as
	// positive.
	mid := snap.Mid()
	pts := make(plotter.XYs, len(snap.Samples))
	for i, y := range snap.Samples {
		pts[i] = plotter.XY{X: float64(i), Y: mid - y}
	}
	p.Y.Min = -mid
	p.Y.Max = mid

	baseline, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: float64(len(pts) - 1), Y: 0}})
	if err != nil {
		return nil, err
	}
	baseline.Color = baseColor
	baseline.Width = vg.Points(1)
	baseline.Dashes = []vg.Length{vg.Points(3), vg.Points(8)}
	p.Add(baseline)

	trace, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	trace.Color = lineColor
	trace.Width = vg.Points(2.2)
	p.Add(trace)

	wt, err := p.WriterTo(e.width, e.height, "png")
	if err != nil {
		return nil, fmt.Errorf("render png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension implements Exporter.
func (e *PNGExporter) FileExtension() string { return ".png" }

// MimeType implements Exporter.
func (e *PNGExporter) MimeType() string { return "image/png" }

func hexColor(s string, fallback color.Color) color.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		return fallback
	}
	return c
}
