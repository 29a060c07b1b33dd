// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// HTMLExporter renders an interactive chart page.
type HTMLExporter struct {
	palette Palette
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{palette: opts.Palette}
}

// Export implements Exporter.
func (e *HTMLExporter) Export(snap Snapshot) ([]byte, error) {
	if len(snap.Samples) == 0 {
		return nil, ErrEmptySnapshot
	}

	mid := snap.Mid()
	xs := make([]int, len(snap.Samples))
	trace := make([]opts.LineData, len(snap.Samples))
	base := make([]opts.LineData, len(snap.Samples))
	for i, y := range snap.Samples {
		xs[i] = i
		trace[i] = opts.LineData{Value: mid - y}
		base[i] = opts.LineData{Value: 0}
	}

	subtitle := fmt.Sprintf("session %s · %s · simulated, not medical data",
		snap.SessionID, snap.Taken.Format("2006-01-02 15:04:05"))
	if snap.Stats.Count > 0 {
		subtitle += fmt.Sprintf(" · mean %.1f ± %.1f BPM", snap.Stats.Mean, snap.Stats.StdDev)
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       "heartline snapshot",
			Theme:           "dark",
			Width:           "1200px",
			Height:          "360px",
			BackgroundColor: e.palette.Background,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Heart rate %d BPM", snap.BPM),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "sample", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "deflection", Min: -mid, Max: mid}),
	)

	line.SetXAxis(xs).
		AddSeries("baseline", base,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: e.palette.Baseline, Width: 1, Type: "dashed"}),
		).
		AddSeries("trace", trace,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithLineStyleOpts(opts.LineStyle{Color: e.palette.Line, Width: 2.2}),
		)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension implements Exporter.
func (e *HTMLExporter) FileExtension() string { return ".html" }

// MimeType implements Exporter.
func (e *HTMLExporter) MimeType() string { return "text/html" }
