// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes snapshots of the visible strip to disk.
//
// A Snapshot captures the sample history, the rate and the session
// statistics at one moment. Exporters render it as:
//
//   - PNG: a gonum/plot line chart in the monitor palette
//   - HTML: an interactive go-echarts page
//   - JSON: the raw snapshot
//
// # Usage
//
//	snap := monitor.Snapshot()
//	path, err := export.ExportToFile(snap, export.NewPNGExporter(nil), nil)
//
// Files are named heartline_<session>_<timestamp>.<ext> and written
// atomically.
package export
