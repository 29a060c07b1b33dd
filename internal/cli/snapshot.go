// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// snapshot.go - Headless strip export.
//
// Command: snapshot [--seconds N] [--format png|html|json] [--out DIR] [--width PX]
//
// The rhythm and the strip run on a virtual clock, so the command finishes
// immediately and a fixed --seed gives the same file every time.

package cli

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jeranaias/heartline/internal/config"
	"github.com/jeranaias/heartline/internal/export"
	"github.com/jeranaias/heartline/internal/sim"
)

// Simulate runs the simulated monitor for seconds of virtual time starting
// at start and returns the final strip.
func Simulate(cfg *config.Config, seconds float64, start time.Time) export.Snapshot {
	s := sim.New(cfg, start)
	s.Start()
	s.Advance(time.Duration(seconds * float64(time.Second)))
	return s.Snapshot()
}

// exportOptions builds export options from the configuration.
func exportOptions(cfg *config.Config, outDir string) *export.Options {
	opts := export.DefaultOptions()
	opts.OutputDir = outDir
	opts.Palette = export.Palette{
		Line:       cfg.Palette.Line,
		Background: cfg.Palette.Background,
		Baseline:   cfg.Palette.Baseline,
	}
	return opts
}

// HandleSnapshot handles the "snapshot" command.
func HandleSnapshot(args Args) error {
	cfg, err := LoadConfig(args)
	if err != nil {
		return err
	}

	seconds := cfg.Snapshot.Seconds
	if v := args.Option("seconds", ""); v != "" {
		seconds, err = strconv.ParseFloat(v, 64)
		if err != nil || seconds <= 0 {
			return NewValidationErrorWithExample("--seconds", v, "must be a positive number", "--seconds 10")
		}
	}
	if v := args.Option("width", ""); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil || w < 20 {
			return NewValidationErrorWithExample("--width", v, "must be at least 20 pixels", "--width 800")
		}
		cfg.Monitor.Width = w
	}
	format := args.Option("format", cfg.Snapshot.Format)
	opts := exportOptions(cfg, args.Option("out", cfg.Snapshot.OutputDir))

	exporter, err := export.ForFormat(format, opts)
	if err != nil {
		return NewValidationErrorWithExample("--format", format, err.Error(), "--format png")
	}

	snap := Simulate(cfg, seconds, time.Now())
	path, err := export.ExportToFile(snap, exporter, opts)
	if err != nil {
		return NewCommandError("snapshot", "export", format, err)
	}
	log.Printf("SNAPSHOT_SAVED | session=%s format=%s path=%s bpm=%d", snap.SessionID, format, path, snap.BPM)

	if args.JSON {
		return NewJSONResponse("snapshot", map[string]interface{}{
			"path":    path,
			"format":  format,
			"bpm":     snap.BPM,
			"seconds": seconds,
			"stats":   snap.Stats,
		}).Print()
	}
	fmt.Fprintf(os.Stdout, "%s %s (%d BPM, simulated)\n", SuccessStyle.Render("Saved"), path, snap.BPM)
	return nil
}
