// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for heartline.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and live reload.
//
// Configuration file locations (in order of precedence):
//   - the path passed with --config
//   - ~/.heartline/config.toml
//   - ~/.heartline/config.json
//   - Built-in defaults
//
// # Sections
//
//   - [monitor]: surface size, BPM range, scroll speed, frame rate, drift timing
//   - [palette]: line, glow, background and baseline colours
//   - [feed]: beat source (simulated, nats, serial) and its limits
//   - [snapshot]: export directory, format and headless duration
//   - [ui]: theme, stats line, alt screen, log file
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Printf("CONFIG_ERROR | error=%v", err)
//	}
//	bpm, _ := cfg.Get("monitor.bpm_default")
//
// Watch the file for edits:
//
//	w, _ := config.NewWatcher(path, 250*time.Millisecond)
//	go w.Run(ctx)
//	for cfg := range w.Updates() { ... }
package config
