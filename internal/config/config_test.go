// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Monitor.BPMDefault != 72 || cfg.Monitor.BPMMin != 60 || cfg.Monitor.BPMMax != 85 {
		t.Errorf("unexpected BPM defaults: %+v", cfg.Monitor)
	}
	if cfg.Monitor.Height != 90 {
		t.Errorf("Height = %d, want 90", cfg.Monitor.Height)
	}
	if cfg.Monitor.ScrollSpeed != 1.5 {
		t.Errorf("ScrollSpeed = %v, want 1.5", cfg.Monitor.ScrollSpeed)
	}
	if cfg.Palette.Line != "#6366f1" {
		t.Errorf("Palette.Line = %q, want #6366f1", cfg.Palette.Line)
	}
}

func TestMonitorConfig_Durations(t *testing.T) {
	m := Default().Monitor
	require.Equal(t, 4*time.Second, m.DriftMin())
	require.Equal(t, 6*time.Second, m.DriftMax())
	require.Equal(t, time.Second/60, m.FrameInterval())

	m.FrameRate = 0
	require.Zero(t, m.FrameInterval())
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"zero bpm_min", func(c *Config) { c.Monitor.BPMMin = 0; c.Monitor.BPMDefault = 0 }, "monitor.bpm_min"},
		{"max below min", func(c *Config) { c.Monitor.BPMMax = 50 }, "monitor.bpm_max"},
		{"default out of range", func(c *Config) { c.Monitor.BPMDefault = 99 }, "monitor.bpm_default"},
		{"zero scroll", func(c *Config) { c.Monitor.ScrollSpeed = 0 }, "monitor.scroll_speed"},
		{"zero frame rate", func(c *Config) { c.Monitor.FrameRate = 0 }, "monitor.frame_rate"},
		{"drift reversed", func(c *Config) { c.Monitor.DriftMaxMs = 1000 }, "monitor.drift_max_ms"},
		{"amplitude too big", func(c *Config) { c.Monitor.Amplitude = 1.5 }, "monitor.amplitude"},
		{"bad colour", func(c *Config) { c.Palette.Line = "indigo" }, "palette.line"},
		{"bad glow alpha", func(c *Config) { c.Palette.GlowAlpha = 2 }, "palette.glow_alpha"},
		{"unknown feed", func(c *Config) { c.Feed.Source = "bluetooth" }, "feed.source"},
		{"serial without port", func(c *Config) { c.Feed.Source = FeedSerial }, "feed.serial_port"},
		{"nats without subject", func(c *Config) { c.Feed.Source = FeedNATS; c.Feed.NATSSubject = "" }, "feed.nats_subject"},
		{"feed max too high", func(c *Config) { c.Feed.MaxBPM = 400 }, "feed.max_bpm"},
		{"bad format", func(c *Config) { c.Snapshot.Format = "gif" }, "snapshot.format"},
		{"empty serve addr", func(c *Config) { c.Serve.Addr = "" }, "serve.addr"},
		{"negative rate limit", func(c *Config) { c.Serve.RateLimit = -1 }, "serve.rate_limit"},
		{"rate limit without burst", func(c *Config) { c.Serve.RateBurst = 0 }, "serve.rate_burst"},
		{"negative history keep", func(c *Config) { c.History.Keep = -1 }, "history.keep"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			var verrs ValidateErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("error type %T, want ValidateErrors", err)
			}
			found := false
			for _, e := range verrs {
				if e.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error for %s in %v", tt.field, err)
			}
		})
	}
}

func TestHistoryPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HEARTLINE_HOME", dir)

	cfg := Default()
	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "history.db"), path)

	cfg.History.Path = "/var/lib/heartline/h.db"
	path, err = cfg.HistoryPath()
	require.NoError(t, err)
	require.Equal(t, "/var/lib/heartline/h.db", path)
}

func TestValidate_PaletteErrorOrderIsStable(t *testing.T) {
	cfg := Default()
	cfg.Palette.Line = "red"
	cfg.Palette.Glow = "green"
	cfg.Palette.Background = "blue"
	cfg.Palette.Baseline = "grey"

	want := []string{"palette.line", "palette.glow", "palette.background", "palette.baseline"}
	for i := 0; i < 20; i++ {
		var verrs ValidateErrors
		require.True(t, errors.As(cfg.Validate(), &verrs))
		var fields []string
		for _, e := range verrs {
			fields = append(fields, e.Field)
		}
		require.Equal(t, want, fields)
	}
}

func TestValidateErrors_Error(t *testing.T) {
	errs := ValidateErrors{
		{Field: "a", Message: "bad"},
		{Field: "b", Message: "worse"},
	}
	require.Equal(t, "a: bad; b: worse", errs.Error())
	require.Equal(t, "no validation errors", ValidateErrors{}.Error())
}

// =============================================================================
// LOAD / SAVE TESTS
// =============================================================================

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Setenv("HEARTLINE_HOME", t.TempDir())
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default().Monitor, cfg.Monitor)
}

func TestLoadFromPath_PartialTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := "[monitor]\nbpm_default = 80\n\n[palette]\nline = \"#ff0000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Equal(t, 80, cfg.Monitor.BPMDefault)
	require.Equal(t, 60, cfg.Monitor.BPMMin)
	require.Equal(t, "#ff0000", cfg.Palette.Line)
	require.Equal(t, "#2b2d5c", cfg.Palette.Baseline)
}

func TestLoadFromPath_InvalidRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[monitor]\nbpm_min = 0\nbpm_default = 0\n"), 0644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "monitor.bpm_min")
}

func TestLoadFromPath_BadSyntax(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[monitor\n"), 0644))
	_, err := LoadFromPath(path)
	require.Error(t, err)
}

func TestSaveAndLoadTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HEARTLINE_HOME", home)

	cfg := Default()
	cfg.Monitor.BPMDefault = 75
	cfg.UI.ShowStats = true
	require.NoError(t, Save(cfg))

	path, err := ActivePath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, "config.toml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# heartline configuration file"))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, 75, loaded.Monitor.BPMDefault)
	require.True(t, loaded.UI.ShowStats)
}

func TestSaveAndLoadJSON(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HEARTLINE_HOME", home)

	cfg := Default()
	cfg.Feed.MaxBeatsPerSec = 3
	path, err := ConfigPathJSON()
	require.NoError(t, err)
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := Load()
	require.NoError(t, err)
	require.Equal(t, 3.0, loaded.Feed.MaxBeatsPerSec)
}

// =============================================================================
// ENV OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("HEARTLINE_BPM_DEFAULT", "70")
	t.Setenv("HEARTLINE_BPM_MIN", "50")
	t.Setenv("HEARTLINE_BPM_MAX", "not-a-number")
	t.Setenv("HEARTLINE_FEED", "NATS")
	t.Setenv("HEARTLINE_NATS_URL", "nats://example:4222")
	t.Setenv("HEARTLINE_THEME", "Light")
	t.Setenv("HEARTLINE_LOG_FILE", "/tmp/heartline.log")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	require.Equal(t, 70, cfg.Monitor.BPMDefault)
	require.Equal(t, 50, cfg.Monitor.BPMMin)
	require.Equal(t, 85, cfg.Monitor.BPMMax)
	require.Equal(t, FeedNATS, cfg.Feed.Source)
	require.Equal(t, "nats://example:4222", cfg.Feed.NATSURL)
	require.Equal(t, "light", cfg.UI.Theme)
	require.Equal(t, "/tmp/heartline.log", cfg.UI.LogFile)
}

// =============================================================================
// GET / SET TESTS
// =============================================================================

func TestGetSet(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("monitor.bpm_max")
	require.NoError(t, err)
	require.Equal(t, 85, v)

	require.NoError(t, cfg.Set("monitor.bpm_max", "90"))
	require.Equal(t, 90, cfg.Monitor.BPMMax)

	require.NoError(t, cfg.Set("monitor.scroll_speed", "2.5"))
	require.Equal(t, 2.5, cfg.Monitor.ScrollSpeed)

	require.NoError(t, cfg.Set("ui.show_stats", "yes"))
	require.True(t, cfg.UI.ShowStats)

	require.NoError(t, cfg.Set("feed.nats_url", "nats://x:1"))
	require.Equal(t, "nats://x:1", cfg.Feed.NATSURL)

	require.NoError(t, cfg.Set("monitor.seed", int64(7)))
	require.Equal(t, int64(7), cfg.Monitor.Seed)
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	_, err := cfg.Get("")
	require.Error(t, err)
	_, err = cfg.Get("monitor.nope")
	require.Error(t, err)
	_, err = cfg.Get("version.x")
	require.Error(t, err)

	require.Error(t, cfg.Set("monitor", "x"))
	require.Error(t, cfg.Set("monitor.bpm_max", "many"))
}

func TestGetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	cfg := Default()
	for _, k := range keys {
		if _, err := cfg.Get(k); err != nil {
			t.Errorf("Get(%q) failed: %v", k, err)
		}
	}
	require.Contains(t, keys, "monitor.bpm_default")
	require.Contains(t, keys, "palette.glow_alpha")
	require.Contains(t, keys, "feed.max_beats_per_sec")
	require.Contains(t, keys, "version")
}

func TestClone(t *testing.T) {
	cfg := Default()
	c := cfg.Clone()
	c.Monitor.BPMDefault = 60
	require.Equal(t, 72, cfg.Monitor.BPMDefault)
	require.Contains(t, cfg.String(), "bpm_default = 72")
}

// =============================================================================
// GLOBAL TESTS
// =============================================================================

func TestConfig_ConcurrentAccess(t *testing.T) {
	t.Setenv("HEARTLINE_HOME", t.TempDir())
	ResetGlobalForTesting()
	defer ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	cfg := Default()
	cfg.Palette.Line = "#00ff00"
	require.NoError(t, SaveTOML(cfg, path))

	select {
	case got := <-w.Updates():
		require.Equal(t, "#00ff00", got.Palette.Line)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload delivered")
	}
}

func TestWatcher_SkipsInvalidEdits(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(Default(), path))

	w, err := NewWatcher(path, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	require.NoError(t, os.WriteFile(path, []byte("[monitor]\nbpm_min = -1\n"), 0644))

	select {
	case got := <-w.Updates():
		t.Fatalf("invalid config delivered: %+v", got.Monitor)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	// Updates closes once Run returns.
	for range w.Updates() {
	}
}
