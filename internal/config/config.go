// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/heartline/internal/util"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// Feed sources.
const (
	FeedSimulated = "simulated"
	FeedNATS      = "nats"
	FeedSerial    = "serial"
)

// Snapshot formats.
const (
	FormatPNG  = "png"
	FormatHTML = "html"
	FormatJSON = "json"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete heartline configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Monitor  MonitorConfig  `toml:"monitor" json:"monitor"`
	Palette  PaletteConfig  `toml:"palette" json:"palette"`
	Feed     FeedConfig     `toml:"feed" json:"feed"`
	Snapshot SnapshotConfig `toml:"snapshot" json:"snapshot"`
	Serve    ServeConfig    `toml:"serve" json:"serve"`
	History  HistoryConfig  `toml:"history" json:"history"`
	UI       UIConfig       `toml:"ui" json:"ui"`
}

// MonitorConfig controls the strip chart and the simulated rhythm.
type MonitorConfig struct {
	// Width of the surface in pixels. 0 follows the terminal width.
	Width int `toml:"width" json:"width"`

	// Height of the logical surface in pixels.
	Height int `toml:"height" json:"height"`

	// Rows is the canvas height in terminal rows.
	Rows int `toml:"rows" json:"rows"`

	BPMDefault int `toml:"bpm_default" json:"bpm_default"`
	BPMMin     int `toml:"bpm_min" json:"bpm_min"`
	BPMMax     int `toml:"bpm_max" json:"bpm_max"`

	// ScrollSpeed is pixels scrolled per frame.
	ScrollSpeed float64 `toml:"scroll_speed" json:"scroll_speed"`
	FrameRate   float64 `toml:"frame_rate" json:"frame_rate"`

	DriftMinMs   int `toml:"drift_min_ms" json:"drift_min_ms"`
	DriftMaxMs   int `toml:"drift_max_ms" json:"drift_max_ms"`
	DriftMaxStep int `toml:"drift_max_step" json:"drift_max_step"`

	// Amplitude is the deflection scale as a fraction of half height.
	Amplitude  float64 `toml:"amplitude" json:"amplitude"`
	GlowRadius float64 `toml:"glow_radius" json:"glow_radius"`

	// Seed fixes the drift sequence. 0 seeds from the clock.
	Seed int64 `toml:"seed" json:"seed"`
}

// PaletteConfig holds the trace colours as #rrggbb.
type PaletteConfig struct {
	Line       string  `toml:"line" json:"line"`
	Glow       string  `toml:"glow" json:"glow"`
	GlowAlpha  float64 `toml:"glow_alpha" json:"glow_alpha"`
	Background string  `toml:"background" json:"background"`
	Baseline   string  `toml:"baseline" json:"baseline"`
}

// FeedConfig selects where beats come from.
type FeedConfig struct {
	Source string `toml:"source" json:"source"`

	NATSURL     string `toml:"nats_url" json:"nats_url"`
	NATSSubject string `toml:"nats_subject" json:"nats_subject"`

	SerialPort string `toml:"serial_port" json:"serial_port"`
	SerialBaud int    `toml:"serial_baud" json:"serial_baud"`

	// MaxBeatsPerSec drops beats arriving faster than this.
	MaxBeatsPerSec float64 `toml:"max_beats_per_sec" json:"max_beats_per_sec"`
	MinBPM         float64 `toml:"min_bpm" json:"min_bpm"`
	MaxBPM         float64 `toml:"max_bpm" json:"max_bpm"`
}

// SnapshotConfig controls exports.
type SnapshotConfig struct {
	OutputDir string `toml:"output_dir" json:"output_dir"`
	Format    string `toml:"format" json:"format"`

	// Seconds of simulated time the headless snapshot command runs.
	Seconds float64 `toml:"seconds" json:"seconds"`
}

// ServeConfig controls the HTTP endpoint of the serve command.
type ServeConfig struct {
	Addr string `toml:"addr" json:"addr"`

	// Token, when set, is required as a bearer token on every request.
	Token string `toml:"token" json:"token"`

	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	RateBurst int     `toml:"rate_burst" json:"rate_burst"`

	// CORSOrigins is a comma-separated origin list; "*" allows any.
	CORSOrigins string `toml:"cors_origins" json:"cors_origins"`
}

// HistoryConfig controls the session history database.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`

	// Path of the SQLite database. Empty uses history.db in the config dir.
	Path string `toml:"path" json:"path"`

	// Keep is how many sessions are retained; 0 keeps all.
	Keep int `toml:"keep" json:"keep"`
}

// UIConfig holds TUI preferences.
type UIConfig struct {
	Theme     string `toml:"theme" json:"theme"` // auto, dark, light
	ShowStats bool   `toml:"show_stats" json:"show_stats"`
	AltScreen bool   `toml:"alt_screen" json:"alt_screen"`
	LogFile   string `toml:"log_file" json:"log_file"`
}

// DriftMin returns the shortest drift interval.
func (m MonitorConfig) DriftMin() time.Duration {
	return time.Duration(m.DriftMinMs) * time.Millisecond
}

// DriftMax returns the longest drift interval.
func (m MonitorConfig) DriftMax() time.Duration {
	return time.Duration(m.DriftMaxMs) * time.Millisecond
}

// FrameInterval returns 1/frame_rate.
func (m MonitorConfig) FrameInterval() time.Duration {
	if m.FrameRate <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / m.FrameRate)
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Monitor: MonitorConfig{
			Width:        0,
			Height:       90,
			Rows:         8,
			BPMDefault:   72,
			BPMMin:       60,
			BPMMax:       85,
			ScrollSpeed:  1.5,
			FrameRate:    60,
			DriftMinMs:   4000,
			DriftMaxMs:   6000,
			DriftMaxStep: 3,
			Amplitude:    0.85,
			GlowRadius:   10,
		},
		Palette: PaletteConfig{
			Line:       "#6366f1",
			Glow:       "#6366f1",
			GlowAlpha:  0.55,
			Background: "#0f1020",
			Baseline:   "#2b2d5c",
		},
		Feed: FeedConfig{
			Source:         FeedSimulated,
			NATSURL:        "nats://127.0.0.1:4222",
			NATSSubject:    "heartline.beats",
			SerialBaud:     115200,
			MaxBeatsPerSec: 5,
			MinBPM:         30,
			MaxBPM:         220,
		},
		Snapshot: SnapshotConfig{
			OutputDir: ".",
			Format:    FormatPNG,
			Seconds:   5,
		},
		Serve: ServeConfig{
			Addr:        "127.0.0.1:8787",
			RateLimit:   10,
			RateBurst:   20,
			CORSOrigins: "http://localhost,http://127.0.0.1",
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    200,
		},
		UI: UIConfig{
			Theme:     "auto",
			ShowStats: false,
			AltScreen: true,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the heartline configuration directory path.
// HEARTLINE_HOME overrides the default ~/.heartline.
func ConfigDir() (string, error) {
	if dir := os.Getenv("HEARTLINE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".heartline"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ActivePath returns the config file Load would read, or the TOML path if
// none exists yet.
func ActivePath() (string, error) {
	tomlPath, err := ConfigPathTOML()
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(tomlPath); err == nil {
		return tomlPath, nil
	}
	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, err := os.Stat(jsonPath); err == nil {
			return jsonPath, nil
		}
	}
	return tomlPath, nil
}

// HistoryPath returns the session history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return util.ExpandHome(c.History.Path), nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			return LoadFromPath(tomlPath)
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			return LoadFromPath(jsonPath)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Keys missing from the file keep their defaults.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// EncodeTOML renders cfg as a commented TOML document.
func EncodeTOML(cfg *Config) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# heartline configuration file\n")
	buf.WriteString("# Simulated heart-rate strip chart; not medical data.\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveTOML saves the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	data, err := EncodeTOML(cfg)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ErrInvalidConfig wraps validation failures from the load functions.
var ErrInvalidConfig = errors.New("invalid config")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	m := c.Monitor
	if m.Width < 0 {
		add("monitor.width", "must be >= 0, got %d", m.Width)
	}
	if m.Height <= 0 {
		add("monitor.height", "must be > 0, got %d", m.Height)
	}
	if m.Rows <= 0 {
		add("monitor.rows", "must be > 0, got %d", m.Rows)
	}
	// bpm_min is the divisor guard for beat timing.
	if m.BPMMin <= 0 {
		add("monitor.bpm_min", "must be > 0, got %d", m.BPMMin)
	}
	if m.BPMMax < m.BPMMin {
		add("monitor.bpm_max", "must be >= bpm_min (%d), got %d", m.BPMMin, m.BPMMax)
	}
	if m.BPMDefault < m.BPMMin || m.BPMDefault > m.BPMMax {
		add("monitor.bpm_default", "must be within [%d, %d], got %d", m.BPMMin, m.BPMMax, m.BPMDefault)
	}
	if m.ScrollSpeed <= 0 {
		add("monitor.scroll_speed", "must be > 0, got %g", m.ScrollSpeed)
	}
	if m.FrameRate <= 0 || m.FrameRate > 240 {
		add("monitor.frame_rate", "must be in (0, 240], got %g", m.FrameRate)
	}
	if m.DriftMinMs <= 0 {
		add("monitor.drift_min_ms", "must be > 0, got %d", m.DriftMinMs)
	}
	if m.DriftMaxMs < m.DriftMinMs {
		add("monitor.drift_max_ms", "must be >= drift_min_ms (%d), got %d", m.DriftMinMs, m.DriftMaxMs)
	}
	if m.DriftMaxStep <= 0 {
		add("monitor.drift_max_step", "must be > 0, got %d", m.DriftMaxStep)
	}
	if m.Amplitude <= 0 || m.Amplitude > 1 {
		add("monitor.amplitude", "must be in (0, 1], got %g", m.Amplitude)
	}
	if m.GlowRadius < 0 {
		add("monitor.glow_radius", "must be >= 0, got %g", m.GlowRadius)
	}

	for _, p := range []struct{ field, value string }{
		{"palette.line", c.Palette.Line},
		{"palette.glow", c.Palette.Glow},
		{"palette.background", c.Palette.Background},
		{"palette.baseline", c.Palette.Baseline},
	} {
		if !hexColor.MatchString(p.value) {
			add(p.field, "must be a #rrggbb colour, got %q", p.value)
		}
	}
	if c.Palette.GlowAlpha < 0 || c.Palette.GlowAlpha > 1 {
		add("palette.glow_alpha", "must be in [0, 1], got %g", c.Palette.GlowAlpha)
	}

	f := c.Feed
	switch f.Source {
	case FeedSimulated:
	case FeedNATS:
		if f.NATSURL == "" {
			add("feed.nats_url", "required when source is nats")
		}
		if f.NATSSubject == "" {
			add("feed.nats_subject", "required when source is nats")
		}
	case FeedSerial:
		if f.SerialPort == "" {
			add("feed.serial_port", "required when source is serial")
		}
	default:
		add("feed.source", "must be one of simulated, nats, serial; got %q", f.Source)
	}
	if f.SerialBaud <= 0 {
		add("feed.serial_baud", "must be > 0, got %d", f.SerialBaud)
	}
	if f.MaxBeatsPerSec <= 0 {
		add("feed.max_beats_per_sec", "must be > 0, got %g", f.MaxBeatsPerSec)
	}
	if f.MinBPM <= 0 {
		add("feed.min_bpm", "must be > 0, got %g", f.MinBPM)
	}
	if f.MaxBPM < f.MinBPM || f.MaxBPM > 300 {
		add("feed.max_bpm", "must be in [min_bpm, 300], got %g", f.MaxBPM)
	}

	switch c.Snapshot.Format {
	case FormatPNG, FormatHTML, FormatJSON:
	default:
		add("snapshot.format", "must be one of png, html, json; got %q", c.Snapshot.Format)
	}
	if c.Snapshot.Seconds <= 0 {
		add("snapshot.seconds", "must be > 0, got %g", c.Snapshot.Seconds)
	}

	if c.Serve.Addr == "" {
		add("serve.addr", "must not be empty")
	}
	if c.Serve.RateLimit < 0 {
		add("serve.rate_limit", "must be >= 0, got %g", c.Serve.RateLimit)
	}
	if c.Serve.RateLimit > 0 && c.Serve.RateBurst <= 0 {
		add("serve.rate_burst", "must be > 0 when rate_limit is set, got %d", c.Serve.RateBurst)
	}

	if c.History.Keep < 0 {
		add("history.keep", "must be >= 0, got %d", c.History.Keep)
	}

	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		add("ui.theme", "must be auto, dark or light; got %q", c.UI.Theme)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values left by a partial file.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.Monitor.Height == 0 {
		c.Monitor.Height = d.Monitor.Height
	}
	if c.Monitor.Rows == 0 {
		c.Monitor.Rows = d.Monitor.Rows
	}
	if c.Monitor.ScrollSpeed == 0 {
		c.Monitor.ScrollSpeed = d.Monitor.ScrollSpeed
	}
	if c.Monitor.FrameRate == 0 {
		c.Monitor.FrameRate = d.Monitor.FrameRate
	}
	if c.Monitor.DriftMaxStep == 0 {
		c.Monitor.DriftMaxStep = d.Monitor.DriftMaxStep
	}
	if c.Monitor.Amplitude == 0 {
		c.Monitor.Amplitude = d.Monitor.Amplitude
	}
	if c.Feed.Source == "" {
		c.Feed.Source = d.Feed.Source
	}
	if c.Feed.SerialBaud == 0 {
		c.Feed.SerialBaud = d.Feed.SerialBaud
	}
	if c.Snapshot.Format == "" {
		c.Snapshot.Format = d.Snapshot.Format
	}
	if c.Snapshot.OutputDir == "" {
		c.Snapshot.OutputDir = d.Snapshot.OutputDir
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = d.Serve.Addr
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - HEARTLINE_BPM_DEFAULT, HEARTLINE_BPM_MIN, HEARTLINE_BPM_MAX
//   - HEARTLINE_FEED: feed.source
//   - HEARTLINE_NATS_URL: feed.nats_url
//   - HEARTLINE_SERIAL_PORT: feed.serial_port
//   - HEARTLINE_SERVE_ADDR, HEARTLINE_SERVE_TOKEN: serve.addr, serve.token
//   - HEARTLINE_THEME: ui.theme
//   - HEARTLINE_LOG_FILE: ui.log_file
//
// Unparseable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	envInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envInt("HEARTLINE_BPM_DEFAULT", &c.Monitor.BPMDefault)
	envInt("HEARTLINE_BPM_MIN", &c.Monitor.BPMMin)
	envInt("HEARTLINE_BPM_MAX", &c.Monitor.BPMMax)

	if v := os.Getenv("HEARTLINE_FEED"); v != "" {
		c.Feed.Source = strings.ToLower(v)
	}
	if v := os.Getenv("HEARTLINE_NATS_URL"); v != "" {
		c.Feed.NATSURL = v
	}
	if v := os.Getenv("HEARTLINE_SERIAL_PORT"); v != "" {
		c.Feed.SerialPort = v
	}
	if v := os.Getenv("HEARTLINE_SERVE_ADDR"); v != "" {
		c.Serve.Addr = v
	}
	if v := os.Getenv("HEARTLINE_SERVE_TOKEN"); v != "" {
		c.Serve.Token = v
	}
	if v := os.Getenv("HEARTLINE_THEME"); v != "" {
		c.UI.Theme = strings.ToLower(v)
	}
	if v := os.Getenv("HEARTLINE_LOG_FILE"); v != "" {
		c.UI.LogFile = v
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "monitor.bpm_max").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation. String values are
// converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if field.Kind() == reflect.Struct {
		return fmt.Errorf("cannot set section %q", key)
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if strings.TrimSpace(key) == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}
		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(part[:1]))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strings.ToLower(strVal))
			if err != nil {
				boolVal = strings.EqualFold(strVal, "yes")
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if !val.IsValid() {
		return fmt.Errorf("cannot assign nil to %s", field.Type())
	}
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all leaf configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := strings.Split(f.Tag.Get("toml"), ",")[0]
			if name == "" {
				continue
			}
			if prefix != "" {
				name = prefix + "." + name
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name)
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as TOML.
func (c *Config) String() string {
	data, err := EncodeTOML(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
