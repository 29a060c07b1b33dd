// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/jeranaias/heartline/internal/session"
	"github.com/jeranaias/heartline/internal/util"
)

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is the strip as it looked at one moment.
type Snapshot struct {
	SessionID string        `json:"session_id"`
	Taken     time.Time     `json:"taken"`
	BPM       int           `json:"bpm"`
	Source    string        `json:"source"`
	Width     int           `json:"width"`
	Height    float64       `json:"height"`
	Samples   []float64     `json:"samples"`
	Stats     session.Stats `json:"stats"`
}

// ErrEmptySnapshot is returned when there are no samples to export.
var ErrEmptySnapshot = errors.New("snapshot has no samples")

// Mid returns the baseline of the snapshot surface.
func (s Snapshot) Mid() float64 {
	return s.Height / 2
}

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter renders a snapshot.
type Exporter interface {
	// Export renders the snapshot and returns the file content.
	Export(snap Snapshot) ([]byte, error)

	// FileExtension returns the file extension including the dot.
	FileExtension() string

	// MimeType returns the MIME type of the output.
	MimeType() string
}

// Palette colours used by the image exporters, as #rrggbb.
type Palette struct {
	Line       string
	Background string
	Baseline   string
}

// DefaultPalette matches the monitor defaults.
func DefaultPalette() Palette {
	return Palette{
		Line:       "#6366f1",
		Background: "#0f1020",
		Baseline:   "#2b2d5c",
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is the directory where files will be saved.
	OutputDir string

	// OpenAfterExport opens the file in the default application.
	OpenAfterExport bool

	Palette Palette
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir: ".",
		Palette:   DefaultPalette(),
	}
}

// ForFormat returns the exporter for png, html or json.
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(format) {
	case "png":
		return NewPNGExporter(opts), nil
	case "html":
		return NewHTMLExporter(opts), nil
	case "json":
		return NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders snap and writes it into opts.OutputDir. Returns the
// output file path.
func ExportToFile(snap Snapshot, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if len(snap.Samples) == 0 {
		return "", ErrEmptySnapshot
	}

	content, err := exporter.Export(snap)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	outputPath := filepath.Join(opts.OutputDir, Filename(snap, exporter.FileExtension()))
	if err := util.AtomicWriteFile(outputPath, content, 0644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	if opts.OpenAfterExport {
		if err := openFile(outputPath); err != nil {
			// Non-fatal - file was still created successfully
			fmt.Printf("Warning: Could not open file: %v\n", err)
		}
	}
	return outputPath, nil
}

// Filename returns heartline_<session8>_<timestamp><ext>.
func Filename(snap Snapshot, ext string) string {
	id := sanitizeFilename(util.ShortID(snap.SessionID, 8))
	taken := snap.Taken
	if taken.IsZero() {
		taken = time.Now()
	}
	return fmt.Sprintf("heartline_%s_%s%s", id, taken.Format("20060102_150405"), ext)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('-')
		case r == ' ' || r == '\t':
			b.WriteRune('_')
		case r < 32 || r == 127:
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}

// openFile opens a file in the default application for the OS.
func openFile(path string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", `""`, path)
	case "darwin":
		cmd = exec.Command("open", path)
	case "linux":
		cmd = exec.Command("xdg-open", path)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
	return cmd.Start()
}
