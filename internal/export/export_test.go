// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/heartline/internal/session"
	"github.com/jeranaias/heartline/internal/waveform"
)

func testSnapshot() Snapshot {
	const height = 90.0
	mid, amp := height/2, height/2*0.85
	samples := make([]float64, 150)
	for i := range samples {
		samples[i] = waveform.QRSY(float64(i%75)/75, mid, amp)
	}
	return Snapshot{
		SessionID: "0f4a9c2e-1111-4222-8333-444455556666",
		Taken:     time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC),
		BPM:       72,
		Source:    "simulated",
		Width:     len(samples),
		Height:    height,
		Samples:   samples,
		Stats:     session.Stats{Count: 3, Mean: 72, StdDev: 1.5, Min: 70, Max: 74, Last: 72},
	}
}

// =============================================================================
// FILENAME TESTS
// =============================================================================

func TestFilename(t *testing.T) {
	got := Filename(testSnapshot(), ".png")
	assert.Equal(t, "heartline_0f4a9c2e_20250314_092653.png", got)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", "abc"},
		{"a/b\\c", "a-b-c"},
		{"a b", "a_b"},
		{"x:y*z?", "x-y-z-"},
		{"", "session"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFilename(tt.in), "input %q", tt.in)
	}
}

// =============================================================================
// FORMAT TESTS
// =============================================================================

func TestForFormat(t *testing.T) {
	for format, ext := range map[string]string{"png": ".png", "HTML": ".html", "json": ".json"} {
		e, err := ForFormat(format, nil)
		require.NoError(t, err, format)
		assert.Equal(t, ext, e.FileExtension())
	}
	_, err := ForFormat("svgz", nil)
	assert.Error(t, err)
}

func TestJSONExporter(t *testing.T) {
	snap := testSnapshot()
	out, err := NewJSONExporter().Export(snap)
	require.NoError(t, err)

	var decoded Snapshot
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, snap.SessionID, decoded.SessionID)
	assert.Equal(t, 72, decoded.BPM)
	assert.Len(t, decoded.Samples, len(snap.Samples))
	assert.Equal(t, "application/json", NewJSONExporter().MimeType())
}

func TestPNGExporter(t *testing.T) {
	out, err := NewPNGExporter(nil).Export(testSnapshot())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\x89PNG\r\n\x1a\n")), "missing PNG signature")
}

func TestPNGExporter_BadPaletteFallsBack(t *testing.T) {
	opts := DefaultOptions()
	opts.Palette.Line = "not-a-colour"
	_, err := NewPNGExporter(opts).Export(testSnapshot())
	assert.NoError(t, err)
}

func TestHTMLExporter(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(testSnapshot())
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "heartline snapshot")
	assert.Contains(t, html, "Heart rate 72 BPM")
	assert.Contains(t, html, "not medical data")
}

func TestExporters_EmptySnapshot(t *testing.T) {
	snap := testSnapshot()
	snap.Samples = nil
	for _, e := range []Exporter{NewPNGExporter(nil), NewHTMLExporter(nil)} {
		_, err := e.Export(snap)
		assert.True(t, errors.Is(err, ErrEmptySnapshot), "%T", e)
	}
}

// =============================================================================
// FILE TESTS
// =============================================================================

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(testSnapshot(), NewJSONExporter(), opts)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".json"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"bpm": 72`)
}

func TestExportToFile_Empty(t *testing.T) {
	snap := testSnapshot()
	snap.Samples = nil
	_, err := ExportToFile(snap, NewJSONExporter(), &Options{OutputDir: t.TempDir()})
	assert.ErrorIs(t, err, ErrEmptySnapshot)
}
