// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package feed

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseBeat(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		line  string
		bpm   float64
		at    time.Time
		errIs error
	}{
		{"bare", "72", 72, now, nil},
		{"bare float", " 71.5\r\n", 71.5, now, nil},
		{"prefixed colon", "BPM:80", 80, now, nil},
		{"prefixed equals", "bpm=64", 64, now, nil},
		{"heart rate prefix", "HR: 90", 90, now, nil},
		{"full width", "ＢＰＭ：７２", 72, now, nil},
		{"unit suffix", "68 BPM", 68, now, nil},
		{"json", `{"bpm":75}`, 75, now, nil},
		{"json rfc3339", `{"bpm":75,"ts":"2025-01-02T03:04:05Z"}`, 75, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), nil},
		{"json unix ms", `{"bpm":66,"ts":1700000000000}`, 66, time.UnixMilli(1700000000000), nil},
		{"json null ts", `{"bpm":66,"ts":null}`, 66, now, nil},
		{"empty", "   ", 0, time.Time{}, ErrEmptyPayload},
		{"garbage", "hello", 0, time.Time{}, ErrBadPayload},
		{"nan", "NaN", 0, time.Time{}, ErrBadPayload},
		{"json missing bpm", `{"ts":1}`, 0, time.Time{}, ErrBadPayload},
		{"json bad ts", `{"bpm":70,"ts":"yesterday"}`, 0, time.Time{}, ErrBadPayload},
		{"json broken", `{"bpm":`, 0, time.Time{}, ErrBadPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := ParseBeat(tt.line, now)
			if tt.errIs != nil {
				if !errors.Is(err, tt.errIs) {
					t.Fatalf("ParseBeat(%q) error = %v, want %v", tt.line, err, tt.errIs)
				}
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.bpm, b.BPM)
			require.True(t, tt.at.Equal(b.At), "At = %v, want %v", b.At, tt.at)
		})
	}
}

func TestBeat_EncodeParses(t *testing.T) {
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	data, err := Beat{BPM: 77, At: at}.Encode()
	require.NoError(t, err)

	b, err := ParseBeat(string(data), time.Now())
	require.NoError(t, err)
	require.Equal(t, 77.0, b.BPM)
	require.True(t, at.Equal(b.At))
}

// =============================================================================
// GATE TESTS
// =============================================================================

func TestGate(t *testing.T) {
	g := NewGate(2, 30, 220)
	t0 := time.Unix(1000, 0)

	ok, _ := g.Allow(Beat{BPM: 72, At: t0})
	require.True(t, ok)

	ok, reason := g.Allow(Beat{BPM: 72, At: t0.Add(100 * time.Millisecond)})
	require.False(t, ok)
	require.Equal(t, DropTooFast, reason)

	ok, _ = g.Allow(Beat{BPM: 72, At: t0.Add(700 * time.Millisecond)})
	require.True(t, ok)

	ok, reason = g.Allow(Beat{BPM: 10, At: t0.Add(5 * time.Second)})
	require.False(t, ok)
	require.Equal(t, DropOutOfRange, reason)

	ok, reason = g.Allow(Beat{BPM: 400, At: t0.Add(6 * time.Second)})
	require.False(t, ok)
	require.Equal(t, DropOutOfRange, reason)

	require.Equal(t, uint64(3), g.Dropped())
}

func TestGate_Unlimited(t *testing.T) {
	g := NewGate(0, 1, 300)
	at := time.Unix(0, 0)
	for i := 0; i < 100; i++ {
		ok, _ := g.Allow(Beat{BPM: 60, At: at})
		require.True(t, ok)
	}
}
