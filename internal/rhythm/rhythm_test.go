// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package rhythm

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// recordingSink counts boundaries.
type recordingSink struct {
	resets int
	ppb    []int
}

func (r *recordingSink) ResetPhase()            { r.resets++ }
func (r *recordingSink) SetPixelsPerBeat(n int) { r.ppb = append(r.ppb, n) }

type fixedRate int

func (f fixedRate) BPM() int { return int(f) }

func seeded(seed int64) DriverConfig {
	cfg := DefaultDriverConfig()
	cfg.Source = rand.NewSource(seed)
	return cfg
}

// =============================================================================
// DRIVER TESTS
// =============================================================================

func TestNewDriver_Defaults(t *testing.T) {
	d := NewDriver(DriverConfig{Source: rand.NewSource(1)})
	if d.BPM() != DefaultBPM {
		t.Errorf("BPM() = %d, want %d", d.BPM(), DefaultBPM)
	}
	if d.Bounds() != DefaultBounds() {
		t.Errorf("Bounds() = %+v, want %+v", d.Bounds(), DefaultBounds())
	}
}

func TestNewDriver_ClampsInitial(t *testing.T) {
	cfg := seeded(1)
	cfg.Initial = 200
	if got := NewDriver(cfg).BPM(); got != DefaultMaxBPM {
		t.Errorf("BPM() = %d, want %d", got, DefaultMaxBPM)
	}
}

func TestDriver_StepStaysInBounds(t *testing.T) {
	d := NewDriver(seeded(42))
	for i := 0; i < 5000; i++ {
		prev := d.BPM()
		got := d.Step()
		if got < DefaultMinBPM || got > DefaultMaxBPM {
			t.Fatalf("step %d: BPM %d outside bounds", i, got)
		}
		diff := got - prev
		if diff < -DefaultMaxStep || diff > DefaultMaxStep {
			t.Fatalf("step %d: moved %d, more than max step", i, diff)
		}
	}
	if d.Steps() != 5000 {
		t.Errorf("Steps() = %d, want 5000", d.Steps())
	}
}

func TestDriver_DeltaDistribution(t *testing.T) {
	d := NewDriver(seeded(7))
	seen := map[int]int{}
	for i := 0; i < 6000; i++ {
		seen[d.Delta()]++
	}
	for _, want := range []int{-3, -2, -1, 1, 2, 3} {
		if seen[want] == 0 {
			t.Errorf("delta %d never drawn", want)
		}
	}
	if seen[0] != 0 {
		t.Errorf("delta 0 drawn %d times", seen[0])
	}
}

func TestDriver_SeededIsReproducible(t *testing.T) {
	a := NewDriver(seeded(99))
	b := NewDriver(seeded(99))
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Step(), b.Step())
		require.Equal(t, a.NextInterval(), b.NextInterval())
	}
}

func TestDriver_ApplyClampsAtMax(t *testing.T) {
	cfg := seeded(1)
	cfg.Initial = 82
	d := NewDriver(cfg)

	var published []int
	d.Subscribe(func(bpm int) { published = append(published, bpm) })

	for i := 0; i < 5; i++ {
		d.Apply(3)
	}
	require.Equal(t, 85, d.BPM())
	require.Equal(t, []int{85, 85, 85, 85, 85}, published)
}

func TestDriver_ApplySequence(t *testing.T) {
	tests := []struct {
		name   string
		deltas []int
		want   int
	}{
		{
			name: "fifty steps touching both bounds",
			deltas: []int{
				3, 3, 3, 3, 3, 2, 1, -1, 3, 2,
				-3, -3, -3, -3, -3, -3, -3, -3, -3, -2,
				-1, -3, -2, 1, 2, 3, -1, 2, 1, -2,
				3, 3, 1, -1, -3, 2, 2, -2, 1, 3,
				-1, -2, 3, 2, -3, 1, 1, -1, 2, -2,
			},
			want: 75,
		},
		{
			name:   "pinned high then back",
			deltas: []int{3, 3, 3, 3, 3, 3, 3, -1, -2},
			want:   82,
		},
		{
			name:   "pinned low then back",
			deltas: []int{-3, -3, -3, -3, -3, -3, -3, -3, -3, 1, 2},
			want:   63,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(seeded(1))

			ref := DefaultBPM
			var hitMin, hitMax bool
			for i, delta := range tt.deltas {
				ref = min(DefaultMaxBPM, max(DefaultMinBPM, ref+delta))
				hitMin = hitMin || ref == DefaultMinBPM
				hitMax = hitMax || ref == DefaultMaxBPM
				require.Equal(t, ref, d.Apply(delta), "step %d", i)
			}
			require.Equal(t, tt.want, d.BPM())
			require.True(t, hitMin || hitMax, "sequence never reached a bound")
		})
	}
}

func TestDriver_ApplyClampsAtMin(t *testing.T) {
	cfg := seeded(1)
	cfg.Initial = 61
	d := NewDriver(cfg)
	d.Apply(-3)
	if d.BPM() != DefaultMinBPM {
		t.Errorf("BPM() = %d, want %d", d.BPM(), DefaultMinBPM)
	}
}

func TestDriver_NextIntervalRange(t *testing.T) {
	d := NewDriver(seeded(3))
	for i := 0; i < 1000; i++ {
		iv := d.NextInterval()
		if iv < DefaultDriftMin || iv >= DefaultDriftMax {
			t.Fatalf("interval %v outside [%v, %v)", iv, DefaultDriftMin, DefaultDriftMax)
		}
	}
}

func TestDriver_NextIntervalFixed(t *testing.T) {
	cfg := seeded(3)
	cfg.MinInterval = time.Second
	cfg.MaxInterval = time.Second
	if got := NewDriver(cfg).NextInterval(); got != time.Second {
		t.Errorf("NextInterval() = %v, want 1s", got)
	}
}

func TestDriver_SetBoundsReclamps(t *testing.T) {
	d := NewDriver(seeded(1))
	got := d.SetBounds(Bounds{Min: 90, Max: 100})
	if got != 90 {
		t.Errorf("SetBounds re-clamp = %d, want 90", got)
	}
}

func TestBounds_ClampNeverZero(t *testing.T) {
	b := Bounds{Min: 0, Max: 10}
	if got := b.Clamp(-5); got != 1 {
		t.Errorf("Clamp(-5) = %d, want 1", got)
	}
	if !b.Contains(5) || b.Contains(11) {
		t.Error("Contains mismatch")
	}
}

// =============================================================================
// GEOMETRY TESTS
// =============================================================================

func TestPixelsPerBeat(t *testing.T) {
	tests := []struct {
		bpm  int
		want int
	}{
		{60, 90},
		{120, 45},
		{72, 75},
		{85, 64},
		{0, 0},
		{-10, 0},
	}
	for _, tt := range tests {
		if got := PixelsPerBeat(tt.bpm, 60, 1.5); got != tt.want {
			t.Errorf("PixelsPerBeat(%d) = %d, want %d", tt.bpm, got, tt.want)
		}
	}
}

func TestPixelsPerBeat_InverseProportional(t *testing.T) {
	require.Equal(t, 2*PixelsPerBeat(120, 60, 1.5), PixelsPerBeat(60, 60, 1.5))
}

func TestBeatInterval(t *testing.T) {
	if got := BeatInterval(60); got != time.Second {
		t.Errorf("BeatInterval(60) = %v, want 1s", got)
	}
	if got := BeatInterval(120); got != 500*time.Millisecond {
		t.Errorf("BeatInterval(120) = %v, want 500ms", got)
	}
	if got := BeatInterval(0); got != 0 {
		t.Errorf("BeatInterval(0) = %v, want 0", got)
	}
}

// =============================================================================
// SCHEDULER TESTS
// =============================================================================

func TestScheduler_FireResetsAndArms(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(fixedRate(60), sink, 60, 1.5)
	require.Equal(t, Idle, s.State())

	start := time.Unix(1000, 0)
	delay := s.Fire(start)

	require.Equal(t, time.Second, delay)
	require.Equal(t, Waiting, s.State())
	require.Equal(t, start.Add(time.Second), s.Deadline())
	require.Equal(t, 1, sink.resets)
	require.Equal(t, []int{90}, sink.ppb)
	require.Equal(t, 90, s.PixelsPerBeat())
}

func TestScheduler_TickFiresOnDeadline(t *testing.T) {
	sink := &recordingSink{}
	s := NewScheduler(fixedRate(120), sink, 60, 1.5)
	start := time.Unix(0, 0)
	s.Fire(start)

	if s.Tick(start.Add(499 * time.Millisecond)) {
		t.Fatal("Tick fired before deadline")
	}
	if !s.Tick(start.Add(500 * time.Millisecond)) {
		t.Fatal("Tick did not fire at deadline")
	}
	require.Equal(t, uint64(2), s.Beats())
	require.Equal(t, start.Add(time.Second), s.Deadline())
}

func TestScheduler_RecomputesOnRateChange(t *testing.T) {
	sink := &recordingSink{}
	cfg := seeded(1)
	cfg.Initial = 60
	d := NewDriver(cfg)
	s := NewScheduler(d, sink, 60, 1.5)

	start := time.Unix(0, 0)
	s.Fire(start)
	require.Equal(t, []int{90}, sink.ppb)

	d.Set(80)
	// Beat length follows the new rate at once; phase and deadline do not move.
	require.Equal(t, []int{90, 68}, sink.ppb)
	require.Equal(t, 68, s.PixelsPerBeat())
	require.Equal(t, 1, sink.resets)
	require.Equal(t, start.Add(time.Second), s.Deadline())

	d.Apply(-8)
	require.Equal(t, []int{90, 68, 75}, sink.ppb)

	delay := s.Fire(s.Deadline())
	require.Equal(t, BeatInterval(72), delay)
	require.Equal(t, []int{90, 68, 75, 75}, sink.ppb)
	require.Equal(t, 2, sink.resets)
}

func TestScheduler_FixedRateDoesNotSubscribe(t *testing.T) {
	sink := &recordingSink{}
	NewScheduler(fixedRate(72), sink, 60, 1.5)
	require.Empty(t, sink.ppb)
}

func TestScheduler_Stop(t *testing.T) {
	s := NewScheduler(fixedRate(72), &recordingSink{}, 60, 1.5)
	s.Fire(time.Unix(0, 0))
	s.Stop()
	require.Equal(t, Idle, s.State())
	require.False(t, s.Tick(time.Unix(100, 0)))
}

func TestScheduler_NilSink(t *testing.T) {
	s := NewScheduler(fixedRate(72), nil, 60, 1.5)
	require.NotPanics(t, func() { s.Fire(time.Unix(0, 0)) })
}

// =============================================================================
// EXTERNAL TESTS
// =============================================================================

func TestExternal_Trigger(t *testing.T) {
	sink := &recordingSink{}
	e := NewExternal(sink, Bounds{Min: 30, Max: 220}, 60, 1.5)

	var seen []int
	e.Subscribe(func(bpm int) { seen = append(seen, bpm) })

	at := time.Unix(5, 0)
	bpm, ok := e.Trigger(59.6, at)
	require.True(t, ok)
	require.Equal(t, 60, bpm)
	require.Equal(t, []int{90}, sink.ppb)
	require.Equal(t, 1, sink.resets)
	require.Equal(t, at, e.LastBeat())
	require.Equal(t, []int{60}, seen)
}

func TestExternal_RejectsImplausible(t *testing.T) {
	sink := &recordingSink{}
	e := NewExternal(sink, Bounds{Min: 30, Max: 220}, 60, 1.5)

	for _, v := range []float64{0, -1, 301, 1e9} {
		if _, ok := e.Trigger(v, time.Now()); ok {
			t.Errorf("Trigger(%v) accepted", v)
		}
	}
	require.Zero(t, sink.resets)
	require.Zero(t, e.Beats())
}

func TestExternal_ClampsToBounds(t *testing.T) {
	e := NewExternal(&recordingSink{}, Bounds{Min: 40, Max: 180}, 60, 1.5)
	bpm, ok := e.Trigger(250, time.Now())
	require.True(t, ok)
	require.Equal(t, 180, bpm)

	e.SetBounds(Bounds{Min: 50, Max: 100})
	bpm, _ = e.Trigger(20, time.Now())
	require.Equal(t, 50, bpm)
}
