// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package waveform

import (
	"errors"
	"fmt"
	"math"
)

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// Kind is the envelope of a segment.
type Kind int

const (
	// Flat holds the baseline.
	Flat Kind = iota
	// HalfSine follows sin(t*pi) over the segment.
	HalfSine
	// Triangle rises linearly to the midpoint and falls back.
	Triangle
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Flat:
		return "flat"
	case HalfSine:
		return "half-sine"
	case Triangle:
		return "triangle"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Direction is the screen-space sign of a deflection.
type Direction int

const (
	// Up moves toward the top of the surface (smaller y).
	Up Direction = -1
	// Down moves toward the bottom of the surface (larger y).
	Down Direction = 1
)

// Segment is one interval of the beat shape. Start is inclusive; End is
// exclusive except for the final segment of a shape, which also covers 1.0.
type Segment struct {
	Name  string
	Start float64
	End   float64
	Kind  Kind
	Dir   Direction
	Scale float64
}

// Width returns End - Start.
func (s Segment) Width() float64 {
	return s.End - s.Start
}

// value evaluates the segment at phase f. Callers guarantee f lies in the
// segment.
func (s Segment) value(f, mid, amp float64) float64 {
	if s.Kind == Flat || s.Scale == 0 {
		return mid
	}
	t := (f - s.Start) / s.Width()

	var env float64
	switch s.Kind {
	case HalfSine:
		env = math.Sin(t * math.Pi)
	case Triangle:
		env = 1 - math.Abs(2*t-1)
	}
	return mid + float64(s.Dir)*env*amp*s.Scale
}

// =============================================================================
// SHAPE
// =============================================================================

// Shape errors.
var (
	ErrEmptyShape   = errors.New("shape has no segments")
	ErrInvalidShape = errors.New("invalid shape")
)

// Shape is an ordered segment table covering [0, 1].
type Shape struct {
	Segments []Segment
}

// canonical is the P-QRS-T table. Boundaries and scale factors are fixed.
var canonical = []Segment{
	{Name: "baseline", Start: 0, End: 0.12, Kind: Flat},
	{Name: "P", Start: 0.12, End: 0.22, Kind: HalfSine, Dir: Up, Scale: 0.13},
	{Name: "PR", Start: 0.22, End: 0.26, Kind: Flat},
	{Name: "Q", Start: 0.26, End: 0.29, Kind: HalfSine, Dir: Down, Scale: 0.20},
	{Name: "R", Start: 0.29, End: 0.36, Kind: Triangle, Dir: Up, Scale: 0.95},
	{Name: "S", Start: 0.36, End: 0.42, Kind: HalfSine, Dir: Down, Scale: 0.28},
	{Name: "J", Start: 0.42, End: 0.47, Kind: Flat},
	{Name: "ST", Start: 0.47, End: 0.52, Kind: Flat},
	{Name: "T", Start: 0.52, End: 0.78, Kind: HalfSine, Dir: Up, Scale: 0.20},
	{Name: "TP", Start: 0.78, End: 1.0, Kind: Flat},
}

// CanonicalShape returns a copy of the standard P-QRS-T beat.
func CanonicalShape() Shape {
	segs := make([]Segment, len(canonical))
	copy(segs, canonical)
	return Shape{Segments: segs}
}

// Validate checks that the segments tile [0, 1] in order with no gaps or
// overlaps.
func (s Shape) Validate() error {
	if len(s.Segments) == 0 {
		return ErrEmptyShape
	}
	if first := s.Segments[0]; first.Start != 0 {
		return fmt.Errorf("%w: first segment %q starts at %g, want 0", ErrInvalidShape, first.Name, first.Start)
	}
	if last := s.Segments[len(s.Segments)-1]; last.End != 1 {
		return fmt.Errorf("%w: last segment %q ends at %g, want 1", ErrInvalidShape, last.Name, last.End)
	}

	for i, seg := range s.Segments {
		if !(seg.Start < seg.End) {
			return fmt.Errorf("%w: segment %q is empty or reversed [%g, %g)", ErrInvalidShape, seg.Name, seg.Start, seg.End)
		}
		if seg.Scale < 0 || math.IsNaN(seg.Scale) {
			return fmt.Errorf("%w: segment %q has scale %g", ErrInvalidShape, seg.Name, seg.Scale)
		}
		if seg.Kind < Flat || seg.Kind > Triangle {
			return fmt.Errorf("%w: segment %q has unknown %s", ErrInvalidShape, seg.Name, seg.Kind)
		}
		if seg.Kind != Flat && seg.Dir != Up && seg.Dir != Down {
			return fmt.Errorf("%w: segment %q has no direction", ErrInvalidShape, seg.Name)
		}
		if i > 0 {
			prev := s.Segments[i-1]
			if seg.Start > prev.End {
				return fmt.Errorf("%w: gap between %q and %q", ErrInvalidShape, prev.Name, seg.Name)
			}
			if seg.Start < prev.End {
				return fmt.Errorf("%w: %q overlaps %q", ErrInvalidShape, seg.Name, prev.Name)
			}
		}
	}
	return nil
}

// SegmentAt returns the segment covering phase f. Out-of-range phases are
// clamped to [0, 1].
func (s Shape) SegmentAt(f float64) (Segment, bool) {
	if len(s.Segments) == 0 {
		return Segment{}, false
	}
	f = clampPhase(f)
	last := len(s.Segments) - 1
	for i, seg := range s.Segments {
		if f >= seg.Start && (f < seg.End || (i == last && f <= seg.End)) {
			return seg, true
		}
	}
	return Segment{}, false
}

// Sample evaluates the shape at phase f around baseline mid with amplitude
// amp. Phases not covered by any segment return mid.
func (s Shape) Sample(f, mid, amp float64) float64 {
	f = clampPhase(f)
	seg, ok := s.SegmentAt(f)
	if !ok {
		return mid
	}
	return seg.value(f, mid, amp)
}

// Peak returns the largest distance from mid any segment reaches, as a
// multiple of amp.
func (s Shape) Peak() float64 {
	var peak float64
	for _, seg := range s.Segments {
		if seg.Kind != Flat && seg.Scale > peak {
			peak = seg.Scale
		}
	}
	return peak
}

func clampPhase(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
