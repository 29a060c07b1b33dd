// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package strip

// SampleBuffer is a fixed-length history of vertical positions, oldest
// first. It is backed by a ring so Push is O(1).
type SampleBuffer struct {
	data []float64
	head int // index of the oldest sample
}

// NewSampleBuffer returns a buffer of width samples, all at mid.
func NewSampleBuffer(width int, mid float64) *SampleBuffer {
	b := &SampleBuffer{}
	b.Reset(width, mid)
	return b
}

// Reset discards the history and refills width samples at mid.
func (b *SampleBuffer) Reset(width int, mid float64) {
	if width < 0 {
		width = 0
	}
	if cap(b.data) >= width {
		b.data = b.data[:width]
	} else {
		b.data = make([]float64, width)
	}
	for i := range b.data {
		b.data[i] = mid
	}
	b.head = 0
}

// Push drops the oldest sample and appends y as the newest.
func (b *SampleBuffer) Push(y float64) {
	if len(b.data) == 0 {
		return
	}
	b.data[b.head] = y
	b.head++
	if b.head == len(b.data) {
		b.head = 0
	}
}

// Len returns the number of samples.
func (b *SampleBuffer) Len() int {
	return len(b.data)
}

// At returns the i-th sample, 0 being the oldest.
func (b *SampleBuffer) At(i int) float64 {
	n := len(b.data)
	i += b.head
	if i >= n {
		i -= n
	}
	return b.data[i]
}

// Newest returns the most recently pushed sample.
func (b *SampleBuffer) Newest() float64 {
	return b.At(len(b.data) - 1)
}

// Samples returns a copy of the history, oldest first.
func (b *SampleBuffer) Samples() []float64 {
	out := make([]float64, len(b.data))
	n := copy(out, b.data[b.head:])
	copy(out[n:], b.data[:b.head])
	return out
}
