// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package waveform

// QRSY returns the vertical coordinate of the canonical beat at phase f.
//
// mid is the baseline and amp the deflection scale; the result always lies
// within mid ± 0.95*amp. f outside [0, 1] is clamped.
func QRSY(f, mid, amp float64) float64 {
	f = clampPhase(f)
	for i := range canonical {
		seg := &canonical[i]
		if f < seg.End || i == len(canonical)-1 {
			return seg.value(f, mid, amp)
		}
	}
	return mid
}
