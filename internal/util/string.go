// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import "github.com/mattn/go-runewidth"

// Column helpers for the monitor header and footer. Widths are display
// columns, so the middle dot and wide runes line up.

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth cuts s to at most width columns, ending in "…" when cut.
func TruncateWidth(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width columns.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// PadLeft pads s on the left to width columns.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// ShortID returns the first n runes of id.
func ShortID(id string, n int) string {
	r := []rune(id)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return id
	}
	return string(r[:n])
}
