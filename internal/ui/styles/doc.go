// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the heartline TUI.

# Color System (colors.go)

Chrome colours (labels, captions, errors) use Lip Gloss AdaptiveColor for
automatic light/dark terminal detection.

The strip itself is drawn in a Palette built from the [palette] section of
the configuration. Palette colours are parsed and blended with go-colorful:

	Line       - the trace
	Glow       - the halo around the newest sample
	Background - the strip surface
	Baseline   - the dashed centerline

# Theme (theme.go)

Theme holds the lipgloss styles for the monitor panel. NewTheme detects the
terminal colour profile and background with termenv unless the theme mode is
forced to dark or light.

# Animations (animations.go)

Easing functions drive the header pulse dot, which swells on every beat
boundary and settles back over PulseDuration.
*/
package styles
