// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across heartline.
//
//   - AtomicWriteFile: crash-safe file writing with fsync, used for config
//     saves and snapshots
//   - StringWidth, TruncateWidth, PadLeft, PadRight: display
//     column layout for the monitor header and footer
//   - ShortID: session id prefixes for file names and log lines
package util
