// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package feed reads heart beats from outside the process.
//
// A Source produces Beats on a channel until its context is cancelled. Two
// sources exist: NATSSource subscribes to a subject, SerialSource reads lines
// from a pulse sensor on a serial port. Both carry an already measured rate;
// this package does no signal processing.
//
// A Gate sits between a source and the monitor and drops beats that are
// implausible or arrive faster than configured. Pump wires a source through
// a gate.
//
// # Payloads
//
// Every source accepts the same line formats:
//
//	72
//	BPM:72
//	bpm=72
//	{"bpm": 72, "ts": "2025-01-02T15:04:05Z"}
package feed
