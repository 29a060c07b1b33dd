// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks one monitor run: its id, when it started and the
// heart rates shown during it.
//
// # Key Types
//
//   - Manager: session id, start time and rate history
//   - Stats: summary of the recorded rates
//
// # Usage
//
//	mgr := session.NewManager(session.DefaultConfig())
//	mgr.Record(72, time.Now())
//	st := mgr.Stats()
//	fmt.Printf("mean %.1f ± %.1f over %d readings\n", st.Mean, st.StdDev, st.Count)
//
// The id is a random UUID; snapshots and log lines use its first eight
// characters.
package session
