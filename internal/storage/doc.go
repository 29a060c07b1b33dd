// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage keeps a history of finished monitor sessions.
//
// Each session is stored as one row in a SQLite database (pure Go driver,
// modernc.org/sqlite) with its id, source, start and end times and the
// summary statistics of its readings.
//
// # Usage
//
//	store, err := storage.Open(path, 200)
//	err = store.Save(ctx, storage.NewRecord(mgr, "simulated", time.Now()))
//	recs, err := store.List(ctx, 20)
//	rec, err := store.Get(ctx, "3f2a") // unique id prefix
//
// # Storage Location
//
// ~/.heartline/history.db unless history.path is set.
package storage
