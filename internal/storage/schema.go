// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// schemaVersion is stored in PRAGMA user_version.
const schemaVersion = 1

// Schema creates the history tables. Times are unix milliseconds.
const Schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	started_at INTEGER NOT NULL,
	ended_at   INTEGER NOT NULL,
	count      INTEGER NOT NULL DEFAULT 0,
	total      INTEGER NOT NULL DEFAULT 0,
	mean       REAL NOT NULL DEFAULT 0,
	stddev     REAL NOT NULL DEFAULT 0,
	median     REAL NOT NULL DEFAULT 0,
	min_bpm    REAL NOT NULL DEFAULT 0,
	max_bpm    REAL NOT NULL DEFAULT 0,
	last_bpm   REAL NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at DESC);
`
