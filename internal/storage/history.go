// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/heartline/internal/session"
	"github.com/jeranaias/heartline/internal/util"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrAmbiguousID     = errors.New("session id prefix is ambiguous")
	ErrDatabase        = errors.New("history database error")
)

// =============================================================================
// RECORD
// =============================================================================

// SessionRecord is one finished session.
type SessionRecord struct {
	ID        string        `json:"id"`
	Source    string        `json:"source"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Stats     session.Stats `json:"stats"`
}

// Duration returns how long the session ran.
func (r SessionRecord) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// NewRecord captures a session manager's state at ended.
func NewRecord(m *session.Manager, source string, ended time.Time) SessionRecord {
	return SessionRecord{
		ID:        m.SessionID(),
		Source:    source,
		StartedAt: m.StartTime(),
		EndedAt:   ended,
		Stats:     m.Stats(),
	}
}

// =============================================================================
// STORE
// =============================================================================

// HistoryStore persists session records in SQLite.
type HistoryStore struct {
	db   *sql.DB
	path string

	// keep limits stored sessions (0 = unlimited).
	keep int
}

// Open opens or creates the history database at path.
func Open(path string, keep int) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrDatabase, path, err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=2000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrDatabase, p, err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: schema: %w", ErrDatabase, err)
	}
	if _, err := db.Exec("PRAGMA user_version = " + strconv.Itoa(schemaVersion)); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: user_version: %w", ErrDatabase, err)
	}

	return &HistoryStore{db: db, path: path, keep: keep}, nil
}

// Path returns the database file.
func (s *HistoryStore) Path() string { return s.path }

// Close releases the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Save inserts or replaces rec, then trims the oldest sessions beyond the
// retention limit.
func (s *HistoryStore) Save(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: record has no id", ErrDatabase)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDatabase, err)
	}
	defer tx.Rollback()

	st := rec.Stats
	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions
			(id, source, started_at, ended_at, count, total, mean, stddev, median, min_bpm, max_bpm, last_bpm)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Source, rec.StartedAt.UnixMilli(), rec.EndedAt.UnixMilli(),
		st.Count, st.Total, st.Mean, st.StdDev, st.Median, st.Min, st.Max, st.Last)
	if err != nil {
		return fmt.Errorf("%w: insert: %w", ErrDatabase, err)
	}

	if s.keep > 0 {
		_, err = tx.ExecContext(ctx, `
			DELETE FROM sessions WHERE id NOT IN (
				SELECT id FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?
			)
		`, s.keep)
		if err != nil {
			return fmt.Errorf("%w: trim: %w", ErrDatabase, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", ErrDatabase, err)
	}
	return nil
}

const selectColumns = `id, source, started_at, ended_at, count, total, mean, stddev, median, min_bpm, max_bpm, last_bpm`

// List returns up to limit sessions, newest first. limit <= 0 returns all.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM sessions ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrDatabase, err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list: %w", ErrDatabase, err)
	}
	return out, nil
}

// Get returns the session whose id starts with prefix.
func (s *HistoryStore) Get(ctx context.Context, prefix string) (SessionRecord, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return SessionRecord{}, ErrSessionNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM sessions WHERE substr(id, 1, ?) = ? LIMIT 2`,
		len(prefix), prefix)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("%w: get: %w", ErrDatabase, err)
	}
	defer rows.Close()

	var found []SessionRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return SessionRecord{}, err
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return SessionRecord{}, fmt.Errorf("%w: get: %w", ErrDatabase, err)
	}

	switch len(found) {
	case 0:
		return SessionRecord{}, fmt.Errorf("%w: %s", ErrSessionNotFound, prefix)
	case 1:
		return found[0], nil
	default:
		return SessionRecord{}, fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// Delete removes the session whose id starts with prefix.
func (s *HistoryStore) Delete(ctx context.Context, prefix string) error {
	rec, err := s.Get(ctx, prefix)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, rec.ID); err != nil {
		return fmt.Errorf("%w: delete: %w", ErrDatabase, err)
	}
	return nil
}

// Clear removes every session and returns how many there were.
func (s *HistoryStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("%w: clear: %w", ErrDatabase, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Count returns the number of stored sessions.
func (s *HistoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrDatabase, err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (SessionRecord, error) {
	var (
		rec            SessionRecord
		started, ended int64
		st             session.Stats
	)
	err := row.Scan(&rec.ID, &rec.Source, &started, &ended,
		&st.Count, &st.Total, &st.Mean, &st.StdDev, &st.Median, &st.Min, &st.Max, &st.Last)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("%w: scan: %w", ErrDatabase, err)
	}
	rec.StartedAt = time.UnixMilli(started)
	rec.EndedAt = time.UnixMilli(ended)
	rec.Stats = st
	return rec, nil
}

// =============================================================================
// SESSION LIST FORMATTING
// =============================================================================

// FormatSessionList renders records as a fixed-width table.
func FormatSessionList(recs []SessionRecord) string {
	if len(recs) == 0 {
		return "No sessions recorded."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("ID", 10) + util.PadRight("Started", 18) + util.PadRight("Length", 10) +
		util.PadRight("Source", 11) + util.PadRight("Beats", 7) + "Mean BPM (min-max)\n")
	for _, r := range recs {
		bpm := "-"
		if r.Stats.Count > 0 {
			bpm = fmt.Sprintf("%.1f (%.0f-%.0f)", r.Stats.Mean, r.Stats.Min, r.Stats.Max)
		}
		sb.WriteString(util.PadRight(util.ShortID(r.ID, 8), 10) +
			util.PadRight(r.StartedAt.Local().Format("2006-01-02 15:04"), 18) +
			util.PadRight(r.Duration().Round(time.Second).String(), 10) +
			util.PadRight(util.TruncateWidth(r.Source, 10), 11) +
			util.PadRight(strconv.Itoa(r.Stats.Total), 7) +
			bpm + "\n")
	}
	return sb.String()
}
