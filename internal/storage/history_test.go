// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/heartline/internal/session"
)

var base = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func openStore(t *testing.T, keep int) *HistoryStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"), keep)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func record(id string, startOffset time.Duration, mean float64) SessionRecord {
	start := base.Add(startOffset)
	return SessionRecord{
		ID:        id,
		Source:    "simulated",
		StartedAt: start,
		EndedAt:   start.Add(90 * time.Second),
		Stats: session.Stats{
			Count: 10, Total: 12, Mean: mean, StdDev: 2.5, Median: mean,
			Min: mean - 4, Max: mean + 4, Last: mean + 1,
		},
	}
}

func TestOpen_CreatesDirectory(t *testing.T) {
	s := openStore(t, 0)
	assert.FileExists(t, s.Path())

	n, err := s.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 0)

	want := record("a1b2c3d4-0000-4000-8000-000000000001", 0, 72.4)
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Source, got.Source)
	assert.True(t, want.StartedAt.Equal(got.StartedAt))
	assert.True(t, want.EndedAt.Equal(got.EndedAt))
	assert.Equal(t, want.Stats, got.Stats)
	assert.Equal(t, 90*time.Second, got.Duration())

	byPrefix, err := s.Get(ctx, "a1b2")
	require.NoError(t, err)
	assert.Equal(t, want.ID, byPrefix.ID)
}

func TestHistoryStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 0)

	rec := record("same", 0, 70)
	require.NoError(t, s.Save(ctx, rec))
	rec.Stats.Mean = 80
	require.NoError(t, s.Save(ctx, rec))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.Get(ctx, "same")
	require.NoError(t, err)
	assert.Equal(t, 80.0, got.Stats.Mean)
}

func TestHistoryStore_SaveRejectsEmptyID(t *testing.T) {
	s := openStore(t, 0)
	err := s.Save(context.Background(), SessionRecord{})
	assert.ErrorIs(t, err, ErrDatabase)
}

func TestHistoryStore_GetErrors(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 0)
	require.NoError(t, s.Save(ctx, record("abc-1", 0, 70)))
	require.NoError(t, s.Save(ctx, record("abc-2", time.Minute, 71)))

	_, err := s.Get(ctx, "zzz")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	_, err = s.Get(ctx, "abc")
	assert.True(t, errors.Is(err, ErrAmbiguousID))

	_, err = s.Get(ctx, "  ")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestHistoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 0)
	for i, id := range []string{"s1", "s2", "s3"} {
		require.NoError(t, s.Save(ctx, record(id, time.Duration(i)*time.Hour, 70)))
	}

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"s3", "s2", "s1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	two, err := s.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, two, 2)
}

func TestHistoryStore_KeepTrimsOldest(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 2)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.Save(ctx, record(id, time.Duration(i)*time.Hour, 70)))
	}

	recs, err := s.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	_, err = s.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestHistoryStore_DeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, 0)
	require.NoError(t, s.Save(ctx, record("keep", 0, 70)))
	require.NoError(t, s.Save(ctx, record("drop", time.Hour, 70)))

	require.NoError(t, s.Delete(ctx, "drop"))
	assert.ErrorIs(t, s.Delete(ctx, "drop"), ErrSessionNotFound)

	n, err := s.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHistoryStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path, 0)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, record("persisted", 0, 66)))
	require.NoError(t, s.Close())

	s, err = Open(path, 0)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(ctx, "persisted")
	require.NoError(t, err)
	assert.Equal(t, 66.0, got.Stats.Mean)
}

func TestNewRecord(t *testing.T) {
	now := base
	m := session.NewManager(session.Config{Now: func() time.Time { return now }})
	m.Record(70, base)
	m.Record(74, base.Add(time.Second))

	rec := NewRecord(m, "nats", base.Add(time.Minute))
	assert.Equal(t, m.SessionID(), rec.ID)
	assert.Equal(t, "nats", rec.Source)
	assert.Equal(t, base, rec.StartedAt)
	assert.Equal(t, time.Minute, rec.Duration())
	assert.Equal(t, 2, rec.Stats.Count)
	assert.InDelta(t, 72.0, rec.Stats.Mean, 1e-9)
}

func TestFormatSessionList(t *testing.T) {
	assert.Equal(t, "No sessions recorded.", FormatSessionList(nil))

	empty := record("0123456789abcdef", 0, 0)
	empty.Stats = session.Stats{}
	out := FormatSessionList([]SessionRecord{record("fedcba9876543210", 0, 72.44), empty})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], "fedcba98  "))
	assert.Contains(t, lines[1], "1m30s")
	assert.Contains(t, lines[1], "72.4 (68-76)")
	assert.True(t, strings.HasSuffix(lines[2], "-"))
}
