package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"pillars/internal/chart"
	"pillars/internal/reaction"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func payloads(raw ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(raw))
	for i, r := range raw {
		out[i] = json.RawMessage(r)
	}
	return out
}

func TestSQLiteStore_QueueLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.Enqueue(ctx, "analyze", payloads(`{"a":1}`, `{"b":2}`, `{"c":3}`))
	require.NoError(t, err)
	require.Len(t, ids, 3)

	_, err = store.Enqueue(ctx, "calibrate", payloads(`{}`))
	require.NoError(t, err)

	pending, err := store.Pending(ctx, "analyze", 2)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, ids[0], pending[0].ID)
	assert.Equal(t, StatusPending, pending[0].Status)
	assert.JSONEq(t, `{"a":1}`, string(pending[0].Payload))

	require.NoError(t, store.Advance(ctx, ids[0], 1))
	require.NoError(t, store.MarkFinished(ctx, ids[0]))
	require.NoError(t, store.MarkFailed(ctx, ids[1], "invalid chart: missing position"))

	job, err := store.GetJob(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, job.Status)
	assert.Equal(t, "invalid chart: missing position", job.Error)

	counts, err := store.Counts(ctx, "analyze")
	require.NoError(t, err)
	assert.Equal(t, map[JobStatus]int{StatusPending: 1, StatusFinished: 1, StatusFailed: 1}, counts)

	job, err = store.GetJob(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, 1, job.Progress)
	assert.False(t, job.UpdatedAt.Before(job.CreatedAt))
}

func TestSQLiteStore_ResetReturnsJobsToPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ids, err := store.Enqueue(ctx, "analyze", payloads(`{}`, `{}`, `{}`))
	require.NoError(t, err)
	require.NoError(t, store.Advance(ctx, ids[0], 2))
	require.NoError(t, store.MarkFinished(ctx, ids[0]))
	require.NoError(t, store.MarkFailed(ctx, ids[1], "boom"))

	n, err := store.Reset(ctx, "analyze", StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	job, err := store.GetJob(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)
	assert.Empty(t, job.Error)

	n, err = store.Reset(ctx, "analyze")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "only the finished job is left to reset")

	job, err = store.GetJob(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, StatusPending, job.Status)
	assert.Zero(t, job.Progress)
}

func TestSQLiteStore_MissingJob(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetJob(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.MarkFinished(ctx, 42), ErrNotFound)
}

func TestSQLiteStore_CaseRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	in := chart.Input{
		"year":  {Stem: "甲", Branch: "子"},
		"month": {Stem: "丙", Branch: "寅"},
		"day":   {Stem: "甲", Branch: "辰"},
		"hour":  {Stem: "丁", Branch: "卯"},
	}
	report, err := reaction.Analyze(in)
	require.NoError(t, err)

	require.NoError(t, store.SaveCase(ctx, Case{Key: report.Chart, Chart: in, Report: report, JobID: 7}))

	got, err := store.GetCase(ctx, report.Chart)
	require.NoError(t, err)
	assert.Equal(t, in, got.Chart)
	assert.Equal(t, report, got.Report)
	assert.Equal(t, int64(7), got.JobID)
	assert.False(t, got.AnalyzedAt.IsZero())

	// upsert keeps a single row per key
	require.NoError(t, store.SaveCase(ctx, Case{Key: report.Chart, Chart: in, Report: report, JobID: 8}))
	cases, err := store.ListCases(ctx, 0)
	require.NoError(t, err)
	require.Len(t, cases, 1)
	assert.Equal(t, int64(8), cases[0].JobID)

	_, err = store.GetCase(ctx, "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}
