package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/tidy-review/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, ts time.Time) store.Run {
	return store.Run{
		RunID:      id,
		Timestamp:  ts,
		Repository: "acme/widgets",
		PRNumber:   7,
		CommitSHA:  "abc123",
		Comments:   2,
	}
}

func TestCreateAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)

	require.NoError(t, s.CreateRun(ctx, sampleRun("run-1", ts)))

	got, err := s.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "acme/widgets", got.Repository)
	assert.Equal(t, 7, got.PRNumber)
	assert.Equal(t, "abc123", got.CommitSHA)
	assert.Equal(t, 2, got.Comments)
	assert.Equal(t, ts.Unix(), got.Timestamp.Unix())
}

func TestGetRunNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "run-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestCreateRunDuplicateID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	run := sampleRun("run-1", time.Now())

	require.NoError(t, s.CreateRun(ctx, run))
	assert.Error(t, s.CreateRun(ctx, run))
}

func TestListRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateRun(ctx, sampleRun("run-old", base)))
	require.NoError(t, s.CreateRun(ctx, sampleRun("run-mid", base.Add(time.Hour))))
	require.NoError(t, s.CreateRun(ctx, sampleRun("run-new", base.Add(2*time.Hour))))

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].RunID)
	assert.Equal(t, "run-mid", runs[1].RunID)
}

func TestSaveAndListPostedComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC)

	require.NoError(t, s.CreateRun(ctx, sampleRun("run-1", ts)))

	records := []store.PostedCommentRecord{
		{Repository: "acme/widgets", PRNumber: 7, Path: "src/a.cpp", Line: 3, Body: "warning: a", PostedAt: ts},
		{Repository: "acme/widgets", PRNumber: 7, Path: "src/b.cpp", Line: 9, Body: "warning: b", PostedAt: ts.Add(time.Second)},
	}
	require.NoError(t, s.SavePostedComments(ctx, "run-1", records))

	got, err := s.ListPostedComments(ctx, "acme/widgets", 7)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "src/a.cpp", got[0].Path)
	assert.Equal(t, 3, got[0].Line)
	assert.Equal(t, "warning: a", got[0].Body)
	assert.Equal(t, ts.Unix(), got[0].PostedAt.Unix())
	assert.Equal(t, "src/b.cpp", got[1].Path)
}

func TestListPostedCommentsFiltersByPR(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Now()

	require.NoError(t, s.CreateRun(ctx, sampleRun("run-1", ts)))
	require.NoError(t, s.SavePostedComments(ctx, "run-1", []store.PostedCommentRecord{
		{Repository: "acme/widgets", PRNumber: 7, Path: "a.cpp", Line: 1, Body: "x", PostedAt: ts},
		{Repository: "acme/widgets", PRNumber: 8, Path: "b.cpp", Line: 2, Body: "y", PostedAt: ts},
		{Repository: "acme/gadgets", PRNumber: 7, Path: "c.cpp", Line: 3, Body: "z", PostedAt: ts},
	}))

	got, err := s.ListPostedComments(ctx, "acme/widgets", 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.cpp", got[0].Path)
}

func TestListPostedCommentsEmpty(t *testing.T) {
	s := newTestStore(t)

	got, err := s.ListPostedComments(context.Background(), "acme/widgets", 99)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSavePostedCommentsRequiresRun(t *testing.T) {
	s := newTestStore(t)

	err := s.SavePostedComments(context.Background(), "run-unknown", []store.PostedCommentRecord{
		{Repository: "acme/widgets", PRNumber: 7, Path: "a.cpp", Line: 1, Body: "x", PostedAt: time.Now()},
	})
	assert.Error(t, err)
}
