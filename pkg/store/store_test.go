package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (s *Store) {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() }) //nolint:errcheck // test cleanup
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, KindAnalysis, "")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	record, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, KindAnalysis, record.Kind)
	assert.Equal(t, StatusPending, record.Status)
	assert.Nil(t, record.Payload)
	assert.False(t, record.CreatedAt.IsZero())
}

func TestCompleteStoresPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, KindScaffold, "parent-analysis")
	require.NoError(t, err)

	payload := map[string]any{
		"project_name": "demo",
		"files":        []any{map[string]any{"path": "a.py"}},
	}
	err = s.Complete(ctx, id, payload, 1500*time.Millisecond)
	require.NoError(t, err)

	record, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusComplete, record.Status)
	assert.Equal(t, "parent-analysis", record.AnalysisID)
	assert.Equal(t, "demo", record.Payload["project_name"])
	assert.Equal(t, int64(1500), record.ProcessingMS)
}

func TestFailStoresError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, KindFitness, "")
	require.NoError(t, err)

	err = s.Fail(ctx, id, "provider unavailable", time.Second)
	require.NoError(t, err)

	record, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, record.Status)
	assert.Equal(t, "provider unavailable", record.Error)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMissing(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Complete(ctx, "no-such-id", map[string]any{}, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Fail(ctx, "no-such-id", "x", 0)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByKind(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, KindAnalysis, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, KindScorecard, "")
	require.NoError(t, err)
	_, err = s.Create(ctx, KindScorecard, "")
	require.NoError(t, err)

	scorecards, err := s.List(ctx, KindScorecard, 10)
	require.NoError(t, err)
	assert.Len(t, scorecards, 2)

	all, err := s.List(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	limited, err := s.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	id, err := s.Create(ctx, KindPortfolio, "")
	require.NoError(t, err)

	err = s.Delete(ctx, id)
	require.NoError(t, err)

	_, err = s.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPing(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Ping(context.Background()))
}
