// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/lecture-engine/pkg/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.HistoryConfig{OutputDir: t.TempDir(), MaxResults: 5})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(source string) types.RunRecord {
	return types.RunRecord{
		Source:        source,
		Selector:      "1-3,7",
		Pages:         []int{1, 2, 3, 7},
		BatchSize:     3,
		Model:         "test-model",
		ExtractedPath: "outputs/doc_extracted.txt",
		SummaryPath:   "outputs/doc_summary.txt",
		QAPath:        "outputs/doc_qa.txt",
		CreatedAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestInsertAndGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, sampleRecord("/docs/lecture7.pdf"))
	require.NoError(t, err)
	require.Greater(t, id, int64(0))

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/docs/lecture7.pdf", got.Source)
	assert.Equal(t, []int{1, 2, 3, 7}, got.Pages)
	assert.Equal(t, "1-3,7", got.Selector)
	assert.True(t, got.CreatedAt.Equal(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)))
}

func TestGetMissing(t *testing.T) {
	s := testStore(t)

	_, err := s.Get(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no run with id 42")
}

func TestListNewestFirstBounded(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := s.Insert(ctx, sampleRecord("/docs/doc.pdf"))
		require.NoError(t, err)
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 5) // bounded by MaxResults

	for i := 1; i < len(records); i++ {
		assert.Greater(t, records[i-1].ID, records[i].ID, "newest first")
	}
}

func TestPartialRunWithoutNotes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rec := sampleRecord("/docs/doc.pdf")
	rec.SummaryPath = ""
	rec.QAPath = ""

	id, err := s.Insert(ctx, rec)
	require.NoError(t, err)

	got, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, got.SummaryPath)
	assert.Empty(t, got.QAPath)
	assert.NotEmpty(t, got.ExtractedPath)
}

func TestStoreReopens(t *testing.T) {
	dir := t.TempDir()
	cfg := types.HistoryConfig{OutputDir: dir}

	s1, err := NewStore(cfg)
	require.NoError(t, err)
	id, err := s1.Insert(context.Background(), sampleRecord("/a.pdf"))
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := NewStore(cfg)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "/a.pdf", got.Source)
}
