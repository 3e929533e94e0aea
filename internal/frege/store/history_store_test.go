package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mdwerror "github.com/msto63/frege/foundation/core/error"
)

func int64Ptr(v int64) *int64 { return &v }

// stores returns every implementation, each backed by a fresh instance
func stores(t *testing.T) map[string]HistoryStore {
	t.Helper()

	sqlite, err := NewSQLiteHistoryStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "nested", "history.db")})
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]HistoryStore{
		"sqlite": sqlite,
		"memory": NewMemoryHistoryStore(),
	}
}

func TestHistoryStore_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			entries := []*Entry{
				{Timestamp: base, Operation: OperationParse, Source: "1", Assoc: "right", Success: true, AST: `{"type":"int","value":1}`},
				{Timestamp: base.Add(time.Second), Operation: OperationEvaluate, Source: "1 + 2", Assoc: "right", Success: true, Value: int64Ptr(3)},
				{Timestamp: base.Add(2 * time.Second), Operation: OperationParse, Source: "+", Assoc: "left", Message: "expected integer literal, got +", RequestID: "req-1"},
			}
			for _, e := range entries {
				require.NoError(t, s.Record(ctx, e))
				assert.NotEmpty(t, e.ID)
			}

			n, err := s.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(3), n)

			recent, err := s.Recent(ctx, 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)

			assert.Equal(t, "+", recent[0].Source)
			assert.False(t, recent[0].Success)
			assert.Equal(t, "expected integer literal, got +", recent[0].Message)
			assert.Equal(t, "req-1", recent[0].RequestID)
			assert.Nil(t, recent[0].Value)

			assert.Equal(t, "1 + 2", recent[1].Source)
			require.NotNil(t, recent[1].Value)
			assert.Equal(t, int64(3), *recent[1].Value)
			assert.Equal(t, OperationEvaluate, recent[1].Operation)

			all, err := s.Recent(ctx, 0)
			require.NoError(t, err)
			assert.Len(t, all, 3)
		})
	}
}

func TestHistoryStore_RecentEmpty(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			recent, err := s.Recent(context.Background(), 10)
			require.NoError(t, err)
			require.NotNil(t, recent)
			assert.Empty(t, recent)

			data, err := json.Marshal(map[string]interface{}{"entries": recent})
			require.NoError(t, err)
			assert.JSONEq(t, `{"entries":[]}`, string(data))
		})
	}
}

func TestHistoryStore_Prune(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Record(ctx, &Entry{Timestamp: time.Now().Add(-48 * time.Hour), Operation: OperationParse, Source: "1", Assoc: "right"}))
			require.NoError(t, s.Record(ctx, &Entry{Operation: OperationParse, Source: "2", Assoc: "right"}))

			deleted, err := s.Prune(ctx, 24*time.Hour)
			require.NoError(t, err)
			assert.Equal(t, int64(1), deleted)

			recent, err := s.Recent(ctx, 10)
			require.NoError(t, err)
			require.Len(t, recent, 1)
			assert.Equal(t, "2", recent[0].Source)
		})
	}
}

func TestSQLiteHistoryStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, &Entry{Operation: OperationParse, Source: "1 + 2", Assoc: "right", Success: true}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteHistoryStore(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteHistoryStore_ClosedDatabase(t *testing.T) {
	s, err := NewSQLiteHistoryStore(SQLiteConfig{Path: filepath.Join(t.TempDir(), "history.db")})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Count(context.Background())
	require.Error(t, err)
	assert.True(t, mdwerror.HasCode(err, mdwerror.CodeDatabaseError))
}
