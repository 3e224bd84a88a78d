package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/profdiff/internal/engine"
)

func newTestStore(t *testing.T) (*FileStore, *time.Time) {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "cache"), time.Minute)
	require.NoError(t, err)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	return store, &now
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("compare", "a", "b"), Key("compare", "a", "b"))
	assert.NotEqual(t, Key("compare", "a", "b"), Key("compare", "b", "a"))
	assert.NotEqual(t, Key("ab", "c"), Key("a", "bc"))
	assert.Len(t, Key("profiles"), 64)
}

func TestNewFileStore_Errors(t *testing.T) {
	_, err := NewFileStore("", time.Minute)
	require.Error(t, err)

	_, err = NewFileStore(t.TempDir(), 0)
	require.Error(t, err)
}

func TestFileStore_SetGet(t *testing.T) {
	store, now := newTestStore(t)

	var got []string
	require.ErrorIs(t, store.Get("k", &got), ErrNotFound)
	require.ErrorIs(t, store.Get("", &got), ErrInvalidKey)
	require.ErrorIs(t, store.Set("", got), ErrInvalidKey)

	require.NoError(t, store.Set("k", []string{"a", "b"}))
	require.NoError(t, store.Get("k", &got))
	assert.Equal(t, []string{"a", "b"}, got)

	*now = now.Add(time.Minute)
	require.ErrorIs(t, store.Get("k", &got), ErrExpired)
	_, err := os.Stat(store.path("k"))
	assert.True(t, os.IsNotExist(err), "expired entry is removed")
}

func TestFileStore_CleanupAndClear(t *testing.T) {
	store, now := newTestStore(t)

	require.NoError(t, store.Set("old", 1))
	*now = now.Add(30 * time.Second)
	require.NoError(t, store.Set("new", 2))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "junk.json"), []byte("{"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "notes.txt"), []byte("x"), 0o600))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	*now = now.Add(45 * time.Second)
	removed, err := store.CleanupExpired()
	require.NoError(t, err)
	assert.Equal(t, 2, removed, "expired and corrupt entries")

	var v int
	require.NoError(t, store.Get("new", &v))
	assert.Equal(t, 2, v)

	removed, err = store.Clear()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.FileExists(t, filepath.Join(store.Dir(), "notes.txt"))
}

type countingService struct {
	mu      sync.Mutex
	calls   map[string]int
	failing bool
}

func (s *countingService) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[op]++
	if s.failing {
		return errors.New("upstream down")
	}
	return nil
}

func (s *countingService) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *countingService) ListProfiles(context.Context) ([]engine.ProfileInfo, error) {
	if err := s.record("list"); err != nil {
		return nil, err
	}
	return []engine.ProfileInfo{{ID: "1", Name: "Admin"}}, nil
}

func (s *countingService) Compare(_ context.Context, id1, id2 string) (*engine.Result, error) {
	if err := s.record("compare"); err != nil {
		return nil, err
	}
	rows := map[engine.Category][]engine.ComparisonRow{
		engine.CategoryObjects: {{Key: "Account", Left: "CRED--", Right: "-R----", IsDifferent: true}},
	}
	return &engine.Result{
		Profile1: engine.ProfileInfo{ID: id1},
		Profile2: engine.ProfileInfo{ID: id2},
		Summary:  engine.Summarize(rows),
		Rows:     rows,
	}, nil
}

func (s *countingService) FetchDetail(_ context.Context, _, _, object string) ([]engine.DetailRow, error) {
	if err := s.record("fields"); err != nil {
		return nil, err
	}
	return []engine.DetailRow{{Key: object + ".Name", Left: "Read", Right: "Read"}}, nil
}

func TestService(t *testing.T) {
	ctx := context.Background()
	store, now := newTestStore(t)
	next := &countingService{}
	svc := NewService(next, store)

	for range 2 {
		profiles, err := svc.ListProfiles(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Admin", profiles[0].Name)

		result, err := svc.Compare(ctx, "1", "2")
		require.NoError(t, err)
		assert.Equal(t, 1, result.Summary.Count(engine.CategoryObjects).Different)
		assert.Equal(t, "Account", result.RowsFor(engine.CategoryObjects)[0].Key)

		rows, err := svc.FetchDetail(ctx, "1", "2", "Account")
		require.NoError(t, err)
		assert.Equal(t, "Account.Name", rows[0].Key)
	}
	assert.Equal(t, 1, next.count("list"))
	assert.Equal(t, 1, next.count("compare"))
	assert.Equal(t, 1, next.count("fields"))

	_, err := svc.Compare(ctx, "2", "1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.count("compare"), "pair order is part of the key")

	*now = now.Add(2 * time.Minute)
	_, err = svc.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, next.count("list"), "expired entries are refetched")
}

func TestService_ErrorsNotCached(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)
	next := &countingService{failing: true}
	svc := NewService(next, store)

	_, err := svc.Compare(ctx, "1", "2")
	require.Error(t, err)

	next.failing = false
	_, err = svc.Compare(ctx, "1", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, next.count("compare"))

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
