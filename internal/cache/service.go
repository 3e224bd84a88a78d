package cache

import (
	"context"
	"errors"

	"github.com/rshade/profdiff/internal/engine"
	"github.com/rshade/profdiff/internal/logging"
)

// Service caches the responses of another engine.Service. Errors are never
// cached, and a failing store only costs a call to the wrapped service.
type Service struct {
	next  engine.Service
	store *FileStore
}

// NewService wraps next with store.
func NewService(next engine.Service, store *FileStore) *Service {
	return &Service{next: next, store: store}
}

// ListProfiles returns the cached profile list or fetches it.
func (s *Service) ListProfiles(ctx context.Context) ([]engine.ProfileInfo, error) {
	return cached(ctx, s.store, Key("profiles"), func() ([]engine.ProfileInfo, error) {
		return s.next.ListProfiles(ctx)
	})
}

// Compare returns the cached comparison of id1 and id2 or computes it.
func (s *Service) Compare(ctx context.Context, id1, id2 string) (*engine.Result, error) {
	return cached(ctx, s.store, Key("compare", id1, id2), func() (*engine.Result, error) {
		return s.next.Compare(ctx, id1, id2)
	})
}

// FetchDetail returns the cached field comparison of objectKey or fetches it.
func (s *Service) FetchDetail(ctx context.Context, id1, id2, objectKey string) ([]engine.DetailRow, error) {
	return cached(ctx, s.store, Key("fields", id1, id2, objectKey), func() ([]engine.DetailRow, error) {
		return s.next.FetchDetail(ctx, id1, id2, objectKey)
	})
}

func cached[T any](ctx context.Context, store *FileStore, key string, fetch func() (T, error)) (T, error) {
	log := logging.FromContext(ctx).With().Str("component", "cache").Str("key", key[:12]).Logger()

	var v T
	err := store.Get(key, &v)
	switch {
	case err == nil:
		log.Debug().Ctx(ctx).Msg("cache hit")
		return v, nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrExpired):
		log.Debug().Ctx(ctx).Err(err).Msg("cache miss")
	default:
		log.Warn().Ctx(ctx).Err(err).Msg("cache read failed")
	}

	v, err = fetch()
	if err != nil {
		return v, err
	}
	if setErr := store.Set(key, v); setErr != nil {
		log.Warn().Ctx(ctx).Err(setErr).Msg("cache write failed")
	}
	return v, nil
}
