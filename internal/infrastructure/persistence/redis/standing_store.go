package redis

import (
	"context"
	"errors"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/internal/domain/transcript"
)

// ══════════════════════════════════════════════════════════════════════════════
// STANDING STORE
// ══════════════════════════════════════════════════════════════════════════════

// StandingStore implements transcript.StandingStore on Redis. The standing
// projection is a pure cache: a miss means the caller recomputes from the
// results table, so losing Redis loses nothing but speed.
type StandingStore struct {
	cache *Cache
}

// NewStandingStore creates a new StandingStore.
func NewStandingStore(cache *Cache) *StandingStore {
	return &StandingStore{cache: cache}
}

// Save сохраняет проекцию студента.
func (s *StandingStore) Save(ctx context.Context, standing transcript.Standing) error {
	return s.cache.Set(ctx, StandingKey(standing.Matric.String()), standing, TTLStanding)
}

// Get возвращает проекцию студента или shared.ErrNotFound.
func (s *StandingStore) Get(ctx context.Context, matric shared.Matric) (*transcript.Standing, error) {
	var standing transcript.Standing
	err := s.cache.Get(ctx, StandingKey(matric.String()), &standing)
	if err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &standing, nil
}

// Invalidate удаляет проекцию студента.
func (s *StandingStore) Invalidate(ctx context.Context, matric shared.Matric) error {
	return s.cache.Delete(ctx, StandingKey(matric.String()))
}
