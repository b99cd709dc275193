// Package cache holds the current listings generation. Readers always see a
// complete generation or none: a new cycle result replaces the pointer in one
// atomic swap, never a partial update.
package cache

import (
	"context"
	"errors"
	"sync/atomic"

	"jobradar/internal/logger"
	"jobradar/internal/model"
	"jobradar/internal/platform/redis"

	redisv8 "github.com/go-redis/redis/v8"
)

const currentKey = "listings:current"

// Store is the in-memory generation holder with redis persistence for warm
// restarts. The redis service may be nil; the store then runs memory-only.
type Store struct {
	log   *logger.Logger
	redis *redis.Service
	cur   atomic.Pointer[model.ScrapeCycleResult]
}

func New(r *redis.Service) *Store {
	return &Store{log: logger.New("ListingsCache"), redis: r}
}

// Load restores the last published generation from redis. Called once at
// startup so a restart serves data before the first cycle finishes.
func (s *Store) Load(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}
	var res model.ScrapeCycleResult
	err := s.redis.CacheGet(ctx, currentKey, &res)
	if err != nil {
		if errors.Is(err, redisv8.Nil) {
			return nil
		}
		return err
	}
	s.cur.Store(&res)
	s.log.Info().Str("cycle_id", res.CycleID).Int("records", len(res.Records)).Msg("restored generation from redis")
	return nil
}

// Current returns the published generation, or nil when no cycle has ever
// completed.
func (s *Store) Current() *model.ScrapeCycleResult {
	return s.cur.Load()
}

// Publish swaps in a new generation and persists it. The swap happens even
// when persistence fails; readers are never left on stale data because redis
// is down.
func (s *Store) Publish(ctx context.Context, res *model.ScrapeCycleResult) {
	s.cur.Store(res)
	if s.redis == nil {
		return
	}
	if err := s.redis.CacheSet(ctx, currentKey, res, 0); err != nil {
		s.log.LogWarnf("persist generation: %v", err)
	}
}

// Invalidate clears the generation without triggering a recompute. The next
// read returns nothing until a cycle publishes.
func (s *Store) Invalidate(ctx context.Context) error {
	s.cur.Store(nil)
	if s.redis == nil {
		return nil
	}
	return s.redis.CacheDel(ctx, currentKey)
}
