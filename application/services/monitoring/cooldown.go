package monitoring

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"invigil.io/infrastructure/database/repository/cache"
	"invigil.io/infrastructure/logger"
)

func cooldownKey(scope string, category string) string {
	return fmt.Sprintf("invigil:cooldown:%s:%s", scope, category)
}

// MemoryCooldown keeps windows in process memory. Suitable for a single instance.
type MemoryCooldown struct {
	window time.Duration
	store  *gocache.Cache
}

func NewMemoryCooldown(window time.Duration) *MemoryCooldown {
	return &MemoryCooldown{
		window: window,
		store:  gocache.New(window, 2*window),
	}
}

func (m *MemoryCooldown) Acquire(_ context.Context, scope string, category string) bool {
	if m.window <= 0 {
		return true
	}
	// Add fails while an unexpired entry exists
	return m.store.Add(cooldownKey(scope, category), struct{}{}, m.window) == nil
}

// RedisCooldown shares windows between instances through SET NX PX. Redis errors degrade to
// the in-memory fallback instead of dropping or flooding alerts.
type RedisCooldown struct {
	window   time.Duration
	repo     *cache.RedisRepository
	fallback *MemoryCooldown
}

func NewRedisCooldown(repo *cache.RedisRepository, window time.Duration) *RedisCooldown {
	return &RedisCooldown{
		window:   window,
		repo:     repo,
		fallback: NewMemoryCooldown(window),
	}
}

func (r *RedisCooldown) Acquire(ctx context.Context, scope string, category string) bool {
	if r.window <= 0 {
		return true
	}
	created, err := r.repo.CreateIfAbsent(ctx, cooldownKey(scope, category), time.Now().Unix(), r.window)
	if err != nil {
		logger.Warning("cooldown store unavailable, using in-memory window", logger.LoggerOptions{Key: "error", Data: err})
		return r.fallback.Acquire(ctx, scope, category)
	}
	return created
}

// MemoryCounter backs sampling counters when redis is not configured.
type MemoryCounter struct {
	ttl   time.Duration
	store *gocache.Cache
}

func NewMemoryCounter(ttl time.Duration) *MemoryCounter {
	return &MemoryCounter{ttl: ttl, store: gocache.New(ttl, ttl)}
}

func (m *MemoryCounter) Next(_ context.Context, key string) int64 {
	if err := m.store.Add(key, int64(1), m.ttl); err == nil {
		return 1
	}
	value, err := m.store.IncrementInt64(key, 1)
	if err != nil {
		// expired between Add and IncrementInt64
		m.store.Set(key, int64(1), m.ttl)
		return 1
	}
	return value
}

type RedisCounter struct {
	ttl      time.Duration
	repo     *cache.RedisRepository
	fallback *MemoryCounter
}

func NewRedisCounter(repo *cache.RedisRepository, ttl time.Duration) *RedisCounter {
	return &RedisCounter{ttl: ttl, repo: repo, fallback: NewMemoryCounter(ttl)}
}

func (r *RedisCounter) Next(ctx context.Context, key string) int64 {
	value, err := r.repo.IncrementField(ctx, key, 1, r.ttl)
	if err != nil {
		return r.fallback.Next(ctx, key)
	}
	return value
}
