package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"

	"workflow/internal/config"
	"workflow/pkg/circuitbreaker"
)

// Repository claims keys. SetNX returns true only for the first claim
// within ttl.
type Repository interface {
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
}

type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis SetNX failed: %w", err)
	}
	return ok, nil
}

// MemoryRepository claims keys in process memory. Only suitable for a
// single replica.
type MemoryRepository struct {
	cache *cache.Cache
}

func NewMemoryRepository(cleanup time.Duration) *MemoryRepository {
	return &MemoryRepository{cache: cache.New(cache.NoExpiration, cleanup)}
}

func (m *MemoryRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := m.cache.Add(key, value, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

// CircuitBreakerRepository stops calling a failing repository for a while.
type CircuitBreakerRepository struct {
	repo Repository
	cb   *circuitbreaker.Wrapper
}

func NewCircuitBreakerRepository(repo Repository, cfg config.CircuitBreakerConfig) *CircuitBreakerRepository {
	if !cfg.Enabled {
		return &CircuitBreakerRepository{repo: repo}
	}
	return &CircuitBreakerRepository{
		repo: repo,
		cb:   circuitbreaker.NewWrapper(circuitbreaker.FromConfig("redis-dedup", cfg)),
	}
}

func (r *CircuitBreakerRepository) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	if r.cb == nil {
		return r.repo.SetNX(ctx, key, value, ttl)
	}

	var claimed bool
	err := r.cb.Do(ctx, func(ctx context.Context) error {
		ok, err := r.repo.SetNX(ctx, key, value, ttl)
		claimed = ok
		return err
	})
	if err != nil {
		return false, fmt.Errorf("circuit breaker: %w", err)
	}
	return claimed, nil
}
