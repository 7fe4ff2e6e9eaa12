package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"workflow/internal/constants"
)

// RedisBackend keeps one list per user. RPUSH is atomic, so concurrent
// appends for the same user never lose records.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

func NewRedisBackend(client *redis.Client, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = constants.NotificationMetaKey
	}
	return &RedisBackend{client: client, prefix: prefix}
}

func (r *RedisBackend) Name() string {
	return constants.StoreBackendRedis
}

func (r *RedisBackend) key(userID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, userID)
}

func (r *RedisBackend) Append(ctx context.Context, userID string, value []byte) error {
	if err := r.client.RPush(ctx, r.key(userID), value).Err(); err != nil {
		return fmt.Errorf("redis RPUSH failed: %w", err)
	}
	return nil
}

func (r *RedisBackend) Values(ctx context.Context, userID string) ([][]byte, error) {
	values, err := r.client.LRange(ctx, r.key(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRANGE failed: %w", err)
	}

	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out, nil
}
