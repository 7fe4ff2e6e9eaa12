package directory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"workflow/pkg/metrics"
)

// CachedSource memoises successful lookups for ttl. Misses and errors are
// not cached.
type CachedSource struct {
	next  Source
	cache *cache.Cache
}

func NewCachedSource(next Source, ttl, cleanup time.Duration) *CachedSource {
	return &CachedSource{next: next, cache: cache.New(ttl, cleanup)}
}

func (c *CachedSource) User(ctx context.Context, id string) (User, error) {
	key := "user:" + id
	if v, ok := c.cache.Get(key); ok {
		metrics.IncDirectoryLookup("user", "cache")
		return v.(User), nil
	}

	metrics.IncDirectoryLookup("user", "source")
	u, err := c.next.User(ctx, id)
	if err != nil {
		return User{}, err
	}
	c.cache.Set(key, u, cache.DefaultExpiration)
	return u, nil
}

func (c *CachedSource) Post(ctx context.Context, id string) (Post, error) {
	key := "post:" + id
	if v, ok := c.cache.Get(key); ok {
		metrics.IncDirectoryLookup("post", "cache")
		return v.(Post), nil
	}

	metrics.IncDirectoryLookup("post", "source")
	p, err := c.next.Post(ctx, id)
	if err != nil {
		return Post{}, err
	}
	c.cache.Set(key, p, cache.DefaultExpiration)
	return p, nil
}

func (c *CachedSource) UsersWithRole(ctx context.Context, role string) ([]string, error) {
	key := "role:" + role
	if v, ok := c.cache.Get(key); ok {
		metrics.IncDirectoryLookup("role", "cache")
		return v.([]string), nil
	}

	metrics.IncDirectoryLookup("role", "source")
	ids, err := c.next.UsersWithRole(ctx, role)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, ids, cache.DefaultExpiration)
	return ids, nil
}

// Flush drops every cached entry.
func (c *CachedSource) Flush() {
	c.cache.Flush()
}
