package store

import (
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"workflow/internal/config"
	"workflow/internal/constants"
)

// Clients holds the connections a backend may need. Only the one matching
// the configured backend has to be set.
type Clients struct {
	Postgres *sql.DB
	Redis    *redis.Client
	Mongo    *mongo.Database
}

func NewBackend(cfg *config.Config, clients Clients) (Backend, error) {
	var backend Backend

	switch cfg.Store.Backend {
	case "", constants.StoreBackendMemory:
		return NewMemoryBackend(), nil
	case constants.StoreBackendRedis:
		if clients.Redis == nil {
			return nil, fmt.Errorf("store backend %q requires a redis client", cfg.Store.Backend)
		}
		backend = NewRedisBackend(clients.Redis, cfg.Store.KeyPrefix)
	case constants.StoreBackendPostgres:
		if clients.Postgres == nil {
			return nil, fmt.Errorf("store backend %q requires a postgres connection", cfg.Store.Backend)
		}
		backend = NewPostgresBackend(clients.Postgres, cfg.Store.KeyPrefix)
	case constants.StoreBackendMongoDB:
		if clients.Mongo == nil {
			return nil, fmt.Errorf("store backend %q requires a mongodb database", cfg.Store.Backend)
		}
		backend = NewMongoBackend(clients.Mongo, cfg.Store.Collection, cfg.Store.KeyPrefix)
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", cfg.Store.Backend)
	}

	if cfg.CircuitBreaker.Enabled {
		backend = NewBreakerBackend(backend, cfg.CircuitBreaker)
	}
	return backend, nil
}
