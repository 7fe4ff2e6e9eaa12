package directory

import (
	"database/sql"
	"fmt"

	"workflow/internal/config"
	"workflow/internal/constants"
)

// NewSource builds the configured source, wrapped in a cache when cache_ttl
// is positive.
func NewSource(cfg config.DirectoryConfig, db *sql.DB) (Source, error) {
	var source Source

	switch cfg.Backend {
	case "", constants.DirectoryBackendMemory:
		source = NewMemorySourceFromConfig(cfg)
	case constants.DirectoryBackendPostgres:
		if db == nil {
			return nil, fmt.Errorf("directory backend %q requires a postgres connection", cfg.Backend)
		}
		source = NewPostgresSource(db)
	default:
		return nil, fmt.Errorf("unsupported directory backend: %s", cfg.Backend)
	}

	if cfg.CacheTTL > 0 {
		cleanup := cfg.CleanupInterval
		if cleanup <= 0 {
			cleanup = 2 * cfg.CacheTTL
		}
		source = NewCachedSource(source, cfg.CacheTTL, cleanup)
	}

	return source, nil
}
