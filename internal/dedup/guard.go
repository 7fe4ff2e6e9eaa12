package dedup

import (
	"context"
	"fmt"
	"time"

	"workflow/internal/config"
	"workflow/internal/constants"
	"workflow/internal/logger"
	"workflow/pkg/metrics"
	"workflow/pkg/models"
	"workflow/pkg/tracing"
)

// Guard suppresses redelivered events. The broker delivers at least once,
// so the same event id may arrive more than once.
type Guard struct {
	repo   Repository
	hasher *Hasher
	cfg    config.DeduplicationConfig
	logger logger.Logger
}

func NewGuard(repo Repository, cfg config.DeduplicationConfig, log logger.Logger) *Guard {
	if cfg.TTLSeconds <= 0 {
		cfg.TTLSeconds = constants.DefaultTTLSeconds
	}
	if log == nil {
		log = logger.NopLogger()
	}
	return &Guard{
		repo:   repo,
		hasher: NewHasher(cfg.HashAlgorithm),
		cfg:    cfg,
		logger: log,
	}
}

// First reports whether ev is seen for the first time. Events without an id
// are always first.
func (g *Guard) First(ctx context.Context, ev models.Event) (bool, error) {
	ctx, span := tracing.GetTracer("dedup").Start(ctx, "dedup.first")
	defer span.End()

	if ev.ID == "" {
		metrics.IncDedupEvent("skipped")
		return true, nil
	}

	hash, err := g.hasher.ComputeHash(ev.ID, ev.Name)
	if err != nil {
		return false, fmt.Errorf("failed to compute hash for event %s: %w", ev.ID, err)
	}

	key := constants.CacheKeyPrefixDedup + hash
	first, err := g.repo.SetNX(ctx, key, time.Now().Unix(), time.Duration(g.cfg.TTLSeconds)*time.Second)
	if err != nil {
		return g.handleRepoError(ctx, err, ev.ID)
	}

	if first {
		metrics.IncDedupEvent("unique")
	} else {
		metrics.IncDedupEvent("duplicate")
		g.logger.InfowCtx(ctx, "Duplicate event suppressed", "event", ev.Name)
	}
	return first, nil
}

func (g *Guard) handleRepoError(ctx context.Context, err error, eventID string) (bool, error) {
	metrics.IncDedupEvent("error")

	switch g.cfg.OnRedisError {
	case constants.FallbackDeny:
		metrics.IncFallbackUsage("dedup", "deny_on_error", "repository_error")
		g.logger.WarnwCtx(ctx, "Dedup check failed, dropping event (fallback: deny)", "error", err)
		return false, nil
	case constants.FallbackError:
		return false, fmt.Errorf("dedup check for event %s: %w", eventID, err)
	default:
		metrics.IncFallbackUsage("dedup", "allow_on_error", "repository_error")
		g.logger.WarnwCtx(ctx, "Dedup check failed, processing event (fallback: allow)", "error", err)
		return true, nil
	}
}
