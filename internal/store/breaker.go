package store

import (
	"context"

	"github.com/sony/gobreaker"

	"workflow/internal/config"
	"workflow/pkg/circuitbreaker"
)

// BreakerBackend fails fast while the wrapped backend keeps failing.
type BreakerBackend struct {
	next Backend
	cb   *circuitbreaker.Wrapper
}

func NewBreakerBackend(next Backend, cfg config.CircuitBreakerConfig) *BreakerBackend {
	settings := circuitbreaker.FromConfig("store-"+next.Name(), cfg)
	return &BreakerBackend{next: next, cb: circuitbreaker.NewWrapper(settings)}
}

func (b *BreakerBackend) Name() string {
	return b.next.Name()
}

func (b *BreakerBackend) Append(ctx context.Context, userID string, value []byte) error {
	return b.cb.Do(ctx, func(ctx context.Context) error {
		return b.next.Append(ctx, userID, value)
	})
}

func (b *BreakerBackend) Values(ctx context.Context, userID string) ([][]byte, error) {
	var out [][]byte
	err := b.cb.Do(ctx, func(ctx context.Context) error {
		values, err := b.next.Values(ctx, userID)
		out = values
		return err
	})
	return out, err
}

// Healthy reports an error while the breaker is open.
func (b *BreakerBackend) Healthy(context.Context) error {
	if b.cb.IsOpen() {
		return gobreaker.ErrOpenState
	}
	return nil
}
