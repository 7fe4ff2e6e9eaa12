// Package channel delivers rendered workflow messages to users over the
// configured transports.
package channel

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"workflow/internal/workflow"
	apperrors "workflow/pkg/errors"
)

// Channel sends one message to one recipient.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient string, msg workflow.Message) error
}

// Registry routes deliveries to channels by name. It implements
// workflow.Deliverer.
type Registry struct {
	mu       sync.RWMutex
	channels map[string]Channel
}

func NewRegistry(channels ...Channel) *Registry {
	r := &Registry{channels: make(map[string]Channel)}
	for _, ch := range channels {
		r.Register(ch)
	}
	return r
}

// Register adds ch, replacing any channel with the same name.
func (r *Registry) Register(ch Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.channels[ch.Name()] = ch
}

func (r *Registry) Get(name string) (Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.channels[name]
	return ch, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.channels))
	for name := range r.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Deliver(ctx context.Context, channel, recipient string, msg workflow.Message) error {
	ch, ok := r.Get(channel)
	if !ok {
		return apperrors.ErrNotFound.WithDetail("channel", channel)
	}
	if err := ch.Send(ctx, recipient, msg); err != nil {
		return fmt.Errorf("%s: %w", channel, err)
	}
	return nil
}
