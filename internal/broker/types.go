package broker

import (
	"context"

	"workflow/pkg/models"
)

// Producer publishes JSON values. key selects the partition.
type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}

type HandlerFunc func(ctx context.Context, ev models.Event) error
