package channel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"workflow/internal/constants"
	"workflow/internal/workflow"
)

// Publisher is satisfied by *redis.Client.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Dashboard pushes notices to the CMS dashboard over redis pub/sub, one
// channel per user.
type Dashboard struct {
	client Publisher
	prefix string
}

func NewDashboard(client Publisher, prefix string) *Dashboard {
	if prefix == "" {
		prefix = constants.DashboardChannelPrefix
	}
	return &Dashboard{client: client, prefix: prefix}
}

func (d *Dashboard) Name() string {
	return constants.ChannelDashboard
}

func (d *Dashboard) Topic(recipient string) string {
	return d.prefix + recipient
}

func (d *Dashboard) Send(ctx context.Context, recipient string, msg workflow.Message) error {
	body, err := json.Marshal(newNotice(d.Name(), recipient, msg))
	if err != nil {
		return fmt.Errorf("failed to marshal notice: %w", err)
	}
	if err := d.client.Publish(ctx, d.Topic(recipient), body).Err(); err != nil {
		return fmt.Errorf("redis PUBLISH failed: %w", err)
	}
	return nil
}
