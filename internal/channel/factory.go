package channel

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"workflow/internal/broker"
	"workflow/internal/config"
	"workflow/internal/logger"
)

// Deps carries the clients channels are built on. Each is only required
// when the matching channel is enabled.
type Deps struct {
	Redis     *redis.Client
	Producer  broker.Producer
	Addresses AddressBook
	Logger    logger.Logger
}

// NewFromConfig builds a registry holding every enabled channel.
func NewFromConfig(cfg *config.Config, deps Deps) (*Registry, error) {
	reg := NewRegistry()
	channels := cfg.Channels

	if channels.Email.Enabled {
		if deps.Addresses == nil {
			return nil, fmt.Errorf("email channel requires an address book")
		}
		email, err := NewEmail(channels.Email, cfg.CircuitBreaker, deps.Addresses, deps.Logger)
		if err != nil {
			return nil, err
		}
		reg.Register(email)
	}

	if channels.Dashboard.Enabled {
		if deps.Redis == nil {
			return nil, fmt.Errorf("dashboard channel requires a redis client")
		}
		reg.Register(NewDashboard(deps.Redis, channels.Dashboard.ChannelPrefix))
	}

	if channels.Webhook.Enabled {
		reg.Register(NewWebhook(channels.Webhook, nil))
	}

	if channels.Kafka.Enabled {
		if deps.Producer == nil {
			return nil, fmt.Errorf("kafka channel requires a producer")
		}
		reg.Register(NewKafka(deps.Producer, channels.Kafka.Topic))
	}

	return reg, nil
}
