package channel

import (
	"context"

	"workflow/internal/broker"
	"workflow/internal/constants"
	"workflow/internal/workflow"
)

// Kafka publishes notices to a topic keyed by recipient, for downstream
// consumers such as mobile push.
type Kafka struct {
	producer broker.Producer
	topic    string
}

func NewKafka(producer broker.Producer, topic string) *Kafka {
	if topic == "" {
		topic = constants.DefaultNotificationTopic
	}
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Name() string {
	return constants.ChannelKafka
}

func (k *Kafka) Send(ctx context.Context, recipient string, msg workflow.Message) error {
	return k.producer.Publish(ctx, k.topic, recipient, newNotice(k.Name(), recipient, msg))
}
