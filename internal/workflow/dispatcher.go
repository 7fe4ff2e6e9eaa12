package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"workflow/internal/logger"
	apperrors "workflow/pkg/errors"
	"workflow/pkg/metrics"
	"workflow/pkg/models"
)

// Deliverer hands a message to a named channel for one recipient.
type Deliverer interface {
	Deliver(ctx context.Context, channel, recipient string, msg Message) error
}

// Recorder appends a delivered notification to the recipient's history.
type Recorder interface {
	Record(ctx context.Context, recipient string, n models.Notification) error
}

// Delivery is the outcome for one (recipient, channel) pair.
type Delivery struct {
	Recipient string
	Channel   string
	Err       error
	Recorded  bool
}

func (d Delivery) OK() bool {
	return d.Err == nil
}

type Dispatcher struct {
	deliverer Deliverer
	recorder  Recorder
	logger    logger.Logger
	now       func() time.Time
}

func NewDispatcher(deliverer Deliverer, recorder Recorder, log logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NopLogger()
	}
	return &Dispatcher{
		deliverer: deliverer,
		recorder:  recorder,
		logger:    log,
		now:       time.Now,
	}
}

// Dispatch delivers msg to every recipient on every channel of rule. Each
// pair is isolated: a failure or panic in one never stops the others, and
// nothing is retried here.
func (d *Dispatcher) Dispatch(ctx context.Context, rule Rule, ev models.Event, msg Message, recipients []string) []Delivery {
	deliveries := make([]Delivery, 0, len(recipients)*len(rule.Channels))

	for _, recipient := range recipients {
		for _, channel := range rule.Channels {
			deliveries = append(deliveries, d.deliverOne(ctx, rule, ev, msg, recipient, channel))
		}
	}

	return deliveries
}

func (d *Dispatcher) deliverOne(ctx context.Context, rule Rule, ev models.Event, msg Message, recipient, channel string) Delivery {
	out := Delivery{Recipient: recipient, Channel: channel}

	err := apperrors.Guard(func() error {
		if d.deliverer == nil {
			return apperrors.ErrDelivery.WithDetail("message", "no deliverer configured")
		}
		return d.deliverer.Deliver(ctx, channel, recipient, msg)
	})
	if err != nil {
		out.Err = apperrors.ErrDelivery.
			WithDetail("channel", channel).
			WithDetail("recipient", recipient).
			WithCause(err)
		metrics.IncDelivery(rule.Name, channel, "failed")
		d.logger.WarnwCtx(ctx, "Delivery failed",
			"rule", rule.Name,
			"channel", channel,
			"recipient", recipient,
			"error", err,
		)
		return out
	}
	metrics.IncDelivery(rule.Name, channel, "delivered")

	if d.recorder == nil {
		return out
	}

	n := models.Notification{
		ID:        uuid.NewString(),
		Rule:      rule.Name,
		Recipient: recipient,
		Channel:   channel,
		Text:      msg.Text,
		Body:      msg.Body,
		Links:     msg.Links,
		EventID:   ev.ID,
		Event:     ev.Name,
		CreatedAt: d.now().UTC(),
	}

	if err := d.recorder.Record(ctx, recipient, n); err != nil {
		d.logger.ErrorwCtx(ctx, "Failed to record notification",
			"rule", rule.Name,
			"channel", channel,
			"recipient", recipient,
			"error", err,
		)
		return out
	}

	out.Recorded = true
	return out
}
