package channel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/types"

	"workflow/internal/config"
	"workflow/internal/constants"
	"workflow/internal/logger"
	"workflow/internal/workflow"
	"workflow/pkg/circuitbreaker"
	"workflow/pkg/metrics"
	"workflow/pkg/retry"
)

// Sender is the part of a shoutrrr router the email channel uses.
type Sender interface {
	Send(message string, params *types.Params) []error
}

// AddressBook maps a user id to an email address.
type AddressBook interface {
	Email(ctx context.Context, userID string) (string, error)
}

type Email struct {
	sender    Sender
	addresses AddressBook
	policy    retry.Policy
	cb        *circuitbreaker.Wrapper
	logger    logger.Logger
}

// NewEmail builds the channel on a shoutrrr service URL.
func NewEmail(cfg config.EmailChannelConfig, cbCfg config.CircuitBreakerConfig, addresses AddressBook, log logger.Logger) (*Email, error) {
	sender, err := shoutrrr.CreateSender(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create email sender: %w", err)
	}
	return NewEmailWithSender(sender, cfg, cbCfg, addresses, log), nil
}

func NewEmailWithSender(sender Sender, cfg config.EmailChannelConfig, cbCfg config.CircuitBreakerConfig, addresses AddressBook, log logger.Logger) *Email {
	if log == nil {
		log = logger.NopLogger()
	}
	e := &Email{
		sender:    sender,
		addresses: addresses,
		policy:    retry.FromConfig(cfg.Retry),
		logger:    log,
	}
	if cbCfg.Enabled {
		e.cb = circuitbreaker.NewWrapper(circuitbreaker.FromConfig("channel-email", cbCfg))
	}
	return e
}

func (e *Email) Name() string {
	return constants.ChannelEmail
}

func (e *Email) Send(ctx context.Context, recipient string, msg workflow.Message) error {
	address, err := e.addresses.Email(ctx, recipient)
	if err != nil {
		return fmt.Errorf("resolve address for user %s: %w", recipient, err)
	}

	params := types.Params{
		"subject":     msg.Text,
		"toaddresses": address,
	}
	body := plainText(msg)

	send := func() error {
		if errs := e.sender.Send(body, &params); len(errs) > 0 {
			return errors.Join(nonNil(errs)...)
		}
		return nil
	}
	if e.cb != nil {
		guarded := send
		send = func() error {
			return e.cb.Do(ctx, func(context.Context) error { return guarded() })
		}
	}

	return retry.RetryWithCallback(ctx, e.policy, send, func(attempt int, err error, next time.Duration) {
		metrics.IncRetryAttempt("channel", constants.ChannelEmail)
		e.logger.WarnwCtx(ctx, "Retrying email delivery",
			"attempt", attempt,
			"next_delay", next,
			"error", err,
		)
	})
}

func nonNil(errs []error) []error {
	out := errs[:0:0]
	for _, err := range errs {
		if err != nil {
			out = append(out, err)
		}
	}
	return out
}
