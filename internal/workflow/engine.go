package workflow

import (
	"context"
	"time"

	"workflow/internal/logger"
	apperrors "workflow/pkg/errors"
	"workflow/pkg/logging"
	"workflow/pkg/metrics"
	"workflow/pkg/models"
	"workflow/pkg/tracing"
)

// Hydrator enriches a matched payload with data the event does not carry,
// e.g. the post title and author for a post id.
type Hydrator interface {
	Hydrate(ctx context.Context, p Payload) (Payload, error)
}

// Outcome summarises what one rule did for one event.
type Outcome struct {
	Rule       string
	Recipients []string
	Deliveries []Delivery
	// Err is set when the rule could not be rendered or panicked, including
	// a panic in its trigger or condition.
	Err error
}

type Engine struct {
	registry   *Registry
	resolver   *Resolver
	dispatcher *Dispatcher
	hydrator   Hydrator
	logger     logger.Logger
}

type EngineOption func(*Engine)

func WithHydrator(h Hydrator) EngineOption {
	return func(e *Engine) {
		e.hydrator = h
	}
}

func WithLogger(log logger.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = log
	}
}

func NewEngine(registry *Registry, resolver *Resolver, dispatcher *Dispatcher, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:   registry,
		resolver:   resolver,
		dispatcher: dispatcher,
		logger:     logger.NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// HandleEvent runs every matching rule for ev and returns one Outcome per
// matched rule. Rule failures are isolated and never returned as an error.
func (e *Engine) HandleEvent(ctx context.Context, ev models.Event) []Outcome {
	start := time.Now()
	ctx = logging.WithEventID(ctx, ev.ID)
	if ev.Metadata.TraceID != "" && logging.GetTraceID(ctx) == "" {
		ctx = logging.WithTraceID(ctx, ev.Metadata.TraceID)
	}

	var outcomes []Outcome
	for _, rule := range e.registry.Rules() {
		payload, matched, err := e.matchRule(ctx, rule, ev)
		if err != nil {
			e.logger.ErrorwCtx(ctx, "Rule trigger panicked", "rule", rule.Name, "error", err)
			outcomes = append(outcomes, Outcome{Rule: rule.Name, Err: err})
			continue
		}
		if !matched {
			continue
		}

		metrics.IncRuleMatch(rule.Name)
		outcomes = append(outcomes, e.runRule(ctx, rule, ev, payload))
	}

	status := "unmatched"
	if len(outcomes) > 0 {
		status = "matched"
	}
	metrics.IncWorkflowEvent(ev.Name, status)
	metrics.ObserveProcessingDuration(time.Since(start), status)

	return outcomes
}

// matchRule evaluates the trigger and condition of one rule. A panic in
// either comes back as err.
func (e *Engine) matchRule(ctx context.Context, rule Rule, ev models.Event) (payload Payload, matched bool, err error) {
	err = apperrors.Guard(func() error {
		var ok bool
		payload, ok = Match(rule.Trigger, ev)
		if !ok || rule.Condition == nil {
			matched = ok
			return nil
		}

		pass, condErr := rule.Condition.Eval(ctx, ev)
		if condErr != nil {
			e.logger.WarnwCtx(ctx, "Rule condition failed", "rule", rule.Name, "error", condErr)
			return nil
		}
		matched = pass
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return payload, matched, nil
}

func (e *Engine) runRule(ctx context.Context, rule Rule, ev models.Event, payload Payload) (out Outcome) {
	ctx = logging.WithRuleName(ctx, rule.Name)
	ctx, span := tracing.StartRuleSpan(ctx, rule.Name, ev.Name)
	defer span.End()

	out.Rule = rule.Name
	defer func() {
		if r := recover(); r != nil {
			out.Err = apperrors.RecoverPanic(r)
			e.logger.ErrorwCtx(ctx, "Rule panicked", "error", out.Err)
			tracing.RecordError(span, out.Err)
		}
	}()

	if e.hydrator != nil {
		hydrated, err := e.hydrator.Hydrate(ctx, payload)
		if err != nil {
			e.logger.WarnwCtx(ctx, "Payload hydration failed, rendering with event data only", "error", err)
		} else {
			payload = hydrated
		}
	}

	msg, linkErrs, err := RenderMessage(rule, payload)
	if err != nil {
		metrics.IncRenderFailure(rule.Name, "message")
		e.logger.ErrorwCtx(ctx, "Failed to render message", "error", err)
		tracing.RecordError(span, err)
		out.Err = err
		return out
	}
	for _, linkErr := range linkErrs {
		metrics.IncRenderFailure(rule.Name, "link")
		e.logger.WarnwCtx(ctx, "Action link dropped", "error", linkErr)
	}

	recipients, err := e.resolver.Resolve(ctx, rule.Recipients, payload)
	if err != nil {
		e.logger.WarnwCtx(ctx, "Recipient resolution incomplete", "error", err, "resolved", len(recipients))
	}
	out.Recipients = recipients

	if len(recipients) == 0 {
		e.logger.DebugwCtx(ctx, "Rule matched without recipients")
		return out
	}

	out.Deliveries = e.dispatcher.Dispatch(ctx, rule, ev, msg, recipients)

	failed := 0
	for _, d := range out.Deliveries {
		if !d.OK() {
			failed++
		}
	}
	e.logger.InfowCtx(ctx, "Rule dispatched",
		"recipients", len(recipients),
		"deliveries", len(out.Deliveries),
		"failed", failed,
	)

	return out
}
