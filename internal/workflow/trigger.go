package workflow

import (
	"context"

	"workflow/pkg/models"
)

// Trigger decides whether an event fires a rule. It is either a
// NamedTrigger or a PredicateTrigger.
type Trigger interface {
	isTrigger()
}

// NamedTrigger fires on exact equality with the event name. The payload is
// a copy of the event payload.
type NamedTrigger struct {
	Event string
}

// PredicateFunc inspects the first Arity positional arguments of an event.
type PredicateFunc func(args []interface{}) (Payload, bool)

// PredicateTrigger fires when the event is Action, carries at least Arity
// arguments and Predicate accepts them.
type PredicateTrigger struct {
	Action    string
	Arity     int
	Predicate PredicateFunc
}

func (NamedTrigger) isTrigger()     {}
func (PredicateTrigger) isTrigger() {}

// Condition is an additional guard evaluated after a trigger matches.
type Condition interface {
	Eval(ctx context.Context, ev models.Event) (bool, error)
}

// Match evaluates t against ev. It never fails: anything that does not
// satisfy the trigger is simply no match.
func Match(t Trigger, ev models.Event) (Payload, bool) {
	switch tr := t.(type) {
	case NamedTrigger:
		if tr.Event == "" || ev.Name != tr.Event {
			return nil, false
		}
		return Payload(ev.Payload).Clone(), true

	case PredicateTrigger:
		if tr.Action == "" || ev.Name != tr.Action || tr.Predicate == nil || tr.Arity < 0 {
			return nil, false
		}
		if len(ev.Args) < tr.Arity {
			return nil, false
		}
		args := make([]interface{}, tr.Arity)
		copy(args, ev.Args[:tr.Arity])

		payload, ok := tr.Predicate(args)
		if !ok {
			return nil, false
		}
		if payload == nil {
			payload = Payload{}
		}
		return payload, true

	default:
		return nil, false
	}
}

// EventName returns the event name a trigger subscribes to.
func EventName(t Trigger) string {
	switch tr := t.(type) {
	case NamedTrigger:
		return tr.Event
	case PredicateTrigger:
		return tr.Action
	default:
		return ""
	}
}
