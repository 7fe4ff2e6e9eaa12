package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateEvent(ev *Event) error {
	if ev == nil {
		return &ValidationError{
			Field:   "event",
			Message: "event cannot be nil",
		}
	}

	if ev.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "event ID is required",
		}
	}

	if ev.Name == "" {
		return &ValidationError{
			Field:   "name",
			Message: "event name is required",
		}
	}

	if ev.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "event timestamp is required",
		}
	}

	return nil
}

func (ev *Event) GetPayloadField(name string) (interface{}, bool) {
	if ev.Payload == nil {
		return nil, false
	}

	value, ok := ev.Payload[name]
	return value, ok
}

func (ev *Event) SetPayloadField(name string, value interface{}) {
	if ev.Payload == nil {
		ev.Payload = make(map[string]interface{})
	}

	ev.Payload[name] = value
}
