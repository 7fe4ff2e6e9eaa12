package models

import "time"

// Event is an editorial occurrence published by the content platform, e.g.
// a post moving from draft to pending or a meta field being added.
type Event struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`           // Hook or event name, e.g. "draft_to_pending"
	Args      []interface{}          `json:"args,omitempty"` // Positional hook arguments
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Source    string                 `json:"source,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  Metadata               `json:"metadata"`
}

type Metadata struct {
	TraceID    string                 `json:"trace_id,omitempty"`
	DLQ        *DLQInfo               `json:"dlq,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

type DLQInfo struct {
	Reason      string    `json:"reason"`
	SourceTopic string    `json:"source_topic"`
	FailedAt    time.Time `json:"failed_at"`
}

const (
	EventPublishPost         = "publish_post"
	EventDraftToPending      = "draft_to_pending"
	EventAddPostMeta         = "add_post_meta"
	EventNewEditorialComment = "new_editorial_comment"
)
