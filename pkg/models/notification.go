package models

import "time"

// Notification is the stored form of one delivery: a rendered message bound
// to one recipient and one channel.
type Notification struct {
	ID        string    `json:"id" bson:"id"`
	Rule      string    `json:"rule" bson:"rule"`
	Recipient string    `json:"recipient" bson:"recipient"`
	Channel   string    `json:"channel" bson:"channel"`
	Text      string    `json:"text" bson:"text"`
	Body      string    `json:"body,omitempty" bson:"body,omitempty"`
	Links     []Link    `json:"links,omitempty" bson:"links,omitempty"`
	EventID   string    `json:"event_id,omitempty" bson:"event_id,omitempty"`
	Event     string    `json:"event,omitempty" bson:"event,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

type Link struct {
	Name  string                 `json:"name" bson:"name"`
	Label string                 `json:"label" bson:"label"`
	URL   string                 `json:"url" bson:"url"`
	Args  map[string]interface{} `json:"args,omitempty" bson:"args,omitempty"`
}
