package channel

import (
	"strings"
	"time"

	"github.com/k3a/html2text"

	"workflow/internal/workflow"
)

// Notice is the JSON document pushed by the dashboard, webhook and kafka
// channels.
type Notice struct {
	Recipient string          `json:"recipient"`
	Channel   string          `json:"channel"`
	Text      string          `json:"text"`
	Body      string          `json:"body,omitempty"`
	Links     []workflow.Link `json:"links,omitempty"`
	SentAt    time.Time       `json:"sent_at"`
}

func newNotice(channel, recipient string, msg workflow.Message) Notice {
	return Notice{
		Recipient: recipient,
		Channel:   channel,
		Text:      msg.Text,
		Body:      msg.Body,
		Links:     msg.Links,
		SentAt:    time.Now().UTC(),
	}
}

// plainText renders msg for transports without markup: body stripped of
// HTML, then one line per action link.
func plainText(msg workflow.Message) string {
	var b strings.Builder
	if body := strings.TrimSpace(html2text.HTML2Text(msg.Body)); body != "" {
		b.WriteString(body)
	}
	for _, link := range msg.Links {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(link.Label)
		b.WriteString(": ")
		b.WriteString(link.URL)
	}
	if b.Len() == 0 {
		return msg.Text
	}
	return b.String()
}
