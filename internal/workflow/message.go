package workflow

// Message is the rendered output of a rule for one event.
type Message struct {
	Text  string
	Body  string
	Links []Link
}

// RenderMessage renders text, body and links. Text and body failures fail
// the message; link failures only drop the link and are returned alongside.
func RenderMessage(r Rule, p Payload) (Message, []error, error) {
	text, err := Render(r.Text, p)
	if err != nil {
		return Message{}, nil, err
	}

	body, err := Render(r.Body, p)
	if err != nil {
		return Message{}, nil, err
	}

	links, linkErrs := RenderLinks(r.Links, p)

	return Message{Text: text, Body: body, Links: links}, linkErrs, nil
}
