package notify

import "context"

// Field is one inline key/value in a rich notification.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Message is a transport-agnostic rich notification. Mention asks the
// transport to ping the whole channel.
type Message struct {
	Title       string
	Description string
	Fields      []Field
	Color       int
	ImageURL    string
	Mention     bool
}

// Notifier delivers a message. A nil error means confirmed delivery.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
