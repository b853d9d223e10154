package email

import "context"

// Content is a rendered message body.
type Content struct {
	Body string
	HTML bool
}

// Message is a provider-agnostic outgoing email.
type Message struct {
	// From is optional; senders fall back to their configured default.
	From    string
	To      []string
	Cc      []string
	Subject string
	Content Content
}

// Sender delivers a message. accessToken is the bearer credential for
// providers that need one and is ignored by the others.
type Sender interface {
	Send(ctx context.Context, accessToken string, msg Message) error
}
