// Package delivery adapts external email-sending services behind a single
// Provider interface. All response-shape and error-shape sniffing for a
// particular service stays inside its adapter.
package delivery

import "context"

// Message is one outbound email.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Tags    map[string]string
}

// Provider sends a single message and returns the provider's delivery id.
type Provider interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// Error is a per-recipient delivery failure with the provider's own wording
// preserved for the send report.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
