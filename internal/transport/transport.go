// Package transport dispatches rendered emails. The tracking engine only
// depends on the Func contract; the senders here are interchangeable
// implementations of it.
package transport

import "context"

// Message is one rendered email ready for dispatch.
type Message struct {
	To      string
	Subject string
	HTML    string
	Headers map[string]string
}

// Result reports a successful dispatch. MessageID is whatever identity
// the underlying provider assigned, if any.
type Result struct {
	MessageID string
}

// Func sends a message. A non-nil error means the message was not
// dispatched and nothing should be recorded for it.
type Func func(ctx context.Context, msg *Message) (*Result, error)
