package core

import "context"

// Relay sends the conversation to the language model.
type Relay interface {
	Complete(ctx context.Context, turns []Turn) (Completion, error)
}

type Notification struct {
	To      string
	Subject string
	HTML    string
}

type Notifier interface {
	Send(ctx context.Context, n Notification) error
}
