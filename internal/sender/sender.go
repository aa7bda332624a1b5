package sender

import "context"

// Email is one outbound message.
type Email struct {
	From     string
	FromName string
	To       string
	ReplyTo  string
	Subject  string
	HTMLBody string
}

// Sender delivers campaign emails through a mail provider.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
