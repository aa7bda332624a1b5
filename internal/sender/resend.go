package sender

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers emails through the Resend API.
type ResendSender struct {
	client *resend.Client
}

var _ Sender = (*ResendSender)(nil)

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, email Email) error {
	from := email.From
	if email.FromName != "" {
		from = fmt.Sprintf("%s <%s>", email.FromName, email.From)
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTMLBody,
	}
	if email.ReplyTo != "" {
		params.ReplyTo = email.ReplyTo
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("resend send to %s: %w", email.To, err)
	}
	return nil
}
