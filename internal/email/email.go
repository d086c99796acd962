package email

import (
	"context"
	"fmt"
	"html"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Welcome builds the message sent after registration. Name and address are
// HTML-escaped.
func Welcome(name, addr string) (subject, body string) {
	subject = "Welcome to Mini Notes"
	body = fmt.Sprintf(`<p>Hi %s,</p><p>Your account is ready. Sign in with %s to start writing notes.</p>`,
		html.EscapeString(name), html.EscapeString(addr))
	return subject, body
}

// LogSender logs the recipient and subject instead of sending. Used in ENV=local.
type LogSender struct {
	logger *slog.Logger
}

func (s *LogSender) Send(ctx context.Context, to, subject, _ string) error {
	s.logger.InfoContext(ctx, "email not sent (local)", "to", to, "subject", subject)
	return nil
}

// ResendSender sends through the Resend API. Used in staging/production.
type ResendSender struct {
	client *resend.Client
	from   string
}

func (s *ResendSender) Send(ctx context.Context, to, subject, body string) error {
	_, err := s.client.Emails.SendWithContext(ctx, s.request(to, subject, body))
	if err != nil {
		return fmt.Errorf("send email to resend: %w", err)
	}
	return nil
}

func (s *ResendSender) request(to, subject, body string) *resend.SendEmailRequest {
	return &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    body,
		Tags:    []resend.Tag{{Name: "app", Value: "notes"}},
	}
}

// NewSender returns a LogSender for ENV=local, ResendSender otherwise.
func NewSender(env, apiKey, from string, logger *slog.Logger) Sender {
	if env == "local" {
		return &LogSender{logger: logger.With("component", "email")}
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}
