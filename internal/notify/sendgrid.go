// Package notify delivers transactional email through SendGrid.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"mentorhub-backend/internal/config"
)

type SendGridNotifier struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewSendGridNotifier(cfg config.SendGridConfig) *SendGridNotifier {
	return &SendGridNotifier{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
	}
}

func (n *SendGridNotifier) Send(ctx context.Context, recipientEmail, recipientName, subject, body string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	recipient := mail.NewEmail(recipientName, recipientEmail)
	message := mail.NewSingleEmail(from, subject, recipient, body, "")

	client := sendgrid.NewSendClient(n.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}
