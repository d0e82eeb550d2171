package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/akashgupta/shopkart-backend/pkg/config"
)

// Mailer sends transactional email. Implementations make a single
// attempt; callers surface failures without retrying.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, plainBody string) error
}

// Sendgrid is the production Mailer backed by the SendGrid API.
type Sendgrid struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
}

// NewSendgrid constructs the SendGrid mailer from configuration.
func NewSendgrid(cfg config.SendgridConfig) (*Sendgrid, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sendgrid api key is required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("sendgrid from email is required")
	}
	return &Sendgrid{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromName:  cfg.FromName,
		fromEmail: cfg.DefaultFrom,
	}, nil
}

// Send delivers a plain-text message to a single recipient.
func (s *Sendgrid) Send(ctx context.Context, toEmail, subject, plainBody string) error {
	if toEmail == "" {
		return fmt.Errorf("recipient email is required")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, "")

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sending email: sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
