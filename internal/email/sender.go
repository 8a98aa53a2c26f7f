package email

import (
	"context"

	"vitrine_backend/platform/config"
)

// Attachment represents a file attachment for an email.
type Attachment struct {
	Content  []byte // raw file bytes (base64-encoded for Brevo)
	FileName string // e.g. "devis-D-00042.pdf"
	MIMEType string // e.g. "application/pdf"
}

// Sender delivers the transactional and nurture emails of the funnel. Both
// delivery backends render the same embedded HTML templates.
type Sender interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendBookingConfirmationEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string, attachments ...Attachment) error
	SendOwnerBookingAlertEmail(ctx context.Context, toEmail, clientName, clientEmail, clientPhone, scheduledDate, meetLink string) error
	SendCostComparisonEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendCaseStudyEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendThreeMistakesEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendLastChanceEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendBookingReminderEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string) error
	SendBookingFollowupEmail(ctx context.Context, toEmail, name, quoteURL string) error
	SendQuoteProposalEmail(ctx context.Context, toEmail, clientName, quoteNumber string, totalCents int64, attachments ...Attachment) error
}

// NewSender selects a delivery backend from configuration: Brevo when an API
// key is present, direct SMTP when a host is configured, otherwise a noop.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	if cfg.GetBrevoAPIKey() != "" {
		return NewBrevoSender(cfg), nil
	}
	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(), cfg.GetEmailFromAddress(), cfg.GetEmailFromName()), nil
	}
	return NoopSender{}, nil
}

type NoopSender struct{}

func (NoopSender) SendWelcomeEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return nil
}

func (NoopSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string, attachments ...Attachment) error {
	return nil
}

func (NoopSender) SendOwnerBookingAlertEmail(ctx context.Context, toEmail, clientName, clientEmail, clientPhone, scheduledDate, meetLink string) error {
	return nil
}

func (NoopSender) SendCostComparisonEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return nil
}

func (NoopSender) SendCaseStudyEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return nil
}

func (NoopSender) SendThreeMistakesEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return nil
}

func (NoopSender) SendLastChanceEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return nil
}

func (NoopSender) SendBookingReminderEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string) error {
	return nil
}

func (NoopSender) SendBookingFollowupEmail(ctx context.Context, toEmail, name, quoteURL string) error {
	return nil
}

func (NoopSender) SendQuoteProposalEmail(ctx context.Context, toEmail, clientName, quoteNumber string, totalCents int64, attachments ...Attachment) error {
	return nil
}
