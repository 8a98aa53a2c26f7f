package email

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vitrine_backend/platform/config"
)

// BrevoSender delivers email through the Brevo transactional API.
type BrevoSender struct {
	apiKey    string
	fromName  string
	fromEmail string
	client    *http.Client
}

type brevoAttachment struct {
	Content string `json:"content"` // base64-encoded file content
	Name    string `json:"name"`
}

type brevoEmailRequest struct {
	Sender struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"sender"`
	To []struct {
		Email string `json:"email"`
	} `json:"to"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

func NewBrevoSender(cfg config.EmailConfig) *BrevoSender {
	return &BrevoSender{
		apiKey:    cfg.GetBrevoAPIKey(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (b *BrevoSender) SendWelcomeEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	content, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{
			Title:    "Bienvenue",
			Heading:  "Merci pour votre demande",
			CTALabel: "Réserver un appel découverte",
			CTAURL:   bookingURL,
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subjectWelcome, content)
}

func (b *BrevoSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectBookingConfirmationFmt, scheduledDate)
	content, err := renderEmailTemplate("booking_confirmation.html", bookingConfirmationEmailData{
		baseEmailData: baseEmailData{
			Title:    "Rendez-vous confirmé",
			Heading:  "Votre rendez-vous est confirmé",
			CTALabel: "Rejoindre la visioconférence",
			CTAURL:   meetLink,
		},
		Name:          name,
		ScheduledDate: scheduledDate,
		MeetLink:      meetLink,
		HasQRCode:     len(attachments) > 0,
	})
	if err != nil {
		return err
	}
	return b.sendWithAttachments(ctx, toEmail, subject, content, attachments...)
}

func (b *BrevoSender) SendOwnerBookingAlertEmail(ctx context.Context, toEmail, clientName, clientEmail, clientPhone, scheduledDate, meetLink string) error {
	subject := fmt.Sprintf(subjectOwnerBookingAlertFmt, clientName)
	content, err := renderEmailTemplate("owner_booking_alert.html", ownerBookingAlertEmailData{
		baseEmailData: baseEmailData{
			Title:   "Nouveau rendez-vous",
			Heading: "Un nouveau rendez-vous a été réservé",
		},
		ClientName:    clientName,
		ClientEmail:   clientEmail,
		ClientPhone:   clientPhone,
		ScheduledDate: scheduledDate,
		MeetLink:      meetLink,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendCostComparisonEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	content, err := renderEmailTemplate("nurture_cost_comparison.html", nurtureEmailData{
		baseEmailData: baseEmailData{
			Title:    "Le vrai coût d'un site vitrine",
			Heading:  "Le vrai coût d'un site vitrine",
			CTALabel: "Réserver un appel découverte",
			CTAURL:   bookingURL,
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subjectCostComparison, content)
}

func (b *BrevoSender) SendCaseStudyEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	content, err := renderEmailTemplate("nurture_case_study.html", nurtureEmailData{
		baseEmailData: baseEmailData{
			Title:    "Étude de cas",
			Heading:  "Deux fois plus de demandes de devis",
			CTALabel: "Réserver un appel découverte",
			CTAURL:   bookingURL,
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subjectCaseStudy, content)
}

func (b *BrevoSender) SendThreeMistakesEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	content, err := renderEmailTemplate("nurture_three_mistakes.html", nurtureEmailData{
		baseEmailData: baseEmailData{
			Title:    "3 erreurs à éviter",
			Heading:  "3 erreurs qui font fuir vos clients",
			CTALabel: "Réserver un appel découverte",
			CTAURL:   bookingURL,
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subjectThreeMistakes, content)
}

func (b *BrevoSender) SendLastChanceEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	content, err := renderEmailTemplate("nurture_last_chance.html", nurtureEmailData{
		baseEmailData: baseEmailData{
			Title:    "Dernière relance",
			Heading:  "On en reste là ?",
			CTALabel: "Réserver un dernier créneau",
			CTAURL:   bookingURL,
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subjectLastChance, content)
}

func (b *BrevoSender) SendBookingReminderEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string) error {
	subject := fmt.Sprintf(subjectBookingReminderFmt, scheduledDate)
	content, err := renderEmailTemplate("booking_reminder.html", bookingReminderEmailData{
		baseEmailData: baseEmailData{
			Title:    "Rappel de rendez-vous",
			Heading:  "Votre rendez-vous approche",
			CTALabel: "Rejoindre la visioconférence",
			CTAURL:   meetLink,
		},
		Name:          name,
		ScheduledDate: scheduledDate,
		MeetLink:      meetLink,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subject, content)
}

func (b *BrevoSender) SendBookingFollowupEmail(ctx context.Context, toEmail, name, quoteURL string) error {
	content, err := renderEmailTemplate("booking_followup.html", bookingFollowupEmailData{
		baseEmailData: baseEmailData{
			Title:    "Merci pour votre temps",
			Heading:  "Merci pour notre échange",
			CTALabel: "Voir la proposition",
			CTAURL:   quoteURL,
		},
		Name: name,
	})
	if err != nil {
		return err
	}
	return b.send(ctx, toEmail, subjectBookingFollowup, content)
}

func (b *BrevoSender) SendQuoteProposalEmail(ctx context.Context, toEmail, clientName, quoteNumber string, totalCents int64, attachments ...Attachment) error {
	subject := fmt.Sprintf(subjectQuoteProposalFmt, quoteNumber)
	content, err := renderEmailTemplate("quote_proposal.html", quoteProposalEmailData{
		baseEmailData: baseEmailData{
			Title:   "Votre devis est prêt",
			Heading: "Votre devis est prêt",
		},
		ClientName:     clientName,
		QuoteNumber:    quoteNumber,
		TotalFormatted: formatCurrencyEUR(totalCents),
		HasAttachments: len(attachments) > 0,
	})
	if err != nil {
		return err
	}
	return b.sendWithAttachments(ctx, toEmail, subject, content, attachments...)
}

func (b *BrevoSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	return b.sendWithAttachments(ctx, toEmail, subject, htmlContent)
}

func (b *BrevoSender) sendWithAttachments(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	payload := brevoEmailRequest{
		Subject:     subject,
		HTMLContent: htmlContent,
	}
	payload.Sender.Name = b.fromName
	payload.Sender.Email = b.fromEmail
	payload.To = []struct {
		Email string `json:"email"`
	}{{Email: toEmail}}

	for _, att := range attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Content: base64.StdEncoding.EncodeToString(att.Content),
			Name:    att.FileName,
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.brevo.com/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", b.apiKey)
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("brevo send failed: status %d: %s", resp.StatusCode, string(data))
	}

	return nil
}

var _ Sender = (*BrevoSender)(nil)
