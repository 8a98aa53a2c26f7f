package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection
// via go-mail. It renders the same HTML templates as BrevoSender but delivers
// through the business's own SMTP server.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendWelcomeEmail(ctx context.Context, toEmail, name, bookingURL string) error {
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
	return s.send(ctx, toEmail, subjectWelcome, content)
}

func (s *SMTPSender) SendBookingConfirmationEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string, attachments ...Attachment) error {
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
	return s.send(ctx, toEmail, subject, content, attachments...)
}

func (s *SMTPSender) SendOwnerBookingAlertEmail(ctx context.Context, toEmail, clientName, clientEmail, clientPhone, scheduledDate, meetLink string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendCostComparisonEmail(ctx context.Context, toEmail, name, bookingURL string) error {
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
	return s.send(ctx, toEmail, subjectCostComparison, content)
}

func (s *SMTPSender) SendCaseStudyEmail(ctx context.Context, toEmail, name, bookingURL string) error {
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
	return s.send(ctx, toEmail, subjectCaseStudy, content)
}

func (s *SMTPSender) SendThreeMistakesEmail(ctx context.Context, toEmail, name, bookingURL string) error {
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
	return s.send(ctx, toEmail, subjectThreeMistakes, content)
}

func (s *SMTPSender) SendLastChanceEmail(ctx context.Context, toEmail, name, bookingURL string) error {
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
	return s.send(ctx, toEmail, subjectLastChance, content)
}

func (s *SMTPSender) SendBookingReminderEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string) error {
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
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendBookingFollowupEmail(ctx context.Context, toEmail, name, quoteURL string) error {
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
	return s.send(ctx, toEmail, subjectBookingFollowup, content)
}

func (s *SMTPSender) SendQuoteProposalEmail(ctx context.Context, toEmail, clientName, quoteNumber string, totalCents int64, attachments ...Attachment) error {
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
	return s.send(ctx, toEmail, subject, content, attachments...)
}

var _ Sender = (*SMTPSender)(nil)
