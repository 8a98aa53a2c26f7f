package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type welcomeEmailData struct {
	baseEmailData
	Name string
}

type bookingConfirmationEmailData struct {
	baseEmailData
	Name          string
	ScheduledDate string
	MeetLink      string
	HasQRCode     bool
}

type ownerBookingAlertEmailData struct {
	baseEmailData
	ClientName    string
	ClientEmail   string
	ClientPhone   string
	ScheduledDate string
	MeetLink      string
}

type nurtureEmailData struct {
	baseEmailData
	Name string
}

type bookingReminderEmailData struct {
	baseEmailData
	Name          string
	ScheduledDate string
	MeetLink      string
}

type bookingFollowupEmailData struct {
	baseEmailData
	Name string
}

type quoteProposalEmailData struct {
	baseEmailData
	ClientName     string
	QuoteNumber    string
	TotalFormatted string
	HasAttachments bool
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatCurrencyEUR(cents int64) string {
	return fmt.Sprintf("%.2f €", float64(cents)/100)
}
