package email

import (
	"strings"
	"testing"
)

func TestRenderEmailTemplate_AllTemplatesParse(t *testing.T) {
	cases := []struct {
		name string
		data any
	}{
		{"welcome.html", welcomeEmailData{Name: "Claire"}},
		{"booking_confirmation.html", bookingConfirmationEmailData{Name: "Claire", ScheduledDate: "lundi 2 mars à 11:00", MeetLink: "https://meet.google.com/abc-defg-hij", HasQRCode: true}},
		{"owner_booking_alert.html", ownerBookingAlertEmailData{ClientName: "Claire", ClientEmail: "claire@example.com", ScheduledDate: "lundi 2 mars à 11:00"}},
		{"nurture_cost_comparison.html", nurtureEmailData{Name: "Claire"}},
		{"nurture_case_study.html", nurtureEmailData{Name: "Claire"}},
		{"nurture_three_mistakes.html", nurtureEmailData{Name: "Claire"}},
		{"nurture_last_chance.html", nurtureEmailData{Name: "Claire"}},
		{"booking_reminder.html", bookingReminderEmailData{Name: "Claire", ScheduledDate: "lundi 2 mars à 11:00"}},
		{"booking_followup.html", bookingFollowupEmailData{Name: "Claire"}},
		{"quote_proposal.html", quoteProposalEmailData{ClientName: "Claire", QuoteNumber: "D-00042", TotalFormatted: "1200.00 €"}},
	}

	for _, tc := range cases {
		html, err := renderEmailTemplate(tc.name, tc.data)
		if err != nil {
			t.Fatalf("render %s: %v", tc.name, err)
		}
		if !strings.Contains(html, "<html") {
			t.Fatalf("render %s: output missing base layout", tc.name)
		}
	}
}

func TestRenderEmailTemplate_CTAOnlyWhenURLSet(t *testing.T) {
	withCTA, err := renderEmailTemplate("welcome.html", welcomeEmailData{
		baseEmailData: baseEmailData{CTALabel: "Réserver", CTAURL: "https://example.com/reserver"},
		Name:          "Claire",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(withCTA, "https://example.com/reserver") {
		t.Fatalf("expected CTA link in output")
	}

	withoutCTA, err := renderEmailTemplate("welcome.html", welcomeEmailData{Name: "Claire"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(withoutCTA, "border-radius:6px") {
		t.Fatalf("expected no CTA button without a URL")
	}
}

func TestFormatCurrencyEUR(t *testing.T) {
	if got := formatCurrencyEUR(123456); got != "1234.56 €" {
		t.Fatalf("formatCurrencyEUR(123456) = %q", got)
	}
}
