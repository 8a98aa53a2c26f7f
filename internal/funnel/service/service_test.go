package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vitrine_backend/internal/funnel/repository"
	"vitrine_backend/internal/funnel/sequence"
	"vitrine_backend/internal/funnel/transport"
	"vitrine_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeadRepo struct {
	leads        map[uuid.UUID]*repository.Lead
	advanceStale bool
	advanceErr   error
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[uuid.UUID]*repository.Lead)}
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *repository.Lead) error {
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return lead, nil
}

func (f *fakeLeadRepo) FindByEmail(ctx context.Context, email string) (*repository.Lead, error) {
	for _, lead := range f.leads {
		if lead.Email == email {
			return lead, nil
		}
	}
	return nil, nil
}

func (f *fakeLeadRepo) ListUnfinished(ctx context.Context) ([]repository.Lead, error) {
	var out []repository.Lead
	for _, lead := range f.leads {
		if !sequence.Finished(lead.SequenceKind, lead.SequencePosition) {
			out = append(out, *lead)
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) AdvancePosition(ctx context.Context, id uuid.UUID, from int) (bool, error) {
	if f.advanceErr != nil {
		return false, f.advanceErr
	}
	lead, ok := f.leads[id]
	if f.advanceStale || !ok || lead.SequencePosition != from {
		return false, nil
	}
	lead.SequencePosition++
	return true, nil
}

func (f *fakeLeadRepo) SwitchToBooked(ctx context.Context, id uuid.UUID, appointmentAt time.Time, meetingLink *string) error {
	lead, ok := f.leads[id]
	if !ok {
		return errors.New("not found")
	}
	lead.SequenceKind = sequence.KindBooked
	lead.SequencePosition = 1
	lead.HasBooked = true
	lead.AppointmentAt = &appointmentAt
	lead.MeetingLink = meetingLink
	return nil
}

func (f *fakeLeadRepo) AttachMeetingLink(ctx context.Context, id uuid.UUID, link string) error {
	lead, ok := f.leads[id]
	if !ok {
		return errors.New("not found")
	}
	lead.MeetingLink = &link
	return nil
}

type fakeMailer struct {
	sent    []string // email keys in send order
	failAll bool
}

func (f *fakeMailer) record(key string) error {
	if f.failAll {
		return errors.New("smtp unreachable")
	}
	f.sent = append(f.sent, key)
	return nil
}

func (f *fakeMailer) SendWelcomeEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return f.record("welcome")
}

func (f *fakeMailer) SendCostComparisonEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return f.record(sequence.EmailCostComparison)
}

func (f *fakeMailer) SendCaseStudyEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return f.record(sequence.EmailCaseStudy)
}

func (f *fakeMailer) SendThreeMistakesEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return f.record(sequence.EmailThreeMistakes)
}

func (f *fakeMailer) SendLastChanceEmail(ctx context.Context, toEmail, name, bookingURL string) error {
	return f.record(sequence.EmailLastChance)
}

func (f *fakeMailer) SendBookingReminderEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string) error {
	return f.record(sequence.EmailReminder)
}

func (f *fakeMailer) SendBookingFollowupEmail(ctx context.Context, toEmail, name, quoteURL string) error {
	return f.record(sequence.EmailFollowup)
}

type fakeBusinessConfig struct{}

func (fakeBusinessConfig) GetBusinessName() string { return "Atelier Web" }
func (fakeBusinessConfig) GetOwnerEmail() string   { return "owner@example.com" }
func (fakeBusinessConfig) GetAppBaseURL() string   { return "https://atelier-web.example.com" }

func newTestService() (*Service, *fakeLeadRepo, *fakeMailer) {
	repo := newFakeLeadRepo()
	mailer := &fakeMailer{}
	svc := New(repo, mailer, fakeBusinessConfig{}, logger.New("test"))
	return svc, repo, mailer
}

func seedLead(repo *fakeLeadRepo, position int, createdAt time.Time) uuid.UUID {
	id := uuid.New()
	repo.leads[id] = &repository.Lead{
		ID:               id,
		FirstName:        "Claire",
		LastName:         "Moreau",
		Email:            "claire@example.com",
		SequenceKind:     sequence.KindNotBooked,
		SequencePosition: position,
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	return id
}

func TestCreateLead_StartsAtPositionOneWithWelcome(t *testing.T) {
	svc, repo, mailer := newTestService()

	resp, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		FirstName: "Claire",
		LastName:  "Moreau",
		Email:     "claire@example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.SequencePosition != 1 || resp.SequenceKind != string(sequence.KindNotBooked) {
		t.Fatalf("unexpected lead state: %+v", resp)
	}
	if len(mailer.sent) != 1 || mailer.sent[0] != "welcome" {
		t.Fatalf("expected a single welcome email, got %v", mailer.sent)
	}
	if repo.leads[resp.ID].LastEmailAt == nil {
		t.Fatalf("expected last_email_at to be recorded")
	}
}

func TestCreateLead_WelcomeFailureDoesNotFailRequest(t *testing.T) {
	svc, repo, mailer := newTestService()
	mailer.failAll = true

	resp, err := svc.CreateLead(context.Background(), transport.CreateLeadRequest{
		FirstName: "Claire",
		LastName:  "Moreau",
		Email:     "claire@example.com",
	})
	if err != nil {
		t.Fatalf("welcome failure must not surface: %v", err)
	}
	if _, ok := repo.leads[resp.ID]; !ok {
		t.Fatalf("lead must be persisted despite the failed welcome")
	}
}

func TestRunPass_SendsDueEmailAndAdvances(t *testing.T) {
	svc, repo, mailer := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	id := seedLead(repo, 1, created)

	sent, err := svc.RunPass(context.Background(), created.Add(3*24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 {
		t.Fatalf("expected 1 email sent, got %d", sent)
	}
	if mailer.sent[0] != sequence.EmailCostComparison {
		t.Fatalf("expected cost comparison, got %v", mailer.sent)
	}
	if repo.leads[id].SequencePosition != 2 {
		t.Fatalf("expected position 2, got %d", repo.leads[id].SequencePosition)
	}
}

func TestRunPass_NothingDueBeforeThreshold(t *testing.T) {
	svc, repo, _ := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	seedLead(repo, 1, created)

	sent, err := svc.RunPass(context.Background(), created.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected no sends one day in, got %d", sent)
	}
}

func TestRunPass_SingleStepAfterOutage(t *testing.T) {
	// The scheduler was down for two weeks; the lead is overdue for several
	// steps but one pass advances it exactly once.
	svc, repo, mailer := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	id := seedLead(repo, 1, created)

	now := created.Add(15 * 24 * time.Hour)
	sent, err := svc.RunPass(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent != 1 || len(mailer.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", sent)
	}
	if repo.leads[id].SequencePosition != 2 {
		t.Fatalf("expected a single advance, position is %d", repo.leads[id].SequencePosition)
	}

	// Successive passes at the same instant drain the backlog one step each.
	for _, want := range []string{sequence.EmailCaseStudy, sequence.EmailThreeMistakes, sequence.EmailLastChance} {
		if _, err := svc.RunPass(context.Background(), now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := mailer.sent[len(mailer.sent)-1]; got != want {
			t.Fatalf("expected %s, got %s", want, got)
		}
	}
	if !sequence.Finished(sequence.KindNotBooked, repo.leads[id].SequencePosition) {
		t.Fatalf("lead should be finished, position %d", repo.leads[id].SequencePosition)
	}

	// A finished lead is never touched again.
	sent, _ = svc.RunPass(context.Background(), now.Add(100*24*time.Hour))
	if sent != 0 {
		t.Fatalf("finished lead must not receive more email")
	}
}

func TestRunPass_SendFailureDoesNotAdvance(t *testing.T) {
	svc, repo, mailer := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	id := seedLead(repo, 1, created)
	mailer.failAll = true

	sent, err := svc.RunPass(context.Background(), created.Add(3*24*time.Hour))
	if err != nil {
		t.Fatalf("send failures are logged, not returned: %v", err)
	}
	if sent != 0 {
		t.Fatalf("expected no sends counted, got %d", sent)
	}
	if repo.leads[id].SequencePosition != 1 {
		t.Fatalf("position must not advance past an unsent email")
	}

	// Recovery: the next pass retries the same step.
	mailer.failAll = false
	sent, _ = svc.RunPass(context.Background(), created.Add(4*24*time.Hour))
	if sent != 1 || repo.leads[id].SequencePosition != 2 {
		t.Fatalf("expected the retried step to advance the lead")
	}
}

func TestRunPass_LostAdvanceRaceStillCountsSend(t *testing.T) {
	// An overlapping pass advanced the lead between our send and our
	// compare-and-swap: the CAS is a no-op, the pass neither fails nor
	// touches the position.
	svc, repo, mailer := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	id := seedLead(repo, 1, created)
	repo.advanceStale = true

	sent, err := svc.RunPass(context.Background(), created.Add(3*24*time.Hour))
	if err != nil {
		t.Fatalf("a lost race must not fail the pass: %v", err)
	}
	if sent != 1 || len(mailer.sent) != 1 {
		t.Fatalf("the send still happened and counts, got %d", sent)
	}
	if repo.leads[id].SequencePosition != 1 {
		t.Fatalf("a stale advance must leave the position untouched, got %d", repo.leads[id].SequencePosition)
	}
}

func TestRunPass_AdvanceErrorDoesNotFailPass(t *testing.T) {
	svc, repo, mailer := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	id := seedLead(repo, 1, created)
	repo.advanceErr = errors.New("connection reset")

	sent, err := svc.RunPass(context.Background(), created.Add(3*24*time.Hour))
	if err != nil {
		t.Fatalf("an advance failure is logged, not returned: %v", err)
	}
	if sent != 1 || len(mailer.sent) != 1 {
		t.Fatalf("the email went out before the failed advance, got %d", sent)
	}
	if repo.leads[id].SequencePosition != 1 {
		t.Fatalf("position must stay put when the advance errors, got %d", repo.leads[id].SequencePosition)
	}
}

func TestRunPass_BookedTrackWindows(t *testing.T) {
	svc, repo, mailer := newTestService()
	appt := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	link := "https://meet.google.com/abc-defg-hij"
	id := uuid.New()
	repo.leads[id] = &repository.Lead{
		ID:               id,
		FirstName:        "Claire",
		Email:            "claire@example.com",
		SequenceKind:     sequence.KindBooked,
		SequencePosition: 1,
		HasBooked:        true,
		AppointmentAt:    &appt,
		MeetingLink:      &link,
		CreatedAt:        appt.Add(-5 * 24 * time.Hour),
	}

	// Too early for the reminder.
	sent, _ := svc.RunPass(context.Background(), appt.Add(-48*time.Hour))
	if sent != 0 {
		t.Fatalf("reminder sent outside its window")
	}

	// Inside the reminder window.
	sent, _ = svc.RunPass(context.Background(), appt.Add(-20*time.Hour))
	if sent != 1 || mailer.sent[0] != sequence.EmailReminder {
		t.Fatalf("expected reminder, got %v", mailer.sent)
	}
	if repo.leads[id].SequencePosition != 2 {
		t.Fatalf("expected position 2 after reminder")
	}

	// Follow-up after the appointment.
	sent, _ = svc.RunPass(context.Background(), appt.Add(6*time.Hour))
	if sent != 1 || mailer.sent[1] != sequence.EmailFollowup {
		t.Fatalf("expected follow-up, got %v", mailer.sent)
	}
	if !sequence.Finished(sequence.KindBooked, repo.leads[id].SequencePosition) {
		t.Fatalf("booked sequence should be finished")
	}
}

func TestRecordBooking_SwitchesExistingLead(t *testing.T) {
	svc, repo, _ := newTestService()
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	id := seedLead(repo, 3, created)

	appt := created.Add(7 * 24 * time.Hour)
	link := "https://meet.google.com/abc-defg-hij"
	gotID, err := svc.RecordBooking(context.Background(), BookingInfo{
		FirstName:     "Claire",
		LastName:      "Moreau",
		Email:         "claire@example.com",
		AppointmentAt: appt,
		MeetingLink:   &link,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != id {
		t.Fatalf("expected the existing lead to be reused")
	}

	lead := repo.leads[id]
	if lead.SequenceKind != sequence.KindBooked || lead.SequencePosition != 1 {
		t.Fatalf("expected booked track at position 1, got %s/%d", lead.SequenceKind, lead.SequencePosition)
	}
	if lead.AppointmentAt == nil || !lead.AppointmentAt.Equal(appt) {
		t.Fatalf("appointment time not recorded")
	}
}

func TestRecordBooking_CreatesLeadForUnknownEmail(t *testing.T) {
	svc, repo, mailer := newTestService()

	appt := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	id, err := svc.RecordBooking(context.Background(), BookingInfo{
		FirstName:     "Marc",
		LastName:      "Petit",
		Email:         "marc@example.com",
		AppointmentAt: appt,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lead := repo.leads[id]
	if lead == nil || lead.SequenceKind != sequence.KindBooked || !lead.HasBooked {
		t.Fatalf("expected a booked lead, got %+v", lead)
	}
	// The confirmation is sent by the booking flow, not here.
	if len(mailer.sent) != 0 {
		t.Fatalf("RecordBooking must not send email, got %v", mailer.sent)
	}
}
