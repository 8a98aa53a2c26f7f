package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"vitrine_backend/internal/bookings/repository"
	"vitrine_backend/internal/bookings/transport"
	"vitrine_backend/internal/email"
	"vitrine_backend/internal/events"
	funnelsvc "vitrine_backend/internal/funnel/service"
	"vitrine_backend/platform/logger"

	"github.com/google/uuid"
)

// ops records cross-collaborator call order for ordering assertions.
type ops struct {
	calls []string
}

func (o *ops) add(name string) {
	o.calls = append(o.calls, name)
}

func (o *ops) index(name string) int {
	for i, c := range o.calls {
		if c == name {
			return i
		}
	}
	return -1
}

type fakeBookingRepo struct {
	ops       *ops
	created   []*repository.Booking
	createErr error
}

func (f *fakeBookingRepo) Create(ctx context.Context, b *repository.Booking) error {
	f.ops.add("booking_write")
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, b)
	return nil
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Booking, error) {
	return nil, errors.New("not found")
}

func (f *fakeBookingRepo) List(ctx context.Context, limit, offset int) ([]repository.Booking, error) {
	return nil, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (f *fakeBookingRepo) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

type fakeBookingMailer struct {
	ops              *ops
	confirmLink      string
	confirmAttach    int
	ownerLink        string
	confirmationErr  error
	confirmationSent bool
	ownerSent        bool
}

func (f *fakeBookingMailer) SendBookingConfirmationEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string, attachments ...email.Attachment) error {
	f.ops.add("confirmation_email")
	if f.confirmationErr != nil {
		return f.confirmationErr
	}
	f.confirmationSent = true
	f.confirmLink = meetLink
	f.confirmAttach = len(attachments)
	return nil
}

func (f *fakeBookingMailer) SendOwnerBookingAlertEmail(ctx context.Context, toEmail, clientName, clientEmail, clientPhone, scheduledDate, meetLink string) error {
	f.ops.add("owner_email")
	f.ownerSent = true
	f.ownerLink = meetLink
	return nil
}

type fakeClients struct {
	id  uuid.UUID
	err error
}

func (f *fakeClients) UpsertByEmail(ctx context.Context, firstName, lastName, email string, phoneNumber *string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.UUID{}, f.err
	}
	return f.id, nil
}

type fakeLeads struct {
	id           uuid.UUID
	err          error
	attachedLink string
}

func (f *fakeLeads) RecordBooking(ctx context.Context, info funnelsvc.BookingInfo) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.UUID{}, f.err
	}
	return f.id, nil
}

func (f *fakeLeads) AttachMeetingLink(ctx context.Context, leadID uuid.UUID, link string) error {
	f.attachedLink = link
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(ctx context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(ctx context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(eventName string, handler events.Handler) {}

type orchestratorFixture struct {
	svc     *Service
	repo    *fakeBookingRepo
	cal     *fakeCalendar
	mailer  *fakeBookingMailer
	clients *fakeClients
	leads   *fakeLeads
	bus     *recordingBus
	ops     *ops
}

func newOrchestrator() *orchestratorFixture {
	o := &ops{}
	f := &orchestratorFixture{
		repo:    &fakeBookingRepo{ops: o},
		cal:     &fakeCalendar{},
		mailer:  &fakeBookingMailer{ops: o},
		clients: &fakeClients{id: uuid.New()},
		leads:   &fakeLeads{id: uuid.New()},
		bus:     &recordingBus{},
		ops:     o,
	}
	f.svc = New(f.repo, f.cal, f.mailer, f.clients, f.leads, f.bus, fakeConfig{}, logger.New("test"))
	return f
}

func validRequest() transport.CreateBookingRequest {
	return transport.CreateBookingRequest{
		FirstName: "Claire",
		LastName:  "Moreau",
		Email:     "claire@example.com",
		Phone:     "06 12 34 56 78",
		Date:      "2026-03-02",
		Time:      "11:00",
	}
}

var meetLinkPattern = regexp.MustCompile(`^https://meet\.google\.com/[a-z0-9]{3}-[a-z0-9]{4}-[a-z0-9]{3}$`)

func TestCreate_FullFlow(t *testing.T) {
	f := newOrchestrator()

	result, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success")
	}
	if result.Data.LeadID == nil || *result.Data.LeadID != f.leads.id {
		t.Fatalf("expected lead id in response")
	}
	if result.Data.EventID == nil || *result.Data.EventID != "evt-123" {
		t.Fatalf("expected event id in response")
	}
	if result.Data.MeetLink == nil || !meetLinkPattern.MatchString(*result.Data.MeetLink) {
		t.Fatalf("unexpected meet link: %v", result.Data.MeetLink)
	}

	if len(f.repo.created) != 1 {
		t.Fatalf("expected one persisted booking")
	}
	booking := f.repo.created[0]
	if booking.Status != repository.StatusConfirmed {
		t.Fatalf("expected confirmed status, got %s", booking.Status)
	}
	if booking.MeetingLink == nil || *booking.MeetingLink != *result.Data.MeetLink {
		t.Fatalf("booking must carry the meeting link")
	}
	if booking.Phone != "+33612345678" {
		t.Fatalf("expected normalized phone, got %q", booking.Phone)
	}

	if f.leads.attachedLink != *result.Data.MeetLink {
		t.Fatalf("lead must receive the meeting link for its reminder")
	}
	if !f.mailer.confirmationSent || !f.mailer.ownerSent {
		t.Fatalf("both emails must be sent")
	}
	if f.mailer.confirmAttach != 1 {
		t.Fatalf("expected the QR attachment on the confirmation")
	}
	if len(f.bus.published) != 1 {
		t.Fatalf("expected one published event, got %d", len(f.bus.published))
	}
}

func TestCreate_BookingWriteBeforeEmails(t *testing.T) {
	f := newOrchestrator()

	if _, err := f.svc.Create(context.Background(), validRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	write := f.ops.index("booking_write")
	confirm := f.ops.index("confirmation_email")
	owner := f.ops.index("owner_email")
	if write == -1 || confirm == -1 || owner == -1 {
		t.Fatalf("missing steps in %v", f.ops.calls)
	}
	if write > confirm || confirm > owner {
		t.Fatalf("expected write before emails, got %v", f.ops.calls)
	}
}

func TestCreate_CalendarFailureStillSucceedsWithoutLink(t *testing.T) {
	f := newOrchestrator()
	f.cal.createErr = errors.New("upstream 500")

	result, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("calendar failure must not fail the booking: %v", err)
	}
	if !result.Success {
		t.Fatalf("expected success despite calendar failure")
	}
	if result.Data.MeetLink != nil || result.Data.EventID != nil {
		t.Fatalf("expected null meet link and event id, got %+v", result.Data)
	}

	booking := f.repo.created[0]
	if booking.MeetingLink != nil || booking.CalendarEventID != nil {
		t.Fatalf("booking must be persisted without calendar identifiers")
	}
	if !f.mailer.confirmationSent {
		t.Fatalf("confirmation still goes out without a link")
	}
	if f.mailer.confirmAttach != 0 {
		t.Fatalf("no QR attachment without a link")
	}
}

func TestCreate_CRMAndFunnelFailuresAreSwallowed(t *testing.T) {
	f := newOrchestrator()
	f.clients.err = errors.New("db down")
	f.leads.err = errors.New("db down")

	result, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.Data.LeadID != nil {
		t.Fatalf("expected success with null lead id, got %+v", result)
	}

	booking := f.repo.created[0]
	if booking.LeadID != nil || booking.ClientID != nil {
		t.Fatalf("failed steps must leave null foreign keys")
	}
}

func TestCreate_PersistFailureStillReportsSuccess(t *testing.T) {
	f := newOrchestrator()
	f.repo.createErr = errors.New("disk full")

	result, err := f.svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("best-effort policy: success even when the write failed")
	}
	if !f.mailer.confirmationSent || !f.mailer.ownerSent {
		t.Fatalf("emails are still attempted after the failed write")
	}
}

func TestCreate_InvalidDateRejected(t *testing.T) {
	f := newOrchestrator()
	req := validRequest()
	req.Date = "02/03/2026"

	if _, err := f.svc.Create(context.Background(), req); err == nil {
		t.Fatalf("expected validation error for a malformed date")
	}
	if len(f.repo.created) != 0 {
		t.Fatalf("no side effects on validation failure")
	}
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	f := newOrchestrator()
	if err := f.svc.UpdateStatus(context.Background(), uuid.New(), "confirmed"); err == nil {
		t.Fatalf("expected validation error")
	}
}
