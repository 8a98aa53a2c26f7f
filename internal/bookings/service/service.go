// Package service implements slot availability and the booking flow.
//
// The booking flow has one hard precondition: the requester's identity
// (name, email, phone, date, time). Everything after that is best effort —
// a broken calendar or mail server must never lose the booking request, so
// every integration step logs its failure and the flow carries on.
package service

import (
	"context"
	"time"

	"vitrine_backend/internal/bookings/repository"
	"vitrine_backend/internal/bookings/transport"
	"vitrine_backend/internal/calendar"
	"vitrine_backend/internal/email"
	"vitrine_backend/internal/events"
	funnelsvc "vitrine_backend/internal/funnel/service"
	"vitrine_backend/internal/meeting"
	"vitrine_backend/platform/apperr"
	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/phone"
	"vitrine_backend/platform/sanitize"

	"github.com/google/uuid"
)

const bookingFlow = "booking"

// Repository abstracts booking persistence for the service.
type Repository interface {
	Create(ctx context.Context, b *repository.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Booking, error)
	List(ctx context.Context, limit, offset int) ([]repository.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	CompleteElapsed(ctx context.Context, now time.Time) (int, error)
}

// ClientUpserter creates or refreshes the CRM client for a booking.
type ClientUpserter interface {
	UpsertByEmail(ctx context.Context, firstName, lastName, email string, phoneNumber *string) (uuid.UUID, error)
}

// LeadRecorder attaches the booking to the nurture funnel.
type LeadRecorder interface {
	RecordBooking(ctx context.Context, info funnelsvc.BookingInfo) (uuid.UUID, error)
	AttachMeetingLink(ctx context.Context, leadID uuid.UUID, link string) error
}

// Mailer is the slice of the email sender the booking flow needs.
type Mailer interface {
	SendBookingConfirmationEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string, attachments ...email.Attachment) error
	SendOwnerBookingAlertEmail(ctx context.Context, toEmail, clientName, clientEmail, clientPhone, scheduledDate, meetLink string) error
}

// Config combines the config interfaces the booking service needs.
type Config interface {
	config.BookingConfig
	config.BusinessConfig
}

// Service provides booking operations
type Service struct {
	repo     Repository
	calendar calendar.Provider
	mailer   Mailer
	clients  ClientUpserter
	leads    LeadRecorder
	bus      events.Bus
	cfg      Config
	log      *logger.Logger
	now      func() time.Time
}

// New creates a new bookings service
func New(repo Repository, cal calendar.Provider, mailer Mailer, clients ClientUpserter, leads LeadRecorder, bus events.Bus, cfg Config, log *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		calendar: cal,
		mailer:   mailer,
		clients:  clients,
		leads:    leads,
		bus:      bus,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Create runs the booking flow. After the identity precondition passes the
// steps run in a fixed order, each one logged and skipped on failure:
// CRM upsert, funnel lead, calendar reservation with its meeting link,
// booking write, confirmation email, owner alert. The booking write happens
// before either email is attempted.
func (s *Service) Create(ctx context.Context, req transport.CreateBookingRequest) (*transport.BookingResult, error) {
	start, end, err := s.parseSlot(req.Date, req.Time)
	if err != nil {
		return nil, err
	}

	firstName := sanitize.Text(req.FirstName)
	lastName := sanitize.Text(req.LastName)
	fullName := firstName + " " + lastName
	phoneNumber := phone.NormalizeE164(req.Phone)
	scheduledDate := start.Format("02/01/2006 à 15:04")

	// Step 1: CRM client.
	var clientID *uuid.UUID
	if id, err := s.clients.UpsertByEmail(ctx, firstName, lastName, req.Email, &phoneNumber); err != nil {
		s.log.IntegrationFailure(bookingFlow, "crm_upsert", err, "email", req.Email)
	} else {
		clientID = &id
	}

	// Step 2: funnel lead on the booked track.
	var leadID *uuid.UUID
	if id, err := s.leads.RecordBooking(ctx, funnelsvc.BookingInfo{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         req.Email,
		Phone:         &phoneNumber,
		AppointmentAt: start,
	}); err != nil {
		s.log.IntegrationFailure(bookingFlow, "funnel_lead", err, "email", req.Email)
	} else {
		leadID = &id
	}

	// Step 3: reserve the calendar slot and obtain the meeting link. The link
	// only exists if the event does: when the reservation fails the booking
	// proceeds without a video link.
	var meetLink *string
	var eventID *string
	if link, err := meeting.Generate(meeting.ParsePlatform(s.cfg.GetMeetingPlatform()), ""); err != nil {
		s.log.IntegrationFailure(bookingFlow, "meeting_link", err)
	} else {
		created, err := s.calendar.CreateEvent(ctx, calendar.EventInput{
			Summary:     "Appel découverte — " + fullName,
			Description: derefOrEmpty(sanitize.TextPtr(req.Notes)),
			Start:       start,
			End:         end,
			Attendee:    req.Email,
			MeetingLink: link.URL,
		})
		if err != nil {
			s.log.IntegrationFailure(bookingFlow, "calendar_event", err, "start", start)
		} else {
			eventID = &created.EventID
			url := link.URL
			if created.MeetingLink != "" {
				url = created.MeetingLink
			}
			meetLink = &url
			if leadID != nil {
				if err := s.leads.AttachMeetingLink(ctx, *leadID, url); err != nil {
					s.log.IntegrationFailure(bookingFlow, "lead_meeting_link", err, "lead_id", *leadID)
				}
			}
		}
	}

	// Step 4: booking write, before any email goes out.
	now := s.now()
	booking := &repository.Booking{
		ID:              uuid.New(),
		LeadID:          leadID,
		ClientID:        clientID,
		FirstName:       firstName,
		LastName:        lastName,
		Email:           req.Email,
		Phone:           phoneNumber,
		StartTime:       start,
		EndTime:         end,
		Status:          repository.StatusConfirmed,
		CalendarEventID: eventID,
		MeetingLink:     meetLink,
		Notes:           sanitize.TextPtr(req.Notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		s.log.IntegrationFailure(bookingFlow, "booking_write", err, "email", req.Email, "start", start)
	}

	// Step 5: confirmation to the requester, QR attached when a link exists.
	var attachments []email.Attachment
	if meetLink != nil {
		if png, err := meeting.QRCode(*meetLink); err != nil {
			s.log.IntegrationFailure(bookingFlow, "meeting_qr", err)
		} else {
			attachments = append(attachments, email.Attachment{
				Content:  png,
				FileName: "rendez-vous.png",
				MIMEType: "image/png",
			})
		}
	}
	if err := s.mailer.SendBookingConfirmationEmail(ctx, req.Email, firstName, scheduledDate, derefOrEmpty(meetLink), attachments...); err != nil {
		s.log.IntegrationFailure(bookingFlow, "confirmation_email", err, "email", req.Email)
	}

	// Step 6: owner alert.
	if err := s.mailer.SendOwnerBookingAlertEmail(ctx, s.cfg.GetOwnerEmail(), fullName, req.Email, phoneNumber, scheduledDate, derefOrEmpty(meetLink)); err != nil {
		s.log.IntegrationFailure(bookingFlow, "owner_email", err)
	}

	s.bus.Publish(ctx, BookingConfirmedEvent{
		BaseEvent: events.NewBaseEvent(),
		BookingID: booking.ID,
		ClientID:  clientID,
		LeadID:    leadID,
		Email:     req.Email,
		StartTime: start,
	})

	return &transport.BookingResult{
		Success: true,
		Data: transport.BookingResultData{
			LeadID:   leadID,
			MeetLink: meetLink,
			EventID:  eventID,
		},
	}, nil
}

// List returns bookings for the back office.
func (s *Service) List(ctx context.Context, req transport.ListBookingsRequest) ([]transport.BookingResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	bookings, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]transport.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return out, nil
}

// GetByID returns a single booking.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.BookingResponse, error) {
	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toBookingResponse(booking)
	return &resp, nil
}

// UpdateStatus moves a confirmed booking to completed or cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if status != repository.StatusCompleted && status != repository.StatusCancelled {
		return apperr.Validation("status must be completed or cancelled")
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// CompleteElapsed is the hourly sweep: confirmed bookings whose end time has
// passed become completed.
func (s *Service) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	return s.repo.CompleteElapsed(ctx, now)
}

func (s *Service) parseSlot(rawDate, rawTime string) (time.Time, time.Time, error) {
	loc, err := time.LoadLocation(s.cfg.GetBookingTimezone())
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", rawDate+" "+rawTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("invalid date or time")
	}
	end := start.Add(time.Duration(s.cfg.GetBookingSlotMinutes()) * time.Minute)
	return start, end, nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toBookingResponse(b *repository.Booking) transport.BookingResponse {
	return transport.BookingResponse{
		ID:              b.ID,
		LeadID:          b.LeadID,
		ClientID:        b.ClientID,
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Phone:           b.Phone,
		StartTime:       b.StartTime,
		EndTime:         b.EndTime,
		Status:          b.Status,
		CalendarEventID: b.CalendarEventID,
		MeetingLink:     b.MeetingLink,
		Notes:           b.Notes,
		CreatedAt:       b.CreatedAt,
	}
}
