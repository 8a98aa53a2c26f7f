// Package service implements lead capture and the hourly nurture pass.
package service

import (
	"context"
	"fmt"
	"time"

	"vitrine_backend/internal/funnel/repository"
	"vitrine_backend/internal/funnel/sequence"
	"vitrine_backend/internal/funnel/transport"
	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/phone"
	"vitrine_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository abstracts lead persistence for the service.
type Repository interface {
	Create(ctx context.Context, lead *repository.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Lead, error)
	FindByEmail(ctx context.Context, email string) (*repository.Lead, error)
	ListUnfinished(ctx context.Context) ([]repository.Lead, error)
	AdvancePosition(ctx context.Context, id uuid.UUID, from int) (bool, error)
	SwitchToBooked(ctx context.Context, id uuid.UUID, appointmentAt time.Time, meetingLink *string) error
	AttachMeetingLink(ctx context.Context, id uuid.UUID, link string) error
}

// Mailer is the slice of the email sender the funnel needs.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendCostComparisonEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendCaseStudyEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendThreeMistakesEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendLastChanceEmail(ctx context.Context, toEmail, name, bookingURL string) error
	SendBookingReminderEmail(ctx context.Context, toEmail, name, scheduledDate, meetLink string) error
	SendBookingFollowupEmail(ctx context.Context, toEmail, name, quoteURL string) error
}

// BookingInfo carries what the booking flow knows about the person who booked.
type BookingInfo struct {
	FirstName     string
	LastName      string
	Email         string
	Phone         *string
	AppointmentAt time.Time
	MeetingLink   *string
}

// Service provides funnel lead operations and the nurture pass.
type Service struct {
	repo   Repository
	mailer Mailer
	cfg    config.BusinessConfig
	log    *logger.Logger
}

// New creates a new funnel service
func New(repo Repository, mailer Mailer, cfg config.BusinessConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, mailer: mailer, cfg: cfg, log: log}
}

// CreateLead records a completed site funnel and sends the welcome email.
// The welcome counts as the first sequence email, so the lead starts at
// position 1 on the not_booked track. A welcome delivery failure is logged
// and does not fail the request.
func (s *Service) CreateLead(ctx context.Context, req transport.CreateLeadRequest) (*transport.LeadResponse, error) {
	now := time.Now()
	lead := &repository.Lead{
		ID:               uuid.New(),
		FirstName:        sanitize.Text(req.FirstName),
		LastName:         sanitize.Text(req.LastName),
		Email:            req.Email,
		Phone:            normalizePhone(req.Phone),
		PainPoints:       sanitizeAll(req.PainPoints),
		Source:           sanitize.TextPtr(req.Source),
		SequenceKind:     sequence.KindNotBooked,
		SequencePosition: 1,
		LastEmailAt:      &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		return nil, err
	}

	if err := s.mailer.SendWelcomeEmail(ctx, lead.Email, lead.FirstName, s.bookingURL()); err != nil {
		s.log.IntegrationFailure("funnel", "welcome_email", err, "lead_id", lead.ID)
	}

	return toLeadResponse(lead), nil
}

// RecordBooking attaches a booking to the funnel: an existing lead with the
// same email switches to the booked sequence, anyone else gets a fresh booked
// lead. The confirmation email sent by the booking flow counts as position 1.
func (s *Service) RecordBooking(ctx context.Context, info BookingInfo) (uuid.UUID, error) {
	existing, err := s.repo.FindByEmail(ctx, info.Email)
	if err != nil {
		return uuid.UUID{}, err
	}

	if existing != nil {
		if err := s.repo.SwitchToBooked(ctx, existing.ID, info.AppointmentAt, info.MeetingLink); err != nil {
			return uuid.UUID{}, err
		}
		return existing.ID, nil
	}

	now := time.Now()
	lead := &repository.Lead{
		ID:               uuid.New(),
		FirstName:        sanitize.Text(info.FirstName),
		LastName:         sanitize.Text(info.LastName),
		Email:            info.Email,
		Phone:            info.Phone,
		SequenceKind:     sequence.KindBooked,
		SequencePosition: 1,
		LastEmailAt:      &now,
		HasBooked:        true,
		AppointmentAt:    &info.AppointmentAt,
		MeetingLink:      info.MeetingLink,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, lead); err != nil {
		return uuid.UUID{}, err
	}
	return lead.ID, nil
}

// AttachMeetingLink stores the meeting link on a lead once the calendar
// reservation produced one.
func (s *Service) AttachMeetingLink(ctx context.Context, leadID uuid.UUID, link string) error {
	return s.repo.AttachMeetingLink(ctx, leadID, link)
}

// RunPass executes one nurture pass at the given instant and returns how many
// emails went out. Each lead advances at most one step per pass. The email is
// dispatched before the position advances: a crash between the two repeats
// the send on the next pass rather than losing it. The advance itself is a
// compare-and-swap on the position, so an overlapping pass that already
// advanced the lead turns this pass's advance into a no-op.
func (s *Service) RunPass(ctx context.Context, now time.Time) (int, error) {
	leads, err := s.repo.ListUnfinished(ctx)
	if err != nil {
		return 0, fmt.Errorf("nurture pass: %w", err)
	}

	sent := 0
	for i := range leads {
		lead := &leads[i]

		email, due := s.nextEmail(lead, now)
		if !due {
			continue
		}

		if err := s.dispatch(ctx, lead, email); err != nil {
			s.log.IntegrationFailure("nurture", email, err, "lead_id", lead.ID, "position", lead.SequencePosition)
			continue
		}
		sent++

		advanced, err := s.repo.AdvancePosition(ctx, lead.ID, lead.SequencePosition)
		if err != nil {
			s.log.Error("nurture advance failed", "error", err, "lead_id", lead.ID)
			continue
		}
		if !advanced {
			s.log.Warn("nurture advance lost race, duplicate send possible", "lead_id", lead.ID, "position", lead.SequencePosition)
		}
	}

	return sent, nil
}

// GetByID returns a single lead.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLeadResponse(lead), nil
}

func (s *Service) nextEmail(lead *repository.Lead, now time.Time) (string, bool) {
	switch lead.SequenceKind {
	case sequence.KindBooked:
		if lead.AppointmentAt == nil {
			return "", false
		}
		return sequence.NextBooked(lead.SequencePosition, *lead.AppointmentAt, now)
	default:
		return sequence.NextNotBooked(lead.SequencePosition, lead.CreatedAt, now)
	}
}

func (s *Service) dispatch(ctx context.Context, lead *repository.Lead, email string) error {
	switch email {
	case sequence.EmailCostComparison:
		return s.mailer.SendCostComparisonEmail(ctx, lead.Email, lead.FirstName, s.bookingURL())
	case sequence.EmailCaseStudy:
		return s.mailer.SendCaseStudyEmail(ctx, lead.Email, lead.FirstName, s.bookingURL())
	case sequence.EmailThreeMistakes:
		return s.mailer.SendThreeMistakesEmail(ctx, lead.Email, lead.FirstName, s.bookingURL())
	case sequence.EmailLastChance:
		return s.mailer.SendLastChanceEmail(ctx, lead.Email, lead.FirstName, s.bookingURL())
	case sequence.EmailReminder:
		return s.mailer.SendBookingReminderEmail(ctx, lead.Email, lead.FirstName, formatAppointment(lead.AppointmentAt), derefOrEmpty(lead.MeetingLink))
	case sequence.EmailFollowup:
		return s.mailer.SendBookingFollowupEmail(ctx, lead.Email, lead.FirstName, s.bookingURL())
	default:
		return fmt.Errorf("unknown nurture email %q", email)
	}
}

func (s *Service) bookingURL() string {
	return s.cfg.GetAppBaseURL() + "/reserver"
}

func normalizePhone(raw *string) *string {
	if raw == nil {
		return nil
	}
	normalized := phone.NormalizeE164(*raw)
	if normalized == "" {
		return nil
	}
	return &normalized
}

func sanitizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if cleaned := sanitize.Text(v); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func formatAppointment(at *time.Time) string {
	if at == nil {
		return ""
	}
	return at.Format("02/01/2006 à 15:04")
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toLeadResponse(l *repository.Lead) *transport.LeadResponse {
	return &transport.LeadResponse{
		ID:               l.ID,
		FirstName:        l.FirstName,
		LastName:         l.LastName,
		Email:            l.Email,
		Phone:            l.Phone,
		PainPoints:       l.PainPoints,
		Source:           l.Source,
		SequenceKind:     string(l.SequenceKind),
		SequencePosition: l.SequencePosition,
		HasBooked:        l.HasBooked,
		AppointmentAt:    l.AppointmentAt,
		CreatedAt:        l.CreatedAt,
	}
}
