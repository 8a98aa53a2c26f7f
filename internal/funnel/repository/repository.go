package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrine_backend/internal/funnel/sequence"
	"vitrine_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Lead represents the funnel lead database model
type Lead struct {
	ID               uuid.UUID     `db:"id"`
	FirstName        string        `db:"first_name"`
	LastName         string        `db:"last_name"`
	Email            string        `db:"email"`
	Phone            *string       `db:"phone"`
	PainPoints       []string      `db:"pain_points"`
	Source           *string       `db:"source"`
	SequenceKind     sequence.Kind `db:"sequence_kind"`
	SequencePosition int           `db:"sequence_position"`
	LastEmailAt      *time.Time    `db:"last_email_at"`
	HasBooked        bool          `db:"has_booked"`
	AppointmentAt    *time.Time    `db:"appointment_at"`
	MeetingLink      *string       `db:"meeting_link"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

const leadNotFoundMsg = "lead not found"

const leadColumns = `id, first_name, last_name, email, phone, pain_points, source,
	sequence_kind, sequence_position, last_email_at, has_booked, appointment_at,
	meeting_link, created_at, updated_at`

// Repository provides database operations for funnel leads
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new funnel repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new lead
func (r *Repository) Create(ctx context.Context, lead *Lead) error {
	query := `
		INSERT INTO funnel_leads (
			id, first_name, last_name, email, phone, pain_points, source,
			sequence_kind, sequence_position, last_email_at, has_booked,
			appointment_at, meeting_link, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		lead.ID, lead.FirstName, lead.LastName, lead.Email, lead.Phone, lead.PainPoints,
		lead.Source, lead.SequenceKind, lead.SequencePosition, lead.LastEmailAt,
		lead.HasBooked, lead.AppointmentAt, lead.MeetingLink, lead.CreatedAt, lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM funnel_leads WHERE id = $1`
	lead, err := r.scanOne(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(leadNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// FindByEmail retrieves the most recent lead with the given email, or nil.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM funnel_leads WHERE email = $1 ORDER BY created_at DESC LIMIT 1`
	lead, err := r.scanOne(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find lead by email: %w", err)
	}
	return lead, nil
}

// ListUnfinished returns leads that have not yet received every email of
// their sequence, oldest first.
func (r *Repository) ListUnfinished(ctx context.Context) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM funnel_leads
		WHERE (sequence_kind = $1 AND sequence_position < $2)
		   OR (sequence_kind = $3 AND sequence_position < $4)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query,
		sequence.KindNotBooked, sequence.Length(sequence.KindNotBooked),
		sequence.KindBooked, sequence.Length(sequence.KindBooked),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list unfinished leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// AdvancePosition moves a lead forward by exactly one step with a
// compare-and-swap on the current position. It returns false when another
// pass advanced the lead first, so overlapping passes cannot double-send.
func (r *Repository) AdvancePosition(ctx context.Context, id uuid.UUID, from int) (bool, error) {
	query := `UPDATE funnel_leads
		SET sequence_position = sequence_position + 1, last_email_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND sequence_position = $2`

	tag, err := r.pool.Exec(ctx, query, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to advance lead position: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// SwitchToBooked moves a lead onto the booked sequence. The confirmation
// email counts as the first email, so the position restarts at 1.
func (r *Repository) SwitchToBooked(ctx context.Context, id uuid.UUID, appointmentAt time.Time, meetingLink *string) error {
	query := `UPDATE funnel_leads
		SET sequence_kind = $1, sequence_position = 1, has_booked = TRUE,
			appointment_at = $2, meeting_link = $3, updated_at = NOW()
		WHERE id = $4`

	tag, err := r.pool.Exec(ctx, query, sequence.KindBooked, appointmentAt, meetingLink, id)
	if err != nil {
		return fmt.Errorf("failed to switch lead to booked: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

// AttachMeetingLink stores the meeting link obtained after the lead was
// created, so the booked-track reminder can include it.
func (r *Repository) AttachMeetingLink(ctx context.Context, id uuid.UUID, link string) error {
	query := `UPDATE funnel_leads SET meeting_link = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, link, id)
	if err != nil {
		return fmt.Errorf("failed to attach meeting link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(leadNotFoundMsg)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanOne(row rowScanner) (*Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email, &lead.Phone,
		&lead.PainPoints, &lead.Source, &lead.SequenceKind, &lead.SequencePosition,
		&lead.LastEmailAt, &lead.HasBooked, &lead.AppointmentAt, &lead.MeetingLink,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
