package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrine_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking statuses. Confirmed bookings move forward to completed or
// cancelled, never back.
const (
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Booking represents the booking database model
type Booking struct {
	ID              uuid.UUID  `db:"id"`
	LeadID          *uuid.UUID `db:"lead_id"`
	ClientID        *uuid.UUID `db:"client_id"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Email           string     `db:"email"`
	Phone           string     `db:"phone"`
	StartTime       time.Time  `db:"start_time"`
	EndTime         time.Time  `db:"end_time"`
	Status          string     `db:"status"`
	CalendarEventID *string    `db:"calendar_event_id"`
	MeetingLink     *string    `db:"meeting_link"`
	Notes           *string    `db:"notes"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

const bookingNotFoundMsg = "booking not found"

const bookingColumns = `id, lead_id, client_id, first_name, last_name, email, phone,
	start_time, end_time, status, calendar_event_id, meeting_link, notes, created_at, updated_at`

// Repository provides database operations for bookings
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new bookings repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new booking
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	query := `
		INSERT INTO bookings (
			id, lead_id, client_id, first_name, last_name, email, phone,
			start_time, end_time, status, calendar_event_id, meeting_link, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err := r.pool.Exec(ctx, query,
		b.ID, b.LeadID, b.ClientID, b.FirstName, b.LastName, b.Email, b.Phone,
		b.StartTime, b.EndTime, b.Status, b.CalendarEventID, b.MeetingLink, b.Notes,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var b Booking
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID, &b.LeadID, &b.ClientID, &b.FirstName, &b.LastName, &b.Email, &b.Phone,
		&b.StartTime, &b.EndTime, &b.Status, &b.CalendarEventID, &b.MeetingLink, &b.Notes,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(bookingNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// List retrieves bookings ordered by start time, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY start_time DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		var b Booking
		if err := rows.Scan(
			&b.ID, &b.LeadID, &b.ClientID, &b.FirstName, &b.LastName, &b.Email, &b.Phone,
			&b.StartTime, &b.EndTime, &b.Status, &b.CalendarEventID, &b.MeetingLink, &b.Notes,
			&b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// UpdateStatus moves a confirmed booking to a terminal status. The WHERE
// clause enforces the forward-only transition at the database level.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	tag, err := r.pool.Exec(ctx, query, status, id, StatusConfirmed)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the booking does not exist or it already left the
		// confirmed state.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperr.Conflict("booking is no longer confirmed")
	}
	return nil
}

// CompleteElapsed moves confirmed bookings whose end time has passed to
// completed and returns how many rows changed.
func (r *Repository) CompleteElapsed(ctx context.Context, now time.Time) (int, error) {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE status = $2 AND end_time < $3`

	tag, err := r.pool.Exec(ctx, query, StatusCompleted, StatusConfirmed, now)
	if err != nil {
		return 0, fmt.Errorf("failed to complete elapsed bookings: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
