// Package calendar defines the external calendar collaborator consumed by the
// booking flow. Two operations are required of any provider: query busy
// intervals for a day and create an event returning an event id plus a join
// link. Any provider exposing this contract is substitutable.
package calendar

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by the noop provider. Slot queries must fail
// loudly when the calendar cannot be reached; silently treating the day as
// free would overbook.
var ErrNotConfigured = errors.New("calendar provider not configured")

// Interval is a busy time range, half-open [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// EventInput describes the event to create for a confirmed booking.
type EventInput struct {
	Summary     string
	Description string
	Start       time.Time
	End         time.Time
	Attendee    string
	MeetingLink string
}

// CreatedEvent is the provider's handle on a created event.
type CreatedEvent struct {
	EventID     string
	MeetingLink string
}

// Provider is the calendar collaborator contract.
type Provider interface {
	// BusyIntervals returns the busy ranges between dayStart and dayEnd.
	BusyIntervals(ctx context.Context, dayStart, dayEnd time.Time) ([]Interval, error)
	// CreateEvent reserves a slot and returns the event id and join link.
	CreateEvent(ctx context.Context, input EventInput) (*CreatedEvent, error)
}

// NoopProvider is used when no calendar is configured. Both operations fail
// so callers apply their documented failure policy (fail loudly for slots,
// log-and-continue for event creation).
type NoopProvider struct{}

// BusyIntervals always fails: availability cannot be computed without a calendar.
func (NoopProvider) BusyIntervals(ctx context.Context, dayStart, dayEnd time.Time) ([]Interval, error) {
	return nil, ErrNotConfigured
}

// CreateEvent always fails; bookings proceed without a calendar event.
func (NoopProvider) CreateEvent(ctx context.Context, input EventInput) (*CreatedEvent, error) {
	return nil, ErrNotConfigured
}

var _ Provider = NoopProvider{}
