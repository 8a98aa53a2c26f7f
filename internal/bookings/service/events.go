package service

import (
	"time"

	"vitrine_backend/internal/events"

	"github.com/google/uuid"
)

// EventBookingConfirmed is published after a booking has been recorded.
const EventBookingConfirmed = "booking.confirmed"

// BookingConfirmedEvent carries the identifiers other modules need to react
// to a new booking. Optional ids are nil when their integration step failed.
type BookingConfirmedEvent struct {
	events.BaseEvent
	BookingID uuid.UUID
	ClientID  *uuid.UUID
	LeadID    *uuid.UUID
	Email     string
	StartTime time.Time
}

// EventName returns the event identifier.
func (e BookingConfirmedEvent) EventName() string {
	return EventBookingConfirmed
}
