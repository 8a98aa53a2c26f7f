package transport

import (
	"time"

	"github.com/google/uuid"
)

// SlotsRequest carries the date whose availability is requested.
type SlotsRequest struct {
	Date string `form:"date" validate:"required,datetime=2006-01-02"`
}

// SlotsResponse lists the bookable start times of a day, ascending.
type SlotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

// CreateBookingRequest is the public booking payload. The identity fields are
// the only hard precondition of the booking flow.
type CreateBookingRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     string  `json:"phone" validate:"required,max=32"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time      string  `json:"time" validate:"required,datetime=15:04"`
	Notes     *string `json:"notes" validate:"omitempty,max=5000"`
}

// BookingResultData carries the identifiers produced by the booking flow.
// Fields are null when their integration step failed.
type BookingResultData struct {
	LeadID   *uuid.UUID `json:"leadId"`
	MeetLink *string    `json:"meetLink"`
	EventID  *string    `json:"eventId"`
}

// BookingResult is the public booking response envelope.
type BookingResult struct {
	Success bool              `json:"success"`
	Data    BookingResultData `json:"data"`
}

// UpdateStatusRequest moves a booking to a new status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

// ListBookingsRequest carries paging query parameters.
type ListBookingsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// BookingResponse is the back-office representation of a booking.
type BookingResponse struct {
	ID              uuid.UUID  `json:"id"`
	LeadID          *uuid.UUID `json:"leadId,omitempty"`
	ClientID        *uuid.UUID `json:"clientId,omitempty"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	StartTime       time.Time  `json:"startTime"`
	EndTime         time.Time  `json:"endTime"`
	Status          string     `json:"status"`
	CalendarEventID *string    `json:"calendarEventId,omitempty"`
	MeetingLink     *string    `json:"meetingLink,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}
