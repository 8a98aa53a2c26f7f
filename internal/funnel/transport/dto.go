package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateLeadRequest is the payload posted by the site funnel on completion.
type CreateLeadRequest struct {
	FirstName  string   `json:"firstName" validate:"required,max=100"`
	LastName   string   `json:"lastName" validate:"required,max=100"`
	Email      string   `json:"email" validate:"required,email,max=255"`
	Phone      *string  `json:"phone" validate:"omitempty,max=32"`
	PainPoints []string `json:"painPoints" validate:"omitempty,max=10,dive,max=200"`
	Source     *string  `json:"source" validate:"omitempty,max=100"`
}

// LeadResponse is the API representation of a funnel lead.
type LeadResponse struct {
	ID               uuid.UUID  `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone,omitempty"`
	PainPoints       []string   `json:"painPoints,omitempty"`
	Source           *string    `json:"source,omitempty"`
	SequenceKind     string     `json:"sequenceKind"`
	SequencePosition int        `json:"sequencePosition"`
	HasBooked        bool       `json:"hasBooked"`
	AppointmentAt    *time.Time `json:"appointmentAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// NurtureRunResponse reports how many nurture emails a pass sent.
type NurtureRunResponse struct {
	Sent int `json:"sent"`
}
