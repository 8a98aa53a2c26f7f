package transport

import (
	"time"

	"github.com/google/uuid"
)

// CreateClientRequest is the payload for creating a CRM client.
type CreateClientRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Phone     *string `json:"phone" validate:"omitempty,max=32"`
	Company   *string `json:"company" validate:"omitempty,max=200"`
	Notes     *string `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateStageRequest is the payload for moving a client on the pipeline board.
type UpdateStageRequest struct {
	Stage string `json:"stage" validate:"required,max=50"`
}

// ListClientsRequest carries paging query parameters.
type ListClientsRequest struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// ClientResponse is the API representation of a CRM client.
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Company   *string   `json:"company,omitempty"`
	Stage     string    `json:"stage"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StagesResponse lists the pipeline stages in board column order.
type StagesResponse struct {
	Stages []string `json:"stages"`
}

// StageChangeResponse reports the outcome of a stage move. Applied is false
// when persistence failed and the board should display the previous stage.
type StageChangeResponse struct {
	Applied  bool   `json:"applied"`
	Stage    string `json:"stage"`
	Previous string `json:"previous"`
}
