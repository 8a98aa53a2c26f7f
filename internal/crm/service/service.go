// Package service implements CRM client management and the pipeline stage
// store backing the admin board.
package service

import (
	"context"
	"sync"
	"time"

	"vitrine_backend/internal/crm/domain"
	"vitrine_backend/internal/crm/repository"
	"vitrine_backend/internal/crm/transport"
	"vitrine_backend/platform/apperr"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository abstracts client persistence for the service.
type Repository interface {
	Create(ctx context.Context, client *repository.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Client, error)
	List(ctx context.Context, limit, offset int) ([]repository.Client, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) error
	UpsertByEmail(ctx context.Context, client *repository.Client) (uuid.UUID, error)
}

// StageChange is the outcome of a stage move. The change is applied to the
// in-memory board view before it is persisted; when persistence fails the view
// is rolled back and Applied is false, with Stage holding what the board
// should display.
type StageChange struct {
	Applied  bool
	Stage    domain.Stage
	Previous domain.Stage
}

// Service provides CRM operations
type Service struct {
	repo Repository
	log  *logger.Logger

	mu     sync.Mutex
	stages map[uuid.UUID]domain.Stage // board view, keyed by client id
}

// New creates a new CRM service
func New(repo Repository, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		log:    log,
		stages: make(map[uuid.UUID]domain.Stage),
	}
}

// Create adds a new client to the pipeline at the prospect stage.
func (s *Service) Create(ctx context.Context, req transport.CreateClientRequest) (*transport.ClientResponse, error) {
	now := time.Now()
	client := &repository.Client{
		ID:        uuid.New(),
		FirstName: sanitize.Text(req.FirstName),
		LastName:  sanitize.Text(req.LastName),
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   sanitize.TextPtr(req.Company),
		Stage:     domain.StageProspect,
		Notes:     sanitize.TextPtr(req.Notes),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, client); err != nil {
		return nil, err
	}

	s.observeStage(client.ID, client.Stage)
	return toClientResponse(client), nil
}

// GetByID returns a single client.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.ClientResponse, error) {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.observeStage(client.ID, client.Stage)
	return toClientResponse(client), nil
}

// List returns clients newest-first.
func (s *Service) List(ctx context.Context, req transport.ListClientsRequest) ([]transport.ClientResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	clients, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ClientResponse, 0, len(clients))
	for i := range clients {
		s.observeStage(clients[i].ID, clients[i].Stage)
		out = append(out, *toClientResponse(&clients[i]))
	}
	return out, nil
}

// Stages returns the pipeline stages in board column order.
func (s *Service) Stages() transport.StagesResponse {
	ordered := domain.Ordered()
	out := make([]string, 0, len(ordered))
	for _, stage := range ordered {
		out = append(out, stage.String())
	}
	return transport.StagesResponse{Stages: out}
}

// ChangeStage moves a client to a new pipeline stage. The board view is
// updated optimistically; persistence failure rolls the view back to the
// previously observed stage and reports Applied=false instead of an error.
// Transitions between known stages are unrestricted.
func (s *Service) ChangeStage(ctx context.Context, id uuid.UUID, raw string) (StageChange, error) {
	stage := domain.Stage(raw)
	if !stage.IsKnown() {
		return StageChange{}, apperr.Validation("unknown pipeline stage")
	}

	previous, err := s.previousStage(ctx, id)
	if err != nil {
		return StageChange{}, err
	}

	s.setStage(id, stage)

	if err := s.repo.UpdateStage(ctx, id, stage); err != nil {
		if apperr.GetKind(err) == apperr.KindNotFound {
			s.forgetStage(id)
			return StageChange{}, err
		}
		s.setStage(id, previous)
		s.log.Error("stage update failed, rolled back", "error", err, "client_id", id, "stage", stage)
		return StageChange{Applied: false, Stage: previous, Previous: previous}, nil
	}

	return StageChange{Applied: true, Stage: stage, Previous: previous}, nil
}

// MarkContacted bumps a client still sitting at the prospect stage to
// contacte. Clients the owner already moved further are left alone.
func (s *Service) MarkContacted(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client.Stage != domain.StageProspect {
		return nil
	}
	_, err = s.ChangeStage(ctx, id, domain.StageContacte.String())
	return err
}

// MarkQuoteSent moves a client to devis_envoye when a quote goes out, unless
// the owner already moved it further down the pipeline.
func (s *Service) MarkQuoteSent(ctx context.Context, id uuid.UUID) error {
	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if client.Stage != domain.StageProspect && client.Stage != domain.StageContacte {
		return nil
	}
	_, err = s.ChangeStage(ctx, id, domain.StageDevisEnvoye.String())
	return err
}

// UpsertByEmail creates or refreshes a client from booking contact details and
// returns its id. Used by the booking flow.
func (s *Service) UpsertByEmail(ctx context.Context, firstName, lastName, email string, phone *string) (uuid.UUID, error) {
	now := time.Now()
	client := &repository.Client{
		ID:        uuid.New(),
		FirstName: sanitize.Text(firstName),
		LastName:  sanitize.Text(lastName),
		Email:     email,
		Phone:     phone,
		Stage:     domain.StageProspect,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.repo.UpsertByEmail(ctx, client)
}

// previousStage returns the stage the board currently shows for the client,
// loading it from the repository on first sight.
func (s *Service) previousStage(ctx context.Context, id uuid.UUID) (domain.Stage, error) {
	s.mu.Lock()
	stage, ok := s.stages[id]
	s.mu.Unlock()
	if ok {
		return stage, nil
	}

	client, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	s.observeStage(id, client.Stage)
	return client.Stage, nil
}

func (s *Service) observeStage(id uuid.UUID, stage domain.Stage) {
	s.mu.Lock()
	s.stages[id] = stage
	s.mu.Unlock()
}

func (s *Service) setStage(id uuid.UUID, stage domain.Stage) {
	s.mu.Lock()
	s.stages[id] = stage
	s.mu.Unlock()
}

func (s *Service) forgetStage(id uuid.UUID) {
	s.mu.Lock()
	delete(s.stages, id)
	s.mu.Unlock()
}

func toClientResponse(c *repository.Client) *transport.ClientResponse {
	return &transport.ClientResponse{
		ID:        c.ID,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Company:   c.Company,
		Stage:     c.Stage.String(),
		Notes:     c.Notes,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
