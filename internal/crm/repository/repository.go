package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vitrine_backend/internal/crm/domain"
	"vitrine_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client represents the CRM client database model
type Client struct {
	ID        uuid.UUID    `db:"id"`
	FirstName string       `db:"first_name"`
	LastName  string       `db:"last_name"`
	Email     string       `db:"email"`
	Phone     *string      `db:"phone"`
	Company   *string      `db:"company"`
	Stage     domain.Stage `db:"stage"`
	Notes     *string      `db:"notes"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

const clientNotFoundMsg = "client not found"

const clientColumns = `id, first_name, last_name, email, phone, company, stage, notes, created_at, updated_at`

// Repository provides database operations for CRM clients
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new CRM repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new client
func (r *Repository) Create(ctx context.Context, client *Client) error {
	query := `
		INSERT INTO crm_clients (id, first_name, last_name, email, phone, company, stage, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		client.ID, client.FirstName, client.LastName, client.Email, client.Phone,
		client.Company, client.Stage, client.Notes, client.CreatedAt, client.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// GetByID retrieves a client by its ID
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	query := `SELECT ` + clientColumns + ` FROM crm_clients WHERE id = $1`

	var client Client
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&client.ID, &client.FirstName, &client.LastName, &client.Email, &client.Phone,
		&client.Company, &client.Stage, &client.Notes, &client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(clientNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

// List retrieves clients ordered by creation date, newest first
func (r *Repository) List(ctx context.Context, limit, offset int) ([]Client, error) {
	query := `SELECT ` + clientColumns + ` FROM crm_clients ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var client Client
		if err := rows.Scan(
			&client.ID, &client.FirstName, &client.LastName, &client.Email, &client.Phone,
			&client.Company, &client.Stage, &client.Notes, &client.CreatedAt, &client.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// UpdateStage persists a stage change
func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage domain.Stage) error {
	query := `UPDATE crm_clients SET stage = $1, updated_at = NOW() WHERE id = $2`

	tag, err := r.pool.Exec(ctx, query, stage, id)
	if err != nil {
		return fmt.Errorf("failed to update client stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(clientNotFoundMsg)
	}
	return nil
}

// UpsertByEmail creates a client or refreshes contact details on an existing
// one, keyed on the unique email. The pipeline stage of an existing client is
// left untouched.
func (r *Repository) UpsertByEmail(ctx context.Context, client *Client) (uuid.UUID, error) {
	query := `
		INSERT INTO crm_clients (id, first_name, last_name, email, phone, company, stage, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone = COALESCE(EXCLUDED.phone, crm_clients.phone),
			updated_at = NOW()
		RETURNING id`

	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query,
		client.ID, client.FirstName, client.LastName, client.Email, client.Phone,
		client.Company, client.Stage, client.Notes, client.CreatedAt, client.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("failed to upsert client: %w", err)
	}
	return id, nil
}
