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

// Quote statuses.
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
)

// Quote is the database model for a quote header.
type Quote struct {
	ID                  uuid.UUID  `db:"id"`
	ClientID            uuid.UUID  `db:"client_id"`
	QuoteNumber         string     `db:"quote_number"`
	Status              string     `db:"status"`
	PricingMode         string     `db:"pricing_mode"`
	DiscountType        string     `db:"discount_type"`
	DiscountValue       int64      `db:"discount_value"`
	SubtotalCents       int64      `db:"subtotal_cents"`
	DiscountAmountCents int64      `db:"discount_amount_cents"`
	VatTotalCents       int64      `db:"vat_total_cents"`
	TotalCents          int64      `db:"total_cents"`
	ValidUntil          *time.Time `db:"valid_until"`
	Notes               *string    `db:"notes"`
	SentAt              *time.Time `db:"sent_at"`
	CreatedAt           time.Time  `db:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at"`
}

// QuoteItem is the database model for a quote line item.
type QuoteItem struct {
	ID             uuid.UUID `db:"id"`
	QuoteID        uuid.UUID `db:"quote_id"`
	Description    string    `db:"description"`
	Quantity       float64   `db:"quantity"`
	UnitPriceCents int64     `db:"unit_price_cents"`
	TaxRateBps     int       `db:"tax_rate_bps"`
	IsOptional     bool      `db:"is_optional"`
	IsSelected     bool      `db:"is_selected"`
	SortOrder      int       `db:"sort_order"`
}

const quoteNotFoundMsg = "quote not found"

const quoteColumns = `id, client_id, quote_number, status, pricing_mode,
	discount_type, discount_value, subtotal_cents, discount_amount_cents,
	vat_total_cents, total_cents, valid_until, notes, sent_at, created_at, updated_at`

const itemColumns = `id, quote_id, description, quantity, unit_price_cents,
	tax_rate_bps, is_optional, is_selected, sort_order`

// Repository provides database operations for quotes
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NextQuoteNumber atomically generates the next quote number for the year.
func (r *Repository) NextQuoteNumber(ctx context.Context) (string, error) {
	year := time.Now().Year()
	var nextNum int
	query := `
		INSERT INTO quote_counters (year, last_number)
		VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET last_number = quote_counters.last_number + 1
		RETURNING last_number`

	if err := r.pool.QueryRow(ctx, query, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}
	return fmt.Sprintf("DEV-%d-%04d", year, nextNum), nil
}

// CreateWithItems inserts a quote and its line items in a single transaction.
func (r *Repository) CreateWithItems(ctx context.Context, quote *Quote, items []QuoteItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO quotes (
			id, client_id, quote_number, status, pricing_mode,
			discount_type, discount_value, subtotal_cents, discount_amount_cents,
			vat_total_cents, total_cents, valid_until, notes, sent_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = tx.Exec(ctx, query,
		quote.ID, quote.ClientID, quote.QuoteNumber, quote.Status, quote.PricingMode,
		quote.DiscountType, quote.DiscountValue, quote.SubtotalCents, quote.DiscountAmountCents,
		quote.VatTotalCents, quote.TotalCents, quote.ValidUntil, quote.Notes, quote.SentAt,
		quote.CreatedAt, quote.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quote: %w", err)
	}

	if err := insertItems(ctx, tx, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpdateWithItems replaces a draft quote's header fields and line items. The
// status guard keeps a quote that already went out from being rewritten.
func (r *Repository) UpdateWithItems(ctx context.Context, quote *Quote, items []QuoteItem) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE quotes SET
			pricing_mode = $1, discount_type = $2, discount_value = $3,
			subtotal_cents = $4, discount_amount_cents = $5, vat_total_cents = $6,
			total_cents = $7, valid_until = $8, notes = $9, updated_at = NOW()
		WHERE id = $10 AND status = $11`

	tag, err := tx.Exec(ctx, query,
		quote.PricingMode, quote.DiscountType, quote.DiscountValue,
		quote.SubtotalCents, quote.DiscountAmountCents, quote.VatTotalCents,
		quote.TotalCents, quote.ValidUntil, quote.Notes, quote.ID, StatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.Conflict("only draft quotes can be edited")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quote_items WHERE quote_id = $1`, quote.ID); err != nil {
		return fmt.Errorf("failed to clear quote items: %w", err)
	}
	if err := insertItems(ctx, tx, items); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// GetByID retrieves a quote with its line items.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, []QuoteItem, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1`
	quote, err := scanQuote(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, nil, fmt.Errorf("failed to get quote: %w", err)
	}

	items, err := r.listItems(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return quote, items, nil
}

// List returns quote headers newest-first, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		quote, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, *quote)
	}
	return quotes, rows.Err()
}

// UpdateStatus moves a quote to a new status when it currently sits at the
// expected one. Returns Conflict when another transition won.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, sentAt *time.Time) error {
	query := `UPDATE quotes SET status = $1, sent_at = COALESCE($2, sent_at), updated_at = NOW()
		WHERE id = $3 AND status = $4`

	tag, err := r.pool.Exec(ctx, query, to, sentAt, id, from)
	if err != nil {
		return fmt.Errorf("failed to update quote status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return apperr.Conflict(fmt.Sprintf("quote is no longer %s", from))
	}
	return nil
}

func (r *Repository) listItems(ctx context.Context, quoteID uuid.UUID) ([]QuoteItem, error) {
	query := `SELECT ` + itemColumns + ` FROM quote_items WHERE quote_id = $1 ORDER BY sort_order ASC`

	rows, err := r.pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}
	defer rows.Close()

	var items []QuoteItem
	for rows.Next() {
		var item QuoteItem
		err := rows.Scan(
			&item.ID, &item.QuoteID, &item.Description, &item.Quantity,
			&item.UnitPriceCents, &item.TaxRateBps, &item.IsOptional,
			&item.IsSelected, &item.SortOrder,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func insertItems(ctx context.Context, tx pgx.Tx, items []QuoteItem) error {
	query := `
		INSERT INTO quote_items (
			id, quote_id, description, quantity, unit_price_cents,
			tax_rate_bps, is_optional, is_selected, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, item := range items {
		_, err := tx.Exec(ctx, query,
			item.ID, item.QuoteID, item.Description, item.Quantity,
			item.UnitPriceCents, item.TaxRateBps, item.IsOptional,
			item.IsSelected, item.SortOrder,
		)
		if err != nil {
			return fmt.Errorf("failed to insert quote item: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	err := row.Scan(
		&q.ID, &q.ClientID, &q.QuoteNumber, &q.Status, &q.PricingMode,
		&q.DiscountType, &q.DiscountValue, &q.SubtotalCents, &q.DiscountAmountCents,
		&q.VatTotalCents, &q.TotalCents, &q.ValidUntil, &q.Notes, &q.SentAt,
		&q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &q, nil
}
