// Package service implements quote management: totals, lifecycle, PDF
// rendering and delivery to the client.
package service

import (
	"context"
	"fmt"
	"time"

	crmtransport "vitrine_backend/internal/crm/transport"
	"vitrine_backend/internal/email"
	"vitrine_backend/internal/pdf"
	"vitrine_backend/internal/quotes/repository"
	"vitrine_backend/internal/quotes/transport"
	"vitrine_backend/platform/apperr"
	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository abstracts quote persistence.
type Repository interface {
	NextQuoteNumber(ctx context.Context) (string, error)
	CreateWithItems(ctx context.Context, quote *repository.Quote, items []repository.QuoteItem) error
	UpdateWithItems(ctx context.Context, quote *repository.Quote, items []repository.QuoteItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, []repository.QuoteItem, error)
	List(ctx context.Context, status string, limit, offset int) ([]repository.Quote, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, sentAt *time.Time) error
}

// ClientDirectory resolves CRM clients for addressing and stage updates.
type ClientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*crmtransport.ClientResponse, error)
	MarkQuoteSent(ctx context.Context, id uuid.UUID) error
}

// Mailer is the slice of the email sender the quotes flow needs.
type Mailer interface {
	SendQuoteProposalEmail(ctx context.Context, toEmail, clientName, quoteNumber string, totalCents int64, attachments ...email.Attachment) error
}

// Converter renders HTML to PDF.
type Converter interface {
	ConvertHTML(ctx context.Context, indexHTML []byte, opts pdf.ConvertOpts) ([]byte, error)
}

// Service provides quote operations.
type Service struct {
	repo      Repository
	clients   ClientDirectory
	mailer    Mailer
	converter Converter
	cfg       config.BusinessConfig
	log       *logger.Logger
}

// New creates a new quotes service. converter may be nil when no PDF engine
// is configured; rendering then reports unavailable.
func New(repo Repository, clients ClientDirectory, mailer Mailer, converter Converter, cfg config.BusinessConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, clients: clients, mailer: mailer, converter: converter, cfg: cfg, log: log}
}

// Calculate computes totals without persisting anything.
func (s *Service) Calculate(req transport.QuoteCalculationRequest) transport.QuoteCalculationResponse {
	return CalculateQuote(req)
}

// Create persists a new draft quote for a CRM client.
func (s *Service) Create(ctx context.Context, req transport.CreateQuoteRequest) (*transport.QuoteResponse, error) {
	if _, err := s.clients.GetByID(ctx, req.ClientID); err != nil {
		return nil, err
	}

	number, err := s.repo.NextQuoteNumber(ctx)
	if err != nil {
		return nil, err
	}

	calc := CalculateQuote(transport.QuoteCalculationRequest{
		PricingMode:   req.PricingMode,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Items:         req.Items,
	})

	now := time.Now()
	quote := &repository.Quote{
		ID:                  uuid.New(),
		ClientID:            req.ClientID,
		QuoteNumber:         number,
		Status:              repository.StatusDraft,
		PricingMode:         defaultString(req.PricingMode, "exclusive"),
		DiscountType:        defaultString(req.DiscountType, "percentage"),
		DiscountValue:       req.DiscountValue,
		SubtotalCents:       calc.SubtotalCents,
		DiscountAmountCents: calc.DiscountAmountCents,
		VatTotalCents:       calc.VatTotalCents,
		TotalCents:          calc.TotalCents,
		ValidUntil:          req.ValidUntil,
		Notes:               sanitize.TextPtr(req.Notes),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	items := buildItems(quote.ID, req.Items)

	if err := s.repo.CreateWithItems(ctx, quote, items); err != nil {
		return nil, err
	}
	return toQuoteResponse(quote, items), nil
}

// Update replaces the content of a draft quote and recomputes its totals.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateQuoteRequest) (*transport.QuoteResponse, error) {
	existing, _, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	calc := CalculateQuote(transport.QuoteCalculationRequest{
		PricingMode:   req.PricingMode,
		DiscountType:  req.DiscountType,
		DiscountValue: req.DiscountValue,
		Items:         req.Items,
	})

	quote := &repository.Quote{
		ID:                  existing.ID,
		ClientID:            existing.ClientID,
		QuoteNumber:         existing.QuoteNumber,
		Status:              existing.Status,
		PricingMode:         defaultString(req.PricingMode, "exclusive"),
		DiscountType:        defaultString(req.DiscountType, "percentage"),
		DiscountValue:       req.DiscountValue,
		SubtotalCents:       calc.SubtotalCents,
		DiscountAmountCents: calc.DiscountAmountCents,
		VatTotalCents:       calc.VatTotalCents,
		TotalCents:          calc.TotalCents,
		ValidUntil:          req.ValidUntil,
		Notes:               sanitize.TextPtr(req.Notes),
		SentAt:              existing.SentAt,
		CreatedAt:           existing.CreatedAt,
		UpdatedAt:           time.Now(),
	}
	items := buildItems(quote.ID, req.Items)

	if err := s.repo.UpdateWithItems(ctx, quote, items); err != nil {
		return nil, err
	}
	return toQuoteResponse(quote, items), nil
}

// GetByID returns a single quote with its lines.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	quote, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toQuoteResponse(quote, items), nil
}

// List returns quote headers newest-first.
func (s *Service) List(ctx context.Context, req transport.ListQuotesRequest) ([]transport.QuoteResponse, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	quotes, err := s.repo.List(ctx, req.Status, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.QuoteResponse, 0, len(quotes))
	for i := range quotes {
		responses = append(responses, *toQuoteResponse(&quotes[i], nil))
	}
	return responses, nil
}

// UpdateStatus moves a quote through its lifecycle: draft→sent, then
// sent→accepted or sent→declined. Any other transition is rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	var from string
	var sentAt *time.Time
	switch status {
	case repository.StatusSent:
		from = repository.StatusDraft
		now := time.Now()
		sentAt = &now
	case repository.StatusAccepted, repository.StatusDeclined:
		from = repository.StatusSent
	default:
		return apperr.Validation(fmt.Sprintf("invalid quote status %q", status))
	}
	return s.repo.UpdateStatus(ctx, id, from, status, sentAt)
}

// RenderPDF renders the quote document and returns the PDF bytes with the
// quote number for the download filename.
func (s *Service) RenderPDF(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	if s.converter == nil {
		return nil, "", apperr.Unavailable("pdf rendering is not configured")
	}

	quote, items, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	client, err := s.clients.GetByID(ctx, quote.ClientID)
	if err != nil {
		return nil, "", err
	}

	html, err := renderQuoteHTML(quote, items, client, s.cfg.GetBusinessName())
	if err != nil {
		return nil, "", err
	}

	document, err := s.converter.ConvertHTML(ctx, html, pdf.QuoteOpts())
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUnavailable, "pdf rendering failed", err)
	}
	return document, quote.QuoteNumber, nil
}

// Send renders the quote, emails it to the client and marks the quote sent.
// The CRM stage bump is best effort.
func (s *Service) Send(ctx context.Context, id uuid.UUID) (*transport.QuoteResponse, error) {
	quote, _, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != repository.StatusDraft {
		return nil, apperr.Conflict("only draft quotes can be sent")
	}

	client, err := s.clients.GetByID(ctx, quote.ClientID)
	if err != nil {
		return nil, err
	}

	document, number, err := s.RenderPDF(ctx, id)
	if err != nil {
		return nil, err
	}

	attachment := email.Attachment{
		Content:  document,
		FileName: fmt.Sprintf("%s.pdf", number),
		MIMEType: "application/pdf",
	}
	clientName := client.FirstName + " " + client.LastName
	if err := s.mailer.SendQuoteProposalEmail(ctx, client.Email, clientName, number, quote.TotalCents, attachment); err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "quote email delivery failed", err)
	}

	if err := s.UpdateStatus(ctx, id, repository.StatusSent); err != nil {
		return nil, err
	}
	if err := s.clients.MarkQuoteSent(ctx, quote.ClientID); err != nil {
		s.log.IntegrationFailure("quotes", "crm_stage", err, "quote_id", id, "client_id", quote.ClientID)
	}

	return s.GetByID(ctx, id)
}

func buildItems(quoteID uuid.UUID, reqs []transport.QuoteItemRequest) []repository.QuoteItem {
	items := make([]repository.QuoteItem, 0, len(reqs))
	for i, item := range reqs {
		items = append(items, repository.QuoteItem{
			ID:             uuid.New(),
			QuoteID:        quoteID,
			Description:    sanitize.Text(item.Description),
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TaxRateBps:     item.TaxRateBps,
			IsOptional:     item.IsOptional,
			IsSelected:     item.IsSelected,
			SortOrder:      i,
		})
	}
	return items
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func toQuoteResponse(q *repository.Quote, items []repository.QuoteItem) *transport.QuoteResponse {
	itemResponses := make([]transport.QuoteItemResponse, 0, len(items))
	for _, item := range items {
		itemResponses = append(itemResponses, transport.QuoteItemResponse{
			ID:             item.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TaxRateBps:     item.TaxRateBps,
			IsOptional:     item.IsOptional,
			IsSelected:     item.IsSelected,
			SortOrder:      item.SortOrder,
		})
	}
	return &transport.QuoteResponse{
		ID:                  q.ID,
		QuoteNumber:         q.QuoteNumber,
		ClientID:            q.ClientID,
		Status:              q.Status,
		PricingMode:         q.PricingMode,
		DiscountType:        q.DiscountType,
		DiscountValue:       q.DiscountValue,
		SubtotalCents:       q.SubtotalCents,
		DiscountAmountCents: q.DiscountAmountCents,
		VatTotalCents:       q.VatTotalCents,
		TotalCents:          q.TotalCents,
		ValidUntil:          q.ValidUntil,
		Notes:               q.Notes,
		SentAt:              q.SentAt,
		Items:               itemResponses,
		CreatedAt:           q.CreatedAt,
		UpdatedAt:           q.UpdatedAt,
	}
}
