package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	crmtransport "vitrine_backend/internal/crm/transport"
	"vitrine_backend/internal/email"
	"vitrine_backend/internal/pdf"
	"vitrine_backend/internal/quotes/repository"
	"vitrine_backend/internal/quotes/transport"
	"vitrine_backend/platform/apperr"
	"vitrine_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeQuoteRepo struct {
	quotes  map[uuid.UUID]*repository.Quote
	items   map[uuid.UUID][]repository.QuoteItem
	counter int
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{
		quotes: make(map[uuid.UUID]*repository.Quote),
		items:  make(map[uuid.UUID][]repository.QuoteItem),
	}
}

func (f *fakeQuoteRepo) NextQuoteNumber(ctx context.Context) (string, error) {
	f.counter++
	return uuid.NewString()[:8], nil
}

func (f *fakeQuoteRepo) CreateWithItems(ctx context.Context, quote *repository.Quote, items []repository.QuoteItem) error {
	copied := *quote
	f.quotes[quote.ID] = &copied
	f.items[quote.ID] = items
	return nil
}

func (f *fakeQuoteRepo) UpdateWithItems(ctx context.Context, quote *repository.Quote, items []repository.QuoteItem) error {
	existing, ok := f.quotes[quote.ID]
	if !ok {
		return apperr.NotFound("quote not found")
	}
	if existing.Status != repository.StatusDraft {
		return apperr.Conflict("only draft quotes can be edited")
	}
	copied := *quote
	f.quotes[quote.ID] = &copied
	f.items[quote.ID] = items
	return nil
}

func (f *fakeQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, []repository.QuoteItem, error) {
	quote, ok := f.quotes[id]
	if !ok {
		return nil, nil, apperr.NotFound("quote not found")
	}
	copied := *quote
	return &copied, f.items[id], nil
}

func (f *fakeQuoteRepo) List(ctx context.Context, status string, limit, offset int) ([]repository.Quote, error) {
	var out []repository.Quote
	for _, q := range f.quotes {
		if status == "" || q.Status == status {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (f *fakeQuoteRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string, sentAt *time.Time) error {
	quote, ok := f.quotes[id]
	if !ok {
		return apperr.NotFound("quote not found")
	}
	if quote.Status != from {
		return apperr.Conflict("quote is no longer " + from)
	}
	quote.Status = to
	if sentAt != nil {
		quote.SentAt = sentAt
	}
	return nil
}

type fakeDirectory struct {
	client       *crmtransport.ClientResponse
	quoteSentFor []uuid.UUID
	markSentErr  error
	getClientErr error
}

func (f *fakeDirectory) GetByID(ctx context.Context, id uuid.UUID) (*crmtransport.ClientResponse, error) {
	if f.getClientErr != nil {
		return nil, f.getClientErr
	}
	return f.client, nil
}

func (f *fakeDirectory) MarkQuoteSent(ctx context.Context, id uuid.UUID) error {
	if f.markSentErr != nil {
		return f.markSentErr
	}
	f.quoteSentFor = append(f.quoteSentFor, id)
	return nil
}

type fakeQuoteMailer struct {
	sent        int
	attachments []email.Attachment
	totalCents  int64
	sendErr     error
}

func (f *fakeQuoteMailer) SendQuoteProposalEmail(ctx context.Context, toEmail, clientName, quoteNumber string, totalCents int64, attachments ...email.Attachment) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent++
	f.attachments = attachments
	f.totalCents = totalCents
	return nil
}

type fakeConverter struct {
	lastHTML []byte
	err      error
}

func (f *fakeConverter) ConvertHTML(ctx context.Context, indexHTML []byte, opts pdf.ConvertOpts) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastHTML = indexHTML
	return []byte("%PDF-1.4 fake"), nil
}

type fakeBusinessConfig struct{}

func (fakeBusinessConfig) GetBusinessName() string { return "Atelier Web" }
func (fakeBusinessConfig) GetOwnerEmail() string   { return "owner@example.com" }
func (fakeBusinessConfig) GetAppBaseURL() string   { return "https://example.com" }

type quoteFixture struct {
	svc       *Service
	repo      *fakeQuoteRepo
	dir       *fakeDirectory
	mailer    *fakeQuoteMailer
	converter *fakeConverter
}

func newQuoteFixture() *quoteFixture {
	f := &quoteFixture{
		repo: newFakeQuoteRepo(),
		dir: &fakeDirectory{client: &crmtransport.ClientResponse{
			ID:        uuid.New(),
			FirstName: "Claire",
			LastName:  "Moreau",
			Email:     "claire@example.com",
		}},
		mailer:    &fakeQuoteMailer{},
		converter: &fakeConverter{},
	}
	f.svc = New(f.repo, f.dir, f.mailer, f.converter, fakeBusinessConfig{}, logger.New("test"))
	return f
}

func createQuoteRequest(clientID uuid.UUID) transport.CreateQuoteRequest {
	return transport.CreateQuoteRequest{
		ClientID: clientID,
		Items: []transport.QuoteItemRequest{
			{Description: "Site vitrine", Quantity: 1, UnitPriceCents: 100000, TaxRateBps: 2000},
		},
	}
}

func TestCreate_StartsAsDraftWithComputedTotals(t *testing.T) {
	f := newQuoteFixture()

	quote, err := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quote.Status != repository.StatusDraft {
		t.Fatalf("expected draft, got %s", quote.Status)
	}
	if quote.TotalCents != 120000 {
		t.Fatalf("expected total 120000, got %d", quote.TotalCents)
	}
	if quote.QuoteNumber == "" {
		t.Fatalf("expected an assigned quote number")
	}
}

func TestSend_EmailsPDFAndMarksSent(t *testing.T) {
	f := newQuoteFixture()
	created, err := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent, err := f.svc.Send(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sent.Status != repository.StatusSent {
		t.Fatalf("expected sent, got %s", sent.Status)
	}
	if sent.SentAt == nil {
		t.Fatalf("expected sentAt to be set")
	}
	if f.mailer.sent != 1 {
		t.Fatalf("expected one proposal email, got %d", f.mailer.sent)
	}
	if len(f.mailer.attachments) != 1 || f.mailer.attachments[0].MIMEType != "application/pdf" {
		t.Fatalf("expected a PDF attachment, got %+v", f.mailer.attachments)
	}
	if f.mailer.totalCents != 120000 {
		t.Fatalf("expected total forwarded to the email, got %d", f.mailer.totalCents)
	}
	if len(f.dir.quoteSentFor) != 1 {
		t.Fatalf("expected the CRM stage bump")
	}
	if !bytes.Contains(f.converter.lastHTML, []byte("Site vitrine")) {
		t.Fatalf("rendered document must contain the line items")
	}
}

func TestSend_RejectsNonDraft(t *testing.T) {
	f := newQuoteFixture()
	created, _ := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))
	if _, err := f.svc.Send(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.svc.Send(context.Background(), created.ID); apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on double send, got %v", err)
	}
}

func TestSend_CRMStageFailureIsSwallowed(t *testing.T) {
	f := newQuoteFixture()
	f.dir.markSentErr = errors.New("crm down")
	created, _ := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))

	sent, err := f.svc.Send(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("stage bump failure must not fail the send: %v", err)
	}
	if sent.Status != repository.StatusSent {
		t.Fatalf("expected sent, got %s", sent.Status)
	}
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newQuoteFixture()
	created, _ := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))

	if err := f.svc.UpdateStatus(context.Background(), created.ID, repository.StatusAccepted); apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("a draft cannot be accepted directly, got %v", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), created.ID, repository.StatusSent); err != nil {
		t.Fatalf("draft to sent must work: %v", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), created.ID, repository.StatusAccepted); err != nil {
		t.Fatalf("sent to accepted must work: %v", err)
	}
	if err := f.svc.UpdateStatus(context.Background(), created.ID, "draft"); apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("moving back to draft must be rejected, got %v", err)
	}
}

func TestUpdate_RejectedOnceSent(t *testing.T) {
	f := newQuoteFixture()
	created, _ := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))
	if _, err := f.svc.Send(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Update(context.Background(), created.ID, transport.UpdateQuoteRequest{
		Items: []transport.QuoteItemRequest{
			{Description: "Autre", Quantity: 1, UnitPriceCents: 5000, TaxRateBps: 2000},
		},
	})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict editing a sent quote, got %v", err)
	}
}

func TestRenderPDF_UnavailableWithoutConverter(t *testing.T) {
	f := newQuoteFixture()
	f.svc = New(f.repo, f.dir, f.mailer, nil, fakeBusinessConfig{}, logger.New("test"))
	created, _ := f.svc.Create(context.Background(), createQuoteRequest(f.dir.client.ID))

	if _, _, err := f.svc.RenderPDF(context.Background(), created.ID); apperr.GetKind(err) != apperr.KindUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
