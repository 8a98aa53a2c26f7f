// Package crm provides the CRM clients domain module.
package crm

import (
	"context"

	bookingsvc "vitrine_backend/internal/bookings/service"
	"vitrine_backend/internal/crm/handler"
	"vitrine_backend/internal/crm/repository"
	"vitrine_backend/internal/crm/service"
	"vitrine_backend/internal/events"
	apphttp "vitrine_backend/internal/http"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the CRM domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new CRM module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// SubscribeEvents registers the module's event handlers. A confirmed booking
// moves the client from prospect to contacte on the pipeline board.
func (m *Module) SubscribeEvents(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(bookingsvc.EventBookingConfirmed, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		confirmed, ok := e.(bookingsvc.BookingConfirmedEvent)
		if !ok || confirmed.ClientID == nil {
			return nil
		}
		if err := m.Service.MarkContacted(ctx, *confirmed.ClientID); err != nil {
			log.Error("failed to mark client contacted", "error", err, "client_id", *confirmed.ClientID)
			return err
		}
		return nil
	}))
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "crm"
}

// RegisterRoutes registers the module's routes under /api/v1/admin/crm/clients
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	clients := ctx.Admin.Group("/crm/clients")
	m.handler.RegisterRoutes(clients)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
