// Package bookings provides the appointment booking domain module.
package bookings

import (
	"vitrine_backend/internal/bookings/handler"
	"vitrine_backend/internal/bookings/repository"
	"vitrine_backend/internal/bookings/service"
	"vitrine_backend/internal/calendar"
	"vitrine_backend/internal/events"
	apphttp "vitrine_backend/internal/http"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the bookings domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new bookings module with all dependencies wired
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	cal calendar.Provider,
	mailer service.Mailer,
	clients service.ClientUpserter,
	leads service.LeadRecorder,
	bus events.Bus,
	cfg service.Config,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cal, mailer, clients, leads, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "bookings"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.Public.Group("/bookings"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/bookings"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
