// Package quotes provides the quote (devis) domain module.
package quotes

import (
	apphttp "vitrine_backend/internal/http"
	"vitrine_backend/internal/quotes/handler"
	"vitrine_backend/internal/quotes/repository"
	"vitrine_backend/internal/quotes/service"
	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	clients service.ClientDirectory,
	mailer service.Mailer,
	converter service.Converter,
	cfg config.BusinessConfig,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, clients, mailer, converter, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Admin.Group("/quotes"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
