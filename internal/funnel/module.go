// Package funnel provides the lead capture and nurture domain module.
package funnel

import (
	"vitrine_backend/internal/funnel/handler"
	"vitrine_backend/internal/funnel/repository"
	"vitrine_backend/internal/funnel/service"
	apphttp "vitrine_backend/internal/http"
	"vitrine_backend/platform/config"
	"vitrine_backend/platform/logger"
	"vitrine_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the funnel domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new funnel module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, mailer service.Mailer, cfg config.BusinessConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, mailer, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "funnel"
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.Public.Group("/funnel/leads"))
	m.handler.RegisterAdminRoutes(ctx.Admin.Group("/funnel/leads"))
	m.handler.RegisterCronRoutes(ctx.Cron)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
