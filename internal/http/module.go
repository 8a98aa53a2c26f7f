// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"vitrine_backend/platform/config"
	"vitrine_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	// The RouterContext provides access to shared middleware and configuration.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
// This avoids passing many parameters to each module's RegisterRoutes method.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the /api/v1 route group.
	V1 *gin.RouterGroup
	// Public is the unauthenticated route group under /api/v1, rate-limited per IP.
	Public *gin.RouterGroup
	// Admin is the secret-guarded back-office route group under /api/v1/admin.
	Admin *gin.RouterGroup
	// Cron is the secret-guarded group for scheduler trigger endpoints.
	Cron *gin.RouterGroup
	// Config holds the cron shared secret (scoped access).
	Config config.CronConfig
	// PublicRateLimiter is the stricter rate limiter for public form endpoints.
	PublicRateLimiter *httpkit.PublicRateLimiter
}
