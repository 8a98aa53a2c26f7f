// Package router assembles the Gin engine from the application's modules.
package router

import (
	nethttp "net/http"
	"time"

	apphttp "vitrine_backend/internal/http"
	"vitrine_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New builds the Gin engine, wires global middleware and the health endpoint,
// and lets every module register its routes.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	engine.GET("/api/health", func(c *gin.Context) {
		if err := app.Health.Ping(c.Request.Context()); err != nil {
			c.JSON(nethttp.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	publicLimiter := httpkit.NewPublicRateLimiter(app.Logger)

	v1 := engine.Group("/api/v1")
	ctx := &apphttp.RouterContext{
		Engine:            engine,
		V1:                v1,
		Public:            v1.Group("", publicLimiter.RateLimit()),
		Admin:             v1.Group("/admin", httpkit.SharedSecretAuth(app.Config)),
		Cron:              v1.Group("/cron", httpkit.SharedSecretAuth(app.Config)),
		Config:            app.Config,
		PublicRateLimiter: publicLimiter,
	}

	for _, m := range app.Modules {
		m.RegisterRoutes(ctx)
		app.Logger.Info("module routes registered", "module", m.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if app.Config.GetCORSAllowAll() {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cors.New(cfg)
}
