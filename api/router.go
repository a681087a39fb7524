package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/badgecount/api/handler"
	"github.com/use-agent/badgecount/api/middleware"
	"github.com/use-agent/badgecount/batch"
	"github.com/use-agent/badgecount/cache"
	"github.com/use-agent/badgecount/config"
	"github.com/use-agent/badgecount/counter"
	"github.com/use-agent/badgecount/metrics"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  RequestLogger → Recovery
//	Counting routes:  Auth (if enabled) → RateLimit
//
// Index, health and metrics are outside auth.
func NewRouter(cfg *config.Config, open handler.SessionFactory, ctr *counter.Counter, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Recovery())

	r.GET("/", handler.Index())
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/api/v1/health", handler.Health(startTime, cfg.Server.MaxSessions))

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	count := handler.Count(open, ctr, cfg.Counter.DomainToken, cc)
	protected.POST("/count-badges", count)

	v1 := protected.Group("/api/v1")
	v1.POST("/count-badges", count)
	v1.POST("/batch", handler.Batch(open, batch.NewRunner(ctr, nil), cfg.Server.MaxBatchRows))

	return r
}
