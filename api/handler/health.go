package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/badgecount/metrics"
	"github.com/use-agent/badgecount/models"
)

// Version is reported by the health and index endpoints.
const Version = "0.1.0"

// Health returns a handler for GET /api/v1/health.
//
// Status degrades when more browser sessions are open than maxSessions.
// maxSessions <= 0 disables the check.
func Health(startTime time.Time, maxSessions int) gin.HandlerFunc {
	return func(c *gin.Context) {
		active := metrics.ActiveSessions()

		status := "healthy"
		if maxSessions > 0 && active > maxSessions {
			status = "degraded"
		}

		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         status,
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			ActiveSessions: active,
			Version:        Version,
		})
	}
}

// Index returns a handler for GET / describing the service.
func Index() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "badgecount",
			"version": Version,
			"endpoints": []string{
				"POST /count-badges",
				"POST /api/v1/count-badges",
				"POST /api/v1/batch",
				"GET /api/v1/health",
				"GET /metrics",
			},
		})
	}
}
