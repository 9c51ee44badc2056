package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Version is the application version reported by the health endpoint.
const Version = "0.1.0"

// handleHealth reports liveness plus a deep check of the store.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 2*time.Second)
	defer cancel()

	status := "ok"
	checks := gin.H{"database": "ok", "generator": "ok"}
	code := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		status = "degraded"
		checks["database"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	if s.settings.GroqAPIKey == "" {
		status = "degraded"
		checks["generator"] = "api key not configured"
	}

	c.JSON(code, gin.H{
		"status":  status,
		"version": Version,
		"checks":  checks,
	})
}
