package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/electrokart/electrokart_api/internal/service"
	"github.com/electrokart/electrokart_api/internal/utils"
)

var startTime = time.Now()

const healthCheckTimeout = 2 * time.Second

// HealthCheck pings one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks map[string]HealthCheck
	kb     *service.KnowledgeBase
}

// NewHealthHandler creates a new HealthHandler. checks are keyed by dependency name.
func NewHealthHandler(kb *service.KnowledgeBase, checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks, kb: kb}
}

// GetHealth responds with service and dependency status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	status, code := "healthy", 200
	deps := make(gin.H, len(h.checks))
	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			deps[name] = "disconnected"
			status, code = "degraded", 503
			continue
		}
		deps[name] = "connected"
	}

	kb := gin.H{"products": h.kb.Len()}
	if at := h.kb.RefreshedAt(); !at.IsZero() {
		kb["refreshedAt"] = at.UTC().Format(time.RFC3339)
	}

	utils.Success(c, code, "Service is "+status, gin.H{
		"status":        status,
		"version":       "1.0.0",
		"uptime":        int(time.Since(startTime).Seconds()),
		"dependencies":  deps,
		"knowledgeBase": kb,
	})
}
