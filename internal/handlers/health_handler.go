package handlers

import (
	"context"
	"net/http"
	"time"

	"ecowaste/internal/utils"
	"ecowaste/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks  map[string]HealthCheck
	timeout time.Duration
	logger  *logger.Logger
}

func NewHealthHandler(checks map[string]HealthCheck, logger *logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Health reports 200 when every dependency answers and 503 otherwise.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	components := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.logger.WithError(err).WithField("component", name).Warn("Health check failed")
			components[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		components[name] = "up"
	}

	message := "Server is running"
	if status != http.StatusOK {
		message = "Server is degraded"
	}

	c.JSON(status, gin.H{
		"success":    status == http.StatusOK,
		"message":    message,
		"timestamp":  utils.FormatTimeISO(time.Now().UTC()),
		"version":    utils.AppVersion,
		"components": components,
	})
}
