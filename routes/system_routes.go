package routes

import (
	"ecowaste/internal/handlers"
	"ecowaste/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// SetupSystemRoutes registers the health probe under the API prefix, the
// Prometheus endpoint at the root, and, when uploadsDir is set, the locally
// stored images under /uploads.
func SetupSystemRoutes(router *gin.Engine, api *gin.RouterGroup, health *handlers.HealthHandler, m *metrics.Metrics, uploadsDir string) {
	api.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	if uploadsDir != "" {
		router.Static("/uploads", uploadsDir)
	}
}
