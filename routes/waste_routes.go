package routes

import (
	"ecowaste/internal/handlers"
	"ecowaste/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWasteRoutes registers /waste. Static segments are registered ahead of
// the /:id routes they share a prefix with.
func SetupWasteRoutes(r *gin.RouterGroup, wasteHandler *handlers.WasteHandler, auth *middleware.AuthMiddleware) {
	waste := r.Group("/waste")

	// Public and optional-auth routes
	waste.GET("/public/testimonials", wasteHandler.ListTestimonials)
	waste.POST("", auth.Optional(), wasteHandler.CreateRequest)

	// Admin routes
	admin := waste.Group("")
	admin.Use(auth.AdminRequired())
	{
		admin.GET("/admin/all", wasteHandler.ListAll)
		admin.PUT("/:id/status", wasteHandler.UpdateStatus)
		admin.PUT("/:id/feature", wasteHandler.ToggleFeatured)
	}

	// Authenticated user routes
	protected := waste.Group("")
	protected.Use(auth.Required())
	{
		protected.GET("/my-requests", wasteHandler.ListMine)
		protected.POST("/:id/feedback", wasteHandler.AddFeedback)
		protected.GET("/:id", wasteHandler.GetRequest)
		protected.DELETE("/:id", wasteHandler.DeleteRequest)
	}
}
