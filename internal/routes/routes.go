package routes

import (
	"net/http"

	"tourmate-backend/internal/handlers"
	"tourmate-backend/internal/middleware"
	"tourmate-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options are the router settings that do not belong to a handler.
type Options struct {
	CORSOrigins []string
	RateLimiter *middleware.IPRateLimiter // nil disables rate limiting
	MediaRoot   string                    // served at MediaURL when set
	MediaURL    string
}

// SetupRoutes wires middleware and every endpoint onto r.
func SetupRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	utils.SetupValidator()

	r.Use(middleware.RequestLogger(h.Logger))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORSMiddleware(opts.CORSOrigins))

	r.GET("/ping", func(c *gin.Context) {
		utils.APIResponse(c, http.StatusOK, true, "Server OK!", nil)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if opts.MediaRoot != "" && opts.MediaURL != "" {
		r.Static(opts.MediaURL, opts.MediaRoot)
	}

	api := r.Group("/api")
	if opts.RateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}
	{
		// Public
		auth := api.Group("/auth")
		{
			auth.POST("/register/", h.Register)
			auth.POST("/login/", h.Login)
			auth.POST("/token/refresh/", h.RefreshToken)
		}

		// Bearer token required from here on
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware(h.Auth, h.Logger))
		{
			protected.POST("/auth/logout/", h.Logout)

			protected.GET("/profile/", h.GetProfile)
			protected.PUT("/profile/", h.UpdateProfile)
			protected.PATCH("/profile/", h.PatchProfile)

			protected.GET("/photos/", h.ListPhotos)
			protected.POST("/photos/", h.CreatePhoto)
			protected.GET("/photos/:id/", h.GetPhoto)
			protected.DELETE("/photos/:id/", h.DeletePhoto)

			protected.POST("/sos/", h.CreateAlert)
			protected.GET("/sos/history/", h.AlertHistory)

			// Staff only, read-only
			admin := protected.Group("/admin")
			admin.Use(middleware.StaffOnly())
			{
				admin.GET("/dashboard/", h.GetDashboardStats)
				admin.GET("/users/", h.GetAllUsers)
				admin.GET("/photos/", h.GetAllPhotos)
				admin.GET("/sos/", h.GetAllAlerts)
			}
		}
	}
}
