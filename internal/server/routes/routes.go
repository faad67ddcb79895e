package routes

import (
	"github.com/yantrahq/yantra/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Setup configures all route groups
func Setup(router *gin.Engine, h *Handlers, m *Middleware) {
	v1 := router.Group("/api/v1")

	// Public routes (no auth required)
	SetupHealthRoutes(router, h.Health)

	// Auth routes (no session required for login/register)
	SetupAuthRoutes(v1, h.Auth, m)

	// Session-bound API routes
	SetupProtectedRoutes(v1, h, m)
}

// SetupGlobalMiddleware configures middleware that applies to all routes
func SetupGlobalMiddleware(router *gin.Engine, opts GlobalOptions) {
	router.Use(middleware.Recovery(opts.Logger))
	router.Use(middleware.RequestID())
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(middleware.RequestLogger(opts.Logger, opts.LogRequests))
	router.Use(middleware.CORS(opts.Development, opts.AllowedOrigins))
	router.Use(middleware.SecurityHeaders(opts.Production))
	router.Use(middleware.RateLimitMiddleware(opts.RateLimit))
}
