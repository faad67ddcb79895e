package routes

import (
	"github.com/yantrahq/yantra/internal/api/handlers"
	"github.com/yantrahq/yantra/internal/api/middleware"
	"github.com/yantrahq/yantra/internal/logging"
)

// Handlers contains all the route handlers
type Handlers struct {
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler
	Team        *handlers.TeamHandler
	Leaderboard *handlers.LeaderboardHandler
	Dashboard   *handlers.DashboardHandler
	Submission  *handlers.SubmissionHandler
}

// Middleware contains all the middleware
type Middleware struct {
	Validation *middleware.ValidationMiddleware
	Auth       *middleware.AuthMiddleware
}

// GlobalOptions configures the middleware applied to every route
type GlobalOptions struct {
	Logger         *logging.Logger
	ServiceName    string
	LogRequests    bool
	Development    bool
	Production     bool
	AllowedOrigins []string
	RateLimit      middleware.RateLimitConfig
}
