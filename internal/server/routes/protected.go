package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupProtectedRoutes configures routes that require a signed-in session
func SetupProtectedRoutes(router *gin.RouterGroup, h *Handlers, m *Middleware) {
	protected := router.Group("")
	protected.Use(m.Auth.RequireSession())

	teams := protected.Group("/teams")
	{
		teams.POST("", m.Validation.ValidateCreateTeamRequest(), h.Team.Create)
		teams.POST("/join", m.Validation.ValidateJoinTeamRequest(), h.Team.Join)
		teams.GET("/current", h.Team.Current)
		teams.GET("/:id", h.Team.Get)
	}

	leaderboard := protected.Group("/leaderboard")
	{
		leaderboard.GET("", h.Leaderboard.Get)
		leaderboard.POST("/refresh", h.Leaderboard.Refresh)
	}

	dashboard := protected.Group("/dashboard")
	{
		dashboard.GET("", h.Dashboard.Get)
		dashboard.POST("/sections/:section", h.Dashboard.Activate)
		dashboard.GET("/events", h.Dashboard.Events)
		dashboard.DELETE("", h.Dashboard.Close)
	}

	protected.POST("/submissions", h.Submission.Submit)
}
