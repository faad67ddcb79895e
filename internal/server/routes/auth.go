package routes

import (
	"github.com/yantrahq/yantra/internal/api/handlers"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes configures authentication related routes
func SetupAuthRoutes(router *gin.RouterGroup, auth *handlers.AuthHandler, m *Middleware) {
	public := router.Group("/auth")
	{
		public.POST("/register", m.Validation.ValidateRegisterRequest(), auth.Register)
		public.POST("/login", m.Validation.ValidateLoginRequest(), auth.Login)
		// Logout clears the cookie even for an expired or unknown session
		public.POST("/logout", auth.Logout)
	}

	router.GET("/session", m.Auth.RequireSession(), auth.Session)
}
