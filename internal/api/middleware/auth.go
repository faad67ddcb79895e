package middleware

import (
	"net/http"
	"strings"

	"github.com/yantrahq/yantra/internal/api/constants"
	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/session"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware resolves the session of a request.
type AuthMiddleware struct {
	sessions *session.Manager
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions *session.Manager) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// SessionToken returns the session token of the request: the Bearer
// Authorization header wins over the session cookie.
func SessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(constants.CookieSession); err == nil {
		return cookie
	}
	return ""
}

// RequireSession rejects requests without a live, signed-in session and
// stores the session and principal in the context.
func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(common.ErrCodeUnauthorized, "Authentication required", nil))
			return
		}

		sc, ok := m.sessions.Get(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(common.ErrCodeUnauthorized, "Session expired or invalid", nil))
			return
		}

		principal := sc.Principal()
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse(common.ErrCodeUnauthorized, "Session is signed out", nil))
			return
		}

		c.Set(constants.ContextKeySession, sc)
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Next()
	}
}

// SessionFrom returns the session stored by RequireSession.
func SessionFrom(c *gin.Context) *session.Context {
	if v, ok := c.Get(constants.ContextKeySession); ok {
		if sc, ok := v.(*session.Context); ok {
			return sc
		}
	}
	return nil
}
