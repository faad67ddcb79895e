package handlers

import (
	"github.com/yantrahq/yantra/internal/api/constants"
	"github.com/yantrahq/yantra/internal/api/dto/v1/auth"
	"github.com/yantrahq/yantra/internal/api/mapper"
	"github.com/yantrahq/yantra/internal/api/middleware"
	"github.com/yantrahq/yantra/internal/api/sanitization"
	"github.com/yantrahq/yantra/internal/service"
	"github.com/yantrahq/yantra/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves registration, sign-in and sign-out.
type AuthHandler struct {
	identity      *service.IdentityService
	secureCookies bool
}

// NewAuthHandler creates an auth handler. secureCookies marks the session
// cookie Secure (production).
func NewAuthHandler(identity *service.IdentityService, secureCookies bool) *AuthHandler {
	return &AuthHandler{identity: identity, secureCookies: secureCookies}
}

// Register creates an account and begins a session
func (h *AuthHandler) Register(c *gin.Context) {
	req := c.MustGet(constants.ContextKeyRegister).(auth.RegisterRequest)

	sc, err := h.identity.Register(
		c.Request.Context(),
		sanitization.SanitizeEmail(req.Email),
		req.Password,
		sanitization.SanitizeDisplayName(req.DisplayName),
		utils.GetRealIP(c),
	)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, sc.Token())
	utils.HandleCreated(c, mapper.SessionToResponse(sc, service.NextTeam))
}

// Login authenticates and begins a session, or swaps the principal of the
// caller's current session.
func (h *AuthHandler) Login(c *gin.Context) {
	req := c.MustGet(constants.ContextKeyLogin).(auth.LoginRequest)

	result, err := h.identity.Login(
		c.Request.Context(),
		sanitization.SanitizeEmail(req.Email),
		req.Password,
		middleware.SessionToken(c),
		utils.GetRealIP(c),
	)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	h.setSessionCookie(c, result.Session.Token())
	utils.HandleSuccess(c, mapper.SessionToResponse(result.Session, result.Next))
}

// Logout ends the session. It always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.identity.Logout(c.Request.Context(), middleware.SessionToken(c), utils.GetRealIP(c))

	c.SetCookie(constants.CookieSession, "", -1, constants.CookiePathRoot, "", h.secureCookies, true)
	utils.HandleMessage(c, "Signed out")
}

// Session returns the caller's principal and current team
func (h *AuthHandler) Session(c *gin.Context) {
	sc := middleware.SessionFrom(c)

	next := service.NextTeam
	if sc.Principal().HasTeam() {
		next = service.NextDashboard
	}
	utils.HandleSuccess(c, mapper.SessionToResponse(sc, next))
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(constants.CookieSession, token, constants.CookieDuration24h, constants.CookiePathRoot, "", h.secureCookies, true)
}
