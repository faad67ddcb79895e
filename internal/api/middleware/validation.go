package middleware

import (
	"net/http"

	"github.com/yantrahq/yantra/internal/api/constants"
	"github.com/yantrahq/yantra/internal/api/dto/common"
	"github.com/yantrahq/yantra/internal/api/dto/v1/auth"
	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/api/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// ValidationMiddleware handles request validation
type ValidationMiddleware struct {
	validate *validator.Validate
}

// NewValidationMiddleware creates a new validation middleware
func NewValidationMiddleware() *ValidationMiddleware {
	return &ValidationMiddleware{
		validate: validation.New(),
	}
}

// bindJSON decodes the body into a fresh T, validates it and stores it in
// the context under key. Failures abort with the service code the same
// input would produce.
func bindJSON[T any](v *validator.Validate, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req T
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, common.NewErrorResponse(common.ErrCodeBadRequest, "Invalid request body", nil))
			return
		}

		if err := v.Struct(req); err != nil {
			svcErr := validation.ServiceError(err)
			c.AbortWithStatusJSON(http.StatusBadRequest, common.NewErrorResponse(
				common.ErrorCode(svcErr.Code),
				svcErr.Message,
				validation.FormatValidationError(err),
			))
			return
		}

		c.Set(key, req)
		c.Next()
	}
}

// ValidateLoginRequest validates login request
func (m *ValidationMiddleware) ValidateLoginRequest() gin.HandlerFunc {
	return bindJSON[auth.LoginRequest](m.validate, constants.ContextKeyLogin)
}

// ValidateRegisterRequest validates registration request
func (m *ValidationMiddleware) ValidateRegisterRequest() gin.HandlerFunc {
	return bindJSON[auth.RegisterRequest](m.validate, constants.ContextKeyRegister)
}

// ValidateCreateTeamRequest validates team creation request
func (m *ValidationMiddleware) ValidateCreateTeamRequest() gin.HandlerFunc {
	return bindJSON[team.CreateTeamRequest](m.validate, constants.ContextKeyCreateTeam)
}

// ValidateJoinTeamRequest validates team join request
func (m *ValidationMiddleware) ValidateJoinTeamRequest() gin.HandlerFunc {
	return bindJSON[team.JoinTeamRequest](m.validate, constants.ContextKeyJoinTeam)
}
