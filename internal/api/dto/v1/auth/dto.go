package auth

import (
	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/api/dto/v1/user"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"displayName" validate:"required,max=64"`
}

// SessionResponse is returned by register and login. Next names the screen
// the client should show: "dashboard" or "team".
type SessionResponse struct {
	Token     string                 `json:"token"`
	Next      string                 `json:"next"`
	Principal user.PrincipalResponse `json:"principal"`
	Team      *team.DetailsResponse  `json:"team,omitempty"`
}
