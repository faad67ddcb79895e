package mapper

import (
	"github.com/yantrahq/yantra/internal/api/dto/v1/auth"
	"github.com/yantrahq/yantra/internal/session"
)

// SessionToResponse converts a session and the next screen to the DTO
// returned by register and login.
func SessionToResponse(sc *session.Context, next string) auth.SessionResponse {
	return auth.SessionResponse{
		Token:     sc.Token(),
		Next:      next,
		Principal: PrincipalToResponse(sc.Principal()),
		Team:      TeamDetailsToResponse(sc.CurrentTeam()),
	}
}
