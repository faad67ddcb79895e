package mapper

import (
	"github.com/yantrahq/yantra/internal/api/dto/v1/user"
	"github.com/yantrahq/yantra/internal/models"
)

// PrincipalToResponse converts a principal to its profile DTO
func PrincipalToResponse(p *models.Principal) user.PrincipalResponse {
	if p == nil {
		return user.PrincipalResponse{}
	}
	return user.PrincipalResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		TeamID:      p.TeamID,
		IsLeader:    p.IsLeader,
		CreatedAt:   p.CreatedAt,
	}
}
