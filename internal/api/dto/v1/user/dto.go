package user

import "time"

// PrincipalResponse represents the signed-in principal's profile
type PrincipalResponse struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	TeamID      string    `json:"teamId,omitempty"`
	IsLeader    bool      `json:"isLeader"`
	CreatedAt   time.Time `json:"createdAt"`
}
