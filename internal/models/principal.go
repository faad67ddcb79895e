package models

import "time"

// Principal is an authenticated participant. Stored at users/{id}.
type Principal struct {
	ID          string    `firestore:"-" json:"id"`
	DisplayName string    `firestore:"username" json:"displayName"`
	Email       string    `firestore:"email" json:"email"`
	TeamID      string    `firestore:"teamId,omitempty" json:"teamId,omitempty"`
	IsLeader    bool      `firestore:"isLeader" json:"isLeader"`
	CreatedAt   time.Time `firestore:"createdAt" json:"createdAt"`
}

// HasTeam reports whether the principal has joined or created a team.
func (p *Principal) HasTeam() bool {
	return p != nil && p.TeamID != ""
}
