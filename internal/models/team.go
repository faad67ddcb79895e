package models

import (
	"fmt"
	"time"
)

// Team is stored at teams/{id}, where id is the trimmed display name.
type Team struct {
	ID         string          `firestore:"-" json:"id"`
	Name       string          `firestore:"name" json:"name"`
	Code       string          `firestore:"code" json:"code"`
	Capacity   int             `firestore:"maxSize" json:"capacity"`
	Leader     string          `firestore:"createdBy" json:"leader"`
	Members    []string        `firestore:"members" json:"members"`
	Score      float64         `firestore:"score" json:"score"`
	Submission *Submission     `firestore:"submission,omitempty" json:"submission,omitempty"`
	Rounds     map[string]bool `firestore:"rounds,omitempty" json:"rounds,omitempty"`
	CreatedAt  time.Time       `firestore:"createdAt" json:"createdAt"`
}

// Submission records the uploaded artifact of a team.
type Submission struct {
	URL  string    `firestore:"url" json:"url"`
	Path string    `firestore:"path" json:"path"`
	Time time.Time `firestore:"time" json:"time"`
}

// IsFull reports whether the team has reached its capacity.
func (t *Team) IsFull() bool {
	return len(t.Members) >= t.Capacity
}

// HasMember reports whether principalID is in the roster.
func (t *Team) HasMember(principalID string) bool {
	for _, m := range t.Members {
		if m == principalID {
			return true
		}
	}
	return false
}

// Occupancy renders "memberCount/capacity".
func (t *Team) Occupancy() string {
	return fmt.Sprintf("%d/%d", len(t.Members), t.Capacity)
}

// MemberProfile is the resolved profile of one roster entry.
type MemberProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// TeamDetails is a team with its roster resolved to profiles. Missing lists
// member ids whose profile could not be found.
type TeamDetails struct {
	Team
	MemberProfiles []MemberProfile `json:"memberProfiles"`
	Missing        []string        `json:"missing,omitempty"`
}

// TeamSummary is one entry of the team listing used by the leaderboard.
type TeamSummary struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Code        string  `json:"code"`
	MemberCount int     `json:"memberCount"`
	Capacity    int     `json:"capacity"`
	Score       float64 `json:"score"`
}

// Summary projects a team into its listing entry.
func (t *Team) Summary() TeamSummary {
	return TeamSummary{
		ID:          t.ID,
		Name:        t.Name,
		Code:        t.Code,
		MemberCount: len(t.Members),
		Capacity:    t.Capacity,
		Score:       t.Score,
	}
}

// CreatedTeam is the outcome of a successful team creation.
type CreatedTeam struct {
	TeamID string `json:"teamId"`
	Code   string `json:"code"`
}

// JoinedTeam is the outcome of a successful join.
type JoinedTeam struct {
	TeamID   string `json:"teamId"`
	TeamName string `json:"teamName"`
}
