package team

import (
	"bytes"
	"encoding/json"
	"time"
)

// Capacity accepts a JSON string or number and keeps its text form, so
// "4" and 4 are the same capacity.
type Capacity string

func (c *Capacity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Capacity(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Capacity(n.String())
	return nil
}

// CreateTeamRequest represents the team creation payload
type CreateTeamRequest struct {
	Name     string   `json:"name" validate:"required,teamname"`
	Capacity Capacity `json:"capacity" validate:"required,capacity"`
}

// JoinTeamRequest represents the team join payload
type JoinTeamRequest struct {
	Code string `json:"code" validate:"required,teamcode"`
}

// MemberResponse is one resolved roster entry
type MemberResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Leader      bool   `json:"leader"`
}

// SubmissionResponse is a team's uploaded artifact
type SubmissionResponse struct {
	URL  string    `json:"url"`
	Path string    `json:"path"`
	Time time.Time `json:"time"`
}

// DetailsResponse is a team with its hydrated roster
type DetailsResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Code        string              `json:"code"`
	Capacity    int                 `json:"capacity"`
	MemberCount int                 `json:"memberCount"`
	Leader      string              `json:"leader"`
	Score       float64             `json:"score"`
	Members     []MemberResponse    `json:"members"`
	Missing     []string            `json:"missing,omitempty"`
	Submission  *SubmissionResponse `json:"submission,omitempty"`
	Rounds      map[string]bool     `json:"rounds,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

// CreateTeamResponse is returned after creating a team
type CreateTeamResponse struct {
	TeamID string           `json:"teamId"`
	Code   string           `json:"code"`
	Team   *DetailsResponse `json:"team,omitempty"`
}

// JoinTeamResponse is returned after joining a team
type JoinTeamResponse struct {
	TeamID   string           `json:"teamId"`
	TeamName string           `json:"teamName"`
	Team     *DetailsResponse `json:"team,omitempty"`
}
