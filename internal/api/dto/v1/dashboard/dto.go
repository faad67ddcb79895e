package dashboard

import (
	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/roundgate"
)

// DashboardResponse is the navigation state of the session's dashboard
type DashboardResponse struct {
	Active   string                `json:"active"`
	Entries  []roundgate.Entry     `json:"entries"`
	Observed bool                  `json:"observed"`
	Team     *team.DetailsResponse `json:"team,omitempty"`
}

// ActivateResponse is the outcome of activating a section. Board is set
// when the leaderboard section was opened.
type ActivateResponse struct {
	roundgate.Activation
	Entries []roundgate.Entry  `json:"entries"`
	Board   *leaderboard.Board `json:"board,omitempty"`
}

// SubmissionResponse is returned after a successful upload
type SubmissionResponse struct {
	Submission team.SubmissionResponse `json:"submission"`
	Team       *team.DetailsResponse   `json:"team,omitempty"`
}
