package mapper

import (
	"github.com/yantrahq/yantra/internal/api/dto/v1/team"
	"github.com/yantrahq/yantra/internal/models"
)

// SubmissionToResponse converts a submission record
func SubmissionToResponse(s *models.Submission) *team.SubmissionResponse {
	if s == nil {
		return nil
	}
	return &team.SubmissionResponse{URL: s.URL, Path: s.Path, Time: s.Time}
}

// TeamDetailsToResponse converts a hydrated team. Returns nil for nil.
func TeamDetailsToResponse(d *models.TeamDetails) *team.DetailsResponse {
	if d == nil {
		return nil
	}

	members := make([]team.MemberResponse, 0, len(d.MemberProfiles))
	for _, m := range d.MemberProfiles {
		members = append(members, team.MemberResponse{
			ID:          m.ID,
			DisplayName: m.DisplayName,
			Email:       m.Email,
			Leader:      m.ID == d.Leader,
		})
	}

	return &team.DetailsResponse{
		ID:          d.ID,
		Name:        d.Name,
		Code:        d.Code,
		Capacity:    d.Capacity,
		MemberCount: len(d.Members),
		Leader:      d.Leader,
		Score:       d.Score,
		Members:     members,
		Missing:     d.Missing,
		Submission:  SubmissionToResponse(d.Submission),
		Rounds:      d.Rounds,
		CreatedAt:   d.CreatedAt,
	}
}
