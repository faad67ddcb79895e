package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
)

const tracerName = "github.com/yantrahq/yantra/internal/service"

// MaxTeamNameLength bounds team names, which double as document ids.
const MaxTeamNameLength = 64

// TeamService is the team directory: creation, joining, lookup and listing.
type TeamService struct {
	teams        repository.TeamRepository
	principals   repository.PrincipalRepository
	logger       *logging.Logger
	audit        *AuditService
	policy       CallPolicy
	codeAttempts int
	generateCode CodeGenerator
	now          func() time.Time
}

// NewTeamService creates a new team service. codeAttempts caps join code
// regeneration on collision.
func NewTeamService(
	teams repository.TeamRepository,
	principals repository.PrincipalRepository,
	audit *AuditService,
	logger *logging.Logger,
	policy CallPolicy,
	codeAttempts int,
) *TeamService {
	if codeAttempts < 1 {
		codeAttempts = 1
	}
	return &TeamService{
		teams:        teams,
		principals:   principals,
		logger:       logger,
		audit:        audit,
		policy:       policy,
		codeAttempts: codeAttempts,
		generateCode: RandomCode,
		now:          time.Now,
	}
}

// NormalizeTeamName trims name and checks that it can serve as a team id.
func NormalizeTeamName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", invalidInput("team name is required")
	case utf8.RuneCountInString(name) > MaxTeamNameLength:
		return "", invalidInput("team name is too long")
	case strings.Contains(name, "/"), name == ".", name == "..":
		return "", invalidInput("team name contains invalid characters")
	}
	return name, nil
}

// ParseCapacity parses a capacity given as text. It must be a positive
// integer.
func ParseCapacity(capacity string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(capacity))
	if err != nil || n < 1 {
		return 0, ErrInvalidCapacity
	}
	return n, nil
}

// NormalizeCode trims and uppercases a join code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateTeam creates a team with creatorID as sole member and leader and
// points the creator's profile at it.
func (s *TeamService) CreateTeam(ctx context.Context, name, capacity, creatorID string) (*models.CreatedTeam, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TeamService.CreateTeam")
	defer span.End()

	teamName, err := NormalizeTeamName(name)
	if err != nil {
		return nil, err
	}
	size, err := ParseCapacity(capacity)
	if err != nil {
		return nil, err
	}
	if creatorID == "" {
		return nil, invalidInput("creator is required")
	}
	span.SetAttributes(attribute.String("team.id", teamName), attribute.Int("team.capacity", size))

	exists, err := read(ctx, s.policy, func(ctx context.Context) (bool, error) {
		return s.teams.Exists(ctx, teamName)
	})
	if err != nil {
		return nil, repoError(err, nil)
	}
	if exists {
		return nil, ErrNameTaken
	}

	code, err := s.uniqueCode(ctx)
	if err != nil {
		return nil, err
	}

	team := &models.Team{
		ID:        teamName,
		Name:      teamName,
		Code:      code,
		Capacity:  size,
		Leader:    creatorID,
		Members:   []string{creatorID},
		CreatedAt: s.now().UTC(),
	}
	err = s.policy.write(ctx, func(ctx context.Context) error {
		return s.teams.Create(ctx, team)
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		return nil, ErrNameTaken.Wrap(err)
	}
	if err != nil {
		return nil, repoError(err, nil)
	}

	s.audit.Log(ctx, AuditEventTeamCreated, &models.Principal{ID: creatorID}, "", map[string]interface{}{
		"team": teamName,
		"code": code,
	})
	return &models.CreatedTeam{TeamID: teamName, Code: code}, nil
}

// uniqueCode draws codes until one is unused, at most codeAttempts times.
func (s *TeamService) uniqueCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < s.codeAttempts; attempt++ {
		code, err := s.generateCode()
		if err != nil {
			return "", unavailable(err)
		}
		inUse, err := read(ctx, s.policy, func(ctx context.Context) (bool, error) {
			return s.teams.CodeInUse(ctx, code)
		})
		if err != nil {
			return "", repoError(err, nil)
		}
		if !inUse {
			return code, nil
		}
		s.logger.Debug("Join code collision on attempt %d", attempt+1)
	}
	return "", ErrCodeGenerationExhausted
}

// JoinTeam adds principalID to the team holding code.
func (s *TeamService) JoinTeam(ctx context.Context, code, principalID string) (*models.JoinedTeam, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TeamService.JoinTeam")
	defer span.End()

	code = NormalizeCode(code)
	if code == "" {
		return nil, invalidInput("team code is required")
	}
	if principalID == "" {
		return nil, invalidInput("principal is required")
	}

	team, err := read(ctx, s.policy, func(ctx context.Context) (*models.Team, error) {
		return s.teams.FindByCode(ctx, code)
	})
	if err != nil {
		return nil, repoError(err, ErrCodeNotFound)
	}
	span.SetAttributes(attribute.String("team.id", team.ID))

	if team.IsFull() {
		return nil, ErrTeamFull
	}
	if team.HasMember(principalID) {
		return nil, ErrAlreadyMember
	}

	err = s.policy.write(ctx, func(ctx context.Context) error {
		_, err := s.teams.AddMember(ctx, team.ID, principalID)
		return err
	})
	if err != nil {
		return nil, repoError(err, ErrCodeNotFound)
	}

	s.audit.Log(ctx, AuditEventTeamJoined, &models.Principal{ID: principalID}, "", map[string]interface{}{
		"team": team.ID,
	})
	return &models.JoinedTeam{TeamID: team.ID, TeamName: team.Name}, nil
}

// GetTeamDetails returns the team with one profile lookup per member. A
// member whose lookup fails is omitted and listed in Missing rather than
// failing the call.
func (s *TeamService) GetTeamDetails(ctx context.Context, teamID string) (*models.TeamDetails, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TeamService.GetTeamDetails")
	defer span.End()

	if strings.TrimSpace(teamID) == "" {
		return nil, ErrTeamNotFound
	}

	team, err := read(ctx, s.policy, func(ctx context.Context) (*models.Team, error) {
		return s.teams.Get(ctx, teamID)
	})
	if err != nil {
		return nil, repoError(err, ErrTeamNotFound)
	}

	details := &models.TeamDetails{
		Team:           *team,
		MemberProfiles: make([]models.MemberProfile, 0, len(team.Members)),
	}
	for _, id := range team.Members {
		p, err := read(ctx, s.policy, func(ctx context.Context) (*models.Principal, error) {
			return s.principals.Get(ctx, id)
		})
		if err != nil {
			s.logger.Warn("%v: member %s of team %s omitted: %v", ErrPartialHydration, id, teamID, err)
			details.Missing = append(details.Missing, id)
			continue
		}
		details.MemberProfiles = append(details.MemberProfiles, models.MemberProfile{
			ID:          id,
			DisplayName: p.DisplayName,
			Email:       p.Email,
		})
	}
	if len(details.Missing) > 0 {
		span.SetAttributes(attribute.Int("team.members_missing", len(details.Missing)))
	}
	return details, nil
}

// ListTeams returns every team sorted by score descending. Equal scores keep
// retrieval order.
func (s *TeamService) ListTeams(ctx context.Context) ([]models.TeamSummary, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "TeamService.ListTeams")
	defer span.End()

	teams, err := read(ctx, s.policy, func(ctx context.Context) ([]*models.Team, error) {
		return s.teams.List(ctx)
	})
	if err != nil {
		return nil, repoError(err, nil)
	}

	summaries := make([]models.TeamSummary, 0, len(teams))
	for _, t := range teams {
		summaries = append(summaries, t.Summary())
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Score > summaries[j].Score
	})
	span.SetAttributes(attribute.Int("teams.count", len(summaries)))
	return summaries, nil
}
