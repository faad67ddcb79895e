package session

import (
	"context"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
)

// ProfileSource reads principal profiles.
type ProfileSource interface {
	Profile(ctx context.Context, id string) (*models.Principal, error)
}

// TeamSource resolves a team with hydrated member profiles.
type TeamSource interface {
	GetTeamDetails(ctx context.Context, teamID string) (*models.TeamDetails, error)
}

// Binder is the only writer of the Current-Team Cache. It resolves the team
// of a session's principal whenever the principal changes and on Resync.
type Binder struct {
	profiles ProfileSource
	teams    TeamSource
	logger   *logging.Logger
}

// NewBinder creates a binder.
func NewBinder(profiles ProfileSource, teams TeamSource, logger *logging.Logger) *Binder {
	return &Binder{profiles: profiles, teams: teams, logger: logger}
}

// attach makes the binder resolve the team of sc on every principal change.
func (b *Binder) attach(sc *Context) {
	sc.setBinder(func(ctx context.Context, gen uint64, current *models.Principal) {
		if err := b.bind(ctx, sc, gen, current); err != nil {
			b.logger.Warn("Failed to resolve team for session principal %s: %v", identityOf(current), err)
		}
	})
}

// Resync re-reads the principal's profile and re-publishes its team. Call it
// after any successful create, join or submission.
func (b *Binder) Resync(ctx context.Context, sc *Context) error {
	current := sc.Principal()
	if current == nil {
		sc.publish(sc.currentGeneration(), nil)
		return nil
	}

	profile, err := b.profiles.Profile(ctx, current.ID)
	if err != nil {
		return err
	}
	gen, ok := sc.refreshProfile(profile)
	if !ok {
		return nil
	}
	return b.bind(ctx, sc, gen, profile)
}

// bind publishes the team of p for generation gen. A principal without a
// team, or a failed resolution, publishes empty.
func (b *Binder) bind(ctx context.Context, sc *Context, gen uint64, p *models.Principal) error {
	if !p.HasTeam() {
		sc.publish(gen, nil)
		return nil
	}

	details, err := b.teams.GetTeamDetails(ctx, p.TeamID)
	if err != nil {
		sc.publish(gen, nil)
		return err
	}
	if !sc.publish(gen, details) {
		b.logger.Debug("Dropped team resolution for superseded principal %s", p.ID)
	}
	return nil
}
