package server

import (
	"github.com/yantrahq/yantra/internal/config"
	"github.com/yantrahq/yantra/internal/identity"
	"github.com/yantrahq/yantra/internal/leaderboard"
	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/repository"
	"github.com/yantrahq/yantra/internal/repository/memory"
	"github.com/yantrahq/yantra/internal/roundgate"
	"github.com/yantrahq/yantra/internal/service"
	"github.com/yantrahq/yantra/internal/session"
)

// Backend is the storage and identity stack the services run on.
type Backend struct {
	Identity   identity.Provider
	Principals repository.PrincipalRepository
	Teams      repository.TeamRepository
	Settings   repository.SettingsWatcher
	Blobs      repository.BlobStore
	// Cache is optional
	Cache repository.LeaderboardCache
}

// MemoryBackend runs every component on one in-process store.
func MemoryBackend(store *memory.Store) Backend {
	return Backend{
		Identity:   store.Identity(),
		Principals: store.Principals(),
		Teams:      store.Teams(),
		Settings:   store.Settings(),
		Blobs:      store.Blobs(),
		Cache:      store.Cache(),
	}
}

// NewServices wires the domain services on b.
func NewServices(cfg *config.Config, b Backend, logger *logging.Logger) Services {
	policy := service.CallPolicy{Timeout: cfg.BackendTimeout, ReadAttempts: cfg.ReadRetryAttempts}
	audit := service.NewAuditService(logger)

	teams := service.NewTeamService(b.Teams, b.Principals, audit, logger, policy, cfg.CodeGenerationAttempts)
	sessions := session.NewManager(session.NewBinder(service.NewProfileReader(b.Principals, policy), teams, logger))
	gate := roundgate.NewGate(cfg.Rounds, logger)

	return Services{
		Identity: service.NewIdentityService(b.Identity, b.Principals, sessions, audit, logger, policy),
		Teams:    teams,
		Submissions: service.NewSubmissionService(b.Teams, b.Blobs, gate, audit, logger, policy, service.SubmissionConfig{
			Round:            cfg.SubmissionRound,
			RequireOpenRound: cfg.SubmissionRequiresOpenRound,
			MaxBytes:         cfg.MaxSubmissionBytes(),
		}),
		Sessions:    sessions,
		Gate:        gate,
		Leaderboard: leaderboard.NewProjector(teams, b.Cache, cfg.LeaderboardCacheTTL, logger),
	}
}
