package repository

import (
	"context"
	"io"
	"time"

	"github.com/yantrahq/yantra/internal/models"
)

// PrincipalRepository defines the storage operations on principal profiles
type PrincipalRepository interface {
	// Get returns a principal by ID
	Get(ctx context.Context, id string) (*models.Principal, error)
	// Create persists a new principal profile with no team association
	Create(ctx context.Context, principal *models.Principal) error
}

// TeamRepository defines the storage operations on teams
type TeamRepository interface {
	// Get returns a team by ID
	Get(ctx context.Context, id string) (*models.Team, error)
	// FindByCode returns the team holding the given join code
	FindByCode(ctx context.Context, code string) (*models.Team, error)
	// Exists reports whether a team with the given ID exists
	Exists(ctx context.Context, id string) (bool, error)
	// CodeInUse reports whether any team holds the given join code
	CodeInUse(ctx context.Context, code string) (bool, error)
	// Create writes the team if no team with its ID exists and points the
	// creator's profile at it, atomically. Returns ErrAlreadyExists on conflict.
	Create(ctx context.Context, team *models.Team) error
	// AddMember appends principalID to the roster of team id and sets the
	// principal's team reference, atomically. Fails with ErrTeamFull or
	// ErrAlreadyMember when the stored roster does not allow the append.
	AddMember(ctx context.Context, id, principalID string) (*models.Team, error)
	// List returns every team in retrieval order
	List(ctx context.Context) ([]*models.Team, error)
	// SetSubmission records the team's submission and marks round complete
	SetSubmission(ctx context.Context, id string, submission *models.Submission, round string) error
}

// SettingsWatcher delivers the shared round settings document.
type SettingsWatcher interface {
	// Watch blocks, invoking fn with every observed state of the settings
	// document until ctx is done or the subscription fails. exists is false
	// when the document is missing.
	Watch(ctx context.Context, fn func(settings models.RoundSettings, exists bool)) error
}

// BlobStore is write-once object storage for submissions.
type BlobStore interface {
	// Put writes r to path unless an object already exists there, in which
	// case it returns ErrAlreadyExists. Returns a retrievable URL.
	Put(ctx context.Context, path, contentType string, r io.Reader) (string, error)
	// Delete removes the object at path. A missing object is not an error.
	Delete(ctx context.Context, path string) error
}

// LeaderboardCache caches the team listing between refreshes.
type LeaderboardCache interface {
	// Get returns the cached listing; ok is false on a miss
	Get(ctx context.Context) (summaries []models.TeamSummary, ok bool, err error)
	// Set stores the listing for ttl
	Set(ctx context.Context, summaries []models.TeamSummary, ttl time.Duration) error
}
