// Package memory is an in-process backend used for local development
// (BACKEND=memory) and tests. It honours the same contracts as the Firestore
// backend, including the atomic create and join preconditions.
package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yantrahq/yantra/internal/identity"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
)

type account struct {
	uid      string
	password string
}

// Store holds every collection of the in-memory backend.
type Store struct {
	mu         sync.RWMutex
	principals map[string]models.Principal
	teams      map[string]models.Team
	teamOrder  []string
	accounts   map[string]account
	blobs      map[string][]byte
	settings   models.RoundSettings
	watchers   map[int]chan struct{}
	nextWatch  int
	cache      []models.TeamSummary
	cacheUntil time.Time
}

// NewStore creates an empty store with no settings document.
func NewStore() *Store {
	return &Store{
		principals: make(map[string]models.Principal),
		teams:      make(map[string]models.Team),
		accounts:   make(map[string]account),
		blobs:      make(map[string][]byte),
		watchers:   make(map[int]chan struct{}),
	}
}

// Principals returns the PrincipalRepository view of the store.
func (s *Store) Principals() repository.PrincipalRepository { return principalRepo{s} }

// Teams returns the TeamRepository view of the store.
func (s *Store) Teams() repository.TeamRepository { return teamRepo{s} }

// Settings returns the SettingsWatcher view of the store.
func (s *Store) Settings() repository.SettingsWatcher { return settingsRepo{s} }

// Blobs returns the BlobStore view of the store.
func (s *Store) Blobs() repository.BlobStore { return blobRepo{s} }

// Cache returns the LeaderboardCache view of the store.
func (s *Store) Cache() repository.LeaderboardCache { return cacheRepo{s} }

// Identity returns the identity.Provider view of the store.
func (s *Store) Identity() identity.Provider { return identityRepo{s} }

// SetRound sets one round flag, creating the settings document if needed,
// and notifies watchers.
func (s *Store) SetRound(round string, open bool) {
	s.mu.Lock()
	if s.settings == nil {
		s.settings = models.RoundSettings{}
	}
	s.settings[round] = open
	s.mu.Unlock()
	s.notify()
}

// SetRounds replaces the settings document and notifies watchers.
func (s *Store) SetRounds(settings models.RoundSettings) {
	s.mu.Lock()
	s.settings = models.RoundSettings{}
	for k, v := range settings {
		s.settings[k] = v
	}
	s.mu.Unlock()
	s.notify()
}

// DeleteSettings removes the settings document and notifies watchers.
func (s *Store) DeleteSettings() {
	s.mu.Lock()
	s.settings = nil
	s.mu.Unlock()
	s.notify()
}

// SetScore stands in for the external scoring process.
func (s *Store) SetScore(teamID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	t.Score = score
	s.teams[teamID] = t
	return nil
}

// RemovePrincipal drops a profile document, leaving team rosters untouched.
func (s *Store) RemovePrincipal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.principals, id)
}

// Blob returns the stored bytes at path.
func (s *Store) Blob(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[path]
	return b, ok
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func copyTeam(t models.Team) *models.Team {
	t.Members = append([]string(nil), t.Members...)
	if t.Rounds != nil {
		rounds := make(map[string]bool, len(t.Rounds))
		for k, v := range t.Rounds {
			rounds[k] = v
		}
		t.Rounds = rounds
	}
	if t.Submission != nil {
		sub := *t.Submission
		t.Submission = &sub
	}
	return &t
}

type principalRepo struct{ s *Store }

func (r principalRepo) Get(ctx context.Context, id string) (*models.Principal, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.principals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r principalRepo) Create(ctx context.Context, principal *models.Principal) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.principals[principal.ID]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.principals[principal.ID] = *principal
	return nil
}

type teamRepo struct{ s *Store }

func (r teamRepo) Get(ctx context.Context, id string) (*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTeam(t), nil
}

func (r teamRepo) FindByCode(ctx context.Context, code string) (*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range r.s.teamOrder {
		if t := r.s.teams[id]; t.Code == code {
			return copyTeam(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r teamRepo) Exists(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.teams[id]
	return ok, nil
}

func (r teamRepo) CodeInUse(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (r teamRepo) Create(ctx context.Context, team *models.Team) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.teams[team.ID]; ok {
		return repository.ErrAlreadyExists
	}
	r.s.teams[team.ID] = *copyTeam(*team)
	r.s.teamOrder = append(r.s.teamOrder, team.ID)

	creator := r.s.principals[team.Leader]
	creator.ID = team.Leader
	creator.TeamID = team.ID
	creator.IsLeader = true
	r.s.principals[team.Leader] = creator
	return nil
}

func (r teamRepo) AddMember(ctx context.Context, id, principalID string) (*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if t.IsFull() {
		return nil, repository.ErrTeamFull
	}
	if t.HasMember(principalID) {
		return nil, repository.ErrAlreadyMember
	}
	t.Members = append(append([]string(nil), t.Members...), principalID)
	r.s.teams[id] = t

	p := r.s.principals[principalID]
	p.ID = principalID
	p.TeamID = id
	r.s.principals[principalID] = p
	return copyTeam(t), nil
}

func (r teamRepo) List(ctx context.Context) ([]*models.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	teams := make([]*models.Team, 0, len(r.s.teamOrder))
	for _, id := range r.s.teamOrder {
		teams = append(teams, copyTeam(r.s.teams[id]))
	}
	return teams, nil
}

func (r teamRepo) SetSubmission(ctx context.Context, id string, submission *models.Submission, round string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.teams[id]
	if !ok {
		return repository.ErrNotFound
	}
	sub := *submission
	t.Submission = &sub
	if round != "" {
		rounds := make(map[string]bool, len(t.Rounds)+1)
		for k, v := range t.Rounds {
			rounds[k] = v
		}
		rounds[round] = true
		t.Rounds = rounds
	}
	r.s.teams[id] = t
	return nil
}

type settingsRepo struct{ s *Store }

func (r settingsRepo) Watch(ctx context.Context, fn func(models.RoundSettings, bool)) error {
	ch := make(chan struct{}, 1)
	r.s.mu.Lock()
	id := r.s.nextWatch
	r.s.nextWatch++
	r.s.watchers[id] = ch
	r.s.mu.Unlock()

	defer func() {
		r.s.mu.Lock()
		delete(r.s.watchers, id)
		r.s.mu.Unlock()
	}()

	ch <- struct{}{}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
			r.s.mu.RLock()
			var snapshot models.RoundSettings
			exists := r.s.settings != nil
			if exists {
				snapshot = make(models.RoundSettings, len(r.s.settings))
				for k, v := range r.s.settings {
					snapshot[k] = v
				}
			}
			r.s.mu.RUnlock()
			fn(snapshot, exists)
		}
	}
}

type blobRepo struct{ s *Store }

func (r blobRepo) Put(ctx context.Context, path, contentType string, rd io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rd); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.blobs[path]; ok {
		return "", repository.ErrAlreadyExists
	}
	r.s.blobs[path] = buf.Bytes()
	return "memory://" + path, nil
}

func (r blobRepo) Delete(ctx context.Context, path string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.blobs, path)
	return nil
}

type cacheRepo struct{ s *Store }

func (r cacheRepo) Get(ctx context.Context) ([]models.TeamSummary, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if r.s.cache == nil || time.Now().After(r.s.cacheUntil) {
		return nil, false, nil
	}
	return append([]models.TeamSummary(nil), r.s.cache...), true, nil
}

func (r cacheRepo) Set(ctx context.Context, summaries []models.TeamSummary, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.cache = append([]models.TeamSummary{}, summaries...)
	r.s.cacheUntil = time.Now().Add(ttl)
	return nil
}

type identityRepo struct{ s *Store }

func (r identityRepo) SignUp(ctx context.Context, email, password, displayName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.accounts[email]; ok {
		return "", identity.ErrEmailExists
	}
	uid := uuid.NewString()
	r.s.accounts[email] = account{uid: uid, password: password}
	return uid, nil
}

func (r identityRepo) SignIn(ctx context.Context, email, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	acct, ok := r.s.accounts[email]
	if !ok || acct.password != password {
		return "", identity.ErrInvalidCredentials
	}
	return acct.uid, nil
}

func (r identityRepo) Revoke(ctx context.Context, uid string) error {
	return ctx.Err()
}

func (r identityRepo) Delete(ctx context.Context, uid string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, acct := range r.s.accounts {
		if acct.uid == uid {
			delete(r.s.accounts, email)
		}
	}
	return nil
}
