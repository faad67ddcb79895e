package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yantrahq/yantra/internal/models"
)

var ErrNoSession = errors.New("session not found")

// Manager is the registry of live sessions keyed by token.
type Manager struct {
	binder *Binder
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Context
}

// NewManager creates a registry whose sessions are bound by binder.
func NewManager(binder *Binder) *Manager {
	return &Manager{
		binder:   binder,
		now:      time.Now,
		sessions: make(map[string]*Context),
	}
}

// Binder returns the binder attached to every session.
func (m *Manager) Binder() *Binder {
	return m.binder
}

// Begin starts a session for p and resolves its team before returning.
func (m *Manager) Begin(ctx context.Context, p *models.Principal) *Context {
	sc := newContext(uuid.NewString(), m.now())
	m.binder.attach(sc)

	m.mu.Lock()
	m.sessions[sc.token] = sc
	m.mu.Unlock()

	sc.setPrincipal(ctx, p)
	return sc
}

// Get returns the session for token and marks it as seen.
func (m *Manager) Get(token string) (*Context, bool) {
	m.mu.RLock()
	sc, ok := m.sessions[token]
	m.mu.RUnlock()
	if ok {
		sc.touch(m.now())
	}
	return sc, ok
}

// Switch replaces the principal of an existing session.
func (m *Manager) Switch(ctx context.Context, token string, p *models.Principal) (*Context, error) {
	sc, ok := m.Get(token)
	if !ok {
		return nil, ErrNoSession
	}
	sc.setPrincipal(ctx, p)
	return sc, nil
}

// End removes the session, closes its dashboard view and clears its
// principal. It reports whether the token was live.
func (m *Manager) End(ctx context.Context, token string) bool {
	m.mu.Lock()
	sc, ok := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()
	if !ok {
		return false
	}

	sc.CloseDashboard()
	sc.setPrincipal(ctx, nil)
	return true
}

// Sweep ends every session idle for longer than idle and returns how many
// were ended.
func (m *Manager) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.RLock()
	var stale []string
	for token, sc := range m.sessions {
		if sc.LastSeen().Before(cutoff) {
			stale = append(stale, token)
		}
	}
	m.mu.RUnlock()

	ended := 0
	for _, token := range stale {
		if m.End(ctx, token) {
			ended++
		}
	}
	return ended
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
