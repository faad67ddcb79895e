// Package session holds the per-session context objects: the signed-in
// principal, the Current-Team Cache and the dashboard navigator.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/roundgate"
)

// PrincipalListener is notified when the principal of a session changes:
// sign-in (nil to principal), sign-out (principal to nil) or identity swap.
// Each call is authoritative; listeners replace any state derived from the
// previous principal.
type PrincipalListener func(ctx context.Context, previous, current *models.Principal)

// Context is the state of one signed-in session. The team slot is written
// only by the Binder.
type Context struct {
	token string

	mu         sync.RWMutex
	principal  *models.Principal
	generation uint64
	team       *models.TeamDetails
	listeners  []PrincipalListener
	binder     func(ctx context.Context, gen uint64, p *models.Principal)
	lastSeen   time.Time
	dashboard  *roundgate.Navigator
}

func newContext(token string, now time.Time) *Context {
	return &Context{token: token, lastSeen: now}
}

// Token returns the opaque session token.
func (c *Context) Token() string {
	return c.token
}

// Principal returns a copy of the signed-in principal, or nil.
func (c *Context) Principal() *models.Principal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.principal == nil {
		return nil
	}
	p := *c.principal
	return &p
}

// CurrentTeam returns the resolved team of the principal, or nil. The value
// may be replaced at any time; re-read instead of holding it.
func (c *Context) CurrentTeam() *models.TeamDetails {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.team
}

// OnPrincipalChanged registers a listener for principal transitions.
func (c *Context) OnPrincipalChanged(l PrincipalListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// LastSeen returns the time of the last authenticated request.
func (c *Context) LastSeen() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSeen
}

func (c *Context) touch(now time.Time) {
	c.mu.Lock()
	c.lastSeen = now
	c.mu.Unlock()
}

// Dashboard returns the open dashboard navigator, or nil.
func (c *Context) Dashboard() *roundgate.Navigator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dashboard
}

// OpenDashboard returns the session's navigator, creating one on gate if no
// dashboard view is open.
func (c *Context) OpenDashboard(gate *roundgate.Gate) *roundgate.Navigator {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dashboard == nil {
		c.dashboard = roundgate.NewNavigator(gate)
	}
	return c.dashboard
}

// CloseDashboard stops and discards the navigator, if any.
func (c *Context) CloseDashboard() {
	c.mu.Lock()
	nav := c.dashboard
	c.dashboard = nil
	c.mu.Unlock()
	if nav != nil {
		nav.Stop()
	}
}

// setPrincipal replaces the principal. When the identity changed it runs the
// binder and then the listeners. Returns the current generation.
func (c *Context) setPrincipal(ctx context.Context, p *models.Principal) uint64 {
	c.mu.Lock()
	previous := c.principal
	if p != nil {
		cp := *p
		c.principal = &cp
	} else {
		c.principal = nil
	}
	changed := identityOf(previous) != identityOf(p)
	if changed {
		c.generation++
		// The previous principal's team must not be visible to the new one
		c.team = nil
	}
	gen := c.generation
	listeners := append([]PrincipalListener(nil), c.listeners...)
	binder := c.binder
	c.mu.Unlock()

	if changed {
		if binder != nil {
			binder(ctx, gen, p)
		}
		for _, l := range listeners {
			l(ctx, previous, p)
		}
	}
	return gen
}

// refreshProfile replaces the stored profile of the same principal without
// a notification.
func (c *Context) refreshProfile(p *models.Principal) (uint64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.principal == nil || c.principal.ID != p.ID {
		return c.generation, false
	}
	cp := *p
	c.principal = &cp
	return c.generation, true
}

func (c *Context) currentGeneration() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *Context) setBinder(fn func(ctx context.Context, gen uint64, p *models.Principal)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.binder = fn
}

// publish stores team if gen is still the current principal generation.
func (c *Context) publish(gen uint64, team *models.TeamDetails) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return false
	}
	c.team = team
	return true
}

func identityOf(p *models.Principal) string {
	if p == nil {
		return ""
	}
	return p.ID
}
