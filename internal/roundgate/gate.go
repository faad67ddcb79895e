// Package roundgate tracks the remotely controlled open/locked flag of each
// event round and drives which dashboard sections can be activated.
package roundgate

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
)

// State of one round.
type State int

const (
	Locked State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "locked"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Transition is a change of one round's state.
type Transition struct {
	Round string `json:"round"`
	From  State  `json:"from"`
	To    State  `json:"to"`
}

// Gate holds the last observed state of every configured round. Every round
// is Locked until the first observation.
type Gate struct {
	rounds []string
	logger *logging.Logger

	applyMu sync.Mutex

	mu       sync.RWMutex
	states   map[string]State
	observed bool
	subs     map[int]*Subscription
	nextSub  int
}

// NewGate creates a gate over the given round identifiers.
func NewGate(rounds []string, logger *logging.Logger) *Gate {
	states := make(map[string]State, len(rounds))
	for _, r := range rounds {
		states[r] = Locked
	}
	return &Gate{
		rounds: append([]string(nil), rounds...),
		logger: logger,
		states: states,
		subs:   make(map[int]*Subscription),
	}
}

// Rounds returns the configured rounds in order.
func (g *Gate) Rounds() []string {
	return append([]string(nil), g.rounds...)
}

// IsRound reports whether section names a configured round.
func (g *Gate) IsRound(section string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.states[section]
	return ok
}

// State returns the current state of round. Unknown rounds are Locked.
func (g *Gate) State(round string) State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.states[round]
}

// IsOpen reports whether round is Open.
func (g *Gate) IsOpen(round string) bool {
	return g.State(round) == Open
}

// Observed reports whether any remote state has been applied yet.
func (g *Gate) Observed() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.observed
}

// Snapshot returns every round's state.
func (g *Gate) Snapshot() map[string]State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]State, len(g.states))
	for k, v := range g.states {
		out[k] = v
	}
	return out
}

// Apply records an observed settings document and notifies subscribers of
// the resulting transitions. A missing document locks every round. A round
// absent from the document is Locked.
func (g *Gate) Apply(settings models.RoundSettings, exists bool) []Transition {
	g.applyMu.Lock()
	defer g.applyMu.Unlock()

	if !exists {
		g.logger.Warn("Round settings document is missing, treating all rounds as locked")
	}

	g.mu.Lock()
	var transitions []Transition
	for _, round := range g.rounds {
		next := Locked
		if exists && settings[round] {
			next = Open
		}
		if prev := g.states[round]; prev != next {
			transitions = append(transitions, Transition{Round: round, From: prev, To: next})
			g.states[round] = next
		}
	}
	g.observed = true
	subs := make([]*Subscription, 0, len(g.subs))
	for _, s := range g.subs {
		subs = append(subs, s)
	}
	g.mu.Unlock()

	if len(transitions) > 0 {
		g.logger.Info("Round gate transitions: %v", transitions)
		for _, s := range subs {
			s.deliver(transitions)
		}
	}
	return transitions
}

// Run keeps a push subscription on the settings document open until ctx is
// done, re-subscribing with backoff when the watch fails.
func (g *Gate) Run(ctx context.Context, watcher repository.SettingsWatcher) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second

	for {
		err := watcher.Watch(ctx, func(settings models.RoundSettings, exists bool) {
			b.Reset()
			g.Apply(settings, exists)
		})
		if ctx.Err() != nil {
			return nil
		}

		wait := b.NextBackOff()
		g.logger.Warn("Round settings watch ended: %v (re-subscribing in %s)", err, wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// Subscribe registers fn for transition batches.
func (g *Gate) Subscribe(fn func([]Transition)) *Subscription {
	g.mu.Lock()
	defer g.mu.Unlock()
	id := g.nextSub
	g.nextSub++
	s := &Subscription{gate: g, id: id, fn: fn, active: true}
	g.subs[id] = s
	return s
}

// Subscription is a cancellable registration on a Gate.
type Subscription struct {
	gate *Gate
	id   int
	fn   func([]Transition)

	mu     sync.Mutex
	active bool
}

func (s *Subscription) deliver(ts []Transition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.fn(ts)
}

// Stop cancels the subscription. Once Stop returns the callback is never
// invoked again. Stop must not be called from inside the callback.
func (s *Subscription) Stop() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()

	s.gate.mu.Lock()
	delete(s.gate.subs, s.id)
	s.gate.mu.Unlock()
}
