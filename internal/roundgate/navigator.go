package roundgate

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	// SectionIntro is the default section and the redirect target when the
	// active round locks.
	SectionIntro       = "intro"
	SectionLeaderboard = "leaderboard"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrStopped        = errors.New("navigator stopped")
)

// EventType classifies navigation events.
type EventType string

const (
	EventActivated  EventType = "activated"
	EventRejected   EventType = "rejected"
	EventRedirected EventType = "redirected"
	EventLocked     EventType = "locked"
	EventUnlocked   EventType = "unlocked"
)

// Event is one navigation change delivered to watchers.
type Event struct {
	Type    EventType `json:"type"`
	Section string    `json:"section"`
	Active  string    `json:"active"`
	Time    time.Time `json:"time"`
}

// Entry describes one navigation entry of the dashboard.
type Entry struct {
	Section string `json:"section"`
	Round   bool   `json:"round"`
	Enabled bool   `json:"enabled"`
	Active  bool   `json:"active"`
}

// Activation is the outcome of Activate. Rejected is set when the requested
// round is locked; the active section is then unchanged.
type Activation struct {
	Active   string `json:"active"`
	Rejected bool   `json:"rejected"`
}

// Navigator is the navigation state of one dashboard view. It follows the
// gate until Stop.
type Navigator struct {
	gate *Gate
	sub  *Subscription

	mu        sync.Mutex
	active    string
	stopped   bool
	watchers  map[int]chan Event
	nextWatch int
}

// NewNavigator opens a dashboard view on gate with intro active.
func NewNavigator(gate *Gate) *Navigator {
	n := &Navigator{
		gate:     gate,
		active:   SectionIntro,
		watchers: make(map[int]chan Event),
	}
	n.sub = gate.Subscribe(n.onTransitions)
	return n
}

// Active returns the active section.
func (n *Navigator) Active() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// Entries lists intro, every round, then leaderboard.
func (n *Navigator) Entries() []Entry {
	n.mu.Lock()
	active := n.active
	n.mu.Unlock()

	rounds := n.gate.Rounds()
	entries := make([]Entry, 0, len(rounds)+2)
	entries = append(entries, Entry{Section: SectionIntro, Enabled: true, Active: active == SectionIntro})
	for _, r := range rounds {
		entries = append(entries, Entry{Section: r, Round: true, Enabled: n.gate.IsOpen(r), Active: active == r})
	}
	entries = append(entries, Entry{Section: SectionLeaderboard, Enabled: true, Active: active == SectionLeaderboard})
	return entries
}

// Activate makes section active. Activating a locked round is a no-op
// reported as Rejected, not an error.
func (n *Navigator) Activate(section string) (Activation, error) {
	isRound := n.gate.IsRound(section)
	if !isRound && section != SectionIntro && section != SectionLeaderboard {
		return Activation{}, fmt.Errorf("%w: %q", ErrUnknownSection, section)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return Activation{}, ErrStopped
	}

	if isRound && !n.gate.IsOpen(section) {
		n.emitLocked(Event{Type: EventRejected, Section: section, Active: n.active})
		return Activation{Active: n.active, Rejected: true}, nil
	}

	n.active = section
	n.emitLocked(Event{Type: EventActivated, Section: section, Active: section})
	return Activation{Active: section}, nil
}

func (n *Navigator) onTransitions(ts []Transition) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}

	for _, t := range ts {
		switch t.To {
		case Locked:
			n.emitLocked(Event{Type: EventLocked, Section: t.Round, Active: n.active})
			if n.active == t.Round {
				n.active = SectionIntro
				n.emitLocked(Event{Type: EventRedirected, Section: SectionIntro, Active: SectionIntro})
			}
		case Open:
			n.emitLocked(Event{Type: EventUnlocked, Section: t.Round, Active: n.active})
		}
	}
}

// Watch returns a channel of navigation events and a cancel func. Events
// are dropped for a watcher whose buffer is full. The channel is closed by
// cancel or Stop.
func (n *Navigator) Watch(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

	n.mu.Lock()
	if n.stopped {
		n.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := n.nextWatch
	n.nextWatch++
	n.watchers[id] = ch
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if c, ok := n.watchers[id]; ok {
				delete(n.watchers, id)
				close(c)
			}
		})
	}
}

// Stop tears down the gate subscription. After Stop returns no late
// transition changes the active section.
func (n *Navigator) Stop() {
	n.sub.Stop()

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.stopped {
		return
	}
	n.stopped = true
	for id, ch := range n.watchers {
		delete(n.watchers, id)
		close(ch)
	}
}

// Stopped reports whether Stop has been called.
func (n *Navigator) Stopped() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stopped
}

func (n *Navigator) emitLocked(e Event) {
	e.Time = time.Now()
	for _, ch := range n.watchers {
		select {
		case ch <- e:
		default:
		}
	}
}
