package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/yantrahq/yantra/internal/logging"
)

// SessionStore is the part of the session manager the sweeper needs.
type SessionStore interface {
	Sweep(ctx context.Context, idle time.Duration) int
}

// SessionSweeper periodically ends sessions idle longer than the timeout.
// Ending a session closes its dashboard subscription.
type SessionSweeper struct {
	sessions SessionStore
	idle     time.Duration
	interval time.Duration
	logger   *logging.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

// NewSessionSweeper creates a new session sweeper task
func NewSessionSweeper(sessions SessionStore, idle, interval time.Duration, logger *logging.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		idle:     idle,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start begins the sweeper in the background
func (s *SessionSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.runPeriodically(ctx)
}

// Stop stops the sweeper and waits for it to exit
func (s *SessionSweeper) Stop() {
	close(s.done)
	s.wg.Wait()
}

func (s *SessionSweeper) runPeriodically(ctx context.Context) {
	defer s.wg.Done()

	s.logger.Info("Starting session sweeper (idle timeout %s, every %s)", s.idle, s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.done:
			s.logger.Info("Session sweeper stopped")
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *SessionSweeper) sweep(ctx context.Context) {
	if n := s.sessions.Sweep(ctx, s.idle); n > 0 {
		s.logger.Info("Ended %d idle sessions", n)
	}
}
