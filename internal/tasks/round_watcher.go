package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/repository"
	"github.com/yantrahq/yantra/internal/roundgate"
)

// RoundWatcher keeps the round gate subscribed to the settings document for
// the lifetime of the process.
type RoundWatcher struct {
	gate    *roundgate.Gate
	watcher repository.SettingsWatcher
	logger  *logging.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRoundWatcher creates a new round watcher task
func NewRoundWatcher(gate *roundgate.Gate, watcher repository.SettingsWatcher, logger *logging.Logger) *RoundWatcher {
	return &RoundWatcher{gate: gate, watcher: watcher, logger: logger}
}

// Start subscribes in the background
func (w *RoundWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.logger.Info("Watching round settings for %d rounds", len(w.gate.Rounds()))
		if err := w.gate.Run(ctx, w.watcher); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("Round settings watch ended: %v", err)
		}
	}()
}

// Stop ends the subscription and waits for it to exit
func (w *RoundWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
