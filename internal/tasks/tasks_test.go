package tasks

import (
	"context"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/repository/memory"
	"github.com/yantrahq/yantra/internal/roundgate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	calls atomic.Int32
}

func (s *countingStore) Sweep(ctx context.Context, idle time.Duration) int {
	s.calls.Add(1)
	return 1
}

func TestSessionSweeperRunsUntilStopped(t *testing.T) {
	store := &countingStore{}
	sweeper := NewSessionSweeper(store, time.Hour, 5*time.Millisecond, logging.NewWriterLogger(io.Discard, "error"))

	sweeper.Start(context.Background())
	require.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	sweeper.Stop()

	after := store.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, store.calls.Load())
}

func TestRoundWatcherFeedsGate(t *testing.T) {
	store := memory.NewStore()
	logger := logging.NewWriterLogger(io.Discard, "error")
	gate := roundgate.NewGate([]string{"round1", "round2"}, logger)

	watcher := NewRoundWatcher(gate, store.Settings(), logger)
	watcher.Start(context.Background())
	defer watcher.Stop()

	store.SetRound("round2", true)

	require.Eventually(t, func() bool { return gate.IsOpen("round2") }, time.Second, 5*time.Millisecond)
	assert.False(t, gate.IsOpen("round1"))
	assert.True(t, gate.Observed())
}
