package leaderboard

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository/memory"
)

type mockLister struct {
	calls    atomic.Int32
	listFunc func(ctx context.Context) ([]models.TeamSummary, error)
}

func (m *mockLister) ListTeams(ctx context.Context) ([]models.TeamSummary, error) {
	m.calls.Add(1)
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func testLogger() *logging.Logger {
	return logging.NewWriterLogger(io.Discard, "debug")
}

var sample = []models.TeamSummary{
	{ID: "a", Name: "Alpha", MemberCount: 3, Capacity: 4, Score: 90},
	{ID: "b", Name: "Beta", MemberCount: 2, Capacity: 2, Score: 70},
	{ID: "c", Name: "Gamma", MemberCount: 1, Capacity: 5, Score: 70},
	{ID: "d", Name: "Delta", MemberCount: 4, Capacity: 4, Score: 10},
}

func TestRender(t *testing.T) {
	board := Render(sample, time.Unix(0, 0))
	require.Len(t, board.Rows, 4)
	assert.False(t, board.Empty)

	wantBadges := []string{"🥇", "🥈", "🥉", "#4"}
	for i, row := range board.Rows {
		assert.Equal(t, i+1, row.Rank)
		assert.Equal(t, wantBadges[i], row.Badge)
	}
	assert.Equal(t, "3/4", board.Rows[0].Members)
	assert.Equal(t, "Gamma", board.Rows[2].Name)
}

func TestRenderEmpty(t *testing.T) {
	board := Render(nil, time.Now())
	assert.True(t, board.Empty)
	assert.Empty(t, board.Rows)
}

func TestRefreshReplacesBoard(t *testing.T) {
	lister := &mockLister{listFunc: func(ctx context.Context) ([]models.TeamSummary, error) {
		return sample, nil
	}}
	p := NewProjector(lister, nil, time.Minute, testLogger())
	assert.Nil(t, p.Current())

	board, err := p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Rows, 4)
	assert.Same(t, board, p.Current())

	lister.listFunc = func(ctx context.Context) ([]models.TeamSummary, error) {
		return sample[:1], nil
	}
	board, err = p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Rows, 1)
	assert.Len(t, p.Current().Rows, 1)
}

func TestConcurrentRefreshSharesOneFetch(t *testing.T) {
	release := make(chan struct{})
	lister := &mockLister{listFunc: func(ctx context.Context) ([]models.TeamSummary, error) {
		<-release
		return sample, nil
	}}
	p := NewProjector(lister, nil, time.Minute, testLogger())

	var wg sync.WaitGroup
	boards := make([]*Board, 5)
	for i := range boards {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := p.Refresh(context.Background())
			assert.NoError(t, err)
			boards[i] = b
		}(i)
	}

	require.Eventually(t, func() bool { return lister.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), lister.calls.Load())
	for _, b := range boards {
		assert.Same(t, boards[0], b)
	}
}

func TestRefreshErrorKeepsPreviousBoard(t *testing.T) {
	lister := &mockLister{listFunc: func(ctx context.Context) ([]models.TeamSummary, error) {
		return sample, nil
	}}
	p := NewProjector(lister, nil, time.Minute, testLogger())
	first, err := p.Refresh(context.Background())
	require.NoError(t, err)

	lister.listFunc = func(ctx context.Context) ([]models.TeamSummary, error) {
		return nil, errors.New("backend down")
	}
	_, err = p.Refresh(context.Background())
	assert.Error(t, err)
	assert.Same(t, first, p.Current())
}

func TestViewUsesCache(t *testing.T) {
	store := memory.NewStore()
	lister := &mockLister{listFunc: func(ctx context.Context) ([]models.TeamSummary, error) {
		return sample, nil
	}}
	p := NewProjector(lister, store.Cache(), time.Minute, testLogger())

	board, err := p.View(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Rows, 4)
	assert.Equal(t, int32(1), lister.calls.Load())

	board, err = p.View(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Rows, 4)
	assert.Equal(t, int32(1), lister.calls.Load())

	_, err = p.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), lister.calls.Load())
}

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context) ([]models.TeamSummary, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenCache) Set(ctx context.Context, summaries []models.TeamSummary, ttl time.Duration) error {
	return errors.New("connection refused")
}

func TestViewBypassesBrokenCache(t *testing.T) {
	lister := &mockLister{listFunc: func(ctx context.Context) ([]models.TeamSummary, error) {
		return sample, nil
	}}
	p := NewProjector(lister, brokenCache{}, time.Minute, testLogger())

	board, err := p.View(context.Background())
	require.NoError(t, err)
	assert.Len(t, board.Rows, 4)
}
