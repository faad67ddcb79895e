// Package leaderboard ranks teams by score and keeps the last rendered board.
package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yantrahq/yantra/internal/logging"
	"github.com/yantrahq/yantra/internal/models"
	"github.com/yantrahq/yantra/internal/repository"
)

// TeamLister returns every team sorted by score descending.
type TeamLister interface {
	ListTeams(ctx context.Context) ([]models.TeamSummary, error)
}

// Row is one ranked line of the board.
type Row struct {
	Rank        int     `json:"rank"`
	Badge       string  `json:"badge"`
	TeamID      string  `json:"teamId"`
	Name        string  `json:"name"`
	Members     string  `json:"members"`
	MemberCount int     `json:"memberCount"`
	Capacity    int     `json:"capacity"`
	Score       float64 `json:"score"`
}

// Board is a fully rendered leaderboard.
type Board struct {
	Rows        []Row     `json:"rows"`
	Empty       bool      `json:"empty"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// Badge returns the medal for the top three ranks and "#n" otherwise.
func Badge(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return fmt.Sprintf("#%d", rank)
}

// Render builds a board from summaries already in rank order.
func Render(summaries []models.TeamSummary, at time.Time) *Board {
	rows := make([]Row, 0, len(summaries))
	for i, s := range summaries {
		rank := i + 1
		rows = append(rows, Row{
			Rank:        rank,
			Badge:       Badge(rank),
			TeamID:      s.ID,
			Name:        s.Name,
			Members:     fmt.Sprintf("%d/%d", s.MemberCount, s.Capacity),
			MemberCount: s.MemberCount,
			Capacity:    s.Capacity,
			Score:       s.Score,
		})
	}
	return &Board{Rows: rows, Empty: len(rows) == 0, RefreshedAt: at}
}

// Projector refreshes the board from the team directory. Concurrent
// refreshes share one in-flight fetch.
type Projector struct {
	teams    TeamLister
	cache    repository.LeaderboardCache
	cacheTTL time.Duration
	logger   *logging.Logger
	now      func() time.Time

	group singleflight.Group

	mu    sync.RWMutex
	board *Board
}

// NewProjector creates a projector. cache may be nil.
func NewProjector(teams TeamLister, cache repository.LeaderboardCache, cacheTTL time.Duration, logger *logging.Logger) *Projector {
	return &Projector{
		teams:    teams,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Refresh fetches every team and replaces the board.
func (p *Projector) Refresh(ctx context.Context) (*Board, error) {
	ch := p.group.DoChan("refresh", func() (interface{}, error) {
		summaries, err := p.teams.ListTeams(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		board := p.replace(summaries)
		if p.cache != nil {
			if err := p.cache.Set(context.WithoutCancel(ctx), summaries, p.cacheTTL); err != nil {
				p.logger.Warn("Failed to cache leaderboard: %v", err)
			}
		}
		return board, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Board), nil
	}
}

// View returns a board from the cache when it is fresh, otherwise refreshes.
func (p *Projector) View(ctx context.Context) (*Board, error) {
	if p.cache != nil {
		summaries, ok, err := p.cache.Get(ctx)
		if err != nil {
			p.logger.Warn("Leaderboard cache unavailable, refreshing directly: %v", err)
		} else if ok {
			return p.replace(summaries), nil
		}
	}
	return p.Refresh(ctx)
}

// Current returns the last rendered board, or nil before the first refresh.
func (p *Projector) Current() *Board {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.board
}

func (p *Projector) replace(summaries []models.TeamSummary) *Board {
	board := Render(summaries, p.now())
	p.mu.Lock()
	p.board = board
	p.mu.Unlock()
	return board
}
