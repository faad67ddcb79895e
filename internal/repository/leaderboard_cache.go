package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yantrahq/yantra/internal/models"
)

const leaderboardCacheKey = "leaderboard:teams"

// redisLeaderboardCache stores the team listing as JSON under one key
type redisLeaderboardCache struct {
	rdb *redis.Client
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

// NewLeaderboardCache creates a LeaderboardCache on a Redis client
func NewLeaderboardCache(rdb *redis.Client) LeaderboardCache {
	return &redisLeaderboardCache{rdb: rdb}
}

func (c *redisLeaderboardCache) Get(ctx context.Context) ([]models.TeamSummary, bool, error) {
	val, err := c.rdb.Get(ctx, leaderboardCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var summaries []models.TeamSummary
	if err := json.Unmarshal(val, &summaries); err != nil {
		return nil, false, err
	}
	return summaries, true, nil
}

func (c *redisLeaderboardCache) Set(ctx context.Context, summaries []models.TeamSummary, ttl time.Duration) error {
	data, err := json.Marshal(summaries)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, leaderboardCacheKey, data, ttl).Err()
}
