// Package cache holds optional redis-backed read caches. Everything here
// degrades to a direct database read when redis is absent or failing.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/otarbekov/tradequest/internal/logger"
)

const (
	leaderboardKey = "tradequest:leaderboard:top"
	leaderboardTTL = 30 * time.Second
)

// Leaderboard is nil when no redis address is configured or the initial ping
// failed; callers must check before use.
var Leaderboard *LeaderboardCache

type LeaderboardCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func Init(addr string) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Log.Warn("redis unavailable, leaderboard cache disabled", zap.String("addr", addr), zap.Error(err))
		return
	}

	Leaderboard = &LeaderboardCache{rdb: rdb, ttl: leaderboardTTL}
	logger.Log.Info("leaderboard cache enabled", zap.String("addr", addr))
}

func (c *LeaderboardCache) Get(ctx context.Context) ([]byte, bool) {
	payload, err := c.rdb.Get(ctx, leaderboardKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Log.Warn("leaderboard cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

func (c *LeaderboardCache) Set(ctx context.Context, payload []byte) {
	if err := c.rdb.Set(ctx, leaderboardKey, payload, c.ttl).Err(); err != nil {
		logger.Log.Warn("leaderboard cache write failed", zap.Error(err))
	}
}
