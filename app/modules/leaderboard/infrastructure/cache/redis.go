package leaderboardcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "leaderboard:top:"
	scanCount = 100
)

// RedisCache keeps JSON top-N snapshots in redis with a TTL.
type RedisCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCache wraps an existing client.
func NewRedisCache(client redis.UniversalClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// NewRedisClient dials redis at addr.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// snapshotKey is leaderboard:top:<scope>:<week>:<n>. Global snapshots use "all"
// for the week.
func snapshotKey(scope leaderboarddomain.Scope, weekStart time.Time, n int) string {
	week := "all"
	if scope == leaderboarddomain.ScopeWeekly {
		week = weekStart.UTC().Format("2006-01-02")
	}
	return fmt.Sprintf("%s%s:%s:%d", keyPrefix, scope, week, n)
}

func (c *RedisCache) Get(ctx context.Context, scope leaderboarddomain.Scope, weekStart time.Time, n int) ([]leaderboarddomain.Entry, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey(scope, weekStart, n)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("leaderboardcache.Get: %w", err)
	}

	var entries []leaderboarddomain.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false, fmt.Errorf("leaderboardcache.Get: decode snapshot: %w", err)
	}
	return entries, true, nil
}

func (c *RedisCache) Set(ctx context.Context, scope leaderboarddomain.Scope, weekStart time.Time, n int, entries []leaderboarddomain.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("leaderboardcache.Set: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(scope, weekStart, n), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("leaderboardcache.Set: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, scopes ...leaderboarddomain.Scope) error {
	for _, scope := range scopes {
		iter := c.client.Scan(ctx, 0, keyPrefix+string(scope)+":*", scanCount).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("leaderboardcache.Invalidate: scan %s: %w", scope, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("leaderboardcache.Invalidate: %w", err)
		}
	}
	return nil
}

var _ Cache = (*RedisCache)(nil)
