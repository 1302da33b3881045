package totp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReplayGuard records accepted codes so each one is honored at most once
// while it remains inside the validity window.
type ReplayGuard interface {
	// MarkUsed returns true when this is the first use of the code for the
	// user, false when the code was already consumed.
	MarkUsed(ctx context.Context, userID int64, code string, ttl time.Duration) (bool, error)
}

// RedisReplayGuard backs the guard with Redis SETNX + TTL, so multiple
// service instances share one view of consumed codes.
type RedisReplayGuard struct {
	client *redis.Client
}

// NewRedisReplayGuard wraps an existing Redis client.
func NewRedisReplayGuard(client *redis.Client) *RedisReplayGuard {
	return &RedisReplayGuard{client: client}
}

func (g *RedisReplayGuard) MarkUsed(ctx context.Context, userID int64, code string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("totp:used:%d:%s", userID, code)
	return g.client.SetNX(ctx, key, 1, ttl).Result()
}

// MemoryReplayGuard is the single-process fallback used when no Redis
// address is configured, and by tests.
type MemoryReplayGuard struct {
	mu   sync.Mutex
	used map[string]time.Time
}

// NewMemoryReplayGuard returns an empty in-memory guard.
func NewMemoryReplayGuard() *MemoryReplayGuard {
	return &MemoryReplayGuard{used: make(map[string]time.Time)}
}

func (g *MemoryReplayGuard) MarkUsed(_ context.Context, userID int64, code string, ttl time.Duration) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for k, expiry := range g.used {
		if expiry.Before(now) {
			delete(g.used, k)
		}
	}

	key := fmt.Sprintf("%d:%s", userID, code)
	if _, seen := g.used[key]; seen {
		return false, nil
	}
	g.used[key] = now.Add(ttl)
	return true, nil
}
