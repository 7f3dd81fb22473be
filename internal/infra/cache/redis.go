// Package cache provides Redis-based caching for quick reads of recent opinions.
// Redis is never the source of truth; the opinion archive is.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MRamiBalles/murmur/internal/memory"
)

// ErrMiss is returned when a key is not cached.
var ErrMiss = errors.New("cache miss")

// RedisClient is an interface for Redis operations.
// This allows for easy mocking in tests.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LPush(ctx context.Context, key string, values ...interface{}) error
	LTrim(ctx context.Context, key string, start, stop int64) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
}

// GoRedis adapts a go-redis client to RedisClient.
type GoRedis struct {
	rdb *redis.Client
}

// NewGoRedis connects to addr and pings it.
func NewGoRedis(ctx context.Context, addr string, poolSize int) (*GoRedis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: poolSize,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &GoRedis{rdb: rdb}, nil
}

func (g *GoRedis) Close() error { return g.rdb.Close() }

func (g *GoRedis) Get(ctx context.Context, key string) (string, error) {
	v, err := g.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrMiss
	}
	return v, err
}

func (g *GoRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return g.rdb.Set(ctx, key, value, expiration).Err()
}

func (g *GoRedis) Del(ctx context.Context, keys ...string) error {
	return g.rdb.Del(ctx, keys...).Err()
}

func (g *GoRedis) LPush(ctx context.Context, key string, values ...interface{}) error {
	return g.rdb.LPush(ctx, key, values...).Err()
}

func (g *GoRedis) LTrim(ctx context.Context, key string, start, stop int64) error {
	return g.rdb.LTrim(ctx, key, start, stop).Err()
}

func (g *GoRedis) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return g.rdb.LRange(ctx, key, start, stop).Result()
}

func (g *GoRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return g.rdb.Expire(ctx, key, expiration).Err()
}

// RecentOpinions keeps the last few opinion entries per pawn for readers
// outside the engine, such as dashboards.
type RecentOpinions struct {
	client     RedisClient
	keep       int64
	expiration time.Duration
}

// NewRecentOpinions keeps up to keep entries per pawn.
func NewRecentOpinions(client RedisClient, keep int) *RecentOpinions {
	if keep <= 0 {
		keep = 20
	}
	return &RecentOpinions{
		client:     client,
		keep:       int64(keep),
		expiration: 30 * time.Minute,
	}
}

// Push records e at the head of its owner's list.
func (c *RecentOpinions) Push(ctx context.Context, e memory.Entry) error {
	key := c.ownerKey(int64(e.Owner))

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal opinion: %w", err)
	}
	if err := c.client.LPush(ctx, key, string(data)); err != nil {
		return err
	}
	if err := c.client.LTrim(ctx, key, 0, c.keep-1); err != nil {
		return err
	}
	return c.client.Expire(ctx, key, c.expiration)
}

// Recent returns up to limit cached entries for owner, newest first.
func (c *RecentOpinions) Recent(ctx context.Context, owner int64, limit int) ([]memory.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	raw, err := c.client.LRange(ctx, c.ownerKey(owner), 0, int64(limit)-1)
	if err != nil {
		return nil, err
	}
	out := make([]memory.Entry, 0, len(raw))
	for _, s := range raw {
		var e memory.Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal opinion: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}

// Invalidate removes the cached entries of a pawn.
func (c *RecentOpinions) Invalidate(ctx context.Context, owner int64) error {
	return c.client.Del(ctx, c.ownerKey(owner))
}

func (c *RecentOpinions) ownerKey(owner int64) string {
	return fmt.Sprintf("murmur:pawn:%d:opinions", owner)
}
