package cache

import (
	"context"
	"fmt"
	"time"
)

// LastRemark caches the latest spoken remark per pawn.
type LastRemark struct {
	client     RedisClient
	expiration time.Duration
}

func NewLastRemark(client RedisClient) *LastRemark {
	return &LastRemark{client: client, expiration: 15 * time.Minute}
}

func (c *LastRemark) Set(ctx context.Context, speaker int64, text string) error {
	return c.client.Set(ctx, c.key(speaker), text, c.expiration)
}

// Get returns ErrMiss when the pawn has said nothing recently.
func (c *LastRemark) Get(ctx context.Context, speaker int64) (string, error) {
	return c.client.Get(ctx, c.key(speaker))
}

func (c *LastRemark) key(speaker int64) string {
	return fmt.Sprintf("murmur:pawn:%d:last_remark", speaker)
}
