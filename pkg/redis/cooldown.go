package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cooldown rejects repeated actions on the same key within a window.
type Cooldown struct {
	client redis.Cmdable
	prefix string
	window time.Duration
}

// NewCooldown creates a cooldown whose keys live under prefix
func NewCooldown(client redis.Cmdable, prefix string, window time.Duration) *Cooldown {
	return &Cooldown{client: client, prefix: prefix, window: window}
}

// Allow reports whether the action for key may proceed and, if so, starts a
// new window for it.
func (c *Cooldown) Allow(ctx context.Context, key string) (bool, error) {
	if c.window <= 0 {
		return true, nil
	}
	ok, err := c.client.SetNX(ctx, c.prefix+key, time.Now().Unix(), c.window).Result()
	if err != nil {
		return false, fmt.Errorf("cooldown %s: %w", key, err)
	}
	return ok, nil
}

// Reset ends the window for key early
func (c *Cooldown) Reset(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}
