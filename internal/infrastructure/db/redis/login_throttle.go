package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle counts failed logins per username. The counter expires one
// window after the first failure.
// Key format: login_fail:<username>
type LoginThrottle struct {
	client *redis.Client
}

// NewLoginThrottle creates a LoginThrottle wrapping the given Redis client.
func NewLoginThrottle(client *redis.Client) *LoginThrottle {
	return &LoginThrottle{client: client}
}

// Failures reports how many failures are recorded in the current window.
func (t *LoginThrottle) Failures(ctx context.Context, username string) (int, error) {
	n, err := t.client.Get(ctx, t.key(username)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("throttle check: %w", err)
	}
	return n, nil
}

// RecordFailure increments the counter, starting the window on first use.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string, window time.Duration) (int, error) {
	key := t.key(username)

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("throttle record: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, window).Err(); err != nil {
			return int(n), fmt.Errorf("throttle expire: %w", err)
		}
	}
	return int(n), nil
}

func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	return t.client.Del(ctx, t.key(username)).Err()
}

func (t *LoginThrottle) key(username string) string {
	return "login_fail:" + username
}
