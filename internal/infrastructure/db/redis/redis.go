package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout    = 5 * time.Second
	defaultAttempts   = 5
	defaultRetryDelay = time.Second
)

// Config holds the session backend connection settings. Attempts and
// RetryDelay control how long Connect waits for the server to come up.
type Config struct {
	Addr       string
	Password   string
	DB         int
	Timeout    time.Duration
	Attempts   int
	RetryDelay time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Attempts <= 0 {
		c.Attempts = defaultAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	return c
}

// Connect returns a client once the server answers PING, retrying up to
// cfg.Attempts times.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	cfg = cfg.withDefaults()

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})

	var err error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		if err = Ping(ctx, client, cfg.Timeout); err == nil {
			return client, nil
		}
		if attempt == cfg.Attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("redis connect: %w", ctx.Err())
		case <-time.After(cfg.RetryDelay):
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("redis not ready after %d attempts: %w", cfg.Attempts, err)
}

// Ping checks the server within timeout. It also backs the readiness probe.
func Ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
