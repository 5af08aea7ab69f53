// Package cache holds the short-lived per-user state of the outreach service in
// Redis. Sign-in sessions live under "session:<sha256(token)>" with the session
// TTL, and each user's saved drafts live in one hash under "drafts:<email>".
// Nothing here is authoritative; users, payments and email logs stay in Postgres.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Every request with a bearer token does one session GET, and draft calls add
// one hash operation, so a small pool covers the HTTP server's concurrency.
const (
	poolSize        = 10
	minIdleConns    = 2
	poolTimeout     = 4 * time.Second
	connMaxIdleTime = 5 * time.Minute
)

// Cache is the session store behind auth.Sessions and the draft store behind
// draft.Service.
type Cache struct {
	client *redis.Client
}

// New connects to redisURL and fails if Redis does not answer, since no request
// carrying a session can be served without it.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = poolSize
	opt.MinIdleConns = minIdleConns
	opt.PoolTimeout = poolTimeout
	opt.ConnMaxIdleTime = connMaxIdleTime

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach session store: %w", err)
	}
	return &Cache{client: client}, nil
}

// Ping backs the readiness check.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
