package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"outreach-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// sessionPrefix is the Redis key prefix for session tokens.
const sessionPrefix = "session:"

// sessionKey hashes the token so raw bearer tokens never sit in Redis.
func sessionKey(token string) string {
	hash := sha256.Sum256([]byte(token))
	return sessionPrefix + hex.EncodeToString(hash[:16])
}

func (c *Cache) SaveSession(ctx context.Context, token, email string, ttl time.Duration) error {
	if err := c.client.Set(ctx, sessionKey(token), email, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSession returns the email bound to token, or domain.ErrNotFound.
func (c *Cache) GetSession(ctx context.Context, token string) (string, error) {
	email, err := c.client.Get(ctx, sessionKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	return email, nil
}

func (c *Cache) DeleteSession(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
