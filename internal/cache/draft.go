package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"outreach-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

// draftPrefix is the Redis key prefix for a user's draft hash.
const draftPrefix = "drafts:"

func draftKey(email string) string {
	return draftPrefix + email
}

func (c *Cache) SaveDraft(ctx context.Context, email string, d domain.Draft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := c.client.HSet(ctx, draftKey(email), d.ID, data).Err(); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

func (c *Cache) GetDraft(ctx context.Context, email, id string) (*domain.Draft, error) {
	data, err := c.client.HGet(ctx, draftKey(email), id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var d domain.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

// ListDrafts returns the user's drafts ordered by id.
func (c *Cache) ListDrafts(ctx context.Context, email string) ([]domain.Draft, error) {
	raw, err := c.client.HGetAll(ctx, draftKey(email)).Result()
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return decodeDrafts(raw)
}

func decodeDrafts(raw map[string]string) ([]domain.Draft, error) {
	drafts := make([]domain.Draft, 0, len(raw))
	for id, data := range raw {
		var d domain.Draft
		if err := json.Unmarshal([]byte(data), &d); err != nil {
			return nil, fmt.Errorf("decode draft %s: %w", id, err)
		}
		drafts = append(drafts, d)
	}
	sort.Slice(drafts, func(i, j int) bool { return drafts[i].ID < drafts[j].ID })
	return drafts, nil
}

func (c *Cache) DeleteDraft(ctx context.Context, email, id string) error {
	n, err := c.client.HDel(ctx, draftKey(email), id).Result()
	if err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
