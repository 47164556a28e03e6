// Package cache holds the read-through review cache the storefront uses and the
// invalidation hook erasure calls after rewriting a review.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"reviewprivacy/internal/reviews/models"
	"reviewprivacy/pkg/platform/sentinel"
)

// RedisCache caches reviews as JSON under "<prefix><id>".
type RedisCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis builds a review cache. A zero ttl keeps entries until invalidated.
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(reviewID int64) string {
	return c.prefix + strconv.FormatInt(reviewID, 10)
}

// Get returns a cached review or sentinel.ErrNotFound.
func (c *RedisCache) Get(ctx context.Context, reviewID int64) (models.Review, error) {
	raw, err := c.client.Get(ctx, c.key(reviewID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Review{}, sentinel.ErrNotFound
		}
		return models.Review{}, fmt.Errorf("get cached review: %w", err)
	}
	var review models.Review
	if err := json.Unmarshal(raw, &review); err != nil {
		return models.Review{}, fmt.Errorf("decode cached review: %w", err)
	}
	return review, nil
}

// Set stores a review.
func (c *RedisCache) Set(ctx context.Context, review models.Review) error {
	raw, err := json.Marshal(review)
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}
	if err := c.client.Set(ctx, c.key(review.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache review: %w", err)
	}
	return nil
}

// Invalidate drops the cached copy of a review. Missing keys are not an error.
func (c *RedisCache) Invalidate(ctx context.Context, reviewID int64) error {
	if err := c.client.Del(ctx, c.key(reviewID)).Err(); err != nil {
		return fmt.Errorf("invalidate review %d: %w", reviewID, err)
	}
	return nil
}

// Noop satisfies the invalidation hook when no cache is configured.
type Noop struct{}

func (Noop) Invalidate(context.Context, int64) error { return nil }
