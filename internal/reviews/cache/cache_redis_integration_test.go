//go:build integration

package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"reviewprivacy/internal/reviews/cache"
	"reviewprivacy/internal/reviews/models"
	"reviewprivacy/pkg/platform/sentinel"
	"reviewprivacy/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedis(s.redis.Client, "reviews:", time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestSetGetInvalidate() {
	ctx := context.Background()
	review := models.Review{ID: 7, AuthorEmail: "jane@example.com", Content: "nice"}

	s.Require().NoError(s.cache.Set(ctx, review))
	got, err := s.cache.Get(ctx, 7)
	s.Require().NoError(err)
	s.Equal(review.AuthorEmail, got.AuthorEmail)

	s.Require().NoError(s.cache.Invalidate(ctx, 7))
	_, err = s.cache.Get(ctx, 7)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *RedisCacheSuite) TestInvalidateMissingKey() {
	s.NoError(s.cache.Invalidate(context.Background(), 12345))
}
