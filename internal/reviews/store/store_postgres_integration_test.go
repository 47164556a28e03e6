//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"reviewprivacy/internal/reviews/models"
	"reviewprivacy/internal/reviews/store"
	"reviewprivacy/pkg/platform/sentinel"
	"reviewprivacy/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "review_meta", "reviews", "products")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seed(email string, n int) []models.Review {
	ctx := context.Background()
	var out []models.Review
	for i := 0; i < n; i++ {
		review, err := s.store.Save(ctx, models.Review{
			CreatedAt:   time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC),
			AuthorEmail: email,
			AuthorName:  "Jane",
			AuthorIP:    "203.0.113.7",
			AuthorURL:   "https://jane.example.com",
			UserAgent:   "curl/8.0",
			UserID:      42,
			Content:     "great product",
			ProductID:   9,
		})
		s.Require().NoError(err)
		out = append(out, review)
	}
	return out
}

func (s *PostgresStoreSuite) TestFindByEmailPagesInIDOrder() {
	ctx := context.Background()
	seeded := s.seed("jane@example.com", 30)
	s.seed("other@example.com", 3)

	first, err := s.store.FindByEmail(ctx, "jane@example.com", 25, 0)
	s.Require().NoError(err)
	s.Len(first, 25)

	second, err := s.store.FindByEmail(ctx, "jane@example.com", 25, 25)
	s.Require().NoError(err)
	s.Len(second, 5)

	all := append(first, second...)
	for i, review := range all {
		s.Equal(seeded[i].ID, review.ID)
	}

	none, err := s.store.FindByEmail(ctx, "jane@example.com", 25, 50)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *PostgresStoreSuite) TestFindByEmailIsExactMatch() {
	ctx := context.Background()
	s.seed("Jane@Example.com", 1)

	found, err := s.store.FindByEmail(ctx, "jane@example.com", 25, 0)
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *PostgresStoreSuite) TestAnonymizeReportsChangeOnce() {
	ctx := context.Background()
	review := s.seed("jane@example.com", 1)[0]
	fields := models.AnonymizedFields{
		AuthorEmail: "deleted@site.invalid",
		AuthorName:  "Anonymous Reviewer",
		AuthorIP:    "203.0.113.0",
		AuthorURL:   "https://site.invalid",
	}

	changed, err := s.store.Anonymize(ctx, review.ID, fields)
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.store.Anonymize(ctx, review.ID, fields)
	s.Require().NoError(err)
	s.False(changed, "re-applying identical values is a no-op")

	got, err := s.store.FindByID(ctx, review.ID)
	s.Require().NoError(err)
	s.Equal("deleted@site.invalid", got.AuthorEmail)
	s.Equal(int64(0), got.UserID)
	s.Empty(got.UserAgent)
	s.Equal(review.Content, got.Content)
}

func (s *PostgresStoreSuite) TestAnonymizeMissingReview() {
	changed, err := s.store.Anonymize(context.Background(), 999, models.AnonymizedFields{})
	s.Require().NoError(err)
	s.False(changed)
}

func (s *PostgresStoreSuite) TestMeta() {
	ctx := context.Background()
	review := s.seed("jane@example.com", 1)[0]

	s.Require().NoError(s.store.SetMeta(ctx, review.ID, models.MetaTitle, "Loved it"))
	s.Require().NoError(s.store.SetMeta(ctx, review.ID, models.MetaTitle, "Really loved it"))

	value, err := s.store.GetMeta(ctx, review.ID, models.MetaTitle)
	s.Require().NoError(err)
	s.Equal("Really loved it", value)

	_, err = s.store.GetMeta(ctx, review.ID, models.MetaRating)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	err = s.store.SetMeta(ctx, 12345, models.MetaTitle, "orphan")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
