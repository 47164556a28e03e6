package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"reviewprivacy/internal/reviews/models"
	"reviewprivacy/pkg/platform/sentinel"
)

// PostgresStore persists reviews in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed review store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const reviewColumns = `id, created_at, author_email, author_name, author_ip, author_url,
	user_agent, user_id, content, product_id`

// Save inserts a review and returns it with its assigned ID.
func (s *PostgresStore) Save(ctx context.Context, review models.Review) (models.Review, error) {
	query := `
		INSERT INTO reviews (created_at, author_email, author_name, author_ip, author_url,
			user_agent, user_id, content, product_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		review.CreatedAt,
		review.AuthorEmail,
		review.AuthorName,
		review.AuthorIP,
		review.AuthorURL,
		review.UserAgent,
		review.UserID,
		review.Content,
		review.ProductID,
	).Scan(&review.ID)
	if err != nil {
		return models.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

// SetMeta upserts a metadata value for a review.
func (s *PostgresStore) SetMeta(ctx context.Context, reviewID int64, key, value string) error {
	query := `
		INSERT INTO review_meta (review_id, meta_key, meta_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (review_id, meta_key) DO UPDATE SET
			meta_value = EXCLUDED.meta_value
	`
	if _, err := s.db.ExecContext(ctx, query, reviewID, key, value); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("set review meta: %w", sentinel.ErrNotFound)
		}
		return fmt.Errorf("set review meta: %w", err)
	}
	return nil
}

// FindByID returns a single review.
func (s *PostgresStore) FindByID(ctx context.Context, reviewID int64) (models.Review, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, reviewID)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Review{}, sentinel.ErrNotFound
		}
		return models.Review{}, fmt.Errorf("find review by id: %w", err)
	}
	return review, nil
}

// FindByEmail returns a page of reviews written under email, ordered by ID so
// consecutive offsets never overlap.
func (s *PostgresStore) FindByEmail(ctx context.Context, email string, limit, offset int) ([]models.Review, error) {
	query := `SELECT ` + reviewColumns + `
		FROM reviews
		WHERE author_email = $1
		ORDER BY id
		LIMIT $2 OFFSET $3`

	rows, err := s.db.QueryContext(ctx, query, email, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query reviews by email: %w", err)
	}
	defer rows.Close()

	reviews := make([]models.Review, 0, limit)
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}

// Anonymize overwrites a review's personal data. It reports false when no row
// changed, either because the review is gone or it already holds these values.
// Writes refused by a constraint or data check return sentinel.ErrRejected.
func (s *PostgresStore) Anonymize(ctx context.Context, reviewID int64, fields models.AnonymizedFields) (bool, error) {
	query := `
		UPDATE reviews SET
			author_email = $2,
			author_name  = $3,
			author_ip    = $4,
			author_url   = $5,
			user_agent   = $6,
			user_id      = $7
		WHERE id = $1
		  AND (author_email, author_name, author_ip, author_url, user_agent, user_id)
		      IS DISTINCT FROM ($2::text, $3::text, $4::text, $5::text, $6::text, $7::bigint)
	`
	res, err := s.db.ExecContext(ctx, query,
		reviewID,
		fields.AuthorEmail,
		fields.AuthorName,
		fields.AuthorIP,
		fields.AuthorURL,
		fields.UserAgent,
		fields.UserID,
	)
	if err != nil {
		if isRejected(err) {
			return false, fmt.Errorf("anonymize review %d: %w", reviewID, sentinel.ErrRejected)
		}
		return false, fmt.Errorf("anonymize review %d: %w", reviewID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("anonymize review %d: rows affected: %w", reviewID, err)
	}
	return n > 0, nil
}

// GetMeta returns a metadata value, or sentinel.ErrNotFound.
func (s *PostgresStore) GetMeta(ctx context.Context, reviewID int64, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT meta_value FROM review_meta WHERE review_id = $1 AND meta_key = $2`,
		reviewID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", sentinel.ErrNotFound
		}
		return "", fmt.Errorf("get review meta: %w", err)
	}
	return value, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (models.Review, error) {
	var review models.Review
	err := row.Scan(
		&review.ID,
		&review.CreatedAt,
		&review.AuthorEmail,
		&review.AuthorName,
		&review.AuthorIP,
		&review.AuthorURL,
		&review.UserAgent,
		&review.UserID,
		&review.Content,
		&review.ProductID,
	)
	return review, err
}

// isRejected reports integrity violations (class 23) and data exceptions
// (class 22), which retrying the same write cannot fix.
func isRejected(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code.Class() {
	case "22", "23":
		return true
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
