package store

import (
	"context"
	"slices"
	"sync"

	"reviewprivacy/internal/reviews/models"
	"reviewprivacy/pkg/platform/sentinel"
)

// InMemoryStore keeps reviews and their metadata in maps. Reads return copies.
type InMemoryStore struct {
	mu      sync.RWMutex
	reviews map[int64]models.Review
	meta    map[int64]map[string]string
	nextID  int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		reviews: make(map[int64]models.Review),
		meta:    make(map[int64]map[string]string),
	}
}

// Save inserts or replaces a review. A zero ID is assigned the next free ID.
func (s *InMemoryStore) Save(_ context.Context, review models.Review) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if review.ID == 0 {
		s.nextID++
		review.ID = s.nextID
	} else if review.ID > s.nextID {
		s.nextID = review.ID
	}
	s.reviews[review.ID] = review
	return review, nil
}

// SetMeta stores a metadata value for a review.
func (s *InMemoryStore) SetMeta(_ context.Context, reviewID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[reviewID]; !ok {
		return sentinel.ErrNotFound
	}
	if s.meta[reviewID] == nil {
		s.meta[reviewID] = make(map[string]string)
	}
	s.meta[reviewID][key] = value
	return nil
}

// FindByID returns a single review.
func (s *InMemoryStore) FindByID(_ context.Context, reviewID int64) (models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	review, ok := s.reviews[reviewID]
	if !ok {
		return models.Review{}, sentinel.ErrNotFound
	}
	return review, nil
}

// FindByEmail returns reviews whose author email matches exactly, in ID order.
func (s *InMemoryStore) FindByEmail(_ context.Context, email string, limit, offset int) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []models.Review
	for _, review := range s.reviews {
		if review.AuthorEmail == email {
			matched = append(matched, review)
		}
	}
	slices.SortFunc(matched, func(a, b models.Review) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	if offset >= len(matched) {
		return []models.Review{}, nil
	}
	end := min(offset+limit, len(matched))
	return append([]models.Review{}, matched[offset:end]...), nil
}

// Anonymize overwrites the personal data of a review. It reports false when the
// review is missing or already holds exactly these values.
func (s *InMemoryStore) Anonymize(_ context.Context, reviewID int64, fields models.AnonymizedFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	review, ok := s.reviews[reviewID]
	if !ok || fields.Matches(review) {
		return false, nil
	}
	s.reviews[reviewID] = fields.Apply(review)
	return true, nil
}

// GetMeta returns a metadata value, or sentinel.ErrNotFound.
func (s *InMemoryStore) GetMeta(_ context.Context, reviewID int64, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.meta[reviewID][key]
	if !ok {
		return "", sentinel.ErrNotFound
	}
	return value, nil
}
