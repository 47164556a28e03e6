// Package products resolves the product a review belongs to. Products are owned
// by the storefront; this package only reads them.
package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"reviewprivacy/pkg/platform/sentinel"
)

// Product is the display view of a reviewed product.
type Product struct {
	ID     int64
	Name   string
	Exists bool
}

// Store looks up a product by ID, returning sentinel.ErrNotFound when absent.
type Store interface {
	FindByID(ctx context.Context, productID int64) (Product, error)
}

// PostgresStore reads products from the products table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByID(ctx context.Context, productID int64) (Product, error) {
	product := Product{ID: productID}
	err := s.db.QueryRowContext(ctx, `SELECT name FROM products WHERE id = $1`, productID).Scan(&product.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, sentinel.ErrNotFound
		}
		return Product{}, fmt.Errorf("find product: %w", err)
	}
	product.Exists = true
	return product, nil
}

// Save inserts a product and returns its ID.
func (s *PostgresStore) Save(ctx context.Context, name string) (int64, error) {
	var productID int64
	if err := s.db.QueryRowContext(ctx, `INSERT INTO products (name) VALUES ($1) RETURNING id`, name).Scan(&productID); err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return productID, nil
}

// InMemoryStore is a map-backed product store.
type InMemoryStore struct {
	mu       sync.RWMutex
	products map[int64]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{products: make(map[int64]string)}
}

// Put registers a product name under productID.
func (s *InMemoryStore) Put(productID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[productID] = name
}

func (s *InMemoryStore) FindByID(_ context.Context, productID int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.products[productID]
	if !ok {
		return Product{}, sentinel.ErrNotFound
	}
	return Product{ID: productID, Name: name, Exists: true}, nil
}
