package products

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"reviewprivacy/internal/platform/metrics"
	"reviewprivacy/pkg/platform/sentinel"
)

// Resolver turns product IDs into display names. Lookups, including misses,
// are cached for ttl so exporting a prolific reviewer does not hit the
// database once per review.
type Resolver struct {
	store   Store
	cache   *expirable.LRU[int64, Product]
	metrics *metrics.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMetrics records cache hits and misses.
func WithMetrics(m *metrics.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver builds a caching resolver. size <= 0 disables caching.
func NewResolver(store Store, size int, ttl time.Duration, opts ...ResolverOption) *Resolver {
	r := &Resolver{store: store}
	if size > 0 {
		r.cache = expirable.NewLRU[int64, Product](size, nil, ttl)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the product. A missing product is not an error: it comes back
// with Exists false so callers can fall back to the raw ID.
func (r *Resolver) Resolve(ctx context.Context, productID int64) (Product, error) {
	if r.cache != nil {
		if product, ok := r.cache.Get(productID); ok {
			if r.metrics != nil {
				r.metrics.IncProductCacheHit()
			}
			return product, nil
		}
		if r.metrics != nil {
			r.metrics.IncProductCacheMiss()
		}
	}

	product, err := r.store.FindByID(ctx, productID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return Product{}, err
		}
		product = Product{ID: productID}
	}
	if r.cache != nil {
		r.cache.Add(productID, product)
	}
	return product, nil
}
