package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewprivacy/internal/platform/metrics"
)

type countingStore struct {
	Store
	calls int
	err   error
}

func (c *countingStore) FindByID(ctx context.Context, productID int64) (Product, error) {
	c.calls++
	if c.err != nil {
		return Product{}, c.err
	}
	return c.Store.FindByID(ctx, productID)
}

func TestResolverResolvesAndCaches(t *testing.T) {
	mem := NewInMemoryStore()
	mem.Put(9, "Ebook Bundle")
	store := &countingStore{Store: mem}
	m := metrics.New(prometheus.NewRegistry())
	r := NewResolver(store, 16, time.Minute, WithMetrics(m))

	for i := 0; i < 3; i++ {
		product, err := r.Resolve(context.Background(), 9)
		require.NoError(t, err)
		assert.True(t, product.Exists)
		assert.Equal(t, "Ebook Bundle", product.Name)
	}
	assert.Equal(t, 1, store.calls)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ProductCacheHits))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ProductCacheMisses))
}

func TestResolverMissingProduct(t *testing.T) {
	store := &countingStore{Store: NewInMemoryStore()}
	r := NewResolver(store, 16, time.Minute)

	product, err := r.Resolve(context.Background(), 77)
	require.NoError(t, err)
	assert.False(t, product.Exists)
	assert.Equal(t, int64(77), product.ID)

	_, err = r.Resolve(context.Background(), 77)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "misses are cached too")
}

func TestResolverPropagatesStoreErrors(t *testing.T) {
	store := &countingStore{Store: NewInMemoryStore(), err: errors.New("db down")}
	r := NewResolver(store, 0, 0)

	_, err := r.Resolve(context.Background(), 1)
	assert.Error(t, err)

	_, err = r.Resolve(context.Background(), 1)
	assert.Error(t, err)
	assert.Equal(t, 2, store.calls, "errors are not cached")
}
