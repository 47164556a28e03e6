package ops

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "reviewprivacy/pkg/platform/audit"
	"reviewprivacy/pkg/platform/audit/store/memory"
)

type failingSink struct {
	calls int
	err   error
}

func (s *failingSink) Emit(context.Context, audit.Event) error {
	s.calls++
	return s.err
}

func (s *failingSink) Close() error { return nil }

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	cb.RecordFailure()
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, time.Minute)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_HalfOpensAfterCooldown(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(2, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	cb.RecordFailure()
	require.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	assert.True(t, cb.Allow(), "probe allowed after cooldown")

	// a failed trial reopens straight away
	cb.RecordFailure()
	assert.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())

	now = now.Add(2 * time.Minute)
	require.True(t, cb.Allow())
	cb.RecordSuccess()
	assert.False(t, cb.IsOpen())
	assert.True(t, cb.Allow())
}

func TestCircuitBreaker_AdmitsOneTrialAtATime(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(1, time.Minute)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Minute)

	var admitted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if cb.Allow() {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), admitted.Load(), "only the trial request passes")
	assert.True(t, cb.IsOpen())
}

func TestPublisher_DeliversToSink(t *testing.T) {
	sink := memory.NewInMemoryStore()
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	pub := New(sink, WithMetrics(m))

	err := pub.Emit(context.Background(), audit.Event{
		Action:  audit.EventReviewAnonymized,
		Subject: "review:7",
	})
	require.NoError(t, err)

	events, err := sink.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Published))
}

func TestPublisher_DropsWhileCircuitOpen(t *testing.T) {
	sink := &failingSink{err: errors.New("broker down")}
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	pub := New(sink,
		WithMetrics(m),
		WithCircuitBreaker(NewCircuitBreaker(2, time.Hour)),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx := context.Background()
	event := audit.Event{Action: audit.EventErasureCompleted}

	assert.Error(t, pub.Emit(ctx, event))
	assert.Error(t, pub.Emit(ctx, event))

	err := pub.Emit(ctx, event)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, 2, sink.calls, "open circuit skips the sink")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.PublishFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Dropped))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CircuitBreakerState))
}
