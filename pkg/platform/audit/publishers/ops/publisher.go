// Package ops provides a best-effort audit publisher.
//
// Publisher forwards events to a sink (Kafka in production) behind a circuit
// breaker. A failing sink never fails the privacy operation that emitted the
// event: failures are logged and counted, and the error is returned so the
// caller may record it.
package ops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	audit "reviewprivacy/pkg/platform/audit"
)

// ErrCircuitOpen is returned when an event is dropped by the circuit breaker.
var ErrCircuitOpen = errors.New("audit circuit breaker open")

// Sink is where events are delivered.
type Sink interface {
	Emit(ctx context.Context, event audit.Event) error
	Close() error
}

type Publisher struct {
	sink    Sink
	breaker *CircuitBreaker
	logger  *slog.Logger
	metrics *Metrics
	timeout time.Duration
}

// Option configures the Publisher.
type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func WithCircuitBreaker(cb *CircuitBreaker) Option {
	return func(p *Publisher) {
		p.breaker = cb
	}
}

// WithTimeout bounds each delivery attempt.
func WithTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		p.timeout = d
	}
}

func New(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:    sink,
		breaker: NewCircuitBreaker(5, 30*time.Second),
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit delivers the event unless the circuit is open.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if !p.breaker.Allow() {
		if p.metrics != nil {
			p.metrics.IncDropped()
		}
		return ErrCircuitOpen
	}

	emitCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		emitCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.sink.Emit(emitCtx, event); err != nil {
		p.breaker.RecordFailure()
		if p.metrics != nil {
			p.metrics.IncPublishFailures()
			p.metrics.SetCircuitOpen(p.breaker.IsOpen())
		}
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit event not delivered",
				"action", event.Action,
				"subject", event.Subject,
				"circuit_open", p.breaker.IsOpen(),
				"error", err,
			)
		}
		return fmt.Errorf("deliver audit event: %w", err)
	}

	p.breaker.RecordSuccess()
	if p.metrics != nil {
		p.metrics.IncPublished()
		p.metrics.SetCircuitOpen(false)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.sink.Close()
}
