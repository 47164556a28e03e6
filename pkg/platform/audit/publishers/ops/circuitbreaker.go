package ops

import (
	"sync"
	"time"
)

// CircuitBreaker stops the publisher from hammering a broker that is down.
// While open, events are dropped without a produce attempt. Once the cooldown
// has passed exactly one caller is let through as a trial; everyone else keeps
// being refused until that trial is recorded.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int           // consecutive failures to open
	cooldown  time.Duration // time spent open before a trial request
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
	probing   bool // a trial request is in flight
}

// NewCircuitBreaker creates a circuit breaker. Non-positive arguments fall
// back to 5 failures and a one minute cooldown.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a request may go through.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.probing {
		return false
	}
	if !cb.isOpen {
		return true
	}
	if !cb.now().After(cb.openUntil) {
		return false
	}
	cb.probing = true
	return true
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.isOpen = false
	cb.probing = false
}

// RecordFailure counts a failure and opens the circuit at the threshold.
// A failed trial reopens it for another cooldown.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.probing {
		cb.probing = false
		cb.isOpen = true
		cb.openUntil = cb.now().Add(cb.cooldown)
		return
	}
	cb.failures++
	if cb.failures >= cb.threshold {
		cb.isOpen = true
		cb.openUntil = cb.now().Add(cb.cooldown)
	}
}

// IsOpen reports whether requests are being refused. A circuit with a trial
// in flight still counts as open.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.isOpen
}
