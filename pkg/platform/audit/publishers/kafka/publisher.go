// Package kafka publishes audit events as JSON records with franz-go.
//
// Records are keyed by the subject hash so every event about one data subject
// lands on the same partition, in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "reviewprivacy/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the publisher needs.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Publisher writes audit events to a Kafka topic.
type Publisher struct {
	producer Producer
	topic    string
	closer   func()
	now      func() time.Time
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithCloser sets a function run by Close, typically (*kgo.Client).Close.
func WithCloser(fn func()) Option {
	return func(p *Publisher) {
		p.closer = fn
	}
}

// WithClock overrides the clock used for events without a timestamp.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		if now != nil {
			p.now = now
		}
	}
}

func New(producer Producer, topic string, opts ...Option) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// payload is the JSON structure published to Kafka.
type payload struct {
	ID            string `json:"id"`
	Category      string `json:"category"`
	Timestamp     string `json:"timestamp"`
	Action        string `json:"action"`
	Subject       string `json:"subject"`
	SubjectIDHash string `json:"subject_id_hash,omitempty"`
	Reason        string `json:"reason,omitempty"`
	RequestID     string `json:"request_id,omitempty"`
	ActorID       string `json:"actor_id,omitempty"`
}

// Emit produces the event synchronously and returns the broker error, if any.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	event = event.Normalize(p.now())
	body, err := json.Marshal(payload{
		ID:            event.ID.String(),
		Category:      string(event.Category),
		Timestamp:     event.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:        string(event.Action),
		Subject:       event.Subject,
		SubjectIDHash: event.SubjectIDHash,
		Reason:        event.Reason,
		RequestID:     event.RequestID,
		ActorID:       event.ActorID,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic:     p.topic,
		Key:       []byte(event.SubjectIDHash),
		Value:     body,
		Timestamp: event.Timestamp,
		Headers: []kgo.RecordHeader{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "category", Value: []byte(event.Category)},
		},
	}
	if err := p.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.closer != nil {
		p.closer()
	}
	return nil
}
