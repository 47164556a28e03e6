//go:build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"reviewprivacy/internal/platform/config"
	platformkafka "reviewprivacy/internal/platform/kafka"
	audit "reviewprivacy/pkg/platform/audit"
	"reviewprivacy/pkg/platform/audit/publishers/kafka"
	"reviewprivacy/pkg/testutil/containers"
)

func TestPublisher_RoundTripThroughBroker(t *testing.T) {
	mgr := containers.GetManager()
	rp := mgr.GetRedpanda(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "privacy.audit.it"
	client, err := platformkafka.NewClient(ctx, config.Kafka{
		Brokers:    []string{rp.Broker},
		AuditTopic: topic,
	})
	require.NoError(t, err)
	defer client.Close()
	require.NoError(t, platformkafka.EnsureTopic(ctx, client, topic, 1))

	pub := kafka.New(client, topic)
	require.NoError(t, pub.Emit(ctx, audit.Event{
		Action:        audit.EventErasureCompleted,
		SubjectIDHash: "hash-1",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())
	records := fetches.Records()
	require.NotEmpty(t, records)

	var got map[string]any
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, "erasure_completed", got["action"])
	require.Equal(t, "hash-1", string(records[0].Key))
}
