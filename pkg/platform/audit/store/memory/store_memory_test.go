package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "reviewprivacy/pkg/platform/audit"
)

func TestInMemoryStore_EmitAndList(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	require.NoError(t, s.Emit(ctx, audit.Event{Action: audit.EventReviewAnonymized, Subject: "review:1"}))
	require.NoError(t, s.Emit(ctx, audit.Event{Action: audit.EventReviewRetained, Subject: "review:2"}))
	require.NoError(t, s.Emit(ctx, audit.Event{Action: audit.EventReviewAnonymized, Subject: "review:3"}))

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.NotEqual(t, uuid.Nil, all[0].ID)
	assert.False(t, all[0].Timestamp.IsZero())

	anonymized, err := s.ListByAction(ctx, audit.EventReviewAnonymized)
	require.NoError(t, err)
	require.Len(t, anonymized, 2)
	assert.Equal(t, "review:3", anonymized[1].Subject)

	s.Clear()
	all, err = s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
