package testutil

import (
	"context"
	"time"

	"reviewprivacy/pkg/requestcontext"
)

// FixedTime is the request time pinned by Context.
var FixedTime = time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

// Context returns a context set up the way the CLI sets one up for a job run:
// a pinned request time, a request ID and an actor.
func Context() context.Context {
	ctx := requestcontext.WithTime(context.Background(), FixedTime)
	ctx = requestcontext.WithRequestID(ctx, "test-request")
	return requestcontext.WithActorID(ctx, "test")
}

// WithSignedInUser marks the context as belonging to an authenticated site user.
func WithSignedInUser(ctx context.Context, userID int64) context.Context {
	return requestcontext.WithUserID(ctx, userID)
}
