// Package requestcontext provides transport-independent context accessors for
// request-scoped values.
//
// The CLI and any host integration set these values; services only read them:
//
//	userID := requestcontext.UserID(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Tests inject values the same way:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

type (
	userIDKey      struct{}
	actorIDKey     struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// UserID returns the authenticated site user ID, or 0 for anonymous callers.
func UserID(ctx context.Context) int64 {
	if userID, ok := ctx.Value(userIDKey{}).(int64); ok {
		return userID
	}
	return 0
}

// WithUserID injects an authenticated user ID into the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// ActorID identifies who requested a privacy operation (an operator, a job name).
func ActorID(ctx context.Context) string {
	if actor, ok := ctx.Value(actorIDKey{}).(string); ok {
		return actor
	}
	return ""
}

// WithActorID injects the requesting actor into the context.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorIDKey{}, actorID)
}

// RequestID retrieves the correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request time, so a multi-page run stamps every audit event
// with the same instant.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
