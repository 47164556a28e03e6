package service

import (
	"context"
	"fmt"

	audit "reviewprivacy/pkg/platform/audit"
	"reviewprivacy/pkg/platform/privacy"
	"reviewprivacy/pkg/requestcontext"
)

// emit publishes an audit event. Audit delivery never fails a privacy
// operation; failures are logged and counted.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	event.Timestamp = requestcontext.Now(ctx)
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorID = requestcontext.ActorID(ctx)

	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		if s.metrics != nil {
			s.metrics.IncAuditPublishFailure()
		}
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err,
		)
	}
}

func reviewSubject(reviewID int64) string {
	return fmt.Sprintf("review:%d", reviewID)
}

func hashSubject(email string) string {
	return privacy.HashEmail(email)
}
