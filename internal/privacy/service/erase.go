package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"reviewprivacy/internal/platform/metrics"
	privacymodels "reviewprivacy/internal/privacy/models"
	"reviewprivacy/internal/reviews/models"
	dErrors "reviewprivacy/pkg/domain-errors"
	audit "reviewprivacy/pkg/platform/audit"
	"reviewprivacy/pkg/platform/privacy"
)

// Erase anonymizes one page of the reviews written under email.
//
// Each review is offered to the policy first. Denied reviews are retained and
// reported with a message. Allowed reviews are rewritten through the store;
// a write that changes nothing or fails marks the page as having retained
// items but adds no message. Done is reported when the page came back short.
func (s *Service) Erase(ctx context.Context, email string, page int) (privacymodels.ErasureResponse, error) {
	ctx, span := s.tracer.Start(ctx, "privacy.Erase", trace.WithAttributes(attribute.Int("privacy.page", page)))
	defer span.End()

	resp := privacymodels.ErasureResponse{
		ItemsRemoved:  false,
		ItemsRetained: false,
		Messages:      []string{},
	}
	if email == "" {
		resp.Done = true
		return resp, nil
	}
	if page < 1 {
		return privacymodels.ErasureResponse{}, dErrors.New(dErrors.CodeBadRequest, "page must be at least 1")
	}

	start := time.Now()
	reviews, err := s.store.FindByEmail(ctx, email, PageSize, offset(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find reviews")
		return privacymodels.ErasureResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reviews")
	}
	span.SetAttributes(attribute.Int("privacy.fetched", len(reviews)))
	subjectHash := hashSubject(email)

	for _, review := range reviews {
		candidate := s.anonymizedFields(review)

		decision := s.policy.ShouldAnonymize(ctx, review, candidate)
		if !decision.Allowed() {
			msg := decision.Message()
			if msg == "" {
				msg = fmt.Sprintf("Review %d contains personal data but could not be anonymized.", review.ID)
			}
			resp.Messages = append(resp.Messages, msg)
			resp.ItemsRetained = true
			s.retained(ctx, review.ID, subjectHash, metrics.RetainedByPolicy)
			continue
		}

		changed, err := s.store.Anonymize(ctx, review.ID, candidate)
		if err != nil {
			s.logger.WarnContext(ctx, "review anonymization failed",
				"review_id", review.ID,
				"error", err,
			)
		}
		if err != nil || !changed {
			resp.ItemsRetained = true
			s.retained(ctx, review.ID, subjectHash, metrics.RetainedByStore)
			continue
		}

		resp.ItemsRemoved = true
		if s.metrics != nil {
			s.metrics.IncAnonymized()
		}
		s.invalidate(ctx, review.ID)
		s.emit(ctx, audit.Event{
			Action:        audit.EventReviewAnonymized,
			Subject:       reviewSubject(review.ID),
			SubjectIDHash: subjectHash,
		})
	}

	resp.Done = len(reviews) < PageSize
	if s.metrics != nil {
		s.metrics.ObserveErasurePage(start)
	}
	if resp.Done {
		s.emit(ctx, audit.Event{
			Action:        audit.EventErasureCompleted,
			Subject:       fmt.Sprintf("page:%d", page),
			SubjectIDHash: subjectHash,
		})
	}

	s.logger.InfoContext(ctx, "review erasure page processed",
		"page", page,
		"fetched", len(reviews),
		"items_removed", resp.ItemsRemoved,
		"items_retained", resp.ItemsRetained,
		"done", resp.Done,
	)
	return resp, nil
}

// anonymizedFields builds the replacement written over a review's personal data.
func (s *Service) anonymizedFields(review models.Review) models.AnonymizedFields {
	return models.AnonymizedFields{
		AuthorEmail: s.masker.Mask(privacy.FieldEmail, review.AuthorEmail),
		AuthorName:  s.anonymousAuthor,
		AuthorIP:    s.masker.Mask(privacy.FieldIP, review.AuthorIP),
		AuthorURL:   s.masker.Mask(privacy.FieldURL, review.AuthorURL),
		UserAgent:   "",
		UserID:      0,
	}
}

func (s *Service) invalidate(ctx context.Context, reviewID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, reviewID); err != nil {
		s.logger.WarnContext(ctx, "review cache invalidation failed",
			"review_id", reviewID,
			"error", err,
		)
	}
}

func (s *Service) retained(ctx context.Context, reviewID int64, subjectHash, reason string) {
	if s.metrics != nil {
		s.metrics.IncRetained(reason)
	}
	s.emit(ctx, audit.Event{
		Action:        audit.EventReviewRetained,
		Subject:       reviewSubject(reviewID),
		SubjectIDHash: subjectHash,
		Reason:        reason,
	})
}
