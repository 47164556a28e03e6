package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mssola/useragent"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	privacymodels "reviewprivacy/internal/privacy/models"
	"reviewprivacy/internal/reviews/models"
	dErrors "reviewprivacy/pkg/domain-errors"
	audit "reviewprivacy/pkg/platform/audit"
	"reviewprivacy/pkg/platform/sentinel"
)

// dateLayout matches how review dates are shown to site owners.
const dateLayout = "2006-01-02 15:04:05"

// Export returns one page of the reviews written under email as export items.
//
// By default Done is only reported for an empty page, so a host always makes
// one extra call after the last page of results. WithCountBasedExportDone
// reports Done as soon as a page comes back short.
func (s *Service) Export(ctx context.Context, email string, page int) (privacymodels.ExportResponse, error) {
	ctx, span := s.tracer.Start(ctx, "privacy.Export", trace.WithAttributes(attribute.Int("privacy.page", page)))
	defer span.End()

	if page < 1 {
		return privacymodels.ExportResponse{}, dErrors.New(dErrors.CodeBadRequest, "page must be at least 1")
	}

	start := time.Now()
	reviews, err := s.store.FindByEmail(ctx, email, PageSize, offset(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find reviews")
		return privacymodels.ExportResponse{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reviews")
	}
	span.SetAttributes(attribute.Int("privacy.fetched", len(reviews)))

	if len(reviews) == 0 {
		s.observeExportPage(start, 0)
		s.emit(ctx, audit.Event{
			Action:        audit.EventExportCompleted,
			Subject:       fmt.Sprintf("page:%d", page),
			SubjectIDHash: hashSubject(email),
		})
		return privacymodels.ExportResponse{Data: []privacymodels.ExportItem{}, Done: true}, nil
	}

	items := make([]privacymodels.ExportItem, 0, len(reviews))
	for _, review := range reviews {
		item, err := s.exportItem(ctx, review)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "build export item")
			return privacymodels.ExportResponse{}, err
		}
		items = append(items, item)
	}
	s.observeExportPage(start, len(reviews))

	for _, review := range reviews {
		s.emit(ctx, audit.Event{
			Action:        audit.EventPersonalDataExported,
			Subject:       reviewSubject(review.ID),
			SubjectIDHash: hashSubject(email),
		})
	}

	done := false
	if s.countBasedDone && len(reviews) < PageSize {
		done = true
		s.emit(ctx, audit.Event{
			Action:        audit.EventExportCompleted,
			Subject:       fmt.Sprintf("page:%d", page),
			SubjectIDHash: hashSubject(email),
		})
	}

	s.logger.DebugContext(ctx, "review export page built",
		"page", page,
		"items", len(items),
		"done", done,
	)
	return privacymodels.ExportResponse{Data: items, Done: done}, nil
}

func (s *Service) exportItem(ctx context.Context, review models.Review) (privacymodels.ExportItem, error) {
	title, err := s.meta(ctx, review.ID, models.MetaTitle)
	if err != nil {
		return privacymodels.ExportItem{}, err
	}
	rating, err := s.meta(ctx, review.ID, models.MetaRating)
	if err != nil {
		return privacymodels.ExportItem{}, err
	}

	data := []privacymodels.DataPoint{
		{Name: "Review ID", Value: strconv.FormatInt(review.ID, 10)},
		{Name: "Date", Value: review.CreatedAt.Format(dateLayout)},
		{Name: "Email", Value: review.AuthorEmail},
		{Name: "Name", Value: review.AuthorName},
		{Name: "Title", Value: title},
		{Name: "Review", Value: review.Content},
		{Name: "Rating", Value: rating},
		{Name: "Product", Value: s.productName(ctx, review.ProductID)},
		{Name: "IP Address", Value: review.AuthorIP},
		{Name: "Reviewer URL", Value: review.AuthorURL},
		{Name: "User ID", Value: strconv.FormatInt(review.UserID, 10)},
		{Name: "User Agent", Value: review.UserAgent},
	}
	if browser := describeBrowser(review.UserAgent); browser != "" {
		data = append(data, privacymodels.DataPoint{Name: "Browser", Value: browser})
	}

	return privacymodels.ExportItem{
		GroupID:    GroupID,
		GroupLabel: FriendlyName,
		ItemID:     fmt.Sprintf("%s-%d", GroupID, review.ID),
		Data:       data,
	}, nil
}

// meta returns a review metadata value; a missing key reads as empty.
func (s *Service) meta(ctx context.Context, reviewID int64, key string) (string, error) {
	value, err := s.store.GetMeta(ctx, reviewID, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load review metadata")
	}
	return value, nil
}

// productName falls back to the raw product ID when the product is gone or
// cannot be looked up.
func (s *Service) productName(ctx context.Context, productID int64) string {
	raw := strconv.FormatInt(productID, 10)
	product, err := s.products.Resolve(ctx, productID)
	if err != nil {
		s.logger.WarnContext(ctx, "product lookup failed, exporting raw id",
			"product_id", productID,
			"error", err,
		)
		return raw
	}
	if !product.Exists {
		return raw
	}
	return product.Name
}

// describeBrowser renders a user agent as "Firefox 121.0 on Linux". Unknown
// agents and bots yield "".
func describeBrowser(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	if ua.Bot() {
		return ""
	}
	name, version := ua.Browser()
	if name == "" {
		return ""
	}
	out := name
	if version != "" {
		out += " " + version
	}
	if platform := ua.OS(); platform != "" {
		out += " on " + platform
	}
	return out
}

func (s *Service) observeExportPage(start time.Time, n int) {
	if s.metrics != nil {
		s.metrics.ObserveExportPage(start, n)
	}
}
