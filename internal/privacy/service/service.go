// Package service implements the personal data exporter and eraser for
// product reviews.
//
// Both operations page through the reviews written under one email address,
// PageSize rows at a time, and are driven page by page by the privacy host
// (see internal/privacy/registry).
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"reviewprivacy/internal/platform/metrics"
	"reviewprivacy/internal/products"
	"reviewprivacy/internal/reviews/models"
	audit "reviewprivacy/pkg/platform/audit"
	"reviewprivacy/pkg/platform/privacy"
)

const (
	// PageSize is the number of reviews fetched per export or erasure page.
	PageSize = 25

	FriendlyName           = "Customer Reviews"
	GroupID                = "edd-reviews"
	DefaultAnonymousAuthor = "Anonymous Reviewer"
)

// Store is the review persistence the service reads and anonymizes.
type Store interface {
	FindByEmail(ctx context.Context, email string, limit, offset int) ([]models.Review, error)
	// Anonymize reports whether the row changed.
	Anonymize(ctx context.Context, reviewID int64, fields models.AnonymizedFields) (bool, error)
	GetMeta(ctx context.Context, reviewID int64, key string) (string, error)
}

type ProductResolver interface {
	Resolve(ctx context.Context, productID int64) (products.Product, error)
}

// CacheInvalidator drops cached copies of a review after it is anonymized.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, reviewID int64) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service exports and erases review personal data.
type Service struct {
	store           Store
	products        ProductResolver
	cache           CacheInvalidator
	policy          Policy
	masker          privacy.Masker
	auditPublisher  AuditPublisher
	logger          *slog.Logger
	metrics         *metrics.Metrics
	tracer          trace.Tracer
	anonymousAuthor string
	countBasedDone  bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMasker sets how emails, IPs and URLs are masked. Defaults to privacy.FixedMasker.
func WithMasker(m privacy.Masker) Option {
	return func(s *Service) {
		s.masker = m
	}
}

// WithPolicy sets the retention policy consulted before each anonymization.
func WithPolicy(p Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

// WithAnonymousAuthor sets the name written over anonymized reviews.
func WithAnonymousAuthor(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.anonymousAuthor = name
		}
	}
}

// WithCountBasedExportDone makes Export report Done on a short page instead of
// waiting for an empty one. This changes what hosts observe: the final page of
// results already carries Done=true.
func WithCountBasedExportDone(enabled bool) Option {
	return func(s *Service) {
		s.countBasedDone = enabled
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// New constructs a Service. The store and product resolver are required.
func New(store Store, resolver ProductResolver, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("review store is required")
	}
	if resolver == nil {
		return nil, errors.New("product resolver is required")
	}
	s := &Service{
		store:           store,
		products:        resolver,
		policy:          AllowAll(),
		masker:          privacy.FixedMasker{},
		logger:          slog.Default(),
		anonymousAuthor: DefaultAnonymousAuthor,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("reviewprivacy/internal/privacy/service")
	}
	return s, nil
}

func offset(page int) int {
	return PageSize * (page - 1)
}
