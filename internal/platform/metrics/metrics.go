package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Retention reasons for ReviewsRetained.
const (
	RetainedByPolicy = "policy"
	RetainedByStore  = "store"
)

// Metrics holds the Prometheus collectors for privacy export and erasure.
type Metrics struct {
	ExportPages          prometheus.Counter
	ReviewsExported      prometheus.Counter
	ErasurePages         prometheus.Counter
	ReviewsAnonymized    prometheus.Counter
	ReviewsRetained      *prometheus.CounterVec
	PageDuration         *prometheus.HistogramVec
	ProductCacheHits     prometheus.Counter
	ProductCacheMisses   prometheus.Counter
	AuditPublishFailures prometheus.Counter
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ExportPages: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_export_pages_total",
			Help: "Total number of export pages served",
		}),
		ReviewsExported: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_reviews_exported_total",
			Help: "Total number of reviews included in personal data exports",
		}),
		ErasurePages: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_erasure_pages_total",
			Help: "Total number of erasure pages processed",
		}),
		ReviewsAnonymized: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_reviews_anonymized_total",
			Help: "Total number of reviews whose personal data was anonymized",
		}),
		ReviewsRetained: f.NewCounterVec(prometheus.CounterOpts{
			Name: "reviewprivacy_reviews_retained_total",
			Help: "Total number of reviews left with personal data, by reason",
		}, []string{"reason"}),
		PageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "reviewprivacy_page_duration_seconds",
			Help:    "Duration of a single export or erasure page",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		ProductCacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_product_cache_hits_total",
			Help: "Product name lookups served from cache",
		}),
		ProductCacheMisses: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_product_cache_misses_total",
			Help: "Product name lookups that went to the database",
		}),
		AuditPublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "reviewprivacy_audit_publish_failures_total",
			Help: "Audit events that could not be published",
		}),
	}
}

func (m *Metrics) ObserveExportPage(start time.Time, reviews int) {
	m.ExportPages.Inc()
	m.ReviewsExported.Add(float64(reviews))
	m.PageDuration.WithLabelValues("export").Observe(time.Since(start).Seconds())
}

func (m *Metrics) ObserveErasurePage(start time.Time) {
	m.ErasurePages.Inc()
	m.PageDuration.WithLabelValues("erase").Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncAnonymized() {
	m.ReviewsAnonymized.Inc()
}

// IncRetained records a review kept with personal data; reason is
// RetainedByPolicy or RetainedByStore.
func (m *Metrics) IncRetained(reason string) {
	m.ReviewsRetained.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncProductCacheHit() {
	m.ProductCacheHits.Inc()
}

func (m *Metrics) IncProductCacheMiss() {
	m.ProductCacheMisses.Inc()
}

func (m *Metrics) IncAuditPublishFailure() {
	m.AuditPublishFailures.Inc()
}
