package httpserver

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewprivacy/internal/platform/metrics"
	"reviewprivacy/pkg/testutil"
)

func TestRouter(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.IncAnonymized()

	healthy := func(context.Context) error { return nil }
	broken := func(context.Context) error { return errors.New("connection refused") }

	t.Run("liveness", func(t *testing.T) {
		rr := testutil.DoRequest(Router(reg, nil), testutil.NewRequest(t, http.MethodGet, "/health/live"))
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "status", "ok")
	})

	t.Run("readiness with healthy dependencies", func(t *testing.T) {
		h := Router(reg, map[string]Check{"postgres": healthy, "redis": healthy})
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/health/ready"))
		testutil.AssertStatusOK(t, rr)
		resp := testutil.UnmarshalResponse[readyResponse](t, rr)
		assert.Equal(t, "ok", resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("readiness with a failing dependency", func(t *testing.T) {
		h := Router(reg, map[string]Check{"postgres": healthy, "redis": broken})
		rr := testutil.DoRequest(h, testutil.NewRequest(t, http.MethodGet, "/health/ready"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		resp := testutil.UnmarshalResponse[readyResponse](t, rr)
		assert.Equal(t, "fail", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"].Message)
	})

	t.Run("metrics", func(t *testing.T) {
		rr := testutil.DoRequest(Router(reg, nil), testutil.NewRequest(t, http.MethodGet, "/metrics"))
		testutil.AssertStatusOK(t, rr)
		body := string(testutil.ReadBody(t, rr))
		require.Contains(t, body, "reviewprivacy_reviews_anonymized_total 1")
	})
}
