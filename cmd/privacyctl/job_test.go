package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviewprivacy/internal/privacy/models"
	"reviewprivacy/internal/privacy/registry"
	"reviewprivacy/internal/privacy/service"
	"reviewprivacy/internal/products"
	reviewmodels "reviewprivacy/internal/reviews/models"
	"reviewprivacy/internal/reviews/store"
	"reviewprivacy/pkg/requestcontext"
)

func newRunner(t *testing.T, reviews *store.InMemoryStore) *registry.Runner {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := service.New(reviews, products.NewResolver(products.NewInMemoryStore(), 0, 0), service.WithLogger(log))
	require.NoError(t, err)
	reg := registry.New()
	require.NoError(t, svc.Register(reg))
	return registry.NewRunner(reg, registry.WithLogger(log))
}

func TestJobExportWritesReport(t *testing.T) {
	ctx := context.Background()
	reviews := store.NewInMemoryStore()
	for i := 0; i < 3; i++ {
		_, err := reviews.Save(ctx, reviewmodels.Review{AuthorEmail: "jane@example.com", Content: "nice"})
		require.NoError(t, err)
	}

	var out bytes.Buffer
	j := job{command: commandExport, email: "jane@example.com", actor: "ops", out: &out}
	require.NoError(t, j.run(ctx, newRunner(t, reviews), slog.New(slog.NewTextHandler(io.Discard, nil))))

	var report models.ExportReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "jane@example.com", report.Email)
	assert.Len(t, report.Items, 3)
	assert.Equal(t, 2, report.Pages)
}

func TestJobEraseWritesReport(t *testing.T) {
	ctx := context.Background()
	reviews := store.NewInMemoryStore()
	_, err := reviews.Save(ctx, reviewmodels.Review{AuthorEmail: "jane@example.com", Content: "nice"})
	require.NoError(t, err)

	var out bytes.Buffer
	j := job{command: commandErase, email: "jane@example.com", actor: "ops", out: &out}
	require.NoError(t, j.run(ctx, newRunner(t, reviews), slog.New(slog.NewTextHandler(io.Discard, nil))))

	var report models.ErasureReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.True(t, report.ItemsRemoved)
	assert.False(t, report.ItemsRetained)

	left, err := reviews.FindByEmail(ctx, "jane@example.com", 25, 0)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestJobStampsRequestContext(t *testing.T) {
	var seen context.Context
	reg := registry.New()
	require.NoError(t, reg.RegisterExporter("probe", func(ctx context.Context, _ string, _ int) (models.ExportResponse, error) {
		seen = ctx
		return models.ExportResponse{Done: true}, nil
	}))
	runner := registry.NewRunner(reg, registry.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	j := job{command: commandExport, email: "a@example.com", actor: "alice", out: io.Discard}
	require.NoError(t, j.run(context.Background(), runner, slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NotNil(t, seen)
	assert.Equal(t, "alice", requestcontext.ActorID(seen))
	assert.NotEmpty(t, requestcontext.RequestID(seen))
}

func TestRunRejectsBadArguments(t *testing.T) {
	var stderr bytes.Buffer
	assert.Error(t, run([]string{"-email", "a@example.com"}, io.Discard, &stderr))
	assert.Error(t, run([]string{"-email", "a@example.com", "purge"}, io.Discard, &stderr))
	assert.Contains(t, stderr.String(), "usage: privacyctl")
}
