package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"reviewprivacy/internal/privacy/registry"
	"reviewprivacy/pkg/requestcontext"
)

const (
	commandExport = "export"
	commandErase  = "erase"
)

// job is one export or erasure run for a single data subject.
type job struct {
	command string
	email   string
	actor   string
	out     io.Writer
}

func (j job) run(ctx context.Context, runner *registry.Runner, log *slog.Logger) error {
	requestID := uuid.NewString()
	ctx = requestcontext.WithTime(ctx, time.Now().UTC())
	ctx = requestcontext.WithRequestID(ctx, requestID)
	ctx = requestcontext.WithActorID(ctx, j.actor)

	log = log.With("request_id", requestID, "command", j.command)
	log.InfoContext(ctx, "privacy job started")

	var report any
	switch j.command {
	case commandExport:
		r, err := runner.Export(ctx, j.email)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		log.InfoContext(ctx, "privacy export finished", "items", len(r.Items), "pages", r.Pages)
		report = r
	case commandErase:
		r, err := runner.Erase(ctx, j.email)
		if err != nil {
			return fmt.Errorf("erase: %w", err)
		}
		log.InfoContext(ctx, "privacy erasure finished",
			"items_removed", r.ItemsRemoved,
			"items_retained", r.ItemsRetained,
			"pages", r.Pages,
			"sweeps", r.Sweeps,
		)
		report = r
	default:
		return fmt.Errorf("unknown command %q", j.command)
	}

	enc := json.NewEncoder(j.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
