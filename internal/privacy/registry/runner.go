package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"reviewprivacy/internal/privacy/models"
)

var (
	// ErrPageLimit is returned when a callback keeps reporting more pages than
	// the runner allows.
	ErrPageLimit = errors.New("page limit exceeded")

	// ErrSweepLimit is returned when an eraser still removed items on its last
	// allowed sweep, so the runner cannot confirm nothing is left.
	ErrSweepLimit = errors.New("sweep limit exceeded")
)

const (
	defaultMaxPages  = 1000
	defaultMaxSweeps = 5
)

// Runner drives registered callbacks page by page until each reports Done.
type Runner struct {
	registry  *Registry
	maxPages  int
	maxSweeps int
	logger    *slog.Logger
}

type RunnerOption func(*Runner)

// WithMaxPages bounds the pages requested from a single callback.
func WithMaxPages(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxPages = n
		}
	}
}

// WithMaxSweeps bounds how many times erasure restarts from page 1.
func WithMaxSweeps(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxSweeps = n
		}
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(reg *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry:  reg,
		maxPages:  defaultMaxPages,
		maxSweeps: defaultMaxSweeps,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Export collects every exporter's items for email.
func (r *Runner) Export(ctx context.Context, email string) (models.ExportReport, error) {
	report := models.ExportReport{Email: email, Items: []models.ExportItem{}}
	for _, e := range r.registry.snapshotExporters() {
		for page := 1; ; page++ {
			if page > r.maxPages {
				return report, fmt.Errorf("exporter %q: %w after %d pages", e.name, ErrPageLimit, r.maxPages)
			}
			if err := ctx.Err(); err != nil {
				return report, err
			}
			resp, err := e.fn(ctx, email, page)
			if err != nil {
				return report, fmt.Errorf("exporter %q page %d: %w", e.name, page, err)
			}
			report.Pages++
			report.Items = append(report.Items, resp.Data...)
			if resp.Done {
				break
			}
		}
		r.logger.InfoContext(ctx, "exporter finished", "exporter", e.name, "items", len(report.Items))
	}
	return report, nil
}

// Erase runs every eraser for email.
//
// Erased rows stop matching email, so the rows after them move up by one page
// slot each. A page that removed anything is therefore requested again before
// moving on; only a page that removed nothing (every row on it retained) is
// stepped over. Each eraser is swept again from page 1 while the previous
// sweep removed anything, which picks up rows written while the job ran. An
// eraser that is still removing items on its last sweep fails with
// ErrSweepLimit rather than reporting a complete erasure.
func (r *Runner) Erase(ctx context.Context, email string) (models.ErasureReport, error) {
	report := models.ErasureReport{Email: email, Messages: []string{}}
	seen := make(map[string]struct{})

	for _, e := range r.registry.snapshotErasers() {
		for sweep := 1; ; sweep++ {
			removed, err := r.sweep(ctx, e, email, &report, seen)
			if err != nil {
				return report, err
			}
			if sweep > report.Sweeps {
				report.Sweeps = sweep
			}
			if !removed {
				break
			}
			if sweep == r.maxSweeps {
				r.logger.WarnContext(ctx, "eraser still removing items at sweep limit",
					"eraser", e.name,
					"sweeps", sweep,
				)
				return report, fmt.Errorf("eraser %q: %w after %d sweeps", e.name, ErrSweepLimit, sweep)
			}
		}
		r.logger.InfoContext(ctx, "eraser finished", "eraser", e.name, "sweeps", report.Sweeps)
	}
	return report, nil
}

// sweep pages through one eraser from page 1 until it reports Done. Requests
// are bounded by the page limit, repeats of the same page included.
func (r *Runner) sweep(ctx context.Context, e eraser, email string, report *models.ErasureReport, seen map[string]struct{}) (bool, error) {
	removed := false
	page := 1
	for requests := 1; ; requests++ {
		if requests > r.maxPages {
			return removed, fmt.Errorf("eraser %q: %w after %d pages", e.name, ErrPageLimit, r.maxPages)
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		resp, err := e.fn(ctx, email, page)
		if err != nil {
			return removed, fmt.Errorf("eraser %q page %d: %w", e.name, page, err)
		}
		report.Pages++
		if resp.ItemsRemoved {
			removed = true
			report.ItemsRemoved = true
		}
		if resp.ItemsRetained {
			report.ItemsRetained = true
		}
		for _, msg := range resp.Messages {
			if _, ok := seen[msg]; ok {
				continue
			}
			seen[msg] = struct{}{}
			report.Messages = append(report.Messages, msg)
		}
		if resp.Done {
			return removed, nil
		}
		if !resp.ItemsRemoved {
			page++
		}
	}
}
