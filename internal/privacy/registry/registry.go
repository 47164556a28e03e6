// Package registry is the host side of the privacy tooling: named exporter
// and eraser registries and the loop that pages through them.
package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"reviewprivacy/internal/privacy/models"
	dErrors "reviewprivacy/pkg/domain-errors"
	"reviewprivacy/pkg/platform/sentinel"
)

// ExportFunc returns one page of personal data for email. Pages start at 1.
type ExportFunc func(ctx context.Context, email string, page int) (models.ExportResponse, error)

// EraseFunc erases one page of personal data for email. Pages start at 1.
type EraseFunc func(ctx context.Context, email string, page int) (models.ErasureResponse, error)

type exporter struct {
	name string
	fn   ExportFunc
}

type eraser struct {
	name string
	fn   EraseFunc
}

// Registry keeps exporters and erasers in registration order.
type Registry struct {
	mu        sync.RWMutex
	exporters []exporter
	erasers   []eraser
}

func New() *Registry {
	return &Registry{}
}

// RegisterExporter adds fn under name. Names are unique per registry.
func (r *Registry) RegisterExporter(name string, fn ExportFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "exporter requires a name and a callback")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.exporters {
		if e.name == name {
			return fmt.Errorf("exporter %q: %w", name, sentinel.ErrConflict)
		}
	}
	r.exporters = append(r.exporters, exporter{name: name, fn: fn})
	return nil
}

// RegisterEraser adds fn under name. Names are unique per registry.
func (r *Registry) RegisterEraser(name string, fn EraseFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "eraser requires a name and a callback")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.erasers {
		if e.name == name {
			return fmt.Errorf("eraser %q: %w", name, sentinel.ErrConflict)
		}
	}
	r.erasers = append(r.erasers, eraser{name: name, fn: fn})
	return nil
}

// Exporters returns the registered exporter names in order.
func (r *Registry) Exporters() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.exporters))
	for _, e := range r.exporters {
		names = append(names, e.name)
	}
	return names
}

// Erasers returns the registered eraser names in order.
func (r *Registry) Erasers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.erasers))
	for _, e := range r.erasers {
		names = append(names, e.name)
	}
	return names
}

func (r *Registry) snapshotExporters() []exporter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]exporter(nil), r.exporters...)
}

func (r *Registry) snapshotErasers() []eraser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]eraser(nil), r.erasers...)
}
