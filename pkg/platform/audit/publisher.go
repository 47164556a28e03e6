package audit

import "context"

// Publisher delivers audit events to a sink.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}
