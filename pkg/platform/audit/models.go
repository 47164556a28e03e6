package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance:
	// anything that changes or discloses a data subject's personal data.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine activity useful for debugging.
	CategoryOperations EventCategory = "operations"
)

// AuditEvent names an auditable action.
type AuditEvent string

const (
	EventPersonalDataExported AuditEvent = "personal_data_exported"
	EventReviewAnonymized     AuditEvent = "review_anonymized"
	EventReviewRetained       AuditEvent = "review_retained"
	EventErasureCompleted     AuditEvent = "erasure_completed"
	EventExportCompleted      AuditEvent = "export_completed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventPersonalDataExported: CategoryCompliance,
	EventReviewAnonymized:     CategoryCompliance,
	EventReviewRetained:       CategoryCompliance,
	EventErasureCompleted:     CategoryOperations,
	EventExportCompleted:      CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Event is emitted from the privacy service to record what happened to a data
// subject's reviews. It never carries the raw email address: SubjectIDHash is
// the SHA-256 of the normalised address.
type Event struct {
	ID            uuid.UUID
	Category      EventCategory
	Timestamp     time.Time
	Action        AuditEvent
	Subject       string // affected record, e.g. "review:42"
	SubjectIDHash string
	Reason        string
	RequestID     string
	ActorID       string
}

// Normalize fills in the ID, category and timestamp when unset.
func (e Event) Normalize(now time.Time) Event {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Category == "" {
		e.Category = e.Action.Category()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = now
	}
	return e
}
