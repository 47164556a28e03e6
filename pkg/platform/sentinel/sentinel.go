package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: row, metadata key or product does not exist
//   - ErrConflict: a name or key is already registered
//   - ErrRejected: the store refused a write (constraint or data exception)
//
// For validation errors (bad page numbers, missing fields), use pkg/domain-errors.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrRejected = errors.New("rejected")
)
