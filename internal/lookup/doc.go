// Package lookup holds the two short-lived selection flows of the client:
// confirming one external candidate into a new item, and choosing which
// refreshed metadata fields to apply to an existing item.
//
// Both are explicit state machines owned by a single view. Their state is
// transient: it is never persisted and is discarded when the view goes
// away, so a stale selection cannot leak into an unrelated item.
package lookup

import "errors"

var (
	// ErrInvalidPhase is returned when an operation is invoked in a phase
	// that does not allow it.
	ErrInvalidPhase = errors.New("operation not allowed in current phase")

	// ErrUnknownField is returned when a field name was not part of the
	// last refresh.
	ErrUnknownField = errors.New("field not offered by last refresh")

	// ErrNoCandidate is returned when a candidate index is out of range.
	ErrNoCandidate = errors.New("no such candidate")

	// ErrWrongItem is returned when a diff session is used for another item.
	ErrWrongItem = errors.New("diff session belongs to another item")
)
