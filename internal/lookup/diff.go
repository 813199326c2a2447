package lookup

import (
	"context"
	"fmt"

	"github.com/roach88/plms/internal/model"
)

// DiffAPI is the slice of the API the diff flow calls.
type DiffAPI interface {
	ExternalRefresh(ctx context.Context, itemID int64) ([]model.DiffField, error)
	ExternalApply(ctx context.Context, itemID int64, fields []string) (*model.Item, error)
}

// DiffSession holds the fields offered by the last refresh of one item and
// the user's selection among them. Field names only ever come from the
// server's refresh response.
type DiffSession struct {
	api      DiffAPI
	itemID   int64
	fields   []model.DiffField
	selected map[string]bool
}

// NewDiffSession returns a session bound to itemID.
func NewDiffSession(a DiffAPI, itemID int64) *DiffSession {
	return &DiffSession{api: a, itemID: itemID, selected: map[string]bool{}}
}

// ItemID returns the item the session is bound to.
func (s *DiffSession) ItemID() int64 { return s.itemID }

// Fields returns the differences from the last refresh, in server order.
func (s *DiffSession) Fields() []model.DiffField { return s.fields }

// Refresh fetches differences for itemID and pre-selects all of them.
func (s *DiffSession) Refresh(ctx context.Context, itemID int64) ([]model.DiffField, error) {
	if itemID != s.itemID {
		return nil, fmt.Errorf("%w: bound to %d, got %d", ErrWrongItem, s.itemID, itemID)
	}
	diffs, err := s.api.ExternalRefresh(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if diffs == nil {
		diffs = []model.DiffField{}
	}
	s.fields = diffs
	s.selected = make(map[string]bool, len(diffs))
	for _, d := range diffs {
		s.selected[d.Field] = true
	}
	return diffs, nil
}

func (s *DiffSession) offered(field string) bool {
	for _, d := range s.fields {
		if d.Field == field {
			return true
		}
	}
	return false
}

// Toggle flips the selection of field.
func (s *DiffSession) Toggle(field string) error {
	if !s.offered(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.selected[field] = !s.selected[field]
	return nil
}

// Select marks field for applying.
func (s *DiffSession) Select(field string) error {
	if !s.offered(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.selected[field] = true
	return nil
}

// Deselect unmarks field.
func (s *DiffSession) Deselect(field string) error {
	if !s.offered(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	s.selected[field] = false
	return nil
}

// SelectOnly replaces the selection with fields.
func (s *DiffSession) SelectOnly(fields []string) error {
	for _, f := range fields {
		if !s.offered(f) {
			return fmt.Errorf("%w: %q", ErrUnknownField, f)
		}
	}
	for k := range s.selected {
		s.selected[k] = false
	}
	for _, f := range fields {
		s.selected[f] = true
	}
	return nil
}

// IsSelected reports whether field is marked.
func (s *DiffSession) IsSelected(field string) bool { return s.selected[field] }

// Selected returns the marked field names in refresh order.
func (s *DiffSession) Selected() []string {
	out := []string{}
	for _, d := range s.fields {
		if s.selected[d.Field] {
			out = append(out, d.Field)
		}
	}
	return out
}

// Apply sends the selection and returns the updated item. The session is
// cleared on success. Applying before any refresh is a phase error.
func (s *DiffSession) Apply(ctx context.Context, itemID int64) (*model.Item, error) {
	if itemID != s.itemID {
		return nil, fmt.Errorf("%w: bound to %d, got %d", ErrWrongItem, s.itemID, itemID)
	}
	if s.fields == nil {
		return nil, fmt.Errorf("%w: apply before refresh", ErrInvalidPhase)
	}
	item, err := s.api.ExternalApply(ctx, itemID, s.Selected())
	if err != nil {
		return nil, err
	}
	s.Reset()
	return item, nil
}

// Reset forgets the last refresh.
func (s *DiffSession) Reset() {
	s.fields = nil
	s.selected = map[string]bool{}
}
