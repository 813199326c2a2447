package lookup

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/plms/internal/model"
)

// Phase is the state of a CandidateSession.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCandidatesShown
	PhaseConfirmed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCandidatesShown:
		return "candidates-shown"
	case PhaseConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// CandidateAPI is the slice of the API the candidate flow calls.
type CandidateAPI interface {
	LookupISBN(ctx context.Context, isbn string) ([]model.ExternalCandidate, error)
	ConfirmCandidate(ctx context.Context, req model.ConfirmRequest) (*model.Item, error)
}

// CandidateSession runs idle → candidates-shown → confirmed → idle.
type CandidateSession struct {
	api        CandidateAPI
	phase      Phase
	isbn       string
	candidates []model.ExternalCandidate
	created    *model.Item
}

// NewCandidateSession returns an idle session.
func NewCandidateSession(a CandidateAPI) *CandidateSession {
	return &CandidateSession{api: a}
}

// Phase returns the current phase.
func (s *CandidateSession) Phase() Phase { return s.phase }

// ISBN returns the ISBN that produced the shown candidates.
func (s *CandidateSession) ISBN() string { return s.isbn }

// Candidates returns the candidates of the last successful lookup.
func (s *CandidateSession) Candidates() []model.ExternalCandidate { return s.candidates }

// Created returns the item created by the last confirmation.
func (s *CandidateSession) Created() *model.Item { return s.created }

// Lookup queries providers for isbn. Previous candidates are cleared before
// the request, so a failed lookup leaves none behind. It is allowed from
// idle and from candidates-shown; after a confirmation call Reset first.
func (s *CandidateSession) Lookup(ctx context.Context, isbn string) ([]model.ExternalCandidate, error) {
	if s.phase == PhaseConfirmed {
		return nil, fmt.Errorf("%w: lookup while %s", ErrInvalidPhase, s.phase)
	}
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil, fmt.Errorf("isbn is required")
	}

	s.phase = PhaseIdle
	s.isbn = ""
	s.candidates = nil

	found, err := s.api.LookupISBN(ctx, isbn)
	if err != nil {
		return nil, err
	}
	s.isbn = isbn
	s.candidates = found
	s.phase = PhaseCandidatesShown
	return found, nil
}

// Confirm creates an item from the candidate at index, sending its fields
// plus the ISBN that produced it.
func (s *CandidateSession) Confirm(ctx context.Context, index int) (*model.Item, error) {
	if s.phase != PhaseCandidatesShown {
		return nil, fmt.Errorf("%w: confirm while %s", ErrInvalidPhase, s.phase)
	}
	if index < 0 || index >= len(s.candidates) {
		return nil, fmt.Errorf("%w: %d of %d", ErrNoCandidate, index, len(s.candidates))
	}

	item, err := s.api.ConfirmCandidate(ctx, model.NewConfirmRequest(s.candidates[index], s.isbn))
	if err != nil {
		return nil, err
	}
	s.created = item
	s.phase = PhaseConfirmed
	return item, nil
}

// Reset discards candidates and the created item and returns to idle.
func (s *CandidateSession) Reset() {
	s.phase = PhaseIdle
	s.isbn = ""
	s.candidates = nil
	s.created = nil
}
