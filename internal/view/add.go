package view

import (
	"context"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/lookup"
	"github.com/roach88/plms/internal/model"
)

// Add offers the two creation paths: ISBN lookup with confirmation, and
// manual entry. Both end in Created.
type Add struct {
	base
	api        API
	candidates *lookup.CandidateSession
	created    *model.Item
}

// NewAdd returns an idle Add view.
func NewAdd(a API) *Add {
	return &Add{api: a, candidates: lookup.NewCandidateSession(a)}
}

// Lookup searches providers for isbn. A new lookup always starts from a
// clean candidate session.
func (v *Add) Lookup(ctx context.Context, isbn string) ([]model.ExternalCandidate, error) {
	gen := v.reset()
	if v.candidates.Phase() == lookup.PhaseConfirmed {
		v.candidates.Reset()
	}
	found, err := v.candidates.Lookup(ctx, isbn)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	return found, nil
}

// Candidates returns the candidates currently shown.
func (v *Add) Candidates() []model.ExternalCandidate {
	return v.candidates.Candidates()
}

// Confirm creates an item from the candidate at index.
func (v *Add) Confirm(ctx context.Context, index int) (*model.Item, error) {
	gen := v.reset()
	item, err := v.candidates.Confirm(ctx, index)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	v.setCreated(gen, item)
	return item, nil
}

// CreateManual validates f and creates the item. Invalid input is reported
// without any request.
func (v *Add) CreateManual(ctx context.Context, f *form.ManualForm) (*model.Item, error) {
	gen := v.reset()
	req, err := f.Build()
	if err != nil {
		return nil, v.fail(gen, err)
	}
	item, err := v.api.CreateItem(ctx, req)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	v.setCreated(gen, item)
	return item, nil
}

func (v *Add) setCreated(gen uint64, item *model.Item) {
	_ = v.commit(gen, func() { v.created = item })
}

// Created returns the last item created by either path.
func (v *Add) Created() *model.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.created
}
