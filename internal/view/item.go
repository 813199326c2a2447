package view

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/lookup"
	"github.com/roach88/plms/internal/model"
)

// Messages shown by ItemDetail.
const (
	SavedMessage = "Item details have been updated"
)

var (
	// ErrProgressNeedsLoan is the local refusal to log progress without an
	// active loan. No request is made.
	ErrProgressNeedsLoan = errors.New("progress logging requires an active loan")

	// ErrLoanActive is the local refusal to create a second loan.
	ErrLoanActive = errors.New("item already has an active loan")

	// ErrNoActiveLoan is returned when returning a loan that is not held.
	ErrNoActiveLoan = errors.New("item has no active loan")
)

// ItemDetail shows one item with its loan, progress history and external
// metadata refresh.
type ItemDetail struct {
	base
	api        API
	clock      model.Clock
	id         int64
	item       *model.Item
	history    []model.ProgressLog
	activeLoan *model.Loan
	diff       *lookup.DiffSession
}

// NewItemDetail returns an unloaded detail view for item id.
func NewItemDetail(a API, id int64, clock model.Clock) *ItemDetail {
	if clock == nil {
		clock = model.SystemClock{}
	}
	return &ItemDetail{api: a, clock: clock, id: id, diff: lookup.NewDiffSession(a, id)}
}

// ID returns the item id the view is bound to.
func (v *ItemDetail) ID() int64 { return v.id }

// Load fetches the item, its progress history and its active loan in
// parallel. A failed loan fetch means "no active loan".
func (v *ItemDetail) Load(ctx context.Context) error {
	gen := v.generation()

	var (
		item    *model.Item
		history []model.ProgressLog
		loan    *model.Loan
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		item, err = v.api.GetItem(gctx, v.id)
		return err
	})
	g.Go(func() (err error) {
		history, err = v.api.ListProgress(gctx, v.id)
		return err
	})
	g.Go(func() error {
		l, err := v.api.GetActiveLoan(gctx, v.id)
		if err == nil {
			loan = l
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return v.fail(gen, err)
	}

	return v.commit(gen, func() {
		v.item = item
		v.history = history
		v.activeLoan = loan
	})
}

// Item returns the loaded item, or nil before Load.
func (v *ItemDetail) Item() *model.Item {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.item
}

// History returns the progress log entries.
func (v *ItemDetail) History() []model.ProgressLog {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.history
}

// ActiveLoan returns the held active loan, or nil.
func (v *ItemDetail) ActiveLoan() *model.Loan {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.activeLoan
}

// Status is derived from the held active loan, never stored.
func (v *ItemDetail) Status() model.MediaStatus {
	return model.DeriveStatus(v.ActiveLoan())
}

// CanCreateLoan reports whether the create-loan action is offered.
func (v *ItemDetail) CanCreateLoan() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.item != nil && v.activeLoan == nil
}

// CanLogProgress reports whether the log-progress action is offered.
func (v *ItemDetail) CanLogProgress() bool {
	return v.ActiveLoan() != nil
}

// EditForm returns a form pre-filled with the loaded item.
func (v *ItemDetail) EditForm() (*form.EditForm, error) {
	item := v.Item()
	if item == nil {
		return nil, ErrNotLoaded
	}
	return form.NewEditForm(item), nil
}

// NewLoanForm returns a loan form starting today.
func (v *ItemDetail) NewLoanForm() *form.LoanForm {
	return &form.LoanForm{StartDate: model.Today(v.clock.Now())}
}

// NewProgressForm returns a progress form dated today.
func (v *ItemDetail) NewProgressForm() *form.ProgressForm {
	return &form.ProgressForm{Date: model.Today(v.clock.Now())}
}

// Save sends the full update built from f. On a parse failure nothing is
// sent and the held item is unchanged.
func (v *ItemDetail) Save(ctx context.Context, f *form.EditForm) error {
	gen := v.reset()
	item := v.Item()
	if item == nil {
		return v.fail(gen, ErrNotLoaded)
	}
	req, err := f.Build(item.Type)
	if err != nil {
		return v.fail(gen, err)
	}
	if _, err := v.api.UpdateItem(ctx, v.id, req); err != nil {
		return v.fail(gen, err)
	}
	if err := v.Load(ctx); err != nil {
		return err
	}
	v.succeed(gen, SavedMessage)
	return nil
}

// Delete moves the item to the trash after confirm agrees. It reports
// whether the item was deleted.
func (v *ItemDetail) Delete(ctx context.Context, confirm Confirm) (bool, error) {
	gen := v.reset()
	item := v.Item()
	if item == nil {
		return false, v.fail(gen, ErrNotLoaded)
	}
	if !confirm(fmt.Sprintf("%q will be moved to Trash. Continue?", item.Title)) {
		return false, nil
	}
	if err := v.api.DeleteItem(ctx, v.id); err != nil {
		return false, v.fail(gen, err)
	}
	return true, nil
}

// CreateLoan lends the item out. It is refused locally while an active
// loan is held.
func (v *ItemDetail) CreateLoan(ctx context.Context, f *form.LoanForm) (*model.Loan, error) {
	gen := v.reset()
	if v.ActiveLoan() != nil {
		return nil, v.fail(gen, ErrLoanActive)
	}
	req, err := f.Build()
	if err != nil {
		return nil, v.fail(gen, err)
	}
	loan, err := v.api.CreateLoan(ctx, v.id, req)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	_ = v.commit(gen, func() { v.activeLoan = loan })
	return loan, v.Load(ctx)
}

// ReturnLoan closes the held loan, detaches it and reloads.
func (v *ItemDetail) ReturnLoan(ctx context.Context) (*model.Loan, error) {
	gen := v.reset()
	loan := v.ActiveLoan()
	if loan == nil {
		return nil, v.fail(gen, ErrNoActiveLoan)
	}
	returned, err := v.api.ReturnLoan(ctx, loan.ID)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	_ = v.commit(gen, func() { v.activeLoan = nil })
	return returned, v.Load(ctx)
}

// LogProgress appends a progress entry and reloads. Without an active loan
// it fails locally.
func (v *ItemDetail) LogProgress(ctx context.Context, f *form.ProgressForm) (*model.ProgressLog, error) {
	gen := v.reset()
	if v.ActiveLoan() == nil {
		return nil, v.fail(gen, ErrProgressNeedsLoan)
	}
	req, err := f.Build()
	if err != nil {
		return nil, v.fail(gen, err)
	}
	entry, err := v.api.LogProgress(ctx, v.id, req)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	return entry, v.Load(ctx)
}

// DeleteProgress removes one entry immediately and reloads.
func (v *ItemDetail) DeleteProgress(ctx context.Context, logID int64) error {
	gen := v.reset()
	if err := v.api.DeleteProgress(ctx, v.id, logID); err != nil {
		return v.fail(gen, err)
	}
	return v.Load(ctx)
}

// Diff returns the external metadata session of this item.
func (v *ItemDetail) Diff() *lookup.DiffSession { return v.diff }

// RefreshExternal fetches metadata differences and pre-selects all of them.
func (v *ItemDetail) RefreshExternal(ctx context.Context) ([]model.DiffField, error) {
	gen := v.reset()
	diffs, err := v.diff.Refresh(ctx, v.id)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	return diffs, nil
}

// ApplyExternal applies the selected differences and reloads.
func (v *ItemDetail) ApplyExternal(ctx context.Context) (*model.Item, error) {
	gen := v.reset()
	item, err := v.diff.Apply(ctx, v.id)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	return item, v.Load(ctx)
}
