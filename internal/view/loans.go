package view

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/plms/internal/model"
)

// LoanFilter selects which loans the Loans view lists.
type LoanFilter string

const (
	LoanFilterAll      LoanFilter = "ALL"
	LoanFilterActive   LoanFilter = "ACTIVE"
	LoanFilterReturned LoanFilter = "RETURNED"
)

// ParseLoanFilter parses a user-supplied filter (case-insensitive).
func ParseLoanFilter(s string) (LoanFilter, error) {
	switch f := LoanFilter(strings.ToUpper(strings.TrimSpace(s))); f {
	case LoanFilterAll, LoanFilterActive, LoanFilterReturned:
		return f, nil
	}
	return "", fmt.Errorf("unknown loan filter %q (want ALL, ACTIVE or RETURNED)", s)
}

func (f LoanFilter) status() model.LoanStatus {
	switch f {
	case LoanFilterActive:
		return model.LoanActive
	case LoanFilterReturned:
		return model.LoanReturned
	}
	return ""
}

// Loans lists loans with overdue flags.
type Loans struct {
	base
	api    API
	clock  model.Clock
	filter LoanFilter
	loans  []model.Loan
}

// NewLoans returns an unloaded view showing active loans.
func NewLoans(a API, clock model.Clock) *Loans {
	if clock == nil {
		clock = model.SystemClock{}
	}
	return &Loans{api: a, clock: clock, filter: LoanFilterActive}
}

// Filter returns the current filter.
func (v *Loans) Filter() LoanFilter {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filter
}

// SetFilter changes the filter. Call Load to apply it.
func (v *Loans) SetFilter(f LoanFilter) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = f
}

// Load fetches loans for the current filter.
func (v *Loans) Load(ctx context.Context) error {
	gen := v.generation()
	loans, err := v.api.ListLoans(ctx, v.Filter().status())
	if err != nil {
		return v.fail(gen, err)
	}
	return v.commit(gen, func() { v.loans = loans })
}

// Loans returns the loaded loans.
func (v *Loans) Loans() []model.Loan {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loans
}

// Overdue returns the ids of loaded loans that are overdue today.
func (v *Loans) Overdue() map[int64]bool {
	today := model.Today(v.clock.Now())
	return model.OverdueLoanIDs(v.Loans(), today)
}

// MarkReturned closes loan id and reloads with the current filter.
func (v *Loans) MarkReturned(ctx context.Context, id int64) (*model.Loan, error) {
	gen := v.reset()
	loan, err := v.api.ReturnLoan(ctx, id)
	if err != nil {
		return nil, v.fail(gen, err)
	}
	if err := v.Load(ctx); err != nil {
		return nil, err
	}
	return loan, nil
}
