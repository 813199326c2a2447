package view_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/view"
)

func TestLoans_FilterQuery(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := view.NewLoans(e.client, e.clock)
	assert.Equal(t, view.LoanFilterActive, v.Filter())

	require.NoError(t, v.Load(ctx))
	v.SetFilter(view.LoanFilterAll)
	require.NoError(t, v.Load(ctx))
	v.SetFilter(view.LoanFilterReturned)
	require.NoError(t, v.Load(ctx))

	reqs := e.fake.RequestsTo(http.MethodGet, "/loans")
	require.Len(t, reqs, 3)
	assert.Equal(t, "status=ACTIVE", reqs[0].Query)
	assert.Empty(t, reqs[1].Query)
	assert.Equal(t, "status=RETURNED", reqs[2].Query)
	assert.Empty(t, v.Loans())
}

func TestLoans_OverdueAndMarkReturned(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	v := view.NewLoans(e.client, e.clock)
	require.NoError(t, v.Load(ctx))
	require.Len(t, v.Loans(), 1)
	loan := v.Loans()[0]
	assert.Equal(t, "Alien", loan.ItemTitle)
	assert.True(t, v.Overdue()[loan.ID])

	// Before the due date nothing is overdue.
	e.clock.Set(e.clock.Now().AddDate(0, -1, -10))
	assert.Empty(t, v.Overdue())

	returned, err := v.MarkReturned(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, returned.Status)
	assert.Empty(t, v.Loans())

	_, err = v.MarkReturned(ctx, loan.ID)
	require.Error(t, err)
	assert.Equal(t, "Loan already returned", v.Banner().Error)
}

func TestParseLoanFilter(t *testing.T) {
	f, err := view.ParseLoanFilter(" returned ")
	require.NoError(t, err)
	assert.Equal(t, view.LoanFilterReturned, f)

	_, err = view.ParseLoanFilter("late")
	assert.Error(t, err)
}
