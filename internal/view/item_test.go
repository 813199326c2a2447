package view_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/form"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/view"
)

func loadDetail(t *testing.T, e *env, title string) *view.ItemDetail {
	t.Helper()
	d := view.NewItemDetail(e.client, e.ids[title], e.clock)
	require.NoError(t, d.Load(context.Background()))
	return d
}

func TestItemDetail_LoadsActiveLoan(t *testing.T) {
	e := newEnv(t)
	d := loadDetail(t, e, "Alien")

	require.NotNil(t, d.ActiveLoan())
	assert.Equal(t, "Sam", d.ActiveLoan().ToWhom)
	assert.Equal(t, model.StatusLoaned, d.Status())
	assert.False(t, d.CanCreateLoan())
	assert.True(t, d.CanLogProgress())
}

func TestItemDetail_LoanFetchFailureMeansNoLoan(t *testing.T) {
	e := newEnv(t)
	e.fake.Fail(http.MethodGet, "/items/"+itoa(e.ids["Alien"])+"/loan", http.StatusInternalServerError, "loan service down")

	d := loadDetail(t, e, "Alien")
	assert.Nil(t, d.ActiveLoan())
	assert.Equal(t, model.StatusAvailable, d.Status())
	assert.True(t, d.Banner().Empty())
}

func TestItemDetail_ProgressNeedsLoan(t *testing.T) {
	e := newEnv(t)
	d := loadDetail(t, e, "Dune")
	assert.False(t, d.CanLogProgress())

	pf := d.NewProgressForm()
	pf.PageOrMinute = "10"
	_, err := d.LogProgress(context.Background(), pf)
	assert.ErrorIs(t, err, view.ErrProgressNeedsLoan)
	assert.Equal(t, "progress logging requires an active loan", d.Banner().Error)
	assert.Zero(t, e.fake.CountRequests(http.MethodPost, "/items/"+itoa(e.ids["Dune"])+"/progress"))
}

func TestItemDetail_LoanProgressReturnCycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := loadDetail(t, e, "Dune")

	_, err := d.CreateLoan(ctx, &form.LoanForm{ToWhom: "Jo", StartDate: "2026-10-01", DueDate: "2026-11-01"})
	require.NoError(t, err)
	assert.False(t, d.CanCreateLoan())

	_, err = d.CreateLoan(ctx, &form.LoanForm{ToWhom: "Kim", StartDate: "2026-10-01", DueDate: "2026-11-01"})
	assert.ErrorIs(t, err, view.ErrLoanActive)
	assert.Equal(t, 1, e.fake.CountRequests(http.MethodPost, "/items/"+itoa(e.ids["Dune"])+"/loan"))

	entry, err := d.LogProgress(ctx, &form.ProgressForm{Date: "2026-10-19", PageOrMinute: "100", DurationMinutes: "45"})
	require.NoError(t, err)
	assert.Equal(t, 25, entry.Percent)
	require.Len(t, d.History(), 1)
	assert.Equal(t, "Jo", d.History()[0].ReaderName)
	assert.Equal(t, 25, d.Item().ProgressPercent)

	require.NoError(t, d.DeleteProgress(ctx, entry.ID))
	assert.Empty(t, d.History())

	returned, err := d.ReturnLoan(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, returned.Status)
	assert.Nil(t, d.ActiveLoan())
	assert.Equal(t, model.StatusAvailable, d.Status())
	assert.Equal(t, model.StatusAvailable, d.Item().Status)

	_, err = d.ReturnLoan(ctx)
	assert.ErrorIs(t, err, view.ErrNoActiveLoan)
}

func TestItemDetail_ServerErrorIsVerbatim(t *testing.T) {
	e := newEnv(t)
	d := loadDetail(t, e, "Dune")

	_, err := d.CreateLoan(context.Background(), &form.LoanForm{ToWhom: "Jo", StartDate: "2026-10-10", DueDate: "2026-10-01"})
	require.Error(t, err)
	assert.Equal(t, "Due date must not be before start date", d.Banner().Error)
	assert.True(t, d.CanCreateLoan())
}

func TestItemDetail_Save(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := loadDetail(t, e, "Dune")

	f, err := d.EditForm()
	require.NoError(t, err)
	f.Pages = "four hundred"
	require.Error(t, d.Save(ctx, f))
	assert.Contains(t, d.Banner().Error, "pages")
	assert.Zero(t, e.fake.CountRequests(http.MethodPut, "/items/"+itoa(e.ids["Dune"])))
	assert.Equal(t, 400, *d.Item().BookInfo.Pages)

	f.Pages = "412"
	f.Location = "Shelf 2"
	f.Tags = "classic"
	require.NoError(t, d.Save(ctx, f))
	assert.Equal(t, view.SavedMessage, d.Banner().Success)
	assert.Equal(t, 412, *d.Item().BookInfo.Pages)
	assert.Equal(t, "Shelf 2", d.Item().Location)
	assert.Equal(t, []string{"classic"}, d.Item().Tags)

	puts := e.fake.RequestsTo(http.MethodPut, "/items/"+itoa(e.ids["Dune"]))
	require.Len(t, puts, 1)
	assert.NotContains(t, string(puts[0].Body), "status")
}

func TestItemDetail_SaveClearsOptionalFields(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	d := loadDetail(t, e, "Dune")
	path := "/items/" + itoa(e.ids["Dune"])

	f, err := d.EditForm()
	require.NoError(t, err)
	f.Condition = "Worn"
	require.NoError(t, d.Save(ctx, f))
	assert.Equal(t, "Worn", d.Item().Condition)

	f, err = d.EditForm()
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", f.Authors)
	f.Condition = ""
	f.Authors = ""
	require.NoError(t, d.Save(ctx, f))

	assert.Empty(t, d.Item().Condition)
	assert.Empty(t, d.Item().BookInfo.Authors)
	stored, ok := e.fake.Item(e.ids["Dune"])
	require.True(t, ok)
	assert.Empty(t, stored.Condition, "the server saw the cleared condition")
	assert.Empty(t, stored.BookInfo.Authors)
	assert.Equal(t, "Ace", stored.BookInfo.Publisher)

	puts := e.fake.RequestsTo(http.MethodPut, path)
	require.Len(t, puts, 2)
	assert.Contains(t, string(puts[1].Body), `"condition":""`)
	assert.Contains(t, string(puts[1].Body), `"authors":[]`)
}

func TestItemDetail_DeleteDeclined(t *testing.T) {
	e := newEnv(t)
	d := loadDetail(t, e, "Dune")

	deleted, err := d.Delete(context.Background(), never)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Zero(t, e.fake.CountRequests(http.MethodDelete, "/items/"+itoa(e.ids["Dune"])))
}

func TestItemDetail_NotLoaded(t *testing.T) {
	e := newEnv(t)
	d := view.NewItemDetail(e.client, e.ids["Dune"], e.clock)

	_, err := d.EditForm()
	assert.ErrorIs(t, err, view.ErrNotLoaded)
	_, err = d.Delete(context.Background(), always)
	assert.ErrorIs(t, err, view.ErrNotLoaded)
}

func TestItemDetail_ExternalRefreshApply(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.ids["Dune"]
	e.fake.SetExternal(id, map[string]string{"title": "Dune (Deluxe)", "publisher": "Chilton"})
	d := loadDetail(t, e, "Dune")

	diffs, err := d.RefreshExternal(ctx)
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	require.NoError(t, d.Diff().Deselect("title"))

	item, err := d.ApplyExternal(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Dune", item.Title)
	assert.Equal(t, "Chilton", d.Item().BookInfo.Publisher)

	applies := e.fake.RequestsTo(http.MethodPost, "/items/"+itoa(id)+"/external-apply")
	require.Len(t, applies, 1)
	assert.JSONEq(t, `{"fields":["publisher"]}`, string(applies[0].Body))
}
