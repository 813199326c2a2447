package testutil_test

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/testutil"
)

func newClient(t *testing.T) (*testutil.FakeAPI, *api.Client, map[string]int64) {
	t.Helper()
	fake := testutil.NewFakeAPI(t, nil)
	ids := fake.SeedFile(t, "testdata/catalog.yaml")
	token := fake.IssueToken("reader@example.com")
	client, err := api.New(fake.URL(), api.WithTokenSource(api.StaticToken(token)))
	require.NoError(t, err)
	return fake, client, ids
}

func TestFakeAPI_RequiresToken(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	client, err := api.New(fake.URL())
	require.NoError(t, err)

	_, err = client.ListItems(context.Background())
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "Unauthorized", err.Error())
}

func TestFakeAPI_RegisterLoginMe(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	client, err := api.New(fake.URL())
	require.NoError(t, err)
	ctx := context.Background()

	reg, err := client.Register(ctx, "ada@example.com", "secret", "Ada")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "Ada", reg.User.DisplayName)

	_, err = client.Register(ctx, "ada@example.com", "secret", "Ada")
	assert.Equal(t, http.StatusConflict, api.StatusCode(err))

	_, err = client.Login(ctx, "ada@example.com", "wrong")
	assert.EqualError(t, err, "Invalid email or password")

	login, err := client.Login(ctx, "ada@example.com", "secret")
	require.NoError(t, err)

	authed, err := api.New(fake.URL(), api.WithTokenSource(api.StaticToken(login.Token)))
	require.NoError(t, err)
	me, err := authed.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", me.Email)

	fake.RevokeTokens()
	_, err = authed.Me(ctx)
	assert.True(t, api.IsUnauthorized(err))
}

func TestFakeAPI_SeedDerivesStatus(t *testing.T) {
	_, client, ids := newClient(t)

	items, err := client.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 4, "trashed items are excluded")

	status := map[string]model.MediaStatus{}
	for _, it := range items {
		status[it.Title] = it.Status
	}
	assert.Equal(t, model.StatusLoaned, status["Alien"])
	assert.Equal(t, model.StatusAvailable, status["Heat"], "returned loans do not count")

	trash, err := client.ListTrash(context.Background())
	require.NoError(t, err)
	require.Len(t, trash, 1)
	assert.Equal(t, ids["Old Paperback"], trash[0].ID)
}

func TestFakeAPI_TagsAreSorted(t *testing.T) {
	_, client, ids := newClient(t)
	it, err := client.GetItem(context.Background(), ids["Dune"])
	require.NoError(t, err)
	assert.Equal(t, []string{"classic", "sci-fi"}, it.Tags)
}

func TestFakeAPI_SearchFiltersAndPages(t *testing.T) {
	_, client, _ := newClient(t)
	ctx := context.Background()

	res, err := client.SearchItems(ctx, api.SearchQuery{Tags: []string{"sci-fi"}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)

	res, err = client.SearchItems(ctx, api.SearchQuery{Author: "le guin"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "The Dispossessed", res.Items[0].Title)

	res, err = client.SearchItems(ctx, api.SearchQuery{Type: model.MediaDVD, Status: model.StatusLoaned})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Alien", res.Items[0].Title)

	res, err = client.SearchItems(ctx, api.SearchQuery{Page: 1, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.Page)
}

func TestFakeAPI_LoanRules(t *testing.T) {
	fake, client, ids := newClient(t)
	ctx := context.Background()

	_, err := client.CreateLoan(ctx, ids["Alien"], &model.LoanRequest{ToWhom: "Jo", StartDate: "2026-10-01", DueDate: "2026-10-10"})
	assert.EqualError(t, err, "Item is already on loan")

	overdue, err := client.OverdueLoans(ctx)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "Alien", overdue[0].ItemTitle)

	_, err = client.LogProgress(ctx, ids["Dune"], &model.ProgressRequest{Date: "2026-10-19", PageOrMinute: 10})
	assert.EqualError(t, err, "Progress logging requires an active loan")

	loan, err := client.CreateLoan(ctx, ids["Dune"], &model.LoanRequest{ToWhom: "Jo", StartDate: "2026-10-01", DueDate: "2026-10-30"})
	require.NoError(t, err)

	entry, err := client.LogProgress(ctx, ids["Dune"], &model.ProgressRequest{Date: "2026-10-19", PageOrMinute: 206})
	require.NoError(t, err)
	assert.Equal(t, 50, entry.Percent)
	assert.Equal(t, "Jo", entry.ReaderName)

	it, _ := fake.Item(ids["Dune"])
	assert.Equal(t, 50, it.ProgressPercent)
	assert.Equal(t, model.StatusLoaned, it.Status)

	returned, err := client.ReturnLoan(ctx, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoanReturned, returned.Status)
	assert.Equal(t, "2026-10-19", returned.ReturnedAt)

	active, err := client.GetActiveLoan(ctx, ids["Dune"])
	require.NoError(t, err)
	assert.Nil(t, active)

	all, err := client.ListLoans(ctx, model.LoanReturned)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFakeAPI_OverdueFollowsClock(t *testing.T) {
	fake, client, _ := newClient(t)
	fake.Clock().Set(testutil.DefaultNow.AddDate(0, -2, 0))

	overdue, err := client.OverdueLoans(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestFakeAPI_ReorderNeedsPermutation(t *testing.T) {
	_, client, ids := newClient(t)
	ctx := context.Background()

	lists, err := client.ListLists(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	weekend := lists[0]
	assert.Equal(t, []int64{ids["Heat"], ids["Dune"]}, weekend.ItemIDs())
	assert.Equal(t, "Heat", weekend.Items[0].Title)

	_, err = client.ReorderList(ctx, weekend.ID, []int64{ids["Dune"]})
	assert.Equal(t, http.StatusBadRequest, api.StatusCode(err))

	got, err := client.ReorderList(ctx, weekend.ID, []int64{ids["Dune"], ids["Heat"]})
	require.NoError(t, err)
	assert.Equal(t, []int64{ids["Dune"], ids["Heat"]}, got.ItemIDs())
	assert.Equal(t, 1, got.Items[1].Position)

	again, err := client.ReorderList(ctx, weekend.ID, []int64{ids["Dune"], ids["Heat"]})
	require.NoError(t, err)
	assert.Equal(t, got.Items, again.Items)

	_, err = client.AddListItem(ctx, weekend.ID, ids["Dune"], nil)
	assert.EqualError(t, err, "Item is already in the list")
}

func TestFakeAPI_ExternalRefreshAndApply(t *testing.T) {
	fake, client, ids := newClient(t)
	ctx := context.Background()
	fake.SetExternal(ids["Dune"], map[string]string{"title": "Dune", "publisher": "Chilton", "pages": "896"})

	diffs, err := client.ExternalRefresh(ctx, ids["Dune"])
	require.NoError(t, err)
	require.Len(t, diffs, 2)
	assert.Equal(t, model.DiffField{Field: "publisher", CurrentValue: "Ace", NewValue: "Chilton"}, diffs[0])
	assert.Equal(t, "pages", diffs[1].Field)

	it, err := client.ExternalApply(ctx, ids["Dune"], []string{"pages"})
	require.NoError(t, err)
	assert.Equal(t, 896, *it.BookInfo.Pages)
	assert.Equal(t, "Ace", it.BookInfo.Publisher)
}

func TestFakeAPI_LookupAndConfirm(t *testing.T) {
	fake, client, _ := newClient(t)
	ctx := context.Background()
	year := 1969
	fake.SetCandidates("9780441478125", []model.ExternalCandidate{
		{Provider: model.ProviderOpenLibrary, ExternalID: "OL1", Title: "The Left Hand of Darkness", Year: &year, Authors: []string{"Ursula K. Le Guin"}},
	})

	none, err := client.LookupISBN(ctx, "000")
	require.NoError(t, err)
	assert.Empty(t, none)

	cands, err := client.LookupISBN(ctx, "9780441478125")
	require.NoError(t, err)
	require.Len(t, cands, 1)

	it, err := client.ConfirmCandidate(ctx, model.NewConfirmRequest(cands[0], "9780441478125"))
	require.NoError(t, err)
	assert.Equal(t, model.MediaBook, it.Type)
	assert.Equal(t, 1969, it.Year)
	assert.Equal(t, "9780441478125", it.BookInfo.ISBN)
	require.Len(t, it.ExternalLinks, 1)
	assert.Equal(t, "OL1", it.ExternalLinks[0].ExternalID)
}

func TestFakeAPI_ExportImportRoundTrip(t *testing.T) {
	_, client, _ := newClient(t)
	ctx := context.Background()

	var doc bytes.Buffer
	_, err := client.Export(ctx, api.FormatJSON, &doc)
	require.NoError(t, err)
	assert.Contains(t, doc.String(), `"title":"Dune"`)

	summary, err := client.Import(ctx, api.FormatJSON, "plms-export.json", bytes.NewReader(doc.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Updated)
	assert.Zero(t, summary.Added)

	var archive bytes.Buffer
	_, err = client.Export(ctx, api.FormatCSV, &archive)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(archive.Bytes()), int64(archive.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.True(t, strings.HasPrefix(string(body), "id,type,title,year"))

	summary, err = client.Import(ctx, api.FormatCSV, "plms-export.zip", bytes.NewReader(archive.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Updated)
}

func TestFakeAPI_ImportRejectsInvalidRows(t *testing.T) {
	_, client, _ := newClient(t)
	bad := `{"items":[{"type":"BOOK","title":"","year":2000}]}`

	summary, err := client.Import(context.Background(), api.FormatJSON, "bad.json", strings.NewReader(bad))
	require.Error(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, []string{"row 1: Title is required"}, summary.Errors)
}

func TestFakeAPI_Sync(t *testing.T) {
	fake, client, _ := newClient(t)
	ctx := context.Background()

	_, err := client.RunSync(ctx)
	assert.EqualError(t, err, "Sync is disabled")

	_, err = client.SetSyncEnabled(ctx, true)
	require.NoError(t, err)
	fake.SetSyncConflicts(2)

	st, err := client.RunSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, "CONFLICTS", st.LastStatus)
	assert.Equal(t, 2, st.ConflictCount())
}

func TestFakeAPI_FailAndRequests(t *testing.T) {
	fake, client, _ := newClient(t)
	fake.Fail(http.MethodGet, "/items", http.StatusInternalServerError, "database is down")

	_, err := client.ListItems(context.Background())
	assert.EqualError(t, err, "database is down")
	assert.Equal(t, 1, fake.CountRequests(http.MethodGet, "/items"))

	fake.ClearFailures()
	_, err = client.ListItems(context.Background())
	require.NoError(t, err)

	last := fake.RequestsTo(http.MethodGet, "/items")[1]
	assert.NotEmpty(t, last.Header.Get(api.RequestIDHeader))
}

func TestSeed_UnknownReferences(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	_, err := fake.Seed([]byte("loans:\n  - item: Nothing\n    to: A\n"))
	assert.ErrorContains(t, err, `unknown item "Nothing"`)

	_, err = fake.Seed([]byte("items:\n  - type: VHS\n    title: X\n"))
	assert.ErrorContains(t, err, "unknown type")
}

func TestFakeAPI_SequentialRequestIDs(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	token := fake.IssueToken("ids@example.com")
	ids := testutil.NewSequentialIDs("cli")
	client, err := api.New(fake.URL(), api.WithTokenSource(api.StaticToken(token)), api.WithRequestIDs(ids.Next))
	require.NoError(t, err)

	_, err = client.ListItems(context.Background())
	require.NoError(t, err)
	_, err = client.ListLists(context.Background())
	require.NoError(t, err)

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "cli-0001", reqs[0].Header.Get(api.RequestIDHeader))
	assert.Equal(t, "cli-0002", reqs[1].Header.Get(api.RequestIDHeader))
}

func TestFakeAPI_UpdateKeepsAbsentFields(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	ids := fake.SeedFile(t, "testdata/catalog.yaml")
	token := fake.IssueToken("reader@example.com")
	dune := ids["Dune"]

	put := func(body string) {
		t.Helper()
		req, err := http.NewRequest(http.MethodPut, fake.URL()+"/items/"+strconv.FormatInt(dune, 10), strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	put(`{"title":"Dune Messiah","bookInfo":{"isbn":"9780441013593","publisher":"Ace"}}`)
	it, ok := fake.Item(dune)
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", it.Title)
	assert.Equal(t, 1965, it.Year)
	assert.Equal(t, "Good", it.Condition, "a missing key keeps the stored value")
	assert.Equal(t, "Living room", it.Location)
	assert.Equal(t, []string{"classic", "sci-fi"}, it.Tags)
	assert.Equal(t, []string{"Frank Herbert"}, it.BookInfo.Authors, "missing authors are kept")
	assert.Nil(t, it.BookInfo.Pages, "pages are always written")

	put(`{"condition":"","location":"","tags":[],"bookInfo":{"isbn":"","pages":null,"publisher":"","authors":[]}}`)
	it, _ = fake.Item(dune)
	assert.Equal(t, "Dune Messiah", it.Title)
	assert.Empty(t, it.Condition)
	assert.Empty(t, it.Location)
	assert.Empty(t, it.Tags)
	assert.Empty(t, it.BookInfo.Authors)
	assert.Empty(t, it.BookInfo.Publisher)
}
