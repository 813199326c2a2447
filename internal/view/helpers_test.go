package view_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/api"
	"github.com/roach88/plms/internal/testutil"
)

const catalog = `
items:
  - type: BOOK
    title: Dune
    year: 1965
    tags: [sci-fi, classic]
    pages: 400
    publisher: Ace
    authors: [Frank Herbert]
  - type: DVD
    title: Alien
    year: 1979
    tags: [horror]
    runtime: 117
    cast: [Sigourney Weaver]
  - type: DVD
    title: Heat
    year: 1995
    runtime: 170
  - type: BOOK
    title: Old Paperback
    year: 1980
    deleted: true
loans:
  - item: Alien
    to: Sam
    start: "2026-09-01"
    due: "2026-09-15"
`

type env struct {
	fake   *testutil.FakeAPI
	clock  *testutil.FixedClock
	client *api.Client
	ids    map[string]int64
}

// newEnv starts a seeded fake API and a client registered against it.
func newEnv(t *testing.T) *env {
	t.Helper()
	clock := testutil.NewFixedClock(testutil.DefaultNow)
	fake := testutil.NewFakeAPI(t, clock)
	ids := fake.MustSeed(t, catalog)
	token := fake.IssueToken("reader@example.com")

	client, err := api.New(fake.URL(), api.WithTokenSource(api.StaticToken(token)))
	require.NoError(t, err)
	return &env{fake: fake, clock: clock, client: client, ids: ids}
}

func always(string) bool { return true }

func never(string) bool { return false }

// prompts records confirmation prompts and answers yes.
type prompts []string

func (p *prompts) confirm(prompt string) bool {
	*p = append(*p, prompt)
	return true
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
