package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/store"
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

// cliEnv runs commands against a seeded fake API with isolated config and
// state locations.
type cliEnv struct {
	t     *testing.T
	dir   string
	state string
	fake  *testutil.FakeAPI
	clock *testutil.FixedClock
	ids   map[string]int64
}

type result struct {
	out    string
	stderr string
	err    error
	code   int
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, key := range []string{"PLMS_API_BASE_URL", "PLMS_TIMEOUT", "PLMS_STATE_PATH"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	clock := testutil.NewFixedClock(testutil.DefaultNow)
	fake := testutil.NewFakeAPI(t, clock)
	return &cliEnv{
		t:     t,
		dir:   dir,
		state: filepath.Join(dir, "state.db"),
		fake:  fake,
		clock: clock,
		ids:   fake.MustSeed(t, catalog),
	}
}

// signIn saves a valid credential for email, as a previous login would.
func (e *cliEnv) signIn(email string) {
	e.t.Helper()
	st, err := store.Open(e.state)
	require.NoError(e.t, err)
	defer st.Close()
	token := e.fake.IssueToken(email)
	require.NoError(e.t, st.SaveToken(context.Background(), token, e.fake.URL(), e.clock.Now()))
}

// exec runs the root command with exactly args.
func (e *cliEnv) exec(stdin string, args ...string) result {
	e.t.Helper()
	opts := &RootOptions{
		Clock:  e.clock,
		DotEnv: filepath.Join(e.dir, "absent.env"),
	}
	cmd := NewRootCommandWithOptions(opts)
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.Execute()
	return result{out: out.String(), stderr: errOut.String(), err: err, code: GetExitCode(err)}
}

// run points the command at the fake API and the env's state file.
func (e *cliEnv) run(args ...string) result {
	e.t.Helper()
	return e.exec("", e.globals(args)...)
}

// runIn is run with stdin.
func (e *cliEnv) runIn(stdin string, args ...string) result {
	e.t.Helper()
	return e.exec(stdin, e.globals(args)...)
}

func (e *cliEnv) globals(args []string) []string {
	return append([]string{"--api", e.fake.URL(), "--state", e.state}, args...)
}

func (e *cliEnv) id(title string) string {
	return strconv.FormatInt(e.ids[title], 10)
}

// envelope is the JSON output shape with the payload left raw.
type envelope struct {
	Status string              `json:"status"`
	Data   jsoniter.RawMessage `json:"data"`
	Error  *CLIError           `json:"error"`
}

// decodeData parses JSON output and decodes its data into v.
func decodeData(t *testing.T, res result, v any) {
	t.Helper()
	require.NoError(t, res.err, res.stderr)
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(res.out), &env), res.out)
	require.Equal(t, "ok", env.Status)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// decodeError parses a JSON error envelope.
func decodeError(t *testing.T, res result) *CLIError {
	t.Helper()
	require.Error(t, res.err)
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(res.out), &env), res.out)
	require.Equal(t, "error", env.Status)
	require.NotNil(t, env.Error)
	return env.Error
}
