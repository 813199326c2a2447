package harness

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/roach88/plms/internal/cli"
	"github.com/roach88/plms/internal/store"
	"github.com/roach88/plms/internal/testutil"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// session is the per-run environment shared by every step.
type session struct {
	dir   string
	state string
	clock *testutil.FixedClock
	fake  *testutil.FakeAPI
	ids   map[string]int64
}

// Run executes a scenario against a fresh fake API. Step and assertion
// failures are reported in the Result; the error is reserved for setup
// problems such as a bad catalog or an unknown ${Title}.
func Run(t testing.TB, sc *Scenario) (*Result, error) {
	t.Helper()
	s, err := newSession(t, sc)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	result.Fake = s.fake
	result.IDs = s.ids

	for i, step := range sc.Steps {
		args, err := s.expand(step.Run)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		ev := s.exec(step.Stdin, args)
		result.Trace = append(result.Trace, ev)
		checkStep(result, i, step, ev)
	}

	actx := &AssertionContext{Fake: s.fake, expand: s.expandString}
	for _, msg := range EvaluateAssertions(actx, sc.Assertions) {
		result.AddError("%s", msg)
	}
	return result, nil
}

func newSession(t testing.TB, sc *Scenario) (*session, error) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	for _, key := range []string{"PLMS_API_BASE_URL", "PLMS_TIMEOUT", "PLMS_STATE_PATH"} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			return nil, err
		}
	}

	clock := testutil.NewFixedClock(testutil.DefaultNow)
	s := &session{
		dir:   dir,
		state: filepath.Join(dir, "state.db"),
		clock: clock,
		fake:  testutil.NewFakeAPI(t, clock),
		ids:   map[string]int64{},
	}
	if strings.TrimSpace(sc.Catalog) != "" {
		ids, err := s.fake.Seed([]byte(sc.Catalog))
		if err != nil {
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
		s.ids = ids
	}
	if sc.User != "" {
		if err := s.signIn(sc.User); err != nil {
			return nil, fmt.Errorf("sign in %s: %w", sc.User, err)
		}
	}
	return s, nil
}

// signIn stores a credential for email as a completed login would.
func (s *session) signIn(email string) error {
	st, err := store.Open(s.state)
	if err != nil {
		return err
	}
	defer st.Close()
	token := s.fake.IssueToken(email)
	return st.SaveToken(context.Background(), token, s.fake.URL(), s.clock.Now())
}

func (s *session) exec(stdin string, args []string) TraceEvent {
	cmd := cli.NewRootCommandWithOptions(&cli.RootOptions{
		Clock:  s.clock,
		DotEnv: filepath.Join(s.dir, "absent.env"),
	})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--api", s.fake.URL(), "--state", s.state}, args...))

	err := cmd.Execute()
	return TraceEvent{
		Args:   args,
		Exit:   cli.GetExitCode(err),
		Stdout: out.String(),
		Stderr: errOut.String(),
	}
}

func (s *session) expand(args []string) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		v, err := s.expandString(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// expandString replaces ${Title} with the item id. Items created by earlier
// steps resolve too.
func (s *session) expandString(v string) (string, error) {
	var missing string
	expanded := placeholder.ReplaceAllStringFunc(v, func(m string) string {
		title := placeholder.FindStringSubmatch(m)[1]
		if id, ok := s.ids[title]; ok {
			return strconv.FormatInt(id, 10)
		}
		if it, ok := s.fake.ItemByTitle(title); ok {
			return strconv.FormatInt(it.ID, 10)
		}
		if missing == "" {
			missing = title
		}
		return m
	})
	if missing != "" {
		return "", fmt.Errorf("no item titled %q", missing)
	}
	return expanded, nil
}

func checkStep(r *Result, i int, step Step, ev TraceEvent) {
	want := Expect{}
	if step.Expect != nil {
		want = *step.Expect
	}
	label := fmt.Sprintf("steps[%d] %s", i, strings.Join(ev.Args, " "))
	if ev.Exit != want.Exit {
		r.AddError("%s: exit %d, want %d (stderr %q)", label, ev.Exit, want.Exit, ev.Stderr)
	}
	for _, sub := range want.Stdout {
		if !strings.Contains(ev.Stdout, sub) {
			r.AddError("%s: stdout %q does not contain %q", label, ev.Stdout, sub)
		}
	}
	for _, sub := range want.Stderr {
		if !strings.Contains(ev.Stderr, sub) {
			r.AddError("%s: stderr %q does not contain %q", label, ev.Stderr, sub)
		}
	}
}
