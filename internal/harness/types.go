package harness

import (
	"fmt"

	"github.com/roach88/plms/internal/testutil"
)

// TraceEvent records one step as it ran. Args are the expanded step
// arguments without the --api and --state globals the harness adds.
type TraceEvent struct {
	Args   []string `json:"args"`
	Exit   int      `json:"exit"`
	Stdout string   `json:"stdout"`
	Stderr string   `json:"stderr"`
}

// Result is the outcome of a scenario run.
type Result struct {
	Pass   bool
	Trace  []TraceEvent
	Errors []string

	// Fake is the API the scenario ran against, left up for follow-up checks
	// until the test ends.
	Fake *testutil.FakeAPI

	// IDs maps seeded item titles to their ids.
	IDs map[string]int64
}

// NewResult returns a passing result with nothing recorded.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records a failure and marks the result failed.
func (r *Result) AddError(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}
