package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Transcript is the golden form of a scenario run. Request logs are left out
// because commands that fan out requests concurrently do not log them in a
// fixed order.
type Transcript struct {
	Scenario string       `json:"scenario"`
	Steps    []TraceEvent `json:"steps"`
}

// MarshalTranscript renders a transcript as indented JSON with a trailing
// newline.
func MarshalTranscript(name string, trace []TraceEvent) ([]byte, error) {
	data, err := json.MarshalIndent(Transcript{Scenario: name, Steps: trace}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// RunWithGolden runs a scenario and compares its transcript with
// testdata/golden/{name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()
	result, err := Run(t, sc)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, sc.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's transcript with the golden
// file for name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()
	data, err := MarshalTranscript(name, result.Trace)
	if err != nil {
		return err
	}
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
