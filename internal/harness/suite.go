package harness

import (
	"fmt"
	"path/filepath"
	"sort"
	"testing"
)

// SuiteResult summarizes every scenario in a directory.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure is one scenario that did not pass.
type SuiteFailure struct {
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// RunSuite loads and runs every *.yaml scenario in dir in name order, each
// in its own subtest.
func RunSuite(t *testing.T, dir string) (*SuiteResult, error) {
	t.Helper()
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	result := &SuiteResult{}
	for _, path := range paths {
		result.Total++
		fail := func(msg string) {
			result.Failed++
			result.Failures = append(result.Failures, SuiteFailure{ScenarioPath: path, Error: msg})
		}

		sc, err := LoadScenario(path)
		if err != nil {
			fail(fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}
		t.Run(sc.Name, func(t *testing.T) {
			run, err := Run(t, sc)
			switch {
			case err != nil:
				fail(fmt.Sprintf("scenario execution failed: %v", err))
			case !run.Pass:
				fail(fmt.Sprintf("scenario assertions failed: %v", run.Errors))
			default:
				result.Passed++
			}
		})
	}
	return result, nil
}
