package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is one scripted CLI session.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Catalog     string      `yaml:"catalog"`
	User        string      `yaml:"user"`
	Steps       []Step      `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions"`
}

// Step is a single plms invocation. A step without Expect must exit 0.
type Step struct {
	Run    []string `yaml:"run"`
	Stdin  string   `yaml:"stdin"`
	Expect *Expect  `yaml:"expect"`
}

// Expect checks a step's outcome. Stdout and Stderr entries are substrings
// that must each appear in the stream.
type Expect struct {
	Exit   int      `yaml:"exit"`
	Stdout []string `yaml:"stdout"`
	Stderr []string `yaml:"stderr"`
}

// Assertion types.
const (
	AssertRequestCount = "request_count"
	AssertRequestOrder = "request_order"
	AssertItemState    = "item_state"
	AssertListItems    = "list_items"
)

// Assertion checks state after all steps have run.
//
//   - request_count: Method and Path received exactly Count requests.
//   - request_order: each "METHOD /path" in Requests was first received in
//     the given order.
//   - item_state: the item titled Item matches every key in Expect. Keys are
//     JSON field names, dotted for nested fields; "deleted" is the trash
//     state.
//   - list_items: the list named List holds Titles in display order.
type Assertion struct {
	Type     string         `yaml:"type"`
	Method   string         `yaml:"method,omitempty"`
	Path     string         `yaml:"path,omitempty"`
	Count    *int           `yaml:"count,omitempty"`
	Requests []string       `yaml:"requests,omitempty"`
	Item     string         `yaml:"item,omitempty"`
	Expect   map[string]any `yaml:"expect,omitempty"`
	List     string         `yaml:"list,omitempty"`
	Titles   []string       `yaml:"titles,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown fields are
// rejected so typos in assertion keys fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var s Scenario
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse scenario YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("validate scenario: %w", err)
	}
	return &s, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range s.Steps {
		if len(step.Run) == 0 {
			return fmt.Errorf("steps[%d]: run is required", i)
		}
		if step.Expect != nil && (step.Expect.Exit < 0 || step.Expect.Exit > 3) {
			return fmt.Errorf("steps[%d]: exit %d is not a plms exit code", i, step.Expect.Exit)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertRequestCount:
		if a.Method == "" || a.Path == "" {
			return fmt.Errorf("request_count requires method and path")
		}
		if a.Count == nil {
			return fmt.Errorf("request_count requires count")
		}
		if *a.Count < 0 {
			return fmt.Errorf("count must be non-negative, got %d", *a.Count)
		}
	case AssertRequestOrder:
		if len(a.Requests) < 2 {
			return fmt.Errorf("request_order requires at least 2 requests")
		}
		for _, r := range a.Requests {
			if _, _, ok := splitRequest(r); !ok {
				return fmt.Errorf("request %q is not METHOD /path", r)
			}
		}
	case AssertItemState:
		if a.Item == "" {
			return fmt.Errorf("item_state requires item")
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("item_state requires expect")
		}
	case AssertListItems:
		if a.List == "" {
			return fmt.Errorf("list_items requires list")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// splitRequest parses "METHOD /path".
func splitRequest(s string) (method, path string, ok bool) {
	method, path, ok = strings.Cut(strings.TrimSpace(s), " ")
	path = strings.TrimSpace(path)
	if !ok || method == "" || !strings.HasPrefix(path, "/") {
		return "", "", false
	}
	return strings.ToUpper(method), path, true
}
