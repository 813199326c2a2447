package harness

import (
	"fmt"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/roach88/plms/internal/model"
	"github.com/roach88/plms/internal/testutil"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// State is the API state assertions inspect. *testutil.FakeAPI satisfies it.
type State interface {
	Requests() []testutil.Request
	ItemByTitle(title string) (model.Item, bool)
	ListByName(name string) (model.MediaList, bool)
}

// AssertionContext carries what assertions need beyond the assertion
// itself.
type AssertionContext struct {
	Fake State

	// expand resolves ${Title} placeholders in request paths. Nil leaves
	// paths as written.
	expand func(string) (string, error)
}

// AssertionError describes a failed assertion.
type AssertionError struct {
	Type     string
	Expected any
	Actual   any
	Detail   string
}

func (e *AssertionError) Error() string {
	msg := fmt.Sprintf("Assertion failed: %s\n  Expected: %v\n  Actual: %v", e.Type, e.Expected, e.Actual)
	if e.Detail != "" {
		msg += "\n  " + e.Detail
	}
	return msg
}

// EvaluateAssertions checks every assertion and returns one message per
// failure.
func EvaluateAssertions(actx *AssertionContext, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := evaluate(actx, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

func evaluate(actx *AssertionContext, a Assertion) error {
	switch a.Type {
	case AssertRequestCount:
		return assertRequestCount(actx, a)
	case AssertRequestOrder:
		return assertRequestOrder(actx, a)
	case AssertItemState:
		return assertItemState(actx, a)
	case AssertListItems:
		return assertListItems(actx, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

func (actx *AssertionContext) path(p string) (string, error) {
	if actx.expand == nil {
		return p, nil
	}
	return actx.expand(p)
}

func assertRequestCount(actx *AssertionContext, a Assertion) error {
	path, err := actx.path(a.Path)
	if err != nil {
		return err
	}
	method := strings.ToUpper(a.Method)
	got := 0
	for _, r := range actx.Fake.Requests() {
		if r.Method == method && r.Path == path {
			got++
		}
	}
	if got != *a.Count {
		return &AssertionError{
			Type:     AssertRequestCount,
			Expected: *a.Count,
			Actual:   got,
			Detail:   method + " " + path,
		}
	}
	return nil
}

// assertRequestOrder compares the first occurrence of each request.
func assertRequestOrder(actx *AssertionContext, a Assertion) error {
	log := actx.Fake.Requests()
	first := func(method, path string) int {
		for i, r := range log {
			if r.Method == method && r.Path == path {
				return i
			}
		}
		return -1
	}

	last := -1
	var lastLabel string
	for _, entry := range a.Requests {
		method, path, ok := splitRequest(entry)
		if !ok {
			return fmt.Errorf("request %q is not METHOD /path", entry)
		}
		path, err := actx.path(path)
		if err != nil {
			return err
		}
		label := method + " " + path
		pos := first(method, path)
		if pos < 0 {
			return &AssertionError{
				Type:     AssertRequestOrder,
				Expected: label,
				Actual:   "never requested",
			}
		}
		if pos <= last {
			return &AssertionError{
				Type:     AssertRequestOrder,
				Expected: fmt.Sprintf("%s after %s", label, lastLabel),
				Actual:   fmt.Sprintf("%s at %d, %s at %d", label, pos, lastLabel, last),
			}
		}
		last, lastLabel = pos, label
	}
	return nil
}

func assertItemState(actx *AssertionContext, a Assertion) error {
	it, ok := actx.Fake.ItemByTitle(a.Item)
	if !ok {
		return &AssertionError{Type: AssertItemState, Expected: a.Item, Actual: "no such item"}
	}
	fields, err := itemFields(it)
	if err != nil {
		return err
	}
	for key, want := range a.Expect {
		got, _ := lookup(fields, key)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return &AssertionError{
				Type:     AssertItemState,
				Expected: want,
				Actual:   got,
				Detail:   fmt.Sprintf("%s.%s", a.Item, key),
			}
		}
	}
	return nil
}

// itemFields is the item's JSON form as a generic map plus a synthetic
// "deleted" flag.
func itemFields(it model.Item) (map[string]any, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}
	fields["deleted"] = it.IsDeleted()
	return fields, nil
}

// lookup resolves a dotted key such as "bookInfo.pages".
func lookup(m map[string]any, key string) (any, bool) {
	var cur any = m
	for _, part := range strings.Split(key, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func assertListItems(actx *AssertionContext, a Assertion) error {
	l, ok := actx.Fake.ListByName(a.List)
	if !ok {
		return &AssertionError{Type: AssertListItems, Expected: a.List, Actual: "no such list"}
	}
	got := make([]string, len(l.Items))
	for i, e := range l.Items {
		got[i] = e.Title
	}
	want := a.Titles
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(got, want) {
		return &AssertionError{Type: AssertListItems, Expected: want, Actual: got, Detail: a.List}
	}
	return nil
}
