package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "trash_roundtrip.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "trash_roundtrip", sc.Name)
	assert.Equal(t, "reader@example.com", sc.User)
	assert.Contains(t, sc.Catalog, "title: Heat")
	require.Len(t, sc.Steps, 4)
	assert.Equal(t, []string{"items", "delete", "${Heat}"}, sc.Steps[0].Run)
	assert.Equal(t, "n\n", sc.Steps[0].Stdin)
	assert.Nil(t, sc.Steps[2].Expect.Stderr)
	assert.Equal(t, 1, sc.Steps[3].Expect.Exit)
	require.Len(t, sc.Assertions, 3)
	assert.Equal(t, 1, *sc.Assertions[1].Count)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing name",
			yaml: "steps:\n  - run: [items, list]\n",
			want: "name is required",
		},
		{
			name: "no steps",
			yaml: "name: empty\n",
			want: "at least one step is required",
		},
		{
			name: "empty run",
			yaml: "name: x\nsteps:\n  - stdin: y\n",
			want: "steps[0]: run is required",
		},
		{
			name: "bad exit code",
			yaml: "name: x\nsteps:\n  - run: [items]\n    expect: {exit: 9}\n",
			want: "steps[0]: exit 9 is not a plms exit code",
		},
		{
			name: "unknown field",
			yaml: "name: x\nsteps:\n  - run: [items]\n    stdn: typo\n",
			want: "field stdn not found",
		},
		{
			name: "unknown assertion",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - type: vibes\n",
			want: `assertions[0]: unknown assertion type "vibes"`,
		},
		{
			name: "assertion without type",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - item: Heat\n",
			want: "assertions[0]: type is required",
		},
		{
			name: "request_count without count",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - {type: request_count, method: GET, path: /items}\n",
			want: "request_count requires count",
		},
		{
			name: "request_count negative",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - {type: request_count, method: GET, path: /items, count: -1}\n",
			want: "count must be non-negative",
		},
		{
			name: "request_order too short",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - {type: request_order, requests: [GET /items]}\n",
			want: "at least 2 requests",
		},
		{
			name: "request_order malformed entry",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - {type: request_order, requests: [GET /items, items]}\n",
			want: `request "items" is not METHOD /path`,
		},
		{
			name: "item_state without expect",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - {type: item_state, item: Heat}\n",
			want: "item_state requires expect",
		},
		{
			name: "list_items without list",
			yaml: "name: x\nsteps:\n  - run: [items]\nassertions:\n  - {type: list_items, titles: [Dune]}\n",
			want: "list_items requires list",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_AllFixturesValid(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		_, err = ParseScenario(data)
		assert.NoError(t, err, p)
	}
}

func TestSplitRequest(t *testing.T) {
	method, path, ok := splitRequest(" post /items/1/restore ")
	require.True(t, ok)
	assert.Equal(t, "POST", method)
	assert.Equal(t, "/items/1/restore", path)

	_, _, ok = splitRequest("GET items")
	assert.False(t, ok)
	_, _, ok = splitRequest("/items")
	assert.False(t, ok)
}
