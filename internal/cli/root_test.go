package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "plms", cmd.Use)
	assert.Contains(t, cmd.Long, "books and DVDs")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"login"}, {"register"}, {"logout"}, {"whoami"}, {"dashboard"},
		{"items", "list"}, {"items", "show"}, {"items", "add"}, {"items", "edit"},
		{"items", "delete"}, {"items", "trash"}, {"items", "restore"},
		{"search"}, {"lookup"},
		{"loan", "create"}, {"loan", "return"}, {"loan", "list"}, {"loan", "overdue"},
		{"progress", "list"}, {"progress", "log"}, {"progress", "delete"},
		{"lists", "list"}, {"lists", "show"}, {"lists", "create"}, {"lists", "delete"},
		{"lists", "add"}, {"lists", "remove"}, {"lists", "move"}, {"lists", "reorder"},
		{"external", "refresh"}, {"external", "apply"},
		{"export"}, {"import"},
		{"sync", "status"}, {"sync", "enable"}, {"sync", "disable"}, {"sync", "run"},
		{"config", "show"}, {"config", "init"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	yesFlag := cmd.PersistentFlags().Lookup("yes")
	require.NotNil(t, yesFlag)
	assert.Equal(t, "y", yesFlag.Shorthand)

	for _, name := range []string{"api", "state", "timeout", "config"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	searchCmd, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)

	queryFlag := searchCmd.Flags().Lookup("query")
	require.NotNil(t, queryFlag)
	assert.Equal(t, "q", queryFlag.Shorthand)

	pageFlag := searchCmd.Flags().Lookup("page")
	require.NotNil(t, pageFlag)
	assert.Equal(t, "1", pageFlag.DefValue)
}

func TestLoanListCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	listCmd, _, err := cmd.Find([]string{"loan", "list"})
	require.NoError(t, err)

	statusFlag := listCmd.Flags().Lookup("status")
	require.NotNil(t, statusFlag)
	assert.Equal(t, "ACTIVE", statusFlag.DefValue)
}

func TestExportCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	exportCmd, _, err := cmd.Find([]string{"export"})
	require.NoError(t, err)

	outputFlag := exportCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
	assert.NotNil(t, exportCmd.Flags().Lookup("as"))
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "dashboard"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTransferFormat(t *testing.T) {
	tests := []struct {
		as, path string
		want     string
	}{
		{"", "", "json"},
		{"", "backup.zip", "csv"},
		{"", "items.CSV", "csv"},
		{"", "plms-export.json", "json"},
		{"CSV", "whatever.json", "csv"},
	}
	for _, tt := range tests {
		got, err := transferFormat(tt.as, tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(got), "%q %q", tt.as, tt.path)
	}

	_, err := transferFormat("xml", "")
	assert.ErrorContains(t, err, "must be json or csv")
}
