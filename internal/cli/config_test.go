package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigInitAndShow(t *testing.T) {
	e := newCLIEnv(t)
	path := filepath.Join(e.dir, "custom", "plms.yaml")

	res := e.exec("", "--config", path, "--api", "http://library.test:9000", "--timeout", "30s", "config", "init")
	require.NoError(t, res.err, res.stderr)
	assert.Equal(t, "Wrote "+path+".\n", res.out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http://library.test:9000")
	assert.Contains(t, string(data), "timeout: 30s")

	res = e.exec("", "--config", path, "config", "show")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.out, "api_base_url: http://library.test:9000\n")
	assert.Contains(t, res.out, "timeout: 30s\n")
	assert.Contains(t, res.out, "# read from "+path)

	res = e.exec("", "--config", path, "config", "init")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.stderr, "already exists")

	res = e.exec("", "--config", path, "--api", "https://library.example.com", "config", "init", "--force")
	require.NoError(t, res.err, res.stderr)

	var cv configView
	decodeData(t, e.exec("", "--config", path, "--format", "json", "config", "show"), &cv)
	assert.Equal(t, "https://library.example.com", cv.APIBaseURL)
	assert.Equal(t, "30s", cv.Timeout)
	assert.Equal(t, path, cv.File)
}

func TestConfigShow_FlagsWin(t *testing.T) {
	e := newCLIEnv(t)
	t.Setenv("PLMS_API_BASE_URL", "http://from-env:8080")

	var cv configView
	decodeData(t, e.exec("", "--format", "json", "config", "show"), &cv)
	assert.Equal(t, "http://from-env:8080", cv.APIBaseURL)
	assert.Equal(t, "15s", cv.Timeout)
	assert.Empty(t, cv.File)

	decodeData(t, e.exec("", "--format", "json", "--api", "http://from-flag:8080", "config", "show"), &cv)
	assert.Equal(t, "http://from-flag:8080", cv.APIBaseURL)
}

func TestConfig_Invalid(t *testing.T) {
	e := newCLIEnv(t)

	res := e.exec("", "--api", "ftp://library", "config", "show")
	assert.Equal(t, ExitCommandError, res.code)
	assert.Contains(t, res.err.Error(), "api_base_url must be an http(s) URL")

	res = e.exec("", "--config", filepath.Join(e.dir, "missing.yaml"), "config", "show")
	assert.Equal(t, ExitCommandError, res.code)
}
