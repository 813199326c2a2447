package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plms/internal/model"
)

func TestLogin_WhoamiLogout(t *testing.T) {
	e := newCLIEnv(t)
	e.fake.IssueToken("reader@example.com")

	res := e.runIn("password\n", "login", "--email", "reader@example.com")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.out, "Signed in as:")
	assert.Contains(t, res.out, "reader@example.com")
	assert.Contains(t, res.stderr, "Password: ")

	res = e.run("whoami")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.out, "reader@example.com")
	assert.Contains(t, res.out, "Member since:")

	res = e.run("logout")
	require.NoError(t, res.err)
	assert.Equal(t, "Signed out.\n", res.out)

	res = e.run("whoami")
	require.Error(t, res.err)
	assert.Equal(t, ExitAuthRequired, res.code)
	assert.Contains(t, res.stderr, "Error: not signed in")
}

func TestLogin_PromptsForEmail(t *testing.T) {
	e := newCLIEnv(t)
	e.fake.IssueToken("reader@example.com")

	res := e.runIn("reader@example.com\npassword\n", "login")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.stderr, "Email: ")
	assert.Contains(t, res.out, "reader@example.com")
}

func TestLogin_WrongPassword(t *testing.T) {
	e := newCLIEnv(t)
	e.fake.IssueToken("reader@example.com")

	res := e.runIn("nope\n", "login", "--email", "reader@example.com")
	require.Error(t, res.err)
	assert.Equal(t, ExitAuthRequired, res.code)
	assert.Contains(t, res.stderr, "Error: Invalid email or password")
	assert.Empty(t, res.out)
}

func TestLogin_NoPassword(t *testing.T) {
	e := newCLIEnv(t)

	res := e.runIn("", "login", "--email", "reader@example.com")
	require.Error(t, res.err)
	assert.ErrorIs(t, res.err, ErrNoInput)
	assert.Zero(t, e.fake.CountRequests("POST", "/auth/login"))
}

func TestRegister(t *testing.T) {
	e := newCLIEnv(t)

	res := e.runIn("secret\n", "--format", "json", "register", "--email", "robin@example.com", "--name", "Robin")
	var user model.User
	decodeData(t, res, &user)
	assert.Equal(t, "robin@example.com", user.Email)
	assert.Equal(t, "Robin", user.DisplayName)

	res = e.run("whoami")
	require.NoError(t, res.err, res.stderr)
	assert.Contains(t, res.out, "Robin")

	res = e.runIn("secret\n", "register", "--email", "robin@example.com")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stderr, "Error: Email already registered")
}

func TestGate_RejectedCredentialSignsOut(t *testing.T) {
	e := newCLIEnv(t)
	e.signIn("reader@example.com")
	e.fake.RevokeTokens()

	res := e.run("dashboard")
	require.Error(t, res.err)
	assert.Equal(t, ExitAuthRequired, res.code)
	assert.Contains(t, res.stderr, "session expired")
	assert.Zero(t, e.fake.CountRequests("GET", "/items"), "nothing loads behind a failed gate")

	res = e.run("whoami")
	assert.Equal(t, ExitAuthRequired, res.code)
	assert.Contains(t, res.stderr, "not signed in")
}

func TestGate_CredentialForAnotherServerIsIgnored(t *testing.T) {
	e := newCLIEnv(t)
	e.signIn("reader@example.com")

	res := e.exec("", "--api", "http://127.0.0.1:1", "--state", e.state, "whoami")
	require.Error(t, res.err)
	assert.Equal(t, ExitAuthRequired, res.code)

	res = e.run("whoami")
	require.NoError(t, res.err, res.stderr)
}

func TestGate_JSONEnvelope(t *testing.T) {
	e := newCLIEnv(t)

	res := e.run("--format", "json", "dashboard")
	cliErr := decodeError(t, res)
	assert.Equal(t, CodeAuth, cliErr.Code)
	assert.Equal(t, "not signed in", cliErr.Message)
	assert.Equal(t, ExitAuthRequired, res.code)
	assert.Empty(t, res.stderr)
}
