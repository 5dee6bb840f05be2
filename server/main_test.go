package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "users.sqlite3")

	db, err := sqlx.Open("sqlite3", path)
	require.NoError(t, err)

	db.MustExec(`CREATE TABLE users (username TEXT, password TEXT, mail TEXT)`)
	db.MustExec(`INSERT INTO users VALUES ('test', '$5$cegeasjoos$vPX5AwDqOTGocGjehr7k1IYp6Kt.U4FmMUa.1l6NrzD', 'test@example.org')`)

	require.NoError(t, db.Close())

	return path
}

func writeConfig(t *testing.T, table string, database string) string {
	t.Helper()

	content := fmt.Sprintf(`log:
  level: none
passdb:
  connection:
    dsn: sqlite://%s
  table: %s
  username_column: username
  password_column: password
  extra_attributes:
    email: mail
`, database, table)

	path := filepath.Join(t.TempDir(), "sqlpassdb.yml")

	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func runCLI(stdin string, args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer

	c := &cli{stdin: strings.NewReader(stdin), stdout: &stdout, stderr: &stderr}

	code := c.run(context.Background(), args)

	return code, stdout.String(), stderr.String()
}

func TestRunValidate(t *testing.T) {
	configPath := writeConfig(t, "users", setupDatabase(t))

	code, stdout, _ := runCLI("testpassword\n", "--config", configPath, "--username", "test", "--password-stdin")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `"username": "test"`)
	assert.Contains(t, stdout, `"email": "test@example.org"`)

	code, stdout, stderr := runCLI("wrongpassword\n", "--config", configPath, "--username", "test", "--password-stdin")

	assert.Equal(t, exitAuthFailed, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Authentication failed")
}

func TestRunLookupOnly(t *testing.T) {
	configPath := writeConfig(t, "users", setupDatabase(t))

	code, stdout, _ := runCLI("", "-c", configPath, "-u", "test", "--lookup-only")

	assert.Equal(t, exitOK, code)
	assert.Contains(t, stdout, `"username": "test"`)

	code, _, stderr := runCLI("", "-c", configPath, "-u", "nobody", "--lookup-only")

	assert.Equal(t, exitAuthFailed, code)
	assert.Contains(t, stderr, "User not found")
}

func TestRunErrors(t *testing.T) {
	database := setupDatabase(t)

	code, _, _ := runCLI("", "--username", "test")
	assert.Equal(t, exitConfigError, code)

	code, _, _ = runCLI("", "--config", filepath.Join(t.TempDir(), "missing.yml"), "--username", "test")
	assert.Equal(t, exitConfigError, code)

	code, _, _ = runCLI("", "--config", writeConfig(t, "users", database), "--username", "test")
	assert.Equal(t, exitConfigError, code, "no terminal and no --password-stdin")

	code, _, _ = runCLI("secret\n", "--config", writeConfig(t, "missing_table", database), "--username", "test", "--password-stdin")
	assert.Equal(t, exitLookupError, code)

	code, _, _ = runCLI("", "--no-such-flag")
	assert.Equal(t, exitConfigError, code)
}

func TestRunVersion(t *testing.T) {
	code, stdout, _ := runCLI("", "--version")

	assert.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(stdout, "sqlpassdb "+version))
}
