package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listFixture = `
current_user = 1

[list]
id = "a1"
title = "Tasks"

[[list.fields]]
wire_name = "Title"
display_name = "Title"
type = "Text"
required = true

[[list.fields]]
wire_name = "Due"
display_name = "Due Date"
type = "DateTime"

[[list.fields]]
wire_name = "ContentType"
display_name = "Content Type"
type = "Text"

[[users]]
id = 1
display_name = "Pat Reyes"
login = "DOMAIN\\preyes"
`

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".listform"), 0o700))
	return home
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	setupHome(t)
	out, err := runCommand(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "listform dev")
}

func TestConfigSetGetRoundTrip(t *testing.T) {
	setupHome(t)

	_, err := runCommand(t, "config", "set", "list.name", "Tasks")
	require.NoError(t, err)

	out, err := runCommand(t, "config", "get", "list.name")
	require.NoError(t, err)
	assert.Equal(t, "Tasks\n", out)
}

func TestConfigGetRejectsUnknownKey(t *testing.T) {
	setupHome(t)
	_, err := runCommand(t, "config", "get", "list.bogus")
	require.Error(t, err)
}

func TestConfigListShowsEveryKey(t *testing.T) {
	setupHome(t)
	out, err := runCommand(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "list.name")
	assert.Contains(t, out, "form.redirectDelaySeconds")
	assert.Contains(t, out, "log.format")
}

func TestSchemaCommand(t *testing.T) {
	home := setupHome(t)
	dataFile := filepath.Join(home, ".listform", "list.toml")
	require.NoError(t, os.WriteFile(dataFile, []byte(listFixture), 0o600))

	_, err := runCommand(t, "config", "set", "list.name", "Tasks")
	require.NoError(t, err)

	out, err := runCommand(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks (2 fields)")
	assert.Contains(t, out, "dueDate")
	assert.Contains(t, out, "required")
	// System columns stay out of the form schema.
	assert.NotContains(t, out, "ContentType")
	assert.Contains(t, out, "Skipped system fields: 1")
}

func TestSchemaCommandRequiresList(t *testing.T) {
	home := setupHome(t)
	dataFile := filepath.Join(home, ".listform", "list.toml")
	require.NoError(t, os.WriteFile(dataFile, []byte(listFixture), 0o600))

	_, err := runCommand(t, "schema")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no list configured")
}

func TestAttachCommand(t *testing.T) {
	home := setupHome(t)
	dataFile := filepath.Join(home, ".listform", "list.toml")
	fixture := listFixture + `
[[records]]
id = 42
etag = "e1"

[records.values]
Title = "Report"
`
	require.NoError(t, os.WriteFile(dataFile, []byte(fixture), 0o600))
	_, err := runCommand(t, "config", "set", "list.name", "Tasks")
	require.NoError(t, err)

	out, err := runCommand(t, "attach", "42", "/tmp/report.pdf")
	require.NoError(t, err)
	assert.Contains(t, out, "Attached report.pdf to record #42")

	// The attachment is persisted on the record.
	data, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "report.pdf")
}

func TestAttachRejectsMissingRecord(t *testing.T) {
	home := setupHome(t)
	dataFile := filepath.Join(home, ".listform", "list.toml")
	require.NoError(t, os.WriteFile(dataFile, []byte(listFixture), 0o600))
	_, err := runCommand(t, "config", "set", "list.name", "Tasks")
	require.NoError(t, err)

	_, err = runCommand(t, "attach", "99", "/tmp/report.pdf")
	require.Error(t, err)
}

func TestOpenRejectsBadRecordID(t *testing.T) {
	home := setupHome(t)
	dataFile := filepath.Join(home, ".listform", "list.toml")
	require.NoError(t, os.WriteFile(dataFile, []byte(listFixture), 0o600))
	_, err := runCommand(t, "config", "set", "list.name", "Tasks")
	require.NoError(t, err)

	_, err = runCommand(t, "open", "zero")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record id")
}
