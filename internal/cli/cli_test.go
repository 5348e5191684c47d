package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "hogql")
}

func TestHelpListsSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	for _, want := range []string{"resolve", "check", "repl", "catalog"} {
		assert.Contains(t, buf.String(), want)
	}
}

func TestResolveCommandPrintsColumns(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"resolve", "SELECT event FROM events"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "event")
}

func TestResolveCommandFailsOnUnresolvedFieldStrict(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"resolve", "SELECT nonexistent FROM events"})

	err := cmd.Execute()
	require.Error(t, err)
}

func TestCheckCommandRecordsDiagnosticLenient(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"check", "SELECT nonexistent FROM events"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "nonexistent")
}

func TestCatalogListCommand(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"catalog", "list"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "events")
	assert.Contains(t, buf.String(), "s3_table")
}

func TestResolveCommandJSONFormat(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"resolve", "--format", "json", "SELECT event FROM events"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "\"columns\"")
}
