package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFixture = `student Alice "2016"
student Bob "2017"
registered Alice proglang1
`

func writeFixtureFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "fixture.txt")
	require.NoError(t, writeFile(path, testFixture))
	return path
}

func TestRunRun_ExecutesAndPrintsRows(t *testing.T) {
	dir := t.TempDir()
	fixturePath := writeFixtureFile(t, dir)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"run", `student(S,*) && registered(S,"proglang1")`, "--fixture", fixturePath, "--wants", "S"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Alice")
	assert.NotContains(t, out.String(), "Bob")
}

func TestRunRun_NoRowsIsExitFailure(t *testing.T) {
	dir := t.TempDir()
	fixturePath := writeFixtureFile(t, dir)

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", `student(S,*) && registered(S,"nosuchlang")`, "--fixture", fixturePath, "--wants", "S"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestRunRun_MissingFixtureIsCommandError(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", `student(S,SD)`, "--fixture", "/no/such/fixture.txt", "--wants", "S"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
