package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidate_ValidQuerySucceeds(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchemaFile(t, dir)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"validate", `student(S,SD)`, "--schema", schemaPath, "--wants", "S,SD"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "query is valid")
}

func TestRunValidate_UnboundProjectedFails(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchemaFile(t, dir)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"validate", `student(S,SD)`, "--schema", schemaPath, "--wants", "X"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, out.String(), "E103")
}
