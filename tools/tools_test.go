package tools_test

import (
	"testing"

	"github.com/effective-security/stickynotes/store"
	"github.com/effective-security/stickynotes/tools"
	"github.com/effective-security/stickynotes/tools/ascii"
	"github.com/effective-security/stickynotes/tools/notes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_UniqueNames(t *testing.T) {
	st := store.NewMemoryStore()

	addTool, err := notes.NewAddTool(st)
	require.NoError(t, err)
	readTool, err := notes.NewReadTool(st)
	require.NoError(t, err)
	rabbitTool, err := ascii.NewRabbitTool()
	require.NoError(t, err)

	assert.True(t, tools.UniqueNames(addTool, readTool, rabbitTool))
	assert.False(t, tools.UniqueNames(addTool, readTool, addTool))
}

func Test_GetDescriptions(t *testing.T) {
	st := store.NewMemoryStore()

	addTool, err := notes.NewAddTool(st)
	require.NoError(t, err)
	readTool, err := notes.NewReadTool(st)
	require.NoError(t, err)

	descr := tools.GetDescriptions(addTool, readTool)
	assert.Contains(t, descr, "add_note")
	assert.Contains(t, descr, "read_notes")
	assert.Contains(t, descr, "```json")
}
