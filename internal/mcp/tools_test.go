package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotesTools(t *testing.T) {
	tools := NotesTools()
	require.Len(t, tools, 3)

	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}

	addNote, ok := byName[ToolAddNote]
	require.True(t, ok)
	assert.Equal(t, []string{"name", "content"}, addNote.InputSchema["required"])

	addNotification, ok := byName[ToolAddNotification]
	require.True(t, ok)
	assert.Equal(t, []string{"level", "message"}, addNotification.InputSchema["required"])

	_, ok = byName[ToolListNotes]
	assert.True(t, ok)
}

func TestTextResult(t *testing.T) {
	r := TextResult(`["a","b"]`)
	require.Len(t, r.Content, 1)
	assert.Equal(t, "text", r.Content[0].Type)
	assert.Equal(t, `["a","b"]`, r.Content[0].Text)
	assert.False(t, r.IsError)
}
