package cmd

import (
	"strings"
	"testing"

	"github.com/chriscorrea/workbench/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snippetLines(t *testing.T) []string {
	t.Helper()
	stdout, _, err := runCommand(t, newSnippetCmd(), "list")
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(stdout), "\n")
}

func TestSnippetCommands(t *testing.T) {
	setupWorkbench(t, "http://127.0.0.1:1", "builtin")

	lines := snippetLines(t)
	require.Len(t, lines, len(store.DefaultSnippets))
	assert.Equal(t, " 1. Be concise.", lines[0])

	t.Run("add", func(t *testing.T) {
		stdout, _, err := runCommand(t, newSnippetCmd(), "add", "Answer", "in", "French.")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Added snippet 7")
		assert.Equal(t, " 7. Answer in French.", snippetLines(t)[6])

		_, _, err = runCommand(t, newSnippetCmd(), "add", "Be concise.")
		assert.ErrorIs(t, err, store.ErrDuplicate)

		_, _, err = runCommand(t, newSnippetCmd(), "add", "   ")
		assert.ErrorIs(t, err, store.ErrEmpty)
	})

	t.Run("edit", func(t *testing.T) {
		_, _, err := runCommand(t, newSnippetCmd(), "edit", "7", "Answer in German.")
		require.NoError(t, err)
		assert.Equal(t, " 7. Answer in German.", snippetLines(t)[6])

		_, _, err = runCommand(t, newSnippetCmd(), "edit", "1", "Think step by step.")
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("move", func(t *testing.T) {
		_, _, err := runCommand(t, newSnippetCmd(), "up", "Answer in German.")
		require.NoError(t, err)
		assert.Equal(t, " 6. Answer in German.", snippetLines(t)[5])

		stdout, _, err := runCommand(t, newSnippetCmd(), "up", "1")
		require.NoError(t, err)
		assert.Contains(t, stdout, "already at the edge")

		_, _, err = runCommand(t, newSnippetCmd(), "down", "6")
		require.NoError(t, err)
		assert.Equal(t, " 7. Answer in German.", snippetLines(t)[6])
	})

	t.Run("rm", func(t *testing.T) {
		_, _, err := runCommand(t, newSnippetCmd(), "rm", "7")
		require.NoError(t, err)
		assert.Len(t, snippetLines(t), len(store.DefaultSnippets))

		_, _, err = runCommand(t, newSnippetCmd(), "rm", "42")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("reset", func(t *testing.T) {
		_, _, err := runCommand(t, newSnippetCmd(), "rm", "1")
		require.NoError(t, err)

		stdout, _, err := runCommand(t, newSnippetCmd(), "reset")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Restored 6 default snippets")
		assert.Equal(t, " 1. Be concise.", snippetLines(t)[0])
	})

	t.Run("reset declined on a terminal", func(t *testing.T) {
		stdinIsTerminal = func() bool { return true }
		defer func() { stdinIsTerminal = func() bool { return false } }()

		_, _, err := runCommand(t, newSnippetCmd(), "rm", "1")
		require.NoError(t, err)

		stubAskOne(t, map[string]interface{}{"Replace all": false})
		_, _, err = runCommand(t, newSnippetCmd(), "reset")
		require.NoError(t, err)
		assert.Len(t, snippetLines(t), len(store.DefaultSnippets)-1)

		_, _, err = runCommand(t, newSnippetCmd(), "reset", "--yes")
		require.NoError(t, err)
		assert.Len(t, snippetLines(t), len(store.DefaultSnippets))
	})
}
