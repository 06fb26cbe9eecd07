package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/shelf/internal/state"
	"github.com/nikbrunner/shelf/internal/storage"
)

func newManager(t *testing.T) *state.Manager {
	t.Helper()
	return state.NewManager(storage.NewStore(storage.NewMemoryBackend()), state.Options{Retries: 3})
}

func call(t *testing.T, h server.ToolHandlerFunc, args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(res.Content, 1))
	text, ok := res.Content[0].(mcp.TextContent)
	assert.Assert(t, ok, "expected text content")
	return text.Text, res.IsError
}

func TestTools_FolderLifecycle(t *testing.T) {
	m := newManager(t)

	_, isErr := call(t, createFolderHandler(m), map[string]any{"name": "Work"})
	assert.Assert(t, !isErr)
	_, isErr = call(t, createFolderHandler(m), map[string]any{"name": "Frontend", "parent": "Work"})
	assert.Assert(t, !isErr)

	out, isErr := call(t, createFolderHandler(m), map[string]any{"name": "work"})
	assert.Assert(t, isErr)
	assert.Assert(t, is.Contains(out, "already exists"))

	_, isErr = call(t, renameFolderHandler(m), map[string]any{"folder": "Work / Frontend", "name": "FE"})
	assert.Assert(t, !isErr)

	out, isErr = call(t, moveFolderHandler(m), map[string]any{"folder": "Work", "parent": "Work/FE"})
	assert.Assert(t, isErr)
	assert.Assert(t, is.Contains(out, "own subtree"))

	_, isErr = call(t, moveFolderHandler(m), map[string]any{"folder": "Work/FE"})
	assert.Assert(t, !isErr)

	out, _ = call(t, treeHandler(m), nil)
	assert.Assert(t, is.Contains(out, "FE (0)"))
	assert.Assert(t, is.Contains(out, "Work (0)"))

	out, isErr = call(t, deleteFolderHandler(m), map[string]any{"folder": "FE"})
	assert.Assert(t, !isErr)
	assert.Equal(t, out, "Deleted 1 folders and 0 items")
}

func TestTools_Items(t *testing.T) {
	m := newManager(t)
	call(t, createFolderHandler(m), map[string]any{"name": "Dev"})
	call(t, createFolderHandler(m), map[string]any{"name": "News"})

	_, isErr := call(t, saveItemHandler(m), map[string]any{"folder": "Dev", "url": "https://github.com", "title": "GitHub"})
	assert.Assert(t, !isErr)

	out, isErr := call(t, saveItemHandler(m), map[string]any{"folder": "Dev", "url": "ftp://x"})
	assert.Assert(t, isErr)
	assert.Assert(t, is.Contains(out, "invalid URL"))

	out, _ = call(t, searchHandler(m), map[string]any{"query": "gthb"})
	assert.Assert(t, is.Contains(out, "GitHub  https://github.com  [Dev]"))

	out, _ = call(t, moveItemHandler(m), map[string]any{"from": "Dev", "to": "Dev", "url": "https://github.com"})
	assert.Equal(t, out, "Nothing to do")

	_, isErr = call(t, moveItemHandler(m), map[string]any{"from": "Dev", "to": "News", "url": "https://github.com"})
	assert.Assert(t, !isErr)

	_, isErr = call(t, editItemHandler(m), map[string]any{"folder": "News", "url": "https://github.com", "new_url": "https://github.com/x", "title": "Repo"})
	assert.Assert(t, !isErr)

	out, _ = call(t, listHandler(m), map[string]any{"folder": "News"})
	assert.Assert(t, is.Contains(out, "Repo  https://github.com/x  [News]"))

	_, isErr = call(t, removeItemHandler(m), map[string]any{"folder": "News", "url": "https://github.com/x"})
	assert.Assert(t, !isErr)
	out, _ = call(t, listHandler(m), nil)
	assert.Equal(t, strings.TrimSpace(out), "No results.")
}

func TestTools_UnknownFolder(t *testing.T) {
	m := newManager(t)
	out, isErr := call(t, listHandler(m), map[string]any{"folder": "Nope"})
	assert.Assert(t, isErr)
	assert.Assert(t, is.Contains(out, "folder not found"))
}

func TestNewServer(t *testing.T) {
	s := NewServer(newManager(t), "test")
	assert.Assert(t, s != nil)
}
