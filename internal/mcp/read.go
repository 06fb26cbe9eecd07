// Package mcp exposes folders and items as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nikbrunner/shelf/internal/engine"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/render"
	"github.com/nikbrunner/shelf/internal/search"
	"github.com/nikbrunner/shelf/internal/state"
)

// NewServer returns an MCP server with every tool registered.
func NewServer(m *state.Manager, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"shelf",
		version,
		server.WithToolCapabilities(true),
	)
	RegisterReadTools(s, m)
	RegisterWriteTools(s, m)
	return s
}

// RegisterReadTools adds the read-only tools.
func RegisterReadTools(s *server.MCPServer, m *state.Manager) {
	s.AddTool(treeTool(), treeHandler(m))
	s.AddTool(listTool(), listHandler(m))
	s.AddTool(searchTool(), searchHandler(m))
}

// --- tree ---

func treeTool() mcp.Tool {
	return mcp.NewTool("tree",
		mcp.WithDescription("Show the folder hierarchy with aggregate item counts and folder ids."),
		mcp.WithBoolean("items",
			mcp.Description("Also list each folder's own items"),
		),
	)
}

func treeHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		out := render.Tree(snap, render.TreeOptions{Items: req.GetBool("items", false), IDs: true})
		return mcp.NewToolResultText(out), nil
	}
}

// --- list ---

func listTool() mcp.Tool {
	return mcp.NewTool("list",
		mcp.WithDescription("List saved items, newest first. With a folder, lists that folder and its subfolders."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path such as \"Work / Frontend\". Omit for every item."),
		),
	)
}

func listHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		scope, err := optionalFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		return formatItems(snap, snap.ItemsFor(scope))
	}
}

// --- search ---

func searchTool() mcp.Tool {
	return mcp.NewTool("search",
		mcp.WithDescription("Fuzzy search saved items by title and URL."),
		mcp.WithString("query",
			mcp.Description("Search query"),
			mcp.Required(),
		),
		mcp.WithString("folder",
			mcp.Description("Limit the search to this folder and its subfolders"),
		),
	)
}

func searchHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return toolError(fmt.Errorf("query is required"))
		}
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		scope, err := optionalFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}

		results := search.FuzzySearchItems(snap, scope, query)
		if len(results) == 0 {
			return mcp.NewToolResultText("No results found."), nil
		}
		var sb strings.Builder
		for _, r := range results {
			fmt.Fprintf(&sb, "%s  %s  [%s]\n", r.Item.Item.Title, r.Item.Item.URL, r.Path)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatItems(snap model.Snapshot, items []model.TaggedItem) (*mcp.CallToolResult, error) {
	if len(items) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, it := range items {
		fmt.Fprintf(&sb, "%s  %s  [%s]\n", it.Item.Title, it.Item.URL, snap.Breadcrumb(&it.FolderID))
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func resolveFolder(snap model.Snapshot, ref string) (*model.Folder, error) {
	f := model.ResolveFolderRef(snap.Folders, ref)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrFolderNotFound, ref)
	}
	return f, nil
}

// optionalFolder resolves ref to an id pointer, nil for an empty ref.
func optionalFolder(snap model.Snapshot, ref string) (*string, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	f, err := resolveFolder(snap, ref)
	if err != nil {
		return nil, err
	}
	id := f.ID
	return &id, nil
}
