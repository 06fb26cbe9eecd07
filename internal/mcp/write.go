package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nikbrunner/shelf/internal/engine"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/state"
)

// RegisterWriteTools adds the tools that change folders or items.
func RegisterWriteTools(s *server.MCPServer, m *state.Manager) {
	s.AddTool(createFolderTool(), createFolderHandler(m))
	s.AddTool(renameFolderTool(), renameFolderHandler(m))
	s.AddTool(moveFolderTool(), moveFolderHandler(m))
	s.AddTool(deleteFolderTool(), deleteFolderHandler(m))
	s.AddTool(saveItemTool(), saveItemHandler(m))
	s.AddTool(moveItemTool(), moveItemHandler(m))
	s.AddTool(removeItemTool(), removeItemHandler(m))
	s.AddTool(editItemTool(), editItemHandler(m))
}

// --- create_folder ---

func createFolderTool() mcp.Tool {
	return mcp.NewTool("create_folder",
		mcp.WithDescription("Create a folder. Names must be unique among siblings, ignoring case."),
		mcp.WithString("name",
			mcp.Description("Folder name"),
			mcp.Required(),
		),
		mcp.WithString("parent",
			mcp.Description("Parent folder id or path. Omit for a root folder."),
		),
	)
}

func createFolderHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		parentID, err := optionalFolder(snap, req.GetString("parent", ""))
		if err != nil {
			return toolError(err)
		}
		id, err := m.CreateFolder(ctx, req.GetString("name", ""), parentID)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Created folder %s", id)), nil
	}
}

// --- rename_folder ---

func renameFolderTool() mcp.Tool {
	return mcp.NewTool("rename_folder",
		mcp.WithDescription("Rename a folder."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("name",
			mcp.Description("New name"),
			mcp.Required(),
		),
	)
}

func renameFolderHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		f, err := resolveFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		if err := m.RenameFolder(ctx, f.ID, req.GetString("name", "")); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Renamed " + f.ID), nil
	}
}

// --- move_folder ---

func moveFolderTool() mcp.Tool {
	return mcp.NewTool("move_folder",
		mcp.WithDescription("Move a folder under another folder, or to the root level. A folder cannot move into its own subtree."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("parent",
			mcp.Description("New parent id or path. Omit to move to the root level."),
		),
	)
}

func moveFolderHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		f, err := resolveFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		parentID, err := optionalFolder(snap, req.GetString("parent", ""))
		if err != nil {
			return toolError(err)
		}
		if err := m.MoveFolder(ctx, f.ID, parentID); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Moved " + f.ID), nil
	}
}

// --- delete_folder ---

func deleteFolderTool() mcp.Tool {
	return mcp.NewTool("delete_folder",
		mcp.WithDescription("Delete a folder together with all subfolders and their items."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path"),
			mcp.Required(),
		),
	)
}

func deleteFolderHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		f, err := resolveFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		res, err := m.DeleteFolder(ctx, f.ID)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(fmt.Sprintf("Deleted %d folders and %d items", len(res.RemovedIDs), res.RemovedItems)), nil
	}
}

// --- save_item ---

func saveItemTool() mcp.Tool {
	return mcp.NewTool("save_item",
		mcp.WithDescription("Save an http(s) URL into a folder. A URL can be saved only once per folder."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("url",
			mcp.Description("Page URL"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("Title; defaults to the URL"),
		),
	)
}

func saveItemHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		f, err := resolveFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		entry := model.FolderItem{URL: req.GetString("url", ""), Title: req.GetString("title", "")}
		if err := m.SaveItem(ctx, f.ID, entry); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Saved to " + snap.Breadcrumb(&f.ID)), nil
	}
}

// --- move_item ---

func moveItemTool() mcp.Tool {
	return mcp.NewTool("move_item",
		mcp.WithDescription("Move a saved item to another folder. Moving to the folder it is already in does nothing."),
		mcp.WithString("from",
			mcp.Description("Source folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("to",
			mcp.Description("Target folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("url",
			mcp.Description("URL of the item"),
			mcp.Required(),
		),
	)
}

func moveItemHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		from, err := resolveFolder(snap, req.GetString("from", ""))
		if err != nil {
			return toolError(err)
		}
		to, err := resolveFolder(snap, req.GetString("to", ""))
		if err != nil {
			return toolError(err)
		}
		item := model.FolderItem{URL: req.GetString("url", "")}
		err = m.Move(ctx, engine.NewPendingMove(from.ID, item).To(to.ID))
		if errors.Is(err, engine.ErrNoOpMove) {
			return mcp.NewToolResultText("Nothing to do"), nil
		}
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Moved to " + snap.Breadcrumb(&to.ID)), nil
	}
}

// --- remove_item ---

func removeItemTool() mcp.Tool {
	return mcp.NewTool("remove_item",
		mcp.WithDescription("Remove a saved item from a folder."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("url",
			mcp.Description("URL of the item"),
			mcp.Required(),
		),
	)
}

func removeItemHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		f, err := resolveFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		if err := m.RemoveItem(ctx, f.ID, req.GetString("url", "")); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Removed"), nil
	}
}

// --- edit_item ---

func editItemTool() mcp.Tool {
	return mcp.NewTool("edit_item",
		mcp.WithDescription("Change the title and/or URL of a saved item."),
		mcp.WithString("folder",
			mcp.Description("Folder id or path"),
			mcp.Required(),
		),
		mcp.WithString("url",
			mcp.Description("Current URL of the item"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("new_url",
			mcp.Description("New URL"),
		),
	)
}

func editItemHandler(m *state.Manager) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := m.Snapshot(ctx)
		if err != nil {
			return toolError(err)
		}
		f, err := resolveFolder(snap, req.GetString("folder", ""))
		if err != nil {
			return toolError(err)
		}
		url := req.GetString("url", "")
		title := req.GetString("title", "")
		newURL := req.GetString("new_url", "")
		if title == "" && newURL == "" {
			return toolError(fmt.Errorf("title or new_url is required"))
		}
		if newURL != "" && newURL != url {
			if err := m.RenameItemURL(ctx, f.ID, url, newURL); err != nil {
				return toolError(err)
			}
			url = newURL
		}
		if title != "" {
			if err := m.RenameItemTitle(ctx, f.ID, url, title); err != nil && !engine.IsSilent(err) {
				return toolError(err)
			}
		}
		return mcp.NewToolResultText("Updated " + url), nil
	}
}
