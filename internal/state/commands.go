package state

import (
	"context"
	"time"

	"github.com/nikbrunner/shelf/internal/engine"
	"github.com/nikbrunner/shelf/internal/importer"
	"github.com/nikbrunner/shelf/internal/model"
)

// CreateFolder creates a folder and returns its ID.
func (m *Manager) CreateFolder(ctx context.Context, name string, parentID *string) (string, error) {
	var id string
	_, err := m.Apply(ctx, "create folder", func(s model.Snapshot) (model.Snapshot, error) {
		next, newID, err := engine.CreateFolder(s, name, parentID)
		id = newID
		return next, err
	})
	return id, err
}

// RenameFolder renames a folder.
func (m *Manager) RenameFolder(ctx context.Context, folderID, name string) error {
	_, err := m.Apply(ctx, "rename folder", func(s model.Snapshot) (model.Snapshot, error) {
		return engine.RenameFolder(s, folderID, name)
	})
	return err
}

// MoveFolder reparents a folder.
func (m *Manager) MoveFolder(ctx context.Context, folderID string, parentID *string) error {
	_, err := m.Apply(ctx, "move folder", func(s model.Snapshot) (model.Snapshot, error) {
		return engine.MoveFolder(s, folderID, parentID)
	})
	return err
}

// DeleteFolder removes a folder with its subtree and items.
func (m *Manager) DeleteFolder(ctx context.Context, folderID string) (engine.DeleteResult, error) {
	var result engine.DeleteResult
	_, err := m.Apply(ctx, "delete folder", func(s model.Snapshot) (model.Snapshot, error) {
		next, res, err := engine.DeleteFolder(s, folderID)
		result = res
		return next, err
	})
	return result, err
}

// SaveItem saves entry into folderID.
func (m *Manager) SaveItem(ctx context.Context, folderID string, entry model.FolderItem) error {
	return m.updateItems(ctx, "save item", func(s model.Snapshot) (model.ItemMap, error) {
		if s.Folder(folderID) == nil {
			return nil, engine.ErrFolderNotFound
		}
		return engine.SaveItem(s.Items, folderID, entry)
	})
}

// Move applies a pending save or move.
func (m *Manager) Move(ctx context.Context, p engine.PendingMove) error {
	return m.updateItems(ctx, "move item", func(s model.Snapshot) (model.ItemMap, error) {
		if s.Folder(p.TargetFolderID) == nil {
			return nil, engine.ErrFolderNotFound
		}
		if p.SourceFolderID != nil {
			current, ok := s.Items.Find(*p.SourceFolderID, p.Item.URL)
			if !ok {
				return nil, &engine.ItemError{FolderID: *p.SourceFolderID, URL: p.Item.URL, Err: engine.ErrItemNotFound}
			}
			p.Item = current
		}
		return p.Apply(s.Items)
	})
}

// RemoveItem removes url from folderID. Missing items are ignored.
func (m *Manager) RemoveItem(ctx context.Context, folderID, url string) error {
	return m.updateItems(ctx, "remove item", func(s model.Snapshot) (model.ItemMap, error) {
		return engine.RemoveItem(s.Items, folderID, url), nil
	})
}

// RenameItemURL changes the URL of an item.
func (m *Manager) RenameItemURL(ctx context.Context, folderID, oldURL, newURL string) error {
	return m.updateItems(ctx, "rename item url", func(s model.Snapshot) (model.ItemMap, error) {
		return engine.RenameItemURL(s.Items, folderID, oldURL, newURL)
	})
}

// RenameItemTitle changes the title of an item.
func (m *Manager) RenameItemTitle(ctx context.Context, folderID, url, title string) error {
	return m.updateItems(ctx, "rename item title", func(s model.Snapshot) (model.ItemMap, error) {
		return engine.RenameItemTitle(s.Items, folderID, url, title)
	})
}

// ImportTree reads src and adds its tree under a new import folder.
// Nothing is written when the source fails or is empty.
func (m *Manager) ImportTree(ctx context.Context, src importer.TreeSource, now time.Time) (importer.TreeReport, error) {
	nodes, err := src.ReadTree(ctx)
	if err != nil {
		return importer.TreeReport{}, importer.SourceError(err)
	}
	var report importer.TreeReport
	_, err = m.Apply(ctx, "import tree", func(s model.Snapshot) (model.Snapshot, error) {
		next, r, err := importer.ImportTree(s, nodes, now)
		report = r
		return next, err
	})
	return report, err
}

func (m *Manager) updateItems(ctx context.Context, name string, fn func(model.Snapshot) (model.ItemMap, error)) error {
	_, err := m.Apply(ctx, name, func(s model.Snapshot) (model.Snapshot, error) {
		items, err := fn(s)
		if err != nil {
			return s, err
		}
		return model.Snapshot{Folders: s.Folders, Items: items}, nil
	})
	return err
}
