// Package engine holds the commands that change folders and their items.
// Every command is a pure transform: inputs are never modified and all
// validation happens before anything is built.
package engine

import (
	"strings"

	"github.com/nikbrunner/shelf/internal/model"
)

// DeleteResult describes what a cascade delete removed.
type DeleteResult struct {
	RemovedIDs   []string
	RemovedItems int
}

// CreateFolder adds a folder named name under parentID (nil = root) and
// returns the new snapshot together with the ID of the created folder.
func CreateFolder(snap model.Snapshot, name string, parentID *string) (model.Snapshot, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return snap, "", ErrEmptyName
	}
	if parentID != nil && snap.Folder(*parentID) == nil {
		return snap, "", ErrFolderNotFound
	}
	if model.SiblingWithName(snap.Folders, parentID, name, "") != nil {
		return snap, "", &NameError{Name: name, ParentID: parentID}
	}

	folder := model.NewFolder(model.NewFolderParams{Name: name, ParentID: parentID})
	next := snap.Clone()
	next.Folders = append(next.Folders, folder)
	return next.Normalized(), folder.ID, nil
}

// RenameFolder renames folderID in place. A name equal to the current one
// is a no-op.
func RenameFolder(snap model.Snapshot, folderID, newName string) (model.Snapshot, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return snap, ErrEmptyName
	}
	folder := snap.Folder(folderID)
	if folder == nil {
		return snap, ErrFolderNotFound
	}
	if folder.Name == newName {
		return snap, nil
	}
	if model.SiblingWithName(snap.Folders, folder.ParentID, newName, folderID) != nil {
		return snap, &NameError{Name: newName, ParentID: folder.ParentID}
	}

	next := snap.Clone()
	next.Folder(folderID).Name = newName
	return next, nil
}

// MoveFolder reparents folderID under newParentID (nil = root).
func MoveFolder(snap model.Snapshot, folderID string, newParentID *string) (model.Snapshot, error) {
	folder := snap.Folder(folderID)
	if folder == nil {
		return snap, ErrFolderNotFound
	}
	if newParentID != nil {
		if snap.Folder(*newParentID) == nil {
			return snap, ErrFolderNotFound
		}
		if model.CollectDescendantIDs(snap.Folders, &folderID)[*newParentID] {
			return snap, ErrCycle
		}
	}
	if equalParent(folder.ParentID, newParentID) {
		return snap, nil
	}
	if model.SiblingWithName(snap.Folders, newParentID, folder.Name, folderID) != nil {
		return snap, &NameError{Name: folder.Name, ParentID: newParentID}
	}

	next := snap.Clone()
	moved := next.Folder(folderID)
	if newParentID == nil {
		moved.ParentID = nil
	} else {
		id := *newParentID
		moved.ParentID = &id
	}
	return next.Normalized(), nil
}

// DeleteFolder removes folderID, every folder beneath it and their item
// lists.
func DeleteFolder(snap model.Snapshot, folderID string) (model.Snapshot, DeleteResult, error) {
	if snap.Folder(folderID) == nil {
		return snap, DeleteResult{}, ErrFolderNotFound
	}
	doomed := model.CollectDescendantIDs(snap.Folders, &folderID)

	var result DeleteResult
	folders := make([]model.Folder, 0, len(snap.Folders))
	for _, f := range snap.Folders {
		if doomed[f.ID] {
			result.RemovedIDs = append(result.RemovedIDs, f.ID)
			continue
		}
		folders = append(folders, f)
	}

	items := snap.Items.Clone()
	for id := range doomed {
		result.RemovedItems += len(items[id])
		delete(items, id)
	}

	next := model.Snapshot{Folders: model.CloneFolders(folders), Items: items}
	return next.Normalized(), result, nil
}

// ResolveSelection returns current when it still names a folder, or nil
// (root) when the folder is gone.
func ResolveSelection(folders []model.Folder, current *string) *string {
	if current == nil || model.FindFolder(folders, *current) == nil {
		return nil
	}
	return current
}

func equalParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
