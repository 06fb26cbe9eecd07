package engine

import "github.com/nikbrunner/shelf/internal/model"

// PendingMove is one item on its way into a folder. SourceFolderID is nil
// when the item comes straight from visit history.
type PendingMove struct {
	SourceFolderID *string
	TargetFolderID string
	Item           model.FolderItem
}

// NewPendingSave starts a save of a history entry.
func NewPendingSave(v model.VisitEntry) PendingMove {
	return PendingMove{Item: FromVisit(v)}
}

// NewPendingMove starts a move of an item already saved in sourceFolderID.
func NewPendingMove(sourceFolderID string, item model.FolderItem) PendingMove {
	return PendingMove{SourceFolderID: &sourceFolderID, Item: item}
}

// To returns a copy of p aimed at targetFolderID.
func (p PendingMove) To(targetFolderID string) PendingMove {
	p.TargetFolderID = targetFolderID
	return p
}

// Apply runs the move against items.
func (p PendingMove) Apply(items model.ItemMap) (model.ItemMap, error) {
	if p.TargetFolderID == "" {
		return items, ErrFolderNotFound
	}
	return MoveItem(items, p.SourceFolderID, p.TargetFolderID, p.Item)
}
