package model

// Snapshot is the paired folder and item state read at the start of a
// command and written back as a unit at its end.
type Snapshot struct {
	Folders []Folder `json:"folders"`
	Items   ItemMap  `json:"folderItems"`
}

// NewSnapshot creates an empty Snapshot with initialized collections.
func NewSnapshot() Snapshot {
	return Snapshot{
		Folders: []Folder{},
		Items:   ItemMap{},
	}
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Folders: CloneFolders(s.Folders),
		Items:   s.Items.Clone(),
	}
}

// Normalized repairs the hierarchy and reconciles the item map.
func (s Snapshot) Normalized() Snapshot {
	folders := NormalizeHierarchy(s.Folders)
	return Snapshot{
		Folders: folders,
		Items:   EnsureItemMap(folders, s.Items),
	}
}

// Children returns the sorted child folders of parentID (nil = root).
func (s Snapshot) Children(parentID *string) []Folder {
	return GetChildren(s.Folders, parentID)
}

// Folder finds a folder by ID, returns nil if not found.
func (s Snapshot) Folder(id string) *Folder {
	return FindFolder(s.Folders, id)
}

// Breadcrumb returns the " / " joined path of folderID.
func (s Snapshot) Breadcrumb(folderID *string) string {
	return BuildBreadcrumb(s.Folders, folderID)
}

// Count returns the aggregate item count of folderID (nil = everything).
func (s Snapshot) Count(folderID *string) int {
	return AggregateCount(s.Folders, s.Items, folderID)
}

// ItemsFor returns the flattened items of folderID and its descendants.
func (s Snapshot) ItemsFor(folderID *string) []TaggedItem {
	return ItemsForFolder(s.Folders, s.Items, folderID)
}
