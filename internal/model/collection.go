package model

import (
	"slices"
	"sort"
)

// ItemMap maps a folder ID to its items, newest saved first.
type ItemMap map[string][]FolderItem

// TaggedItem is an item together with the folder it lives in.
type TaggedItem struct {
	Item     FolderItem
	FolderID string
}

// Clone returns a deep copy of the map and its lists.
func (m ItemMap) Clone() ItemMap {
	out := make(ItemMap, len(m))
	for id, items := range m {
		out[id] = cloneItems(items)
	}
	return out
}

// Has reports whether url is saved in the given folder.
func (m ItemMap) Has(folderID, url string) bool {
	return indexOfURL(m[folderID], url) >= 0
}

// Find returns the item with url in the given folder.
func (m ItemMap) Find(folderID, url string) (FolderItem, bool) {
	items := m[folderID]
	if i := indexOfURL(items, url); i >= 0 {
		return items[i], true
	}
	return FolderItem{}, false
}

// Total returns the number of items across every key, orphans included.
func (m ItemMap) Total() int {
	n := 0
	for _, items := range m {
		n += len(items)
	}
	return n
}

// EnsureItemMap returns a copy of items with an empty list for every folder
// that lacks one. Existing keys, orphans included, are kept.
func EnsureItemMap(folders []Folder, items ItemMap) ItemMap {
	out := items.Clone()
	for _, f := range folders {
		if _, ok := out[f.ID]; !ok {
			out[f.ID] = []FolderItem{}
		}
	}
	return out
}

// DropOrphans returns a copy of items without keys for unknown folders.
func DropOrphans(folders []Folder, items ItemMap) ItemMap {
	known := make(map[string]bool, len(folders))
	for _, f := range folders {
		known[f.ID] = true
	}
	out := make(ItemMap, len(items))
	for id, list := range items {
		if known[id] {
			out[id] = cloneItems(list)
		}
	}
	return out
}

// AggregateCount counts items under folderID and all its descendants.
// For nil it counts every list in items, including orphaned keys.
func AggregateCount(folders []Folder, items ItemMap, folderID *string) int {
	if folderID == nil {
		return items.Total()
	}
	n := 0
	for id := range CollectDescendantIDs(folders, folderID) {
		n += len(items[id])
	}
	return n
}

// ItemsForFolder flattens the items of folderID and its descendants (every
// list when nil), tagged with their folder, newest SavedAt first. Items
// with equal SavedAt keep folder order, then list order.
func ItemsForFolder(folders []Folder, items ItemMap, folderID *string) []TaggedItem {
	var scope map[string]bool
	if folderID != nil {
		scope = CollectDescendantIDs(folders, folderID)
	}
	include := func(id string) bool {
		return scope == nil || scope[id]
	}

	var out []TaggedItem
	visited := make(map[string]bool, len(items))
	appendList := func(id string) {
		if visited[id] || !include(id) {
			return
		}
		visited[id] = true
		for _, item := range items[id] {
			out = append(out, TaggedItem{Item: item, FolderID: id})
		}
	}

	for _, f := range folders {
		appendList(f.ID)
	}
	orphans := make([]string, 0)
	for id := range items {
		if !visited[id] {
			orphans = append(orphans, id)
		}
	}
	sort.Strings(orphans)
	for _, id := range orphans {
		appendList(id)
	}

	slices.SortStableFunc(out, func(a, b TaggedItem) int {
		switch {
		case a.Item.SavedAt > b.Item.SavedAt:
			return -1
		case a.Item.SavedAt < b.Item.SavedAt:
			return 1
		default:
			return 0
		}
	})
	return out
}

func indexOfURL(items []FolderItem, url string) int {
	for i, item := range items {
		if item.URL == url {
			return i
		}
	}
	return -1
}

func cloneItems(items []FolderItem) []FolderItem {
	out := make([]FolderItem, len(items))
	for i, item := range items {
		out[i] = item
		if item.VisitTime != nil {
			v := *item.VisitTime
			out[i].VisitTime = &v
		}
	}
	return out
}
