package engine

import (
	"strings"

	"github.com/nikbrunner/shelf/internal/model"
)

// SaveItem prepends entry to the list of folderID. The title falls back to
// the URL and the favicon is replaced when it is not an external icon.
func SaveItem(items model.ItemMap, folderID string, entry model.FolderItem) (model.ItemMap, error) {
	entry.URL = strings.TrimSpace(entry.URL)
	if !model.ValidURL(entry.URL) {
		return items, &ItemError{FolderID: folderID, URL: entry.URL, Err: ErrInvalidURL}
	}
	if items.Has(folderID, entry.URL) {
		return items, &ItemError{FolderID: folderID, URL: entry.URL, Err: ErrDuplicateItem}
	}

	entry.Title = model.TitleOrURL(entry.Title, entry.URL)
	entry.FaviconURL = model.SafeFavicon(entry.URL, entry.FaviconURL)
	if entry.SavedAt == 0 {
		entry.SavedAt = model.NowMillis()
	}

	next := items.Clone()
	next[folderID] = prepend(next[folderID], entry)
	return next, nil
}

// MoveItem moves entry from sourceFolderID to the front of targetFolderID.
// A nil source means the entry comes from visit history and is saved for
// the first time. SavedAt is kept unless it was never set.
func MoveItem(items model.ItemMap, sourceFolderID *string, targetFolderID string, entry model.FolderItem) (model.ItemMap, error) {
	if sourceFolderID != nil && *sourceFolderID == targetFolderID {
		return items, &ItemError{FolderID: targetFolderID, URL: entry.URL, Err: ErrNoOpMove}
	}
	if items.Has(targetFolderID, entry.URL) {
		return items, &ItemError{FolderID: targetFolderID, URL: entry.URL, Err: ErrDuplicateItem}
	}
	if entry.SavedAt == 0 {
		entry.SavedAt = model.NowMillis()
	}
	entry.Title = model.TitleOrURL(entry.Title, entry.URL)
	entry.FaviconURL = model.SafeFavicon(entry.URL, entry.FaviconURL)

	next := items.Clone()
	if sourceFolderID != nil {
		next[*sourceFolderID] = without(next[*sourceFolderID], entry.URL)
	}
	next[targetFolderID] = prepend(next[targetFolderID], entry)
	return next, nil
}

// RemoveItem drops url from the folder's list. Missing URLs are ignored.
func RemoveItem(items model.ItemMap, folderID, url string) model.ItemMap {
	if !items.Has(folderID, url) {
		return items
	}
	next := items.Clone()
	next[folderID] = without(next[folderID], url)
	return next
}

// RenameItemURL changes the URL of an item and re-resolves its favicon.
// Title, SavedAt, VisitTime and the item's position in the list are kept.
func RenameItemURL(items model.ItemMap, folderID, oldURL, newURL string) (model.ItemMap, error) {
	newURL = strings.TrimSpace(newURL)
	if !model.ValidURL(newURL) {
		return items, &ItemError{FolderID: folderID, URL: newURL, Err: ErrInvalidURL}
	}
	if !items.Has(folderID, oldURL) {
		return items, &ItemError{FolderID: folderID, URL: oldURL, Err: ErrItemNotFound}
	}
	if newURL == oldURL {
		return items, nil
	}
	if items.Has(folderID, newURL) {
		return items, &ItemError{FolderID: folderID, URL: newURL, Err: ErrDuplicateItem}
	}

	next := items.Clone()
	list := next[folderID]
	for i := range list {
		if list[i].URL == oldURL {
			if list[i].Title == oldURL {
				list[i].Title = newURL
			}
			list[i].URL = newURL
			list[i].FaviconURL = model.SafeFavicon(newURL, "")
			break
		}
	}
	return next, nil
}

// RenameItemTitle sets the title of the item with url in folderID.
func RenameItemTitle(items model.ItemMap, folderID, url, newTitle string) (model.ItemMap, error) {
	newTitle = strings.TrimSpace(newTitle)
	if newTitle == "" {
		return items, ErrEmptyTitle
	}
	if !items.Has(folderID, url) {
		return items, &ItemError{FolderID: folderID, URL: url, Err: ErrItemNotFound}
	}

	next := items.Clone()
	list := next[folderID]
	for i := range list {
		if list[i].URL == url {
			list[i].Title = newTitle
			break
		}
	}
	return next, nil
}

// FromVisit turns a history entry into an unsaved item.
func FromVisit(v model.VisitEntry) model.FolderItem {
	visit := v.VisitTime
	item := model.FolderItem{
		URL:        v.URL,
		Title:      model.TitleOrURL(v.Title, v.URL),
		FaviconURL: model.SafeFavicon(v.URL, v.FaviconURL),
	}
	if visit > 0 {
		item.VisitTime = &visit
	}
	return item
}

func prepend(list []model.FolderItem, item model.FolderItem) []model.FolderItem {
	out := make([]model.FolderItem, 0, len(list)+1)
	out = append(out, item)
	return append(out, list...)
}

func without(list []model.FolderItem, url string) []model.FolderItem {
	out := make([]model.FolderItem, 0, len(list))
	for _, item := range list {
		if item.URL != url {
			out = append(out, item)
		}
	}
	return out
}
