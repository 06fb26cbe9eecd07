// Package search provides fuzzy matching over saved items.
package search

import (
	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/shelf/internal/model"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Item           model.TaggedItem
	Path           string
	MatchedIndexes []int
	Score          int
}

// itemTitles implements fuzzy.Source over title and URL.
type itemTitles []model.TaggedItem

func (it itemTitles) String(i int) string {
	return it[i].Item.Title + " " + it[i].Item.URL
}

func (it itemTitles) Len() int {
	return len(it)
}

// FuzzySearchItems searches the items of folderID and its descendants (all
// items when nil) by title and URL. Results are sorted by score, best first.
// MatchedIndexes refer to the string "title url".
func FuzzySearchItems(snap model.Snapshot, folderID *string, query string) []SearchResult {
	if query == "" {
		return nil
	}

	items := itemTitles(snap.ItemsFor(folderID))
	matches := fuzzy.FindFrom(query, items)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		tagged := items[m.Index]
		results[i] = SearchResult{
			Item:           tagged,
			Path:           snap.Breadcrumb(&tagged.FolderID),
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// folderPaths implements fuzzy.Source over folder breadcrumbs.
type folderPaths struct {
	folders []model.Folder
	paths   []string
}

func (fp folderPaths) String(i int) string { return fp.paths[i] }
func (fp folderPaths) Len() int            { return len(fp.paths) }

// FolderResult is a folder matched by its full path.
type FolderResult struct {
	Folder model.Folder
	Path   string
	Score  int
}

// FuzzySearchFolders matches folders by their breadcrumb path.
func FuzzySearchFolders(snap model.Snapshot, query string) []FolderResult {
	if query == "" {
		return nil
	}
	src := folderPaths{folders: snap.Folders, paths: make([]string, len(snap.Folders))}
	for i := range snap.Folders {
		src.paths[i] = snap.Breadcrumb(&snap.Folders[i].ID)
	}

	matches := fuzzy.FindFrom(query, src)
	results := make([]FolderResult, len(matches))
	for i, m := range matches {
		results[i] = FolderResult{Folder: src.folders[m.Index], Path: src.paths[m.Index], Score: m.Score}
	}
	return results
}
