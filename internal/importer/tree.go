// Package importer folds foreign bookmark data into the folder model:
// flat export files and nested native bookmark trees.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
)

var (
	// ErrSourceUnavailable is returned when a tree source cannot be read.
	ErrSourceUnavailable = errors.New("bookmark source unavailable")
	// ErrEmptySource is returned when a tree source yields no nodes.
	ErrEmptySource = errors.New("bookmark source is empty")
)

// Node is one entry of a native bookmark tree. A node with a URL is a page,
// any other node is a folder.
type Node struct {
	Title    string `json:"title"`
	URL      string `json:"url,omitempty"`
	Children []Node `json:"children,omitempty"`
}

// IsFolder reports whether the node stands for a folder.
func (n Node) IsFolder() bool {
	return strings.TrimSpace(n.URL) == ""
}

// TreeSource reads a native bookmark tree.
type TreeSource interface {
	ReadTree(ctx context.Context) ([]Node, error)
}

// TreeReport summarizes a tree import.
type TreeReport struct {
	RootID         string
	FoldersCreated int
	ItemsImported  int
	Duplicates     int
	Skipped        int
}

// ImportRootName returns the name of the folder an import is placed in.
func ImportRootName(at time.Time) string {
	return "Imported bookmarks (" + at.Format("Jan 2, 2006") + ")"
}

// ImportTree places nodes under a new top-level folder named after the
// import date. Pages become items of their parent folder, everything else
// becomes a folder. The returned report carries the new folder's ID.
func ImportTree(snap model.Snapshot, nodes []Node, now time.Time) (model.Snapshot, TreeReport, error) {
	if len(nodes) == 0 {
		return snap, TreeReport{}, ErrEmptySource
	}

	next := snap.Clone()
	if next.Items == nil {
		next.Items = model.ItemMap{}
	}
	w := &treeWalker{snap: &next, savedAt: now.UnixMilli()}

	root := w.addFolder(nil, model.UniqueName(next.Folders, nil, ImportRootName(now)))
	w.report.RootID = root
	w.report.FoldersCreated = 0
	w.walk(root, nodes)

	return next.Normalized(), w.report, nil
}

// ImportFromSource reads src and imports its tree into snap. Nothing is
// returned but the original snapshot when reading fails.
func ImportFromSource(ctx context.Context, snap model.Snapshot, src TreeSource, now time.Time) (model.Snapshot, TreeReport, error) {
	nodes, err := src.ReadTree(ctx)
	if err != nil {
		return snap, TreeReport{}, SourceError(err)
	}
	return ImportTree(snap, nodes, now)
}

// SourceError marks err as a failure to read a tree source.
func SourceError(err error) error {
	return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
}

type treeWalker struct {
	snap    *model.Snapshot
	savedAt int64
	report  TreeReport
}

func (w *treeWalker) addFolder(parentID *string, name string) string {
	folder := model.NewFolder(model.NewFolderParams{Name: name, ParentID: parentID})
	w.snap.Folders = append(w.snap.Folders, folder)
	w.snap.Items[folder.ID] = []model.FolderItem{}
	w.report.FoldersCreated++
	return folder.ID
}

func (w *treeWalker) walk(parentID string, nodes []Node) {
	for _, n := range nodes {
		if n.IsFolder() {
			name := strings.TrimSpace(n.Title)
			if name == "" {
				name = model.UntitledFolder
			}
			name = model.UniqueName(w.snap.Folders, &parentID, name)
			id := w.addFolder(&parentID, name)
			w.walk(id, n.Children)
			continue
		}

		url := strings.TrimSpace(n.URL)
		if !model.ValidURL(url) {
			w.report.Skipped++
			continue
		}
		if w.snap.Items.Has(parentID, url) {
			w.report.Duplicates++
			continue
		}
		item := model.FolderItem{
			URL:        url,
			Title:      model.TitleOrURL(n.Title, url),
			FaviconURL: model.SafeFavicon(url, ""),
			SavedAt:    w.savedAt,
		}
		w.snap.Items[parentID] = append([]model.FolderItem{item}, w.snap.Items[parentID]...)
		w.report.ItemsImported++
	}
}
