package importer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/shelf/internal/importer"
	"github.com/nikbrunner/shelf/internal/model"
)

var importTime = time.Date(2025, time.March, 4, 10, 0, 0, 0, time.UTC)

func ptr(s string) *string { return &s }

func TestImportTree_FolderWithPage(t *testing.T) {
	nodes := []importer.Node{
		{Title: "Folder1", Children: []importer.Node{
			{Title: "Page", URL: "https://e.com"},
		}},
	}

	snap, report, err := importer.ImportTree(model.NewSnapshot(), nodes, importTime)
	assert.NilError(t, err)

	root := snap.Folder(report.RootID)
	assert.Assert(t, root != nil)
	assert.Equal(t, root.Name, "Imported bookmarks (Mar 4, 2025)")
	assert.Assert(t, root.IsRoot())

	children := snap.Children(&report.RootID)
	assert.Assert(t, is.Len(children, 1))
	assert.Equal(t, children[0].Name, "Folder1")

	items := snap.Items[children[0].ID]
	assert.Assert(t, is.Len(items, 1))
	assert.Equal(t, items[0].URL, "https://e.com")
	assert.Equal(t, items[0].Title, "Page")
	assert.Equal(t, items[0].SavedAt, importTime.UnixMilli())
	assert.Assert(t, items[0].VisitTime == nil)

	assert.Equal(t, report.FoldersCreated, 1)
	assert.Equal(t, report.ItemsImported, 1)
}

func TestImportTree_DeduplicatesSiblingNames(t *testing.T) {
	nodes := []importer.Node{
		{Title: "Docs"},
		{Title: "docs"},
		{Title: "Docs"},
		{Title: "  "},
	}

	snap, report, err := importer.ImportTree(model.NewSnapshot(), nodes, importTime)
	assert.NilError(t, err)

	var names []string
	for _, f := range snap.Folders {
		if f.ParentID != nil && *f.ParentID == report.RootID {
			names = append(names, f.Name)
		}
	}
	assert.DeepEqual(t, names, []string{"Docs", "docs (2)", "Docs (3)", model.UntitledFolder})
}

func TestImportTree_ItemsPrependedAndDeduplicated(t *testing.T) {
	nodes := []importer.Node{
		{Title: "", URL: "https://one.com"},
		{Title: "Two", URL: "https://two.com"},
		{Title: "Again", URL: "https://one.com"},
		{Title: "Bookmarklet", URL: "javascript:void(0)"},
	}

	snap, report, err := importer.ImportTree(model.NewSnapshot(), nodes, importTime)
	assert.NilError(t, err)

	items := snap.Items[report.RootID]
	assert.Assert(t, is.Len(items, 2))
	assert.Equal(t, items[0].URL, "https://two.com")
	assert.Equal(t, items[1].Title, "https://one.com")
	assert.Equal(t, report.Duplicates, 1)
	assert.Equal(t, report.Skipped, 1)
}

func TestImportTree_RootNameClash(t *testing.T) {
	existing := model.Snapshot{
		Folders: []model.Folder{{ID: "x", Name: importer.ImportRootName(importTime)}},
		Items:   model.ItemMap{"x": {}},
	}

	snap, report, err := importer.ImportTree(existing, []importer.Node{{Title: "A"}}, importTime)
	assert.NilError(t, err)
	assert.Equal(t, snap.Folder(report.RootID).Name, importer.ImportRootName(importTime)+" (2)")
	assert.Assert(t, snap.Folder("x") != nil, "existing folders are kept")
}

func TestImportTree_EmptySource(t *testing.T) {
	snap := model.NewSnapshot()
	got, _, err := importer.ImportTree(snap, nil, importTime)
	assert.ErrorIs(t, err, importer.ErrEmptySource)
	assert.Assert(t, is.Len(got.Folders, 0))
}

type failingSource struct{}

func (failingSource) ReadTree(context.Context) ([]importer.Node, error) {
	return nil, errors.New("permission denied")
}

func TestImportFromSource(t *testing.T) {
	snap := model.NewSnapshot()

	_, _, err := importer.ImportFromSource(context.Background(), snap, failingSource{}, importTime)
	assert.ErrorIs(t, err, importer.ErrSourceUnavailable)

	_, _, err = importer.ImportFromSource(context.Background(), snap, importer.Nodes{}, importTime)
	assert.ErrorIs(t, err, importer.ErrEmptySource)

	got, report, err := importer.ImportFromSource(context.Background(), snap,
		importer.Nodes{{Title: "Go", URL: "https://go.dev"}}, importTime)
	assert.NilError(t, err)
	assert.Equal(t, got.Count(ptr(report.RootID)), 1)
}
