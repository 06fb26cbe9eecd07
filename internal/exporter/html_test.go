package exporter_test

import (
	"strings"
	"testing"

	"gotest.tools/v3/golden"

	"github.com/nikbrunner/shelf/internal/exporter"
	"github.com/nikbrunner/shelf/internal/model"
)

func ptr(s string) *string { return &s }

func sampleSnapshot() model.Snapshot {
	return model.Snapshot{
		Folders: []model.Folder{
			{ID: "f1", Name: "Development"},
			{ID: "f2", Name: "React & Co", ParentID: ptr("f1")},
			{ID: "f3", Name: "Archive"},
		},
		Items: model.ItemMap{
			"f1": {{URL: "https://github.com", Title: "GitHub", SavedAt: 1700000000000}},
			"f2": {{URL: "https://react.dev", Title: "React Docs", SavedAt: 1700000100000}},
			"f3": {},
		},
	}
}

func TestExportHTML_EmptySnapshot(t *testing.T) {
	html := exporter.ExportHTML(model.NewSnapshot())

	// Should have basic structure even when empty
	if !strings.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>") {
		t.Error("expected DOCTYPE declaration")
	}
	if !strings.Contains(html, "<TITLE>Bookmarks</TITLE>") {
		t.Error("expected TITLE element")
	}
	if !strings.Contains(html, "<H1>Bookmarks</H1>") {
		t.Error("expected H1 element")
	}
}

func TestExportHTML_ItemAfterSubfolders(t *testing.T) {
	html := exporter.ExportHTML(sampleSnapshot())

	folderIdx := strings.Index(html, "React &amp; Co</H3>")
	itemIdx := strings.Index(html, "GitHub</A>")

	if folderIdx == -1 {
		t.Fatal("folder not found in output")
	}
	if itemIdx == -1 {
		t.Fatal("item not found in output")
	}
	if folderIdx > itemIdx {
		t.Error("expected subfolder to come before the folder's items")
	}
}

func TestExportHTML_Golden(t *testing.T) {
	golden.Assert(t, exporter.ExportHTML(sampleSnapshot()), "export.golden")
}

func TestExportHTML_SkipsOrphanLists(t *testing.T) {
	snap := sampleSnapshot()
	snap.Items["ghost"] = []model.FolderItem{{URL: "https://ghost.example", Title: "Ghost"}}

	if strings.Contains(exporter.ExportHTML(snap), "ghost.example") {
		t.Error("items of unknown folders should not be exported")
	}
}
