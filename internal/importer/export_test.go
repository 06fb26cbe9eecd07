package importer_test

import (
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/shelf/internal/importer"
)

func TestParseExport_Sanitizes(t *testing.T) {
	data := []byte(`{
		"version": 1,
		"exportedAt": "2025-01-01T00:00:00Z",
		"folders": [
			{"id": "a", "name": "Work", "parentId": null},
			{"id": "b", "name": "", "parentId": "a"},
			{"id": "c", "name": "Lost", "parentId": "nowhere"},
			{"id": "a", "name": "Duplicate id"},
			{"name": "No id"},
			"not an object",
			{"id": 7, "name": "Numeric id"}
		],
		"folderItems": {
			"a": [
				{"url": "https://go.dev", "title": "", "faviconUrl": "chrome://favicon/x", "savedAt": 100, "visitTime": 50},
				{"url": "https://pkg.go.dev", "title": "Pkg", "savedAt": "yesterday", "visitTime": "never"},
				{"title": "No url"},
				42
			],
			"b": "not a list",
			"ghost": [{"url": "https://ghost.com"}]
		}
	}`)

	res, err := importer.ParseExport(data)
	assert.NilError(t, err)
	snap := res.Snapshot

	assert.Assert(t, is.Len(snap.Folders, 3))
	assert.Equal(t, snap.Folder("a").Name, "Work")
	assert.Equal(t, snap.Folder("b").Name, "Untitled folder")
	assert.Equal(t, *snap.Folder("b").ParentID, "a")
	assert.Assert(t, snap.Folder("c").ParentID == nil, "dangling parent is reset")

	items := snap.Items["a"]
	assert.Assert(t, is.Len(items, 2))
	assert.Equal(t, items[0].Title, "https://go.dev")
	assert.Equal(t, items[0].SavedAt, int64(100))
	assert.Equal(t, *items[0].VisitTime, int64(50))
	assert.Equal(t, items[0].FaviconURL, "https://www.google.com/s2/favicons?sz=64&domain=go.dev")
	assert.Assert(t, items[1].SavedAt > 0)
	assert.Assert(t, items[1].VisitTime == nil)

	assert.Assert(t, is.Len(snap.Items["b"], 0))
	assert.Assert(t, is.Len(snap.Items["c"], 0))
	_, ghost := snap.Items["ghost"]
	assert.Assert(t, !ghost, "lists of unknown folders are skipped")

	assert.Equal(t, res.Report.Folders, 3)
	assert.Equal(t, res.Report.DroppedFolders, 4)
	assert.Equal(t, res.Report.DroppedItems, 2)
	assert.Equal(t, res.Report.SkippedLists, 2)
}

func TestParseExport_BreaksCycles(t *testing.T) {
	data := []byte(`{"folders": [
		{"id": "a", "name": "A", "parentId": "b"},
		{"id": "b", "name": "B", "parentId": "a"}
	]}`)

	res, err := importer.ParseExport(data)
	assert.NilError(t, err)

	roots := 0
	for _, f := range res.Snapshot.Folders {
		if f.IsRoot() {
			roots++
		}
	}
	assert.Equal(t, roots, 1)
	assert.Assert(t, is.Len(res.Snapshot.Items, 2))
}

func TestParseExport_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{"folders": [`},
		{"array at top", `[1, 2, 3]`},
		{"no folders", `{"folderItems": {}}`},
		{"folders not a list", `{"folders": {"a": 1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.ParseExport([]byte(tt.data))
			assert.ErrorIs(t, err, importer.ErrMalformedImportFile)
		})
	}
}

func TestParseExport_DropsNonWebURLs(t *testing.T) {
	data := []byte(`{
		"folders": [{"id": "a", "name": "A"}],
		"folderItems": {"a": [
			{"url": "javascript:alert(1)"},
			{"url": "not a url"},
			{"url": "file:///etc/passwd"},
			{"url": "https://go.dev"}
		]}
	}`)

	res, err := importer.ParseExport(data)
	assert.NilError(t, err)

	items := res.Snapshot.Items["a"]
	assert.Assert(t, is.Len(items, 1))
	assert.Equal(t, items[0].URL, "https://go.dev")
	assert.Equal(t, res.Report.DroppedItems, 3)
}

func TestParseExport_KeepsIDsVerbatim(t *testing.T) {
	data := []byte(`{
		"folders": [
			{"id": " a ", "name": "Padded"},
			{"id": "b", "name": "Child", "parentId": " a "},
			{"id": "   ", "name": "Blank"}
		],
		"folderItems": {" a ": [{"url": "https://go.dev"}]}
	}`)

	res, err := importer.ParseExport(data)
	assert.NilError(t, err)

	snap := res.Snapshot
	assert.Assert(t, snap.Folder(" a ") != nil)
	assert.Equal(t, *snap.Folder("b").ParentID, " a ")
	assert.Assert(t, is.Len(snap.Items[" a "], 1))
	assert.Equal(t, res.Report.SkippedLists, 0)
	assert.Equal(t, res.Report.DroppedFolders, 1)
}

func TestParseExport_OutOfRangeTimes(t *testing.T) {
	data := []byte(`{
		"folders": [{"id": "a", "name": "A"}],
		"folderItems": {"a": [
			{"url": "https://go.dev", "savedAt": 1e300, "visitTime": -1e300},
			{"url": "https://pkg.go.dev", "savedAt": 1700000000000.75}
		]}
	}`)

	res, err := importer.ParseExport(data)
	assert.NilError(t, err)

	items := res.Snapshot.Items["a"]
	assert.Assert(t, is.Len(items, 2))
	for _, item := range items {
		assert.Assert(t, item.SavedAt > 0, "savedAt for %s", item.URL)
		assert.Assert(t, item.VisitTime == nil)
	}
}

func TestMillis(t *testing.T) {
	tests := []struct {
		in   any
		want int64
		ok   bool
	}{
		{float64(1700000000000.5), 1700000000000, true},
		{float64(-5), -5, true},
		{1e300, 0, false},
		{-1e19, 0, false},
		{"100", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := importer.Millis(tt.in)
		assert.Equal(t, ok, tt.ok, "Millis(%v)", tt.in)
		assert.Equal(t, got, tt.want, "Millis(%v)", tt.in)
	}
}
