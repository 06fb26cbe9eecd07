package importer_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/shelf/internal/importer"
)

const chromiumBookmarks = `{
  "checksum": "abc",
  "roots": {
    "bookmark_bar": {
      "type": "folder", "name": "Bookmarks bar",
      "children": [
        {"type": "url", "name": "Go", "url": "https://go.dev"},
        {"type": "folder", "name": "Tools", "children": [
          {"type": "url", "name": "GitHub", "url": "https://github.com"}
        ]}
      ]
    },
    "other": {"type": "folder", "name": "Other bookmarks", "children": []},
    "synced": {"type": "folder", "name": "Mobile bookmarks", "children": [
      {"type": "url", "name": "News", "url": "https://news.ycombinator.com"}
    ]}
  },
  "version": 1
}`

func TestParseChromiumBookmarks(t *testing.T) {
	nodes, err := importer.ParseChromiumBookmarks(strings.NewReader(chromiumBookmarks))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(nodes, 2))
	assert.Equal(t, nodes[0].Title, "Bookmarks bar")
	assert.Equal(t, nodes[1].Title, "Mobile bookmarks")

	bar := nodes[0]
	assert.Assert(t, is.Len(bar.Children, 2))
	assert.Equal(t, bar.Children[0].URL, "https://go.dev")
	assert.Equal(t, bar.Children[1].Title, "Tools")
	assert.Equal(t, bar.Children[1].Children[0].URL, "https://github.com")
}

func TestParseChromiumBookmarks_Invalid(t *testing.T) {
	_, err := importer.ParseChromiumBookmarks(strings.NewReader("not json"))
	assert.ErrorContains(t, err, "decode chromium bookmarks")
}

const safariBookmarks = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
  <key>Title</key><string></string>
  <key>WebBookmarkType</key><string>WebBookmarkTypeList</string>
  <key>Children</key>
  <array>
    <dict>
      <key>Title</key><string>BookmarksBar</string>
      <key>WebBookmarkType</key><string>WebBookmarkTypeList</string>
      <key>Children</key>
      <array>
        <dict>
          <key>WebBookmarkType</key><string>WebBookmarkTypeLeaf</string>
          <key>URLString</key><string>https://apple.com</string>
          <key>URIDictionary</key>
          <dict><key>title</key><string>Apple</string></dict>
        </dict>
      </array>
    </dict>
    <dict>
      <key>WebBookmarkType</key><string>WebBookmarkTypeProxy</string>
      <key>Title</key><string>History</string>
    </dict>
  </array>
</dict>
</plist>`

func TestParseSafariBookmarks(t *testing.T) {
	nodes, err := importer.ParseSafariBookmarks(strings.NewReader(safariBookmarks))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(nodes, 1))
	assert.Equal(t, nodes[0].Title, "BookmarksBar")
	assert.Assert(t, is.Len(nodes[0].Children, 1))
	assert.Equal(t, nodes[0].Children[0].Title, "Apple")
	assert.Equal(t, nodes[0].Children[0].URL, "https://apple.com")
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Bookmarks")
	assert.NilError(t, os.WriteFile(path, []byte(chromiumBookmarks), 0o644))

	nodes, err := importer.FileSource{Path: path}.ReadTree(context.Background())
	assert.NilError(t, err)
	assert.Assert(t, is.Len(nodes, 2))

	_, err = importer.FileSource{Path: filepath.Join(dir, "missing.html")}.ReadTree(context.Background())
	assert.Assert(t, os.IsNotExist(err))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want importer.Format
	}{
		{"html", importer.FormatHTML},
		{"Chrome", importer.FormatChromium},
		{"safari", importer.FormatSafari},
	}
	for _, tt := range tests {
		got, err := importer.ParseFormat(tt.in)
		assert.NilError(t, err)
		assert.Equal(t, got, tt.want)
	}

	_, err := importer.ParseFormat("opera")
	assert.ErrorContains(t, err, "unknown bookmark format")
}
