package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
)

// DefaultExportPath returns the default export file path for the given
// extension. Format: ~/Downloads/shelf-export-YYYY-MM-DD.<ext>
func DefaultExportPath(ext string, now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("shelf-export-%s.%s", now.Format("2006-01-02"), ext)
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML renders the snapshot as a Netscape bookmark file. Child
// folders come first, then the folder's items, newest first.
func ExportHTML(snap model.Snapshot) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	writeFolders(&b, snap, nil, 1)

	b.WriteString("</DL><p>\n")
	return b.String()
}

func writeFolders(b *strings.Builder, snap model.Snapshot, parentID *string, indent int) {
	prefix := strings.Repeat("    ", indent)

	for _, folder := range snap.Children(parentID) {
		fmt.Fprintf(b, "%s<DT><H3>%s</H3>\n", prefix, html.EscapeString(folder.Name))
		fmt.Fprintf(b, "%s<DL><p>\n", prefix)

		folderID := folder.ID
		writeFolders(b, snap, &folderID, indent+1)
		writeItems(b, snap.Items[folder.ID], indent+1)

		fmt.Fprintf(b, "%s</DL><p>\n", prefix)
	}
}

func writeItems(b *strings.Builder, items []model.FolderItem, indent int) {
	prefix := strings.Repeat("    ", indent)
	for _, item := range items {
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			prefix,
			html.EscapeString(item.URL),
			item.SavedTime().Unix(),
			html.EscapeString(item.Title),
		)
	}
}
