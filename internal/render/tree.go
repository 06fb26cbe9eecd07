// Package render formats folder hierarchies for terminal output.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/nikbrunner/shelf/internal/model"
)

var (
	folderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	countStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	itemStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

// TreeOptions controls Tree output.
type TreeOptions struct {
	// Items lists each folder's own items under it.
	Items bool
	// IDs appends folder ids.
	IDs bool
}

// Tree renders the whole hierarchy, root folders first, children sorted.
func Tree(snap model.Snapshot, opts TreeOptions) string {
	roots := snap.Children(nil)
	if len(roots) == 0 {
		return "(no folders)"
	}
	t := tree.New().Enumerator(tree.RoundedEnumerator)
	for _, f := range roots {
		t.Child(folderNode(snap, f, opts))
	}
	return t.String()
}

func folderNode(snap model.Snapshot, f model.Folder, opts TreeOptions) *tree.Tree {
	label := folderStyle.Render(f.Name) + " " + countStyle.Render(fmt.Sprintf("(%d)", snap.Count(&f.ID)))
	if opts.IDs {
		label += " " + countStyle.Render(f.ID)
	}
	node := tree.Root(label).Enumerator(tree.RoundedEnumerator)
	for _, child := range snap.Children(&f.ID) {
		node.Child(folderNode(snap, child, opts))
	}
	if opts.Items {
		for _, item := range snap.Items[f.ID] {
			node.Child(itemStyle.Render(item.Title) + " " + countStyle.Render(item.URL))
		}
	}
	return node
}

// Items renders tagged items one per line with their folder path.
func Items(snap model.Snapshot, items []model.TaggedItem) string {
	if len(items) == 0 {
		return "(no items)"
	}
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b, "%s\n  %s  %s\n",
			itemStyle.Render(it.Item.Title),
			countStyle.Render(snap.Breadcrumb(&it.FolderID)),
			it.Item.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}
