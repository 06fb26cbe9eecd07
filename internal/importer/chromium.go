package importer

import (
	"encoding/json"
	"fmt"
	"io"
)

// chromiumRoots lists the top-level folders of a Chromium Bookmarks file in
// the order the browser shows them.
var chromiumRoots = []string{"bookmark_bar", "other", "synced"}

type chromiumNode struct {
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	URL      string         `json:"url"`
	Children []chromiumNode `json:"children"`
}

// ParseChromiumBookmarks reads the Bookmarks JSON file written by Chrome,
// Edge, Brave and Chromium. Each non-empty root becomes a top-level folder.
func ParseChromiumBookmarks(r io.Reader) ([]Node, error) {
	var data struct {
		Roots map[string]json.RawMessage `json:"roots"`
	}
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode chromium bookmarks: %w", err)
	}

	var nodes []Node
	for _, key := range chromiumRoots {
		raw, ok := data.Roots[key]
		if !ok {
			continue
		}
		var root chromiumNode
		if err := json.Unmarshal(raw, &root); err != nil {
			continue
		}
		if root.Type != "folder" || len(root.Children) == 0 {
			continue
		}
		nodes = append(nodes, root.toNode())
	}
	return nodes, nil
}

func (c chromiumNode) toNode() Node {
	if c.Type == "url" {
		return Node{Title: c.Name, URL: c.URL}
	}
	n := Node{Title: c.Name}
	for _, child := range c.Children {
		if child.Type != "url" && child.Type != "folder" {
			continue
		}
		n.Children = append(n.Children, child.toNode())
	}
	return n
}
