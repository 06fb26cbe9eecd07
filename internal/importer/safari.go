package importer

import (
	"fmt"
	"io"

	"howett.net/plist"
)

type safariBookmark struct {
	WebBookmarkType string            `plist:"WebBookmarkType"`
	Title           string            `plist:"Title"`
	URLString       string            `plist:"URLString"`
	URIDictionary   map[string]string `plist:"URIDictionary"`
	Children        []safariBookmark  `plist:"Children"`
}

// ParseSafariBookmarks reads Safari's Bookmarks.plist (binary or XML).
// The untitled top-level list is unwrapped.
func ParseSafariBookmarks(r io.ReadSeeker) ([]Node, error) {
	var root safariBookmark
	if err := plist.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode safari bookmarks: %w", err)
	}
	if root.Title == "" {
		return safariChildren(root.Children), nil
	}
	if n, ok := root.toNode(); ok {
		return []Node{n}, nil
	}
	return nil, nil
}

func (b safariBookmark) toNode() (Node, bool) {
	switch b.WebBookmarkType {
	case "WebBookmarkTypeLeaf":
		url := b.URLString
		if url == "" {
			url = b.URIDictionary[""]
		}
		if url == "" {
			return Node{}, false
		}
		title := b.Title
		if title == "" {
			title = b.URIDictionary["title"]
		}
		return Node{Title: title, URL: url}, true
	case "WebBookmarkTypeList":
		return Node{Title: b.Title, Children: safariChildren(b.Children)}, true
	default:
		return Node{}, false
	}
}

func safariChildren(children []safariBookmark) []Node {
	var nodes []Node
	for _, child := range children {
		if n, ok := child.toNode(); ok {
			nodes = append(nodes, n)
		}
	}
	return nodes
}
