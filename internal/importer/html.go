package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// ParseHTMLBookmarks parses a Netscape bookmark file into a node tree.
// An H3 names the folder whose contents follow in the next DL.
func ParseHTMLBookmarks(r io.Reader) ([]Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	// Each frame collects the nodes of one open folder; the first is the root.
	type frame struct {
		title string
		nodes []Node
	}
	stack := []*frame{{}}
	var pending *string

	top := func() *frame { return stack[len(stack)-1] }
	flushPending := func() {
		if pending != nil {
			top().nodes = append(top().nodes, Node{Title: *pending})
			pending = nil
		}
	}

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch strings.ToLower(n.Data) {
			case "h3":
				flushPending()
				name := getTextContent(n)
				pending = &name
				return

			case "a":
				flushPending()
				href := strings.TrimSpace(getAttr(n, "href"))
				if href == "" {
					return
				}
				top().nodes = append(top().nodes, Node{Title: getTextContent(n), URL: href})
				return

			case "dl":
				pushed := pending != nil
				if pushed {
					stack = append(stack, &frame{title: *pending})
					pending = nil
				}

				for c := n.FirstChild; c != nil; c = c.NextSibling {
					parse(c)
				}
				flushPending()

				if pushed {
					done := top()
					stack = stack[:len(stack)-1]
					top().nodes = append(top().nodes, Node{Title: done.title, Children: done.nodes})
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	flushPending()
	return stack[0].nodes, nil
}

// getTextContent returns the trimmed text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if strings.EqualFold(attr.Key, key) {
			return attr.Val
		}
	}
	return ""
}
