package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format names a native bookmark file format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatChromium Format = "chromium"
	FormatSafari   Format = "safari"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHTML, FormatChromium, FormatSafari:
		return f, nil
	case "chrome", "edge", "brave":
		return FormatChromium, nil
	default:
		return "", fmt.Errorf("unknown bookmark format %q (want html, chromium or safari)", s)
	}
}

// DetectFormat guesses the format from a file name.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FormatHTML
	case ".plist":
		return FormatSafari
	default:
		return FormatChromium
	}
}

// FileSource reads a bookmark tree from a file on disk.
type FileSource struct {
	Path   string
	Format Format
}

// ReadTree implements TreeSource.
func (s FileSource) ReadTree(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	format := s.Format
	if format == "" {
		format = DetectFormat(s.Path)
	}

	switch format {
	case FormatHTML:
		return ParseHTMLBookmarks(f)
	case FormatChromium:
		return ParseChromiumBookmarks(f)
	case FormatSafari:
		return ParseSafariBookmarks(f)
	default:
		return nil, fmt.Errorf("unsupported bookmark format %q", format)
	}
}

// Nodes is a TreeSource over an in-memory tree.
type Nodes []Node

// ReadTree implements TreeSource.
func (n Nodes) ReadTree(context.Context) ([]Node, error) {
	return n, nil
}
