package model

import (
	"net/url"
	"strings"
	"time"
)

// FolderItem is one saved page inside a folder's list.
// URL is the identity key within a single folder.
type FolderItem struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	FaviconURL string `json:"faviconUrl"`
	SavedAt    int64  `json:"savedAt"`   // epoch milliseconds
	VisitTime  *int64 `json:"visitTime"` // epoch milliseconds, nil = unknown
}

// VisitEntry is the shape recorded by visit history and consumed by save-to-folder.
type VisitEntry struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	FaviconURL string `json:"faviconUrl"`
	VisitTime  int64  `json:"visitTime"`
}

// NewItemParams holds parameters for creating a new FolderItem.
type NewItemParams struct {
	URL        string
	Title      string
	FaviconURL string
	VisitTime  *int64
}

// NewItem creates a FolderItem saved now, with title and favicon fallbacks applied.
func NewItem(params NewItemParams) FolderItem {
	return FolderItem{
		URL:        params.URL,
		Title:      TitleOrURL(params.Title, params.URL),
		FaviconURL: SafeFavicon(params.URL, params.FaviconURL),
		SavedAt:    NowMillis(),
		VisitTime:  params.VisitTime,
	}
}

// SavedTime returns SavedAt as a time.Time.
func (i FolderItem) SavedTime() time.Time {
	return time.UnixMilli(i.SavedAt)
}

// now is replaceable in tests.
var now = time.Now

// NowMillis returns the current time in epoch milliseconds.
func NowMillis() int64 {
	return now().UnixMilli()
}

// TitleOrURL returns the trimmed title, falling back to the URL when blank.
func TitleOrURL(title, rawURL string) string {
	if t := strings.TrimSpace(title); t != "" {
		return t
	}
	return rawURL
}

// ValidURL reports whether raw is an absolute http or https URL with a host.
func ValidURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

const faviconService = "https://www.google.com/s2/favicons?sz=64&domain="

// SafeFavicon returns candidate when it is an external http(s) icon URL.
// Internal or privileged URLs (chrome://, extension pages, data:, about:)
// are replaced by the external favicon service for the page host.
func SafeFavicon(pageURL, candidate string) string {
	if ValidURL(candidate) {
		return strings.TrimSpace(candidate)
	}
	if !ValidURL(pageURL) {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return faviconService + url.QueryEscape(u.Hostname())
}
