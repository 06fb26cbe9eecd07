package importer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikbrunner/shelf/internal/model"
)

// ErrMalformedImportFile is returned when an export file is not JSON or has
// no folder list.
var ErrMalformedImportFile = errors.New("malformed import file")

// Report counts the records dropped while sanitizing untrusted state.
type Report struct {
	Folders        int
	Items          int
	DroppedFolders int
	DroppedItems   int
	SkippedLists   int
}

// Result is the outcome of parsing an export file.
type Result struct {
	Snapshot model.Snapshot
	Report   Report
}

// ParseExport reads an export file. Invalid records are dropped rather than
// failing the whole import; the result replaces the current state.
func ParseExport(data []byte) (Result, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedImportFile, err)
	}
	top, ok := asObject(raw)
	if !ok {
		return Result{}, fmt.Errorf("%w: top level is not an object", ErrMalformedImportFile)
	}
	if _, ok := asArray(top["folders"]); !ok {
		return Result{}, fmt.Errorf("%w: missing folders list", ErrMalformedImportFile)
	}

	snap, report := SanitizeState(top["folders"], top["folderItems"])
	return Result{Snapshot: snap, Report: report}, nil
}

// SanitizeState builds a normalized snapshot from decoded JSON values of
// unknown shape.
func SanitizeState(rawFolders, rawItems any) (model.Snapshot, Report) {
	var report Report
	folders := sanitizeFolders(rawFolders, &report)

	known := make(map[string]bool, len(folders))
	items := make(model.ItemMap, len(folders))
	for _, f := range folders {
		known[f.ID] = true
		items[f.ID] = []model.FolderItem{}
	}

	lists, _ := asObject(rawItems)
	for folderID, rawList := range lists {
		entries, ok := asArray(rawList)
		if !known[folderID] || !ok {
			report.SkippedLists++
			continue
		}
		for _, rawEntry := range entries {
			item, ok := sanitizeItem(rawEntry)
			if !ok || items.Has(folderID, item.URL) {
				report.DroppedItems++
				continue
			}
			items[folderID] = append(items[folderID], item)
			report.Items++
		}
	}

	snap := model.Snapshot{Folders: folders, Items: items}.Normalized()
	return snap, report
}

func sanitizeFolders(raw any, report *Report) []model.Folder {
	entries, _ := asArray(raw)
	folders := make([]model.Folder, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, entry := range entries {
		obj, ok := asObject(entry)
		if !ok {
			report.DroppedFolders++
			continue
		}
		id := identifier(obj, "id")
		if id == "" || seen[id] {
			report.DroppedFolders++
			continue
		}
		seen[id] = true

		name := nonEmptyString(obj, "name")
		if name == "" {
			name = model.UntitledFolder
		}
		folder := model.Folder{ID: id, Name: name}
		if parent := identifier(obj, "parentId"); parent != "" {
			folder.ParentID = &parent
		}
		folders = append(folders, folder)
		report.Folders++
	}
	return folders
}

func sanitizeItem(raw any) (model.FolderItem, bool) {
	obj, ok := asObject(raw)
	if !ok {
		return model.FolderItem{}, false
	}
	url := nonEmptyString(obj, "url")
	if !model.ValidURL(url) {
		return model.FolderItem{}, false
	}

	title, _ := stringField(obj, "title")
	favicon, _ := stringField(obj, "faviconUrl")
	item := model.FolderItem{
		URL:        url,
		Title:      model.TitleOrURL(title, url),
		FaviconURL: model.SafeFavicon(url, favicon),
	}
	if savedAt, ok := finiteMillis(obj, "savedAt"); ok {
		item.SavedAt = savedAt
	} else {
		item.SavedAt = model.NowMillis()
	}
	if visit, ok := finiteMillis(obj, "visitTime"); ok {
		item.VisitTime = &visit
	}
	return item, true
}

// SanitizeVisits reads a visit history of unknown shape. Entries without a
// URL are dropped; fractional visit times are truncated.
func SanitizeVisits(raw any) []model.VisitEntry {
	entries, _ := asArray(raw)
	visits := make([]model.VisitEntry, 0, len(entries))
	for _, entry := range entries {
		obj, ok := asObject(entry)
		if !ok {
			continue
		}
		url := nonEmptyString(obj, "url")
		if url == "" {
			continue
		}
		title, _ := stringField(obj, "title")
		favicon, _ := stringField(obj, "faviconUrl")
		visitTime, _ := finiteMillis(obj, "visitTime")
		visits = append(visits, model.VisitEntry{
			URL:        url,
			Title:      title,
			FaviconURL: favicon,
			VisitTime:  visitTime,
		})
	}
	return visits
}
