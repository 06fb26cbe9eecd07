// Package exporter writes folders and their items in shareable formats.
package exporter

import (
	"encoding/json"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
)

// ExportVersion is the version tag of the JSON export file.
const ExportVersion = 1

// File is the JSON export document.
type File struct {
	Version     int            `json:"version"`
	ExportedAt  string         `json:"exportedAt"`
	Folders     []model.Folder `json:"folders"`
	FolderItems model.ItemMap  `json:"folderItems"`
}

// NewFile builds the export document for snap. Lists of unknown folders
// are left out.
func NewFile(snap model.Snapshot, now time.Time) File {
	folders := model.CloneFolders(snap.Folders)
	return File{
		Version:     ExportVersion,
		ExportedAt:  now.UTC().Format(time.RFC3339),
		Folders:     folders,
		FolderItems: model.EnsureItemMap(folders, model.DropOrphans(folders, snap.Items)),
	}
}

// ExportJSON renders the snapshot as an indented JSON export file.
func ExportJSON(snap model.Snapshot, now time.Time) ([]byte, error) {
	return json.MarshalIndent(NewFile(snap, now), "", "  ")
}
