// Package backup builds and restores the versioned backup payload and moves
// it to and from a remote app-data store.
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/shelf/internal/importer"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/storage"
)

// Version is the only payload version this package reads and writes.
const Version = 1

var (
	// ErrUnsupportedVersion is returned for payloads with another version.
	ErrUnsupportedVersion = errors.New("unsupported backup version")
	// ErrMalformedPayload is returned for payloads that fail validation.
	ErrMalformedPayload = errors.New("malformed backup payload")
)

// Envelope is the version-tagged backup document.
type Envelope struct {
	Version    int   `json:"version"`
	ExportedAt int64 `json:"exportedAt"` // epoch milliseconds
	Data       Data  `json:"data"`
}

// Data is the state carried by a backup.
type Data struct {
	Visits      []model.VisitEntry `json:"visits"`
	MaxItems    int                `json:"maxItems"`
	Folders     []model.Folder     `json:"folders"`
	FolderItems model.ItemMap      `json:"folderItems"`
	Theme       string             `json:"theme"`
	TourSeen    bool               `json:"tourSeen"`
	Notes       []json.RawMessage  `json:"notes"`
}

// Build assembles an envelope from the current state.
func Build(snap model.Snapshot, extras storage.Extras, now time.Time) Envelope {
	folders := model.CloneFolders(snap.Folders)
	visits := extras.Visits
	if visits == nil {
		visits = []model.VisitEntry{}
	}
	notes := extras.Notes
	if notes == nil {
		notes = []json.RawMessage{}
	}
	return Envelope{
		Version:    Version,
		ExportedAt: now.UnixMilli(),
		Data: Data{
			Visits:      visits,
			MaxItems:    extras.MaxItems,
			Folders:     folders,
			FolderItems: model.EnsureItemMap(folders, model.DropOrphans(folders, snap.Items)),
			Theme:       extras.Theme,
			TourSeen:    extras.TourSeen,
			Notes:       notes,
		},
	}
}

// Encode marshals the envelope.
func (e Envelope) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Snapshot returns the folders and items of the envelope.
func (e Envelope) Snapshot() model.Snapshot {
	return model.Snapshot{Folders: e.Data.Folders, Items: e.Data.FolderItems}.Normalized()
}

// Extras returns the non-folder state of the envelope.
func (e Envelope) Extras() storage.Extras {
	return storage.Extras{
		Visits:   e.Data.Visits,
		MaxItems: e.Data.MaxItems,
		Theme:    e.Data.Theme,
		TourSeen: e.Data.TourSeen,
		Notes:    e.Data.Notes,
	}
}

// Decode checks the version, validates the payload shape and sanitizes
// folders, items and visits the same way an export file import does.
// Timestamps may be fractional milliseconds and are truncated.
func Decode(data []byte) (Envelope, error) {
	var head struct {
		Version any `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if v, ok := head.Version.(float64); !ok || v != Version {
		return Envelope{}, fmt.Errorf("%w: %v", ErrUnsupportedVersion, head.Version)
	}

	if err := validate(data); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	var env struct {
		ExportedAt any `json:"exportedAt"`
		Data       struct {
			Data
			Visits      any `json:"visits"`
			Folders     any `json:"folders"`
			FolderItems any `json:"folderItems"`
		} `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	snap, _ := importer.SanitizeState(env.Data.Folders, env.Data.FolderItems)
	out := Envelope{Version: Version, Data: env.Data.Data}
	out.ExportedAt, _ = importer.Millis(env.ExportedAt)
	out.Data.Visits = importer.SanitizeVisits(env.Data.Visits)
	out.Data.Folders = snap.Folders
	out.Data.FolderItems = snap.Items
	if out.Data.Notes == nil {
		out.Data.Notes = []json.RawMessage{}
	}
	return out, nil
}
