package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nikbrunner/shelf/internal/model"
)

// Keys under which state is kept in a Backend.
const (
	KeyFolders  = "folders"
	KeyItems    = "folderItems"
	KeyVisits   = "visits"
	KeyMaxItems = "maxItems"
	KeyTheme    = "theme"
	KeyTourSeen = "tourSeen"
	KeyNotes    = "notes"
)

// Extras is the non-folder state carried along in backups.
type Extras struct {
	Visits   []model.VisitEntry `json:"visits"`
	MaxItems int                `json:"maxItems"`
	Theme    string             `json:"theme"`
	TourSeen bool               `json:"tourSeen"`
	Notes    []json.RawMessage  `json:"notes"`
}

// Store reads and writes typed state on top of a Backend. Keys that were
// never written load as empty collections.
type Store struct {
	backend Backend
}

// NewStore wraps backend.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Backend returns the underlying backend.
func (s *Store) Backend() Backend {
	return s.backend
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// LoadFolders returns the stored folders as written.
func (s *Store) LoadFolders(ctx context.Context) ([]model.Folder, error) {
	rec, err := s.backend.Get(ctx, []string{KeyFolders})
	if err != nil {
		return nil, err
	}
	folders := []model.Folder{}
	if err := decodeValue(rec, KeyFolders, &folders); err != nil {
		return nil, err
	}
	return folders, nil
}

// SaveFolders overwrites the stored folders.
func (s *Store) SaveFolders(ctx context.Context, folders []model.Folder) error {
	values, err := encodeValues(map[string]any{KeyFolders: nonNilFolders(folders)})
	if err != nil {
		return err
	}
	_, err = s.backend.Put(ctx, values, AnyVersion)
	return err
}

// LoadItems returns the stored item map as written.
func (s *Store) LoadItems(ctx context.Context) (model.ItemMap, error) {
	rec, err := s.backend.Get(ctx, []string{KeyItems})
	if err != nil {
		return nil, err
	}
	items := model.ItemMap{}
	if err := decodeValue(rec, KeyItems, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SaveItems overwrites the stored item map.
func (s *Store) SaveItems(ctx context.Context, items model.ItemMap) error {
	values, err := encodeValues(map[string]any{KeyItems: nonNilItems(items)})
	if err != nil {
		return err
	}
	_, err = s.backend.Put(ctx, values, AnyVersion)
	return err
}

// LoadSnapshot reads folders and items in one Get, repairs the hierarchy
// and reconciles the item map. The returned version feeds SaveSnapshot.
func (s *Store) LoadSnapshot(ctx context.Context) (model.Snapshot, int64, error) {
	rec, err := s.backend.Get(ctx, []string{KeyFolders, KeyItems})
	if err != nil {
		return model.Snapshot{}, 0, err
	}
	snap := model.NewSnapshot()
	if err := decodeValue(rec, KeyFolders, &snap.Folders); err != nil {
		return model.Snapshot{}, 0, err
	}
	if err := decodeValue(rec, KeyItems, &snap.Items); err != nil {
		return model.Snapshot{}, 0, err
	}
	return snap.Normalized(), rec.Version, nil
}

// SaveSnapshot writes folders and items in one Put. It fails with a
// *StaleWriteError when the store moved past ifVersion.
func (s *Store) SaveSnapshot(ctx context.Context, snap model.Snapshot, ifVersion int64) (int64, error) {
	values, err := encodeValues(map[string]any{
		KeyFolders: nonNilFolders(snap.Folders),
		KeyItems:   nonNilItems(snap.Items),
	})
	if err != nil {
		return 0, err
	}
	return s.backend.Put(ctx, values, ifVersion)
}

// LoadExtras reads the backup-only state.
func (s *Store) LoadExtras(ctx context.Context) (Extras, error) {
	rec, err := s.backend.Get(ctx, []string{KeyVisits, KeyMaxItems, KeyTheme, KeyTourSeen, KeyNotes})
	if err != nil {
		return Extras{}, err
	}
	ex := Extras{Visits: []model.VisitEntry{}, Notes: []json.RawMessage{}}
	for key, dst := range map[string]any{
		KeyVisits:   &ex.Visits,
		KeyMaxItems: &ex.MaxItems,
		KeyTheme:    &ex.Theme,
		KeyTourSeen: &ex.TourSeen,
		KeyNotes:    &ex.Notes,
	} {
		if err := decodeValue(rec, key, dst); err != nil {
			return Extras{}, err
		}
	}
	return ex, nil
}

// SaveExtras overwrites the backup-only state.
func (s *Store) SaveExtras(ctx context.Context, ex Extras) error {
	ex = ex.withDefaults()
	values, err := encodeValues(map[string]any{
		KeyVisits:   ex.Visits,
		KeyMaxItems: ex.MaxItems,
		KeyTheme:    ex.Theme,
		KeyTourSeen: ex.TourSeen,
		KeyNotes:    ex.Notes,
	})
	if err != nil {
		return err
	}
	_, err = s.backend.Put(ctx, values, AnyVersion)
	return err
}

// SaveAll writes snapshot and extras in one unconditional Put.
func (s *Store) SaveAll(ctx context.Context, snap model.Snapshot, ex Extras) (int64, error) {
	ex = ex.withDefaults()
	values, err := encodeValues(map[string]any{
		KeyFolders:  nonNilFolders(snap.Folders),
		KeyItems:    nonNilItems(snap.Items),
		KeyVisits:   ex.Visits,
		KeyMaxItems: ex.MaxItems,
		KeyTheme:    ex.Theme,
		KeyTourSeen: ex.TourSeen,
		KeyNotes:    ex.Notes,
	})
	if err != nil {
		return 0, err
	}
	return s.backend.Put(ctx, values, AnyVersion)
}

func (ex Extras) withDefaults() Extras {
	if ex.Visits == nil {
		ex.Visits = []model.VisitEntry{}
	}
	if ex.Notes == nil {
		ex.Notes = []json.RawMessage{}
	}
	return ex
}

// decodeValue leaves dst untouched when key is missing or null.
func decodeValue(rec Record, key string, dst any) error {
	raw, ok := rec.Values[key]
	if !ok || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func encodeValues(values map[string]any) (map[string][]byte, error) {
	out := make(map[string][]byte, len(values))
	for k, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		out[k] = data
	}
	return out, nil
}

func nonNilFolders(folders []model.Folder) []model.Folder {
	if folders == nil {
		return []model.Folder{}
	}
	return folders
}

func nonNilItems(items model.ItemMap) model.ItemMap {
	if items == nil {
		return model.ItemMap{}
	}
	return items
}
