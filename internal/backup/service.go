package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/state"
)

// ErrNoBackup is returned by Pull when the remote holds no backup.
var ErrNoBackup = errors.New("no backup found")

// Service pushes local state to a Transport and restores it back.
type Service struct {
	manager   *state.Manager
	transport Transport
	logger    state.Logger
	now       func() time.Time
}

func NewService(manager *state.Manager, transport Transport, logger state.Logger) *Service {
	if logger == nil {
		logger = state.DiscardLogger
	}
	return &Service{manager: manager, transport: transport, logger: logger, now: time.Now}
}

// PushResult describes an upload.
type PushResult struct {
	FileID  string
	Folders int
	Items   int
	Bytes   int
}

// Push uploads the current state.
func (s *Service) Push(ctx context.Context) (PushResult, error) {
	store := s.manager.Store()
	snap, _, err := store.LoadSnapshot(ctx)
	if err != nil {
		return PushResult{}, fmt.Errorf("backup push: load: %w", err)
	}
	extras, err := store.LoadExtras(ctx)
	if err != nil {
		return PushResult{}, fmt.Errorf("backup push: load extras: %w", err)
	}
	env := Build(snap, extras, s.now())
	payload, err := env.Encode()
	if err != nil {
		return PushResult{}, fmt.Errorf("backup push: encode: %w", err)
	}
	id, err := s.transport.Upload(ctx, payload)
	if err != nil {
		return PushResult{}, fmt.Errorf("backup push: upload: %w", err)
	}
	s.logger.Printf("backup push: uploaded %d bytes as %s", len(payload), id)
	return PushResult{
		FileID:  id,
		Folders: len(env.Data.Folders),
		Items:   env.Data.FolderItems.Total(),
		Bytes:   len(payload),
	}, nil
}

// Pull downloads the backup and replaces local state with it. Local state is
// left untouched when the payload cannot be decoded.
func (s *Service) Pull(ctx context.Context) (model.Snapshot, error) {
	payload, found, err := s.transport.Download(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("backup pull: download: %w", err)
	}
	if !found {
		return model.Snapshot{}, ErrNoBackup
	}
	env, err := Decode(payload)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("backup pull: %w", err)
	}
	snap, err := s.manager.Restore(ctx, env.Snapshot(), env.Extras())
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("backup pull: %w", err)
	}
	s.logger.Printf("backup pull: restored %d folders from %s", len(snap.Folders),
		time.UnixMilli(env.ExportedAt).UTC().Format(time.RFC3339))
	return snap, nil
}
