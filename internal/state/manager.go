// Package state owns the canonical folder snapshot. Every change runs as a
// pure command between a versioned load and a conditional write.
package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/storage"
)

// Logger is the logging surface the manager needs.
type Logger interface {
	Printf(format string, args ...any)
}

// DiscardLogger drops everything.
var DiscardLogger Logger = log.New(io.Discard, "", 0)

// Command computes the next snapshot from the current one. It must not
// modify its argument.
type Command func(model.Snapshot) (model.Snapshot, error)

// Options configures a Manager.
type Options struct {
	Logger Logger
	// Retries is how many times a command is recomputed after losing a
	// write race.
	Retries int
}

// Manager applies commands to the snapshot kept in a storage.Store.
type Manager struct {
	store   *storage.Store
	logger  Logger
	retries int
}

// NewManager returns a Manager over store.
func NewManager(store *storage.Store, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = DiscardLogger
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	return &Manager{store: store, logger: opts.Logger, retries: opts.Retries}
}

// Store returns the underlying store.
func (m *Manager) Store() *storage.Store {
	return m.store
}

// Snapshot loads the current state.
func (m *Manager) Snapshot(ctx context.Context) (model.Snapshot, error) {
	snap, _, err := m.store.LoadSnapshot(ctx)
	return snap, err
}

// Apply loads the snapshot, runs cmd and writes the result back if nothing
// else wrote in between. On a lost race it reloads and runs cmd again. A
// failing cmd writes nothing.
func (m *Manager) Apply(ctx context.Context, name string, cmd Command) (model.Snapshot, error) {
	for attempt := 0; ; attempt++ {
		snap, version, err := m.store.LoadSnapshot(ctx)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("%s: load: %w", name, err)
		}

		next, err := cmd(snap)
		if err != nil {
			return snap, err
		}

		newVersion, err := m.store.SaveSnapshot(ctx, next, version)
		if err == nil {
			m.logger.Printf("%s: committed version %d", name, newVersion)
			return next, nil
		}
		if !errors.Is(err, storage.ErrStaleWrite) || attempt >= m.retries {
			return snap, fmt.Errorf("%s: save: %w", name, err)
		}
		m.logger.Printf("%s: %v, retrying (%d/%d)", name, err, attempt+1, m.retries)
	}
}

// Replace overwrites the whole state with snap, regardless of what is
// stored. Used for imports and backup restores.
func (m *Manager) Replace(ctx context.Context, name string, snap model.Snapshot) (model.Snapshot, error) {
	next := snap.Normalized()
	version, err := m.store.SaveSnapshot(ctx, next, storage.AnyVersion)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("%s: save: %w", name, err)
	}
	m.logger.Printf("%s: replaced state at version %d", name, version)
	return next, nil
}

// Restore overwrites folders, items and extras in a single write.
func (m *Manager) Restore(ctx context.Context, snap model.Snapshot, extras storage.Extras) (model.Snapshot, error) {
	next := snap.Normalized()
	version, err := m.store.SaveAll(ctx, next, extras)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("restore: save: %w", err)
	}
	m.logger.Printf("restore: replaced state at version %d", version)
	return next, nil
}
