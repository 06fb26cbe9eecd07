package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nikbrunner/shelf/internal/storage"
)

func TestWatch_SeesWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- storage.Watch(ctx, path, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	for {
		select {
		case <-changed:
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("watch returned error: %v", err)
			}
			return
		case <-tick.C:
			if err := os.WriteFile(path, []byte(`{}`), 0o644); err != nil {
				t.Fatalf("write failed: %v", err)
			}
		case <-deadline:
			t.Fatal("no change notification received")
		}
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	changed := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644)
	}()

	if err := storage.Watch(ctx, path, func() { changed++ }); err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
	if changed != 0 {
		t.Errorf("expected no notifications, got %d", changed)
	}
}
