package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nikbrunner/shelf/internal/storage"
)

// backendFactories opens a fresh instance of every local backend.
var backendFactories = map[string]func(t *testing.T) storage.Backend{
	"memory": func(t *testing.T) storage.Backend { return storage.NewMemoryBackend() },
	"json": func(t *testing.T) storage.Backend {
		return storage.NewJSONFileBackend(filepath.Join(t.TempDir(), "state.json"))
	},
	"sqlite": func(t *testing.T) storage.Backend {
		b, err := storage.NewSQLiteBackend(filepath.Join(t.TempDir(), "shelf.db"))
		if err != nil {
			t.Fatalf("failed to open sqlite: %v", err)
		}
		return b
	},
}

func TestBackend_EmptyRead(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			b := open(t)
			defer b.Close()

			rec, err := b.Get(context.Background(), []string{"folders"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Version != 0 {
				t.Errorf("expected version 0, got %d", rec.Version)
			}
			if _, ok := rec.Values["folders"]; ok {
				t.Error("expected no value for an unwritten key")
			}
		})
	}
}

func TestBackend_PutBumpsVersion(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			b := open(t)
			defer b.Close()
			ctx := context.Background()

			v1, err := b.Put(ctx, map[string][]byte{"a": []byte(`[1]`), "b": []byte(`{"x":2}`)}, 0)
			if err != nil {
				t.Fatalf("first put failed: %v", err)
			}
			if v1 != 1 {
				t.Errorf("expected version 1, got %d", v1)
			}

			v2, err := b.Put(ctx, map[string][]byte{"a": []byte(`[3]`)}, storage.AnyVersion)
			if err != nil {
				t.Fatalf("unconditional put failed: %v", err)
			}
			if v2 != 2 {
				t.Errorf("expected version 2, got %d", v2)
			}

			rec, err := b.Get(ctx, []string{"a", "b", "missing"})
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if rec.Version != 2 {
				t.Errorf("expected version 2, got %d", rec.Version)
			}
			if string(rec.Values["a"]) != `[3]` {
				t.Errorf("expected a=[3], got %s", rec.Values["a"])
			}
			if string(rec.Values["b"]) != `{"x":2}` {
				t.Errorf("expected b kept, got %s", rec.Values["b"])
			}
			if len(rec.Values) != 2 {
				t.Errorf("expected 2 values, got %d", len(rec.Values))
			}
		})
	}
}

func TestBackend_StaleWrite(t *testing.T) {
	for name, open := range backendFactories {
		t.Run(name, func(t *testing.T) {
			b := open(t)
			defer b.Close()
			ctx := context.Background()

			if _, err := b.Put(ctx, map[string][]byte{"a": []byte(`"first"`)}, 0); err != nil {
				t.Fatalf("put failed: %v", err)
			}

			_, err := b.Put(ctx, map[string][]byte{"a": []byte(`"late"`)}, 0)
			if !errors.Is(err, storage.ErrStaleWrite) {
				t.Fatalf("expected ErrStaleWrite, got %v", err)
			}
			var stale *storage.StaleWriteError
			if !errors.As(err, &stale) || stale.Expected != 0 || stale.Actual != 1 {
				t.Errorf("unexpected stale error details: %+v", stale)
			}

			rec, err := b.Get(ctx, []string{"a"})
			if err != nil {
				t.Fatalf("get failed: %v", err)
			}
			if string(rec.Values["a"]) != `"first"` {
				t.Errorf("rejected write must not change data, got %s", rec.Values["a"])
			}
			if rec.Version != 1 {
				t.Errorf("rejected write must not bump version, got %d", rec.Version)
			}
		})
	}
}

func TestJSONFileBackend_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	ctx := context.Background()

	if _, err := storage.NewJSONFileBackend(path).Put(ctx, map[string][]byte{"k": []byte(`true`)}, storage.AnyVersion); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	rec, err := storage.NewJSONFileBackend(path).Get(ctx, []string{"k"})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(rec.Values["k"]) != "true" || rec.Version != 1 {
		t.Errorf("expected persisted value and version, got %s v%d", rec.Values["k"], rec.Version)
	}
}

func TestJSONFileBackend_RejectsNonJSON(t *testing.T) {
	b := storage.NewJSONFileBackend(filepath.Join(t.TempDir(), "state.json"))
	if _, err := b.Put(context.Background(), map[string][]byte{"k": []byte("not json")}, storage.AnyVersion); err == nil {
		t.Error("expected error for non-JSON value")
	}
}

func TestSQLiteBackend_ReopenKeepsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.db")
	ctx := context.Background()

	b, err := storage.NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if _, err := b.Put(ctx, map[string][]byte{"k": []byte("v")}, storage.AnyVersion); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	b.Close()

	b, err = storage.NewSQLiteBackend(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer b.Close()

	rec, err := b.Get(ctx, []string{"k"})
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if rec.Version != 1 || string(rec.Values["k"]) != "v" {
		t.Errorf("expected v at version 1, got %s v%d", rec.Values["k"], rec.Version)
	}
}
