package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nikbrunner/shelf/internal/storage"
)

func TestJSONFileBackend_SharedFileRejectsStaleWriter(t *testing.T) {
	big := []byte(`"` + strings.Repeat("x", 2<<20) + `"`)

	for run := 0; run < 10; run++ {
		path := filepath.Join(t.TempDir(), "state.json")
		backends := []*storage.JSONFileBackend{
			storage.NewJSONFileBackend(path),
			storage.NewJSONFileBackend(path),
		}

		var wg sync.WaitGroup
		errs := make([]error, len(backends))
		for i, b := range backends {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = b.Put(context.Background(), map[string][]byte{
					"writer": []byte(fmt.Sprintf("%d", i)),
					"blob":   big,
				}, 0)
			}()
		}
		wg.Wait()

		succeeded, stale := 0, 0
		for _, err := range errs {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, storage.ErrStaleWrite):
				stale++
			default:
				t.Fatalf("run %d: unexpected error: %v", run, err)
			}
		}
		if succeeded != 1 || stale != 1 {
			t.Fatalf("run %d: expected one winner and one stale writer, got %d and %d", run, succeeded, stale)
		}

		rec, err := backends[0].Get(context.Background(), []string{"blob"})
		if err != nil {
			t.Fatalf("run %d: read failed: %v", run, err)
		}
		if rec.Version != 1 {
			t.Errorf("run %d: expected version 1, got %d", run, rec.Version)
		}
		if !bytes.Equal(rec.Values["blob"], big) {
			t.Errorf("run %d: blob was torn", run)
		}
	}
}

func TestJSONFileBackend_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	b := storage.NewJSONFileBackend(filepath.Join(dir, "state.json"))

	for i := 0; i < 3; i++ {
		if _, err := b.Put(context.Background(), map[string][]byte{"n": []byte(fmt.Sprint(i))}, storage.AnyVersion); err != nil {
			t.Fatalf("put %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}
