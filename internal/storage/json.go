package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// jsonDocument is the on-disk layout of a JSONFileBackend.
type jsonDocument struct {
	Version int64                      `json:"version"`
	Values  map[string]json.RawMessage `json:"values"`
}

// JSONFileBackend keeps every key in one indented JSON document. Values
// must themselves be JSON. Writers hold an advisory lock on a sibling
// ".lock" file, so the version check holds across processes sharing the
// file. Each write goes to a fresh temporary file that is renamed over the
// original.
type JSONFileBackend struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileBackend creates a backend for the file at path. The file is
// created on the first write.
func NewJSONFileBackend(path string) *JSONFileBackend {
	return &JSONFileBackend{path: path}
}

// Path returns the storage file path.
func (b *JSONFileBackend) Path() string {
	return b.path
}

func (b *JSONFileBackend) Get(ctx context.Context, keys []string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.read()
	if err != nil {
		return Record{}, err
	}
	rec := Record{Values: make(map[string][]byte, len(keys)), Version: doc.Version}
	for _, k := range keys {
		if v, ok := doc.Values[k]; ok {
			rec.Values[k] = []byte(v)
		}
	}
	return rec, nil
}

func (b *JSONFileBackend) Put(ctx context.Context, values map[string][]byte, ifVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(b.path), 0o755); err != nil {
		return 0, err
	}
	lock, err := acquireLock(ctx, b.path)
	if err != nil {
		return 0, fmt.Errorf("lock %s: %w", b.path, err)
	}
	defer lock.release()

	doc, err := b.read()
	if err != nil {
		return 0, err
	}
	if err := checkVersion(doc.Version, ifVersion); err != nil {
		return 0, err
	}
	for k, v := range values {
		if !json.Valid(v) {
			return 0, fmt.Errorf("value for %q is not valid JSON", k)
		}
		doc.Values[k] = json.RawMessage(v)
	}
	doc.Version++

	if err := b.write(doc); err != nil {
		return 0, err
	}
	return doc.Version, nil
}

func (b *JSONFileBackend) Close() error {
	return nil
}

// read returns an empty document when the file doesn't exist.
func (b *JSONFileBackend) read() (jsonDocument, error) {
	doc := jsonDocument{Values: map[string]json.RawMessage{}}
	data, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("read %s: %w", b.path, err)
	}
	if doc.Values == nil {
		doc.Values = map[string]json.RawMessage{}
	}
	return doc, nil
}

func (b *JSONFileBackend) write(doc jsonDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path)
}
