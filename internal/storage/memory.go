package storage

import (
	"context"
	"slices"
	"sync"
)

// MemoryBackend keeps values in process memory. Values are copied on the
// way in and out.
type MemoryBackend struct {
	mu      sync.Mutex
	values  map[string][]byte
	version int64
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{values: make(map[string][]byte)}
}

func (b *MemoryBackend) Get(ctx context.Context, keys []string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	rec := Record{Values: make(map[string][]byte, len(keys)), Version: b.version}
	for _, k := range keys {
		if v, ok := b.values[k]; ok {
			rec.Values[k] = slices.Clone(v)
		}
	}
	return rec, nil
}

func (b *MemoryBackend) Put(ctx context.Context, values map[string][]byte, ifVersion int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := checkVersion(b.version, ifVersion); err != nil {
		return 0, err
	}
	for k, v := range values {
		b.values[k] = slices.Clone(v)
	}
	b.version++
	return b.version, nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
