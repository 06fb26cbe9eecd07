// Package storage persists folder state in a key-value substrate and
// adapts it to the folder model.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// AnyVersion makes Put write unconditionally.
const AnyVersion int64 = -1

// ErrStaleWrite is returned when a conditional write lost against a newer one.
var ErrStaleWrite = errors.New("stale write")

// StaleWriteError carries the version a writer expected and the one stored.
type StaleWriteError struct {
	Expected int64
	Actual   int64
}

func (e *StaleWriteError) Error() string {
	return fmt.Sprintf("stale write: expected version %d, stored version is %d", e.Expected, e.Actual)
}

func (e *StaleWriteError) Is(target error) bool {
	return target == ErrStaleWrite
}

// Record is the result of a read: the requested values that exist and the
// version of the whole store at the time of the read.
type Record struct {
	Values  map[string][]byte
	Version int64
}

// Backend is a key-value store of opaque blobs with a single version
// counter. Every successful Put bumps the version by one. A Put writes all
// of its keys or none of them.
type Backend interface {
	Get(ctx context.Context, keys []string) (Record, error)
	// Put stores values if the current version equals ifVersion, or
	// unconditionally for AnyVersion. It returns the new version.
	Put(ctx context.Context, values map[string][]byte, ifVersion int64) (int64, error)
	Close() error
}

func checkVersion(current, ifVersion int64) error {
	if ifVersion != AnyVersion && ifVersion != current {
		return &StaleWriteError{Expected: ifVersion, Actual: current}
	}
	return nil
}
