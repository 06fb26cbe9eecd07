package storage

import (
	"context"
	"errors"
	"os"
	"time"
)

const lockPollInterval = 10 * time.Millisecond

// errLockBusy is returned by tryLock when another handle holds the lock.
var errLockBusy = errors.New("lock busy")

// fileLock is an exclusive advisory lock on a sibling ".lock" file. It is
// held across processes for the duration of a read-check-write cycle.
type fileLock struct {
	f *os.File
}

// acquireLock blocks until the lock for path is held or ctx is done.
func acquireLock(ctx context.Context, path string) (*fileLock, error) {
	f, err := os.OpenFile(path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	for {
		err := tryLock(f)
		if err == nil {
			return &fileLock{f: f}, nil
		}
		if !errors.Is(err, errLockBusy) {
			f.Close()
			return nil, err
		}
		select {
		case <-ctx.Done():
			f.Close()
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}

func (l *fileLock) release() error {
	err := unlock(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	return err
}
