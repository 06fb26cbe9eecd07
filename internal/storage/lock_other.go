//go:build !unix && !windows

package storage

import "os"

// Platforms without advisory locks only get the in-process mutex.
func tryLock(*os.File) error { return nil }

func unlock(*os.File) error { return nil }
