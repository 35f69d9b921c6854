//go:build unix

package memstore

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// flock holds an advisory, exclusive, non-blocking lock on path for the
// lifetime of the returned file's descriptor; Close releases it. A
// FileStore takes this lock in Open to enforce the single-writer
// invariant a real hierarchical backend's file handle would provide for
// free.
func flock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("memstore: %s is locked by another writer: %w", path, err)
	}
	return f, nil
}

func unflock(f *os.File) error {
	if f == nil {
		return nil
	}
	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	return f.Close()
}
