//go:build !unix

package memstore

import "os"

// flock is a no-op single-writer guard on platforms without flock(2); it
// still creates the lock file so the on-disk layout matches the unix
// build.
func flock(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
}

func unflock(f *os.File) error {
	if f == nil {
		return nil
	}
	return f.Close()
}
