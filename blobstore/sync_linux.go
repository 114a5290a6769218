//go:build linux

package blobstore

import (
	"os"

	"golang.org/x/sys/unix"
)

// syncFile flushes file data without forcing a metadata-only update.
func syncFile(f *os.File) error {
	err := unix.Fdatasync(int(f.Fd()))
	if err == unix.EINVAL {
		// Directories on some file systems reject fdatasync.
		return f.Sync()
	}
	return err
}
