//go:build !linux

package blobstore

import "os"

func syncFile(f *os.File) error {
	return f.Sync()
}
