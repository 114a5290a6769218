package blobstore

import (
	"context"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store persists named blobs.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put creates the blob or replaces its contents.
	Put(ctx context.Context, name string, data []byte) error
	// Get returns the full contents of a blob.
	Get(ctx context.Context, name string) ([]byte, error)
	// List returns the names of all blobs starting with prefix, in the
	// backend's enumeration order.
	List(ctx context.Context, prefix string) ([]string, error)
}
