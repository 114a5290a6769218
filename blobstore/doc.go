// Package blobstore provides the storage abstraction behind hast's persisted
// reports.
//
// Every report is one blob named by the decimal identifier of its ID. The
// directory (or bucket prefix) listing is the only index; recovery lists all
// blobs and replays them.
//
// # Built-in Implementations
//
//   - LocalStore: a working directory on the local file system
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 (blobstore/s3)
//   - minio.Store: MinIO and other S3-compatible services (blobstore/minio)
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, data) error          // create or replace
//	    Get(ctx, name) ([]byte, error)      // ErrNotFound if missing
//	    List(ctx, prefix) ([]string, error) // enumeration order
//	}
package blobstore
