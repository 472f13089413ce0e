// Package blobstore provides the storage abstraction that built dataset
// containers are published to.
//
// Store is the interface for writing and reading named blobs. Implementations
// must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Put(ctx, name, r, size) error               // Atomic write
//	    Open(ctx, name) (io.ReadCloser, error)      // Open for reading
//	    Stat(ctx, name) (int64, error)
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Put must not make a partial blob visible under name.
package blobstore
