// Package s3 provides an S3 implementation of the blobstore.Store interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "city-roads/2026-10")
//	err = store.Put(ctx, "europe/de.mwm", f, size)
//
// # Features
//
//   - Multipart uploads with CRC32C checksums for large containers
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
