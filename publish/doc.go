// Package publish uploads built dataset containers to a blobstore.Store.
//
// Uploads are throttled by a resource.Controller and can be compressed with
// LZ4 or Zstandard on the fly. OpenStore selects a store from a URL:
//
//	file:///srv/maps            local directory
//	mem://                      in-memory (tests)
//	s3://bucket/prefix          Amazon S3
//	minio://host:port/bucket/prefix  MinIO or another S3-compatible service
package publish
