// Package minio provides a blobstore.Store implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the
// official MinIO Go client library, which also works with other S3-compatible
// services such as Ceph, SeaweedFS, and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "maps", "city-roads/")
//	err = store.Put(ctx, "europe/de.mwm", f, size)
//
// # Features
//
//   - Streaming uploads of unknown size
//   - Works with any S3-compatible storage
//   - Air-gap friendly (no AWS dependencies required)
package minio
