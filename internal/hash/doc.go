// Package hash provides CRC32-Castagnoli checksums for on-disk integrity checks.
//
// Section headers and container tables of contents carry a CRC32C of the bytes
// they describe. Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC)
// when available.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For checksumming while streaming to another writer:
//
//	cw := hash.NewWriter(w)
//	_, _ = cw.Write(payload)
//	checksum := cw.Sum32()
package hash
