// Package section writes and parses the fixed-layout city_roads section.
//
// A section is a 12-byte little-endian header followed by the payload:
//
//	offset size field
//	0      2    Version
//	2      2    Reserved (zero)
//	4      4    DataSize (payload byte length)
//	8      4    Checksum (CRC32C of the payload)
//
// [Write] reserves the header, streams the payload after it, then seeks back
// and patches DataSize and Checksum. The header is the same width in both
// passes. [Parse] checks DataSize against the bytes actually present, so a
// torn section is never read as a valid one.
package section
