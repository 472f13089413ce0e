// Package container reads and writes map container files: a set of named
// sections followed by a table of contents.
//
// Layout (little endian):
//
//	"CRCONT01"                                    8-byte magic
//	section bytes ...                             referenced by the TOC
//	u32 count
//	count × (u16 tagLen | tag | u64 off | u64 size)   table of contents
//	u64 tocOffset | u32 crc32c(TOC) | u32 "CONT"  16-byte footer
//
// Writers open an existing container and append new sections after the
// current end of file. Close writes a fresh table of contents and footer; the
// previous TOC becomes unreferenced. If any write fails, the file is truncated
// back to its original length, so the previous TOC and footer remain the last
// bytes of the file and the container is exactly as it was.
//
// Readers memory-map the file and hand out sections as slices that alias the
// mapping.
package container
