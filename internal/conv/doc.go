// Package conv provides checked integer conversions.
//
// Use these when a value crosses into a fixed-width on-disk field (section
// sizes, table-of-contents offsets, string lengths) or when an offset read
// from disk is turned back into a slice index.
package conv
