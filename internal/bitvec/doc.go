// Package bitvec provides an append-only bit vector with rank/select support.
//
// Architecture:
//   - Builder: growable []uint64 words, bits appended LSB-first within a word
//   - Vector: frozen words plus a rank directory (cumulative popcount every 512 bits)
//
// Select is answered with a binary search over the directory followed by an
// in-word scan, so it is O(log n). Rank is O(1).
//
// Used internally for:
//   - Elias-Fano high bits (unary-coded buckets)
//   - Elias-Fano low bits (fixed-width packed array)
package bitvec
