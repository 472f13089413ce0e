// Package eliasfano implements the Elias-Fano encoding of a strictly increasing
// sequence of unsigned integers.
//
// # Overview
//
// Given n values drawn from the universe [0, u), every value x is split into
//
//	high = x >> l
//	low  = x & (1<<l - 1)
//
// where l = floor(log2(u/n)) (or 0 when n >= u). The low parts are stored in a
// packed array of n*l bits. The high parts are stored in unary: for each value
// the builder appends (high - previousHigh) zero bits followed by a single one
// bit. The total size is about n*(2 + log2(u/n)) bits, close to the
// information-theoretic minimum for a set of n elements out of u.
//
// # Queries
//
// A frozen [Sequence] answers:
//
//   - Select(k): the k-th smallest value, via select1 on the high bits
//   - Rank(x): the number of values < x, via select0 on the high bits
//   - Contains(x): membership, via Rank followed by Select
//
// # Binary Format
//
//	Preamble (32 bytes, little endian):
//	  Universe  (8 bytes)
//	  Count     (8 bytes)
//	  LowBits   (1 byte)
//	  Padding   (7 bytes, zero)
//	  HighLen   (8 bytes) - length of the high bit vector in bits
//
//	HighWords (ceil(HighLen/64) * 8 bytes)
//	LowWords  (ceil(Count*LowBits/64) * 8 bytes)
//
// The rank/select directory is not persisted; [Decode] rebuilds it.
package eliasfano
