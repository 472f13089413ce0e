package eliasfano

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/cityroads/internal/bitvec"
)

const preambleSize = 32

// WriteTo writes the sequence in its binary format.
func (s *Sequence) WriteTo(w io.Writer) (int64, error) {
	pre := make([]byte, preambleSize)
	binary.LittleEndian.PutUint64(pre[0:8], s.universe)
	binary.LittleEndian.PutUint64(pre[8:16], s.n)
	pre[16] = byte(s.lowBits)
	binary.LittleEndian.PutUint64(pre[24:32], s.high.Len())

	var total int64
	n, err := w.Write(pre)
	total += int64(n)
	if err != nil {
		return total, err
	}

	m, err := s.high.WriteTo(w)
	total += m
	if err != nil {
		return total, err
	}

	m, err = s.low.WriteTo(w)
	total += m
	return total, err
}

// EncodedSize returns the number of bytes WriteTo produces.
func (s *Sequence) EncodedSize() int {
	return preambleSize + 8*len(s.high.Words()) + 8*len(s.low.Words())
}

// Decode parses a sequence written by WriteTo.
// The data is copied; the returned Sequence does not reference it.
func Decode(data []byte) (*Sequence, error) {
	if len(data) < preambleSize {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrCorrupt, len(data), preambleSize)
	}

	universe := binary.LittleEndian.Uint64(data[0:8])
	n := binary.LittleEndian.Uint64(data[8:16])
	lowBits := uint(data[16])
	highLen := binary.LittleEndian.Uint64(data[24:32])

	for _, b := range data[17:24] {
		if b != 0 {
			return nil, fmt.Errorf("%w: non-zero padding", ErrCorrupt)
		}
	}
	if n == 0 {
		return nil, ErrEmpty
	}
	if universe == 0 || n > universe {
		return nil, fmt.Errorf("%w: count %d, universe %d", ErrCorrupt, n, universe)
	}
	if lowBits != lowBitsFor(universe, n) {
		return nil, fmt.Errorf("%w: low bits %d", ErrCorrupt, lowBits)
	}
	if highLen < n || highLen-n > (universe-1)>>lowBits {
		return nil, fmt.Errorf("%w: high length %d", ErrCorrupt, highLen)
	}
	// n*2^lowBits <= universe, so n*lowBits cannot overflow.
	lowLen := n * uint64(lowBits)

	highWords := bitvec.WordsFor(highLen)
	lowWords := bitvec.WordsFor(lowLen)
	want := uint64(preambleSize) + 8*(highWords+lowWords)
	if want > math.MaxInt || uint64(len(data)) != want {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrCorrupt, len(data), want)
	}

	off := preambleSize
	readWords := func(count uint64) []uint64 {
		words := make([]uint64, count)
		for i := range words {
			words[i] = binary.LittleEndian.Uint64(data[off:])
			off += 8
		}
		return words
	}

	high, err := bitvec.FromWords(readWords(highWords), highLen)
	if err != nil {
		return nil, fmt.Errorf("%w: high bits: %v", ErrCorrupt, err)
	}
	low, err := bitvec.FromWords(readWords(lowWords), lowLen)
	if err != nil {
		return nil, fmt.Errorf("%w: low bits: %v", ErrCorrupt, err)
	}
	if high.Ones() != n || !high.Get(highLen-1) {
		return nil, fmt.Errorf("%w: high bits do not encode %d values", ErrCorrupt, n)
	}

	s := &Sequence{
		universe: universe,
		n:        n,
		lowBits:  lowBits,
		high:     high,
		low:      low,
	}

	// Corrupt low bits can break the ordering inside a bucket.
	var prev uint64
	var bad bool
	s.ForEach(func(k, v uint64) bool {
		if (k > 0 && v <= prev) || v >= universe {
			bad = true
			return false
		}
		prev = v
		return true
	})
	if bad {
		return nil, fmt.Errorf("%w: values not strictly increasing", ErrCorrupt)
	}
	return s, nil
}
