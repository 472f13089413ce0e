package eliasfano

import (
	"github.com/hupe1980/cityroads/internal/bitvec"
)

// Sequence is an immutable Elias-Fano encoded sequence.
// It is safe for concurrent reads.
type Sequence struct {
	universe uint64
	n        uint64
	lowBits  uint

	high *bitvec.Vector
	low  *bitvec.Vector
}

// Len returns the number of values.
func (s *Sequence) Len() uint64 {
	return s.n
}

// Universe returns the exclusive upper bound of the values.
func (s *Sequence) Universe() uint64 {
	return s.universe
}

// LowBits returns the width of the low-bits array entries.
func (s *Sequence) LowBits() uint {
	return s.lowBits
}

// SizeInBits returns the number of bits used by the high and low parts.
func (s *Sequence) SizeInBits() uint64 {
	return s.high.Len() + s.low.Len()
}

func (s *Sequence) lowAt(k uint64) uint64 {
	return s.low.GetBits(k*uint64(s.lowBits), s.lowBits)
}

// Select returns the k-th smallest value (0-based).
func (s *Sequence) Select(k uint64) (uint64, error) {
	if k >= s.n {
		return 0, ErrOutOfRange
	}
	pos, ok := s.high.Select1(k)
	if !ok {
		return 0, ErrCorrupt
	}
	return (pos-k)<<s.lowBits | s.lowAt(k), nil
}

// Rank returns the number of values strictly less than x.
func (s *Sequence) Rank(x uint64) uint64 {
	if x >= s.universe {
		return s.n
	}

	h := x >> s.lowBits
	var idx, pos uint64
	if h > 0 {
		// The (h-1)-th zero closes bucket h-1; everything before it is < h<<lowBits.
		p, ok := s.high.Select0(h - 1)
		if !ok {
			return s.n
		}
		idx = p - (h - 1)
		pos = p + 1
	}

	lowX := x & (1<<s.lowBits - 1)
	for pos < s.high.Len() && s.high.Get(pos) {
		if s.lowAt(idx) >= lowX {
			break
		}
		idx++
		pos++
	}
	return idx
}

// Contains reports whether x is in the sequence.
func (s *Sequence) Contains(x uint64) bool {
	if x >= s.universe {
		return false
	}
	r := s.Rank(x)
	if r >= s.n {
		return false
	}
	v, err := s.Select(r)
	return err == nil && v == x
}

// ForEach calls fn for every value in increasing order until fn returns false.
func (s *Sequence) ForEach(fn func(k, v uint64) bool) {
	var k uint64
	for pos := uint64(0); k < s.n && pos < s.high.Len(); pos++ {
		if !s.high.Get(pos) {
			continue
		}
		if !fn(k, (pos-k)<<s.lowBits|s.lowAt(k)) {
			return
		}
		k++
	}
}

// Values returns all values in increasing order.
func (s *Sequence) Values() []uint64 {
	out := make([]uint64, 0, s.n)
	s.ForEach(func(_, v uint64) bool {
		out = append(out, v)
		return true
	})
	return out
}
