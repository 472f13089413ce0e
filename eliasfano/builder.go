package eliasfano

import (
	"math"
	"math/bits"

	"github.com/hupe1980/cityroads/internal/bitvec"
)

// lowBitsFor returns floor(log2(u/n)), or 0 when n >= u.
func lowBitsFor(u, n uint64) uint {
	if n >= u {
		return 0
	}
	return uint(bits.Len64(u/n) - 1)
}

// Builder accumulates a strictly increasing sequence of n values below universe.
// It is append-only and not safe for concurrent use.
type Builder struct {
	universe uint64
	n        uint64
	lowBits  uint

	high *bitvec.Builder
	low  *bitvec.Builder

	pushed   uint64
	last     uint64
	prevHigh uint64
}

// NewBuilder creates a builder for exactly n values in [0, universe).
func NewBuilder(universe, n uint64) (*Builder, error) {
	if n == 0 {
		return nil, ErrEmpty
	}
	if universe == 0 {
		return nil, ErrEmptyUniverse
	}
	if n > universe {
		// n distinct values cannot fit below universe.
		return nil, ErrOutOfUniverse
	}

	l := lowBitsFor(universe, n)
	return &Builder{
		universe: universe,
		n:        n,
		lowBits:  l,
		high:     bitvec.NewBuilder(n + (universe >> l) + 1),
		low:      bitvec.NewBuilder(n * uint64(l)),
	}, nil
}

// PushBack appends x. Values must be pushed in strictly increasing order.
func (b *Builder) PushBack(x uint64) error {
	if b.pushed == b.n {
		return ErrTooMany
	}
	if x >= b.universe {
		return ErrOutOfUniverse
	}
	if b.pushed > 0 && x <= b.last {
		return ErrNotStrictlyIncreasing
	}

	high := x >> b.lowBits
	b.high.PushZeros(high - b.prevHigh)
	b.high.PushBit(true)
	b.prevHigh = high

	b.low.PushBits(x, b.lowBits)

	b.last = x
	b.pushed++
	return nil
}

// Build freezes the builder into a queryable Sequence.
func (b *Builder) Build() (*Sequence, error) {
	if b.pushed != b.n {
		return nil, ErrIncomplete
	}
	return &Sequence{
		universe: b.universe,
		n:        b.n,
		lowBits:  b.lowBits,
		high:     b.high.Build(),
		low:      b.low.Build(),
	}, nil
}

// Encode builds a Sequence from sorted, duplicate-free values.
// The universe is max(values)+1.
func Encode(values []uint64) (*Sequence, error) {
	if len(values) == 0 {
		return nil, ErrEmpty
	}
	last := values[len(values)-1]
	if last == math.MaxUint64 {
		return nil, ErrUniverseOverflow
	}

	b, err := NewBuilder(last+1, uint64(len(values)))
	if err != nil {
		return nil, err
	}
	for _, v := range values {
		if err := b.PushBack(v); err != nil {
			return nil, err
		}
	}
	return b.Build()
}
