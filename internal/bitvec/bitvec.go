package bitvec

import (
	"encoding/binary"
	"errors"
	"io"
	"math/bits"
	"sort"
)

const (
	wordBits = 64

	// blockWords is the number of words covered by one rank directory entry.
	// 8 words = 512 bits.
	blockWords = 8
	blockBits  = blockWords * wordBits
)

var (
	// ErrTrailingBits is returned when bits beyond the declared length are set.
	ErrTrailingBits = errors.New("bitvec: bits set beyond length")
	// ErrWordCount is returned when the word slice does not match the declared length.
	ErrWordCount = errors.New("bitvec: word count does not match length")
)

// WordsFor returns the number of 64-bit words needed to hold n bits.
func WordsFor(n uint64) uint64 {
	return (n + wordBits - 1) / wordBits
}

// Builder appends bits to a growable word buffer.
// It is not safe for concurrent use.
type Builder struct {
	words []uint64
	n     uint64
}

// NewBuilder creates a Builder with room for capBits bits.
func NewBuilder(capBits uint64) *Builder {
	return &Builder{
		words: make([]uint64, 0, WordsFor(capBits)),
	}
}

// Len returns the number of bits appended so far.
func (b *Builder) Len() uint64 {
	return b.n
}

func (b *Builder) grow(n uint64) {
	need := WordsFor(n)
	for uint64(len(b.words)) < need {
		b.words = append(b.words, 0)
	}
}

// PushBit appends a single bit.
func (b *Builder) PushBit(v bool) {
	b.grow(b.n + 1)
	if v {
		b.words[b.n/wordBits] |= 1 << (b.n % wordBits)
	}
	b.n++
}

// PushZeros appends k zero bits.
func (b *Builder) PushZeros(k uint64) {
	b.n += k
	b.grow(b.n)
}

// PushBits appends the low width bits of v. width must be <= 64.
func (b *Builder) PushBits(v uint64, width uint) {
	if width == 0 {
		return
	}
	if width < wordBits {
		v &= (1 << width) - 1
	}
	b.grow(b.n + uint64(width))

	idx := b.n / wordBits
	off := uint(b.n % wordBits)
	b.words[idx] |= v << off
	if off+width > wordBits {
		b.words[idx+1] |= v >> (wordBits - off)
	}
	b.n += uint64(width)
}

// Build freezes the builder into a Vector. The builder must not be used afterwards.
func (b *Builder) Build() *Vector {
	v := &Vector{words: b.words, n: b.n}
	v.index()
	b.words = nil
	b.n = 0
	return v
}

// Vector is an immutable bit vector with a rank directory.
// It is safe for concurrent reads.
type Vector struct {
	words []uint64
	n     uint64

	// blocks[i] is the number of ones before block i.
	blocks []uint64
	ones   uint64
}

// FromWords wraps decoded words holding n bits.
func FromWords(words []uint64, n uint64) (*Vector, error) {
	if uint64(len(words)) != WordsFor(n) {
		return nil, ErrWordCount
	}
	if rem := n % wordBits; rem != 0 && words[len(words)-1]>>rem != 0 {
		return nil, ErrTrailingBits
	}
	v := &Vector{words: words, n: n}
	v.index()
	return v, nil
}

func (v *Vector) index() {
	numBlocks := (len(v.words) + blockWords - 1) / blockWords
	v.blocks = make([]uint64, numBlocks+1)

	var ones uint64
	for i, w := range v.words {
		if i%blockWords == 0 {
			v.blocks[i/blockWords] = ones
		}
		ones += uint64(bits.OnesCount64(w))
	}
	v.blocks[numBlocks] = ones
	v.ones = ones
}

// Len returns the number of bits.
func (v *Vector) Len() uint64 {
	return v.n
}

// Ones returns the number of set bits.
func (v *Vector) Ones() uint64 {
	return v.ones
}

// Words returns the underlying words. The slice must not be modified.
func (v *Vector) Words() []uint64 {
	return v.words
}

// Get reports whether bit i is set. i must be < Len().
func (v *Vector) Get(i uint64) bool {
	return v.words[i/wordBits]&(1<<(i%wordBits)) != 0
}

// GetBits returns width bits starting at pos. width must be <= 64.
func (v *Vector) GetBits(pos uint64, width uint) uint64 {
	if width == 0 {
		return 0
	}
	idx := pos / wordBits
	off := uint(pos % wordBits)
	r := v.words[idx] >> off
	if off+width > wordBits {
		r |= v.words[idx+1] << (wordBits - off)
	}
	if width < wordBits {
		r &= (1 << width) - 1
	}
	return r
}

// Rank1 returns the number of set bits in [0, i). i must be <= Len().
func (v *Vector) Rank1(i uint64) uint64 {
	wordIdx := i / wordBits
	r := v.blocks[wordIdx/blockWords]
	for w := (wordIdx / blockWords) * blockWords; w < wordIdx; w++ {
		r += uint64(bits.OnesCount64(v.words[w]))
	}
	if rem := i % wordBits; rem != 0 {
		r += uint64(bits.OnesCount64(v.words[wordIdx] & ((1 << rem) - 1)))
	}
	return r
}

// Select1 returns the position of the k-th set bit (0-based).
// ok is false if there are not more than k set bits.
func (v *Vector) Select1(k uint64) (pos uint64, ok bool) {
	if k >= v.ones {
		return 0, false
	}
	// Last block whose preceding ones count is <= k.
	b := sort.Search(len(v.blocks)-1, func(i int) bool { return v.blocks[i] > k }) - 1
	k -= v.blocks[b]

	for w := b * blockWords; w < len(v.words); w++ {
		c := uint64(bits.OnesCount64(v.words[w]))
		if k < c {
			return uint64(w)*wordBits + selectInWord(v.words[w], k), true
		}
		k -= c
	}
	return 0, false
}

// Select0 returns the position of the k-th zero bit (0-based).
// ok is false if there are not more than k zero bits below Len().
func (v *Vector) Select0(k uint64) (pos uint64, ok bool) {
	if k >= v.n-v.ones {
		return 0, false
	}
	zerosBefore := func(i int) uint64 {
		return uint64(i)*blockBits - v.blocks[i]
	}
	b := sort.Search(len(v.blocks)-1, func(i int) bool { return zerosBefore(i) > k }) - 1
	k -= zerosBefore(b)

	for w := b * blockWords; w < len(v.words); w++ {
		inv := ^v.words[w]
		c := uint64(bits.OnesCount64(inv))
		if k < c {
			pos = uint64(w)*wordBits + selectInWord(inv, k)
			return pos, pos < v.n
		}
		k -= c
	}
	return 0, false
}

// selectInWord returns the index of the k-th set bit of w. w must have more than k set bits.
func selectInWord(w uint64, k uint64) uint64 {
	for ; k > 0; k-- {
		w &= w - 1
	}
	return uint64(bits.TrailingZeros64(w))
}

// WriteTo writes the words in little-endian order. The bit length is not written.
func (v *Vector) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 0, len(v.words)*8)
	for _, word := range v.words {
		buf = binary.LittleEndian.AppendUint64(buf, word)
	}
	n, err := w.Write(buf)
	return int64(n), err
}
