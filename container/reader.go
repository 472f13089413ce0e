package container

import (
	"bytes"
	"fmt"

	"github.com/hupe1980/cityroads/internal/conv"
	"github.com/hupe1980/cityroads/internal/mmap"
)

// Reader is a read-only, memory-mapped view of a container.
type Reader struct {
	m       *mmap.Mapping
	data    []byte
	entries []Entry
	index   map[string]int
	closed  bool
}

// Open maps the container at path.
func Open(path string) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("container: open %s: %w", path, err)
	}
	r, err := newReader(m.Bytes())
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("container: %s: %w", path, err)
	}
	r.m = m
	_ = m.Advise(mmap.AccessRandom)
	return r, nil
}

// NewReader parses a container held in memory. Sections alias data.
func NewReader(data []byte) (*Reader, error) {
	return newReader(data)
}

func newReader(data []byte) (*Reader, error) {
	entries, _, err := readTOC(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(entries))
	for i, e := range entries {
		index[e.Tag] = i
	}
	return &Reader{data: data, entries: entries, index: index}, nil
}

// Has reports whether the container holds a section tagged tag.
func (r *Reader) Has(tag string) bool {
	_, ok := r.index[tag]
	return ok
}

// Section returns the bytes of the section tagged tag. The slice is valid
// until Close.
func (r *Reader) Section(tag string) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	i, ok := r.index[tag]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, tag)
	}
	e := r.entries[i]
	off, err := conv.Uint64ToInt(e.Offset)
	if err != nil {
		return nil, err
	}
	size, err := conv.Uint64ToInt(e.Size)
	if err != nil {
		return nil, err
	}
	return r.data[off : off+size : off+size], nil
}

// Tags returns the section tags in table-of-contents order.
func (r *Reader) Tags() []string {
	tags := make([]string, len(r.entries))
	for i, e := range r.entries {
		tags[i] = e.Tag
	}
	return tags
}

// Entries returns the table of contents.
func (r *Reader) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Size returns the container length in bytes.
func (r *Reader) Size() int {
	return len(r.data)
}

// Close releases the mapping.
func (r *Reader) Close() error {
	r.closed = true
	r.data, r.entries, r.index = nil, nil, nil
	if r.m == nil {
		return nil
	}
	m := r.m
	r.m = nil
	return m.Close()
}
