// Package seekbuf provides an in-memory io.WriteSeeker.
//
// Sections are assembled in a Buffer so that a header can be written, the
// payload streamed after it, and the header patched in place before anything
// reaches the container file.
package seekbuf

import (
	"errors"
	"io"
)

// ErrInvalidSeek is returned for unknown whence values or negative positions.
var ErrInvalidSeek = errors.New("seekbuf: invalid seek")

// Buffer is a growable byte slice with a cursor. Writing past the end extends
// the buffer; seeking past the end and writing leaves a zero-filled gap.
type Buffer struct {
	buf []byte
	pos int64
}

// New creates a Buffer with the given initial capacity.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{buf: make([]byte, 0, capacity)}
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	end := int(b.pos) + len(p)
	if end > cap(b.buf) {
		newCap := max(cap(b.buf)*2, end)
		grown := make([]byte, len(b.buf), newCap)
		copy(grown, b.buf)
		b.buf = grown
	}
	if end > len(b.buf) {
		b.buf = b.buf[:end]
	}
	n := copy(b.buf[b.pos:], p)
	b.pos += int64(n)
	return n, nil
}

// Seek implements io.Seeker.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.buf)) + offset
	default:
		return 0, ErrInvalidSeek
	}
	if pos < 0 {
		return 0, ErrInvalidSeek
	}
	b.pos = pos
	return pos, nil
}

// Read implements io.Reader from the current position.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.buf)) {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Bytes returns the buffer contents. The slice aliases the buffer until the
// next Write or Reset.
func (b *Buffer) Bytes() []byte { return b.buf }

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int { return len(b.buf) }

// Reset empties the buffer, keeping its capacity.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.pos = 0
}
