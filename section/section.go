package section

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/cityroads/internal/conv"
	"github.com/hupe1980/cityroads/internal/hash"
)

const (
	// HeaderSize is the encoded width of Header.
	HeaderSize = 12

	// Version is the only header version this package writes.
	Version uint16 = 0
)

var (
	// ErrTruncated is returned when fewer bytes are present than the header claims.
	ErrTruncated = errors.New("section: truncated")
	// ErrTrailingBytes is returned when bytes follow the declared payload.
	ErrTrailingBytes = errors.New("section: trailing bytes after payload")
	// ErrUnsupportedVersion is returned for headers newer than Version.
	ErrUnsupportedVersion = errors.New("section: unsupported version")
	// ErrChecksumMismatch is returned when the payload CRC does not match.
	ErrChecksumMismatch = errors.New("section: checksum mismatch")
	// ErrReserved is returned when the reserved field is not zero.
	ErrReserved = errors.New("section: reserved field is not zero")
	// ErrTooLarge is returned when a payload does not fit the 32-bit size field.
	ErrTooLarge = errors.New("section: payload exceeds 4 GiB")
)

// Header precedes every section payload.
type Header struct {
	Version  uint16
	Reserved uint16
	DataSize uint32
	Checksum uint32
}

// MarshalBinary encodes h into HeaderSize bytes.
func (h Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.put(buf)
	return buf, nil
}

func (h Header) put(buf []byte) {
	binary.LittleEndian.PutUint16(buf[0:2], h.Version)
	binary.LittleEndian.PutUint16(buf[2:4], h.Reserved)
	binary.LittleEndian.PutUint32(buf[4:8], h.DataSize)
	binary.LittleEndian.PutUint32(buf[8:12], h.Checksum)
}

// Size returns the total section length, header included.
func (h Header) Size() int64 {
	return HeaderSize + int64(h.DataSize)
}

// UnmarshalBinary decodes the first HeaderSize bytes of data.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, HeaderSize, len(data))
	}
	h.Version = binary.LittleEndian.Uint16(data[0:2])
	h.Reserved = binary.LittleEndian.Uint16(data[2:4])
	h.DataSize = binary.LittleEndian.Uint32(data[4:8])
	h.Checksum = binary.LittleEndian.Uint32(data[8:12])
	return nil
}

// Write writes hdr and the bytes produced by payload to w at its current
// position, then patches hdr.DataSize and hdr.Checksum in place. It returns the
// patched header and leaves w positioned after the payload.
//
// On error the bytes already written to w are not rolled back; callers that
// need atomicity write into a seekbuf.Buffer first.
func Write(w io.WriteSeeker, hdr Header, payload func(io.Writer) error) (Header, error) {
	start, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return hdr, fmt.Errorf("section: record start: %w", err)
	}

	var buf [HeaderSize]byte
	placeholder := hdr
	placeholder.DataSize, placeholder.Checksum = 0, 0
	placeholder.put(buf[:])
	if _, err := w.Write(buf[:]); err != nil {
		return hdr, fmt.Errorf("section: write header: %w", err)
	}

	cw := hash.NewWriter(w)
	if err := payload(cw); err != nil {
		return hdr, fmt.Errorf("section: write payload: %w", err)
	}

	end, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return hdr, fmt.Errorf("section: record end: %w", err)
	}
	if end-start-HeaderSize != cw.Count() {
		return hdr, fmt.Errorf("section: payload wrote %d bytes but stream advanced %d", cw.Count(), end-start-HeaderSize)
	}

	size, err := conv.Int64ToUint32(end - start - HeaderSize)
	if err != nil {
		return hdr, fmt.Errorf("%w: %w", ErrTooLarge, err)
	}
	hdr.DataSize = size
	hdr.Checksum = cw.Sum32()

	if _, err := w.Seek(start, io.SeekStart); err != nil {
		return hdr, fmt.Errorf("section: seek to header: %w", err)
	}
	hdr.put(buf[:])
	if _, err := w.Write(buf[:]); err != nil {
		return hdr, fmt.Errorf("section: patch header: %w", err)
	}
	if _, err := w.Seek(end, io.SeekStart); err != nil {
		return hdr, fmt.Errorf("section: seek to end: %w", err)
	}
	return hdr, nil
}

// Parse validates a whole section and returns its header and payload. The
// payload aliases data.
func Parse(data []byte) (Header, []byte, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return h, nil, err
	}
	if h.Version > Version {
		return h, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Reserved != 0 {
		return h, nil, ErrReserved
	}

	rest := data[HeaderSize:]
	switch {
	case uint64(h.DataSize) > uint64(len(rest)):
		return h, nil, fmt.Errorf("%w: header declares %d payload bytes, have %d", ErrTruncated, h.DataSize, len(rest))
	case uint64(h.DataSize) < uint64(len(rest)):
		return h, nil, fmt.Errorf("%w: %d extra bytes", ErrTrailingBytes, uint64(len(rest))-uint64(h.DataSize))
	}

	if got := hash.CRC32C(rest); got != h.Checksum {
		return h, nil, fmt.Errorf("%w: header %08x, payload %08x", ErrChecksumMismatch, h.Checksum, got)
	}
	return h, rest, nil
}
