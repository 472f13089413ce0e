package container

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/cityroads/internal/conv"
	"github.com/hupe1980/cityroads/internal/hash"
)

const (
	// Magic opens every container file.
	Magic = "CRCONT01"

	footerMagic uint32 = 0x544e4f43 // "CONT"
	footerSize         = 16
	minFileSize        = len(Magic) + 4 + footerSize
)

// Well-known section tags.
const (
	TagFeatures  = "dat"
	TagCityRoads = "city_roads"
)

var (
	// ErrNotContainer is returned when a file lacks the container magic.
	ErrNotContainer = errors.New("container: not a container file")
	// ErrCorrupt is returned when the footer or table of contents is invalid.
	ErrCorrupt = errors.New("container: corrupt table of contents")
	// ErrSectionNotFound is returned when a tag is not present.
	ErrSectionNotFound = errors.New("container: section not found")
	// ErrInvalidTag is returned for empty or oversized tags.
	ErrInvalidTag = errors.New("container: invalid section tag")
	// ErrClosed is returned when a closed Writer or Reader is used.
	ErrClosed = errors.New("container: closed")
)

// Entry locates one section inside the file.
type Entry struct {
	Tag    string
	Offset uint64
	Size   uint64
}

func validTag(tag string) error {
	if tag == "" || len(tag) > math.MaxUint16 {
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return nil
}

// encodeTOC appends the table of contents and footer for entries, placed at
// tocOffset.
func encodeTOC(entries []Entry, tocOffset uint64) ([]byte, error) {
	count, err := conv.IntToUint32(len(entries))
	if err != nil {
		return nil, err
	}
	size := 4
	for _, e := range entries {
		size += 2 + len(e.Tag) + 16
	}

	buf := make([]byte, 0, size+footerSize)
	buf = binary.LittleEndian.AppendUint32(buf, count)
	for _, e := range entries {
		tagLen, err := conv.IntToUint16(len(e.Tag))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTag, err)
		}
		buf = binary.LittleEndian.AppendUint16(buf, tagLen)
		buf = append(buf, e.Tag...)
		buf = binary.LittleEndian.AppendUint64(buf, e.Offset)
		buf = binary.LittleEndian.AppendUint64(buf, e.Size)
	}
	crc := hash.CRC32C(buf)

	buf = binary.LittleEndian.AppendUint64(buf, tocOffset)
	buf = binary.LittleEndian.AppendUint32(buf, crc)
	buf = binary.LittleEndian.AppendUint32(buf, footerMagic)
	return buf, nil
}

// readTOC parses the footer and table of contents of a container of the given
// size. It returns the entries and the offset at which the TOC starts.
func readTOC(r io.ReaderAt, size int64) ([]Entry, uint64, error) {
	if size < int64(minFileSize) {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrNotContainer, size)
	}

	magic := make([]byte, len(Magic))
	if _, err := r.ReadAt(magic, 0); err != nil {
		return nil, 0, err
	}
	if string(magic) != Magic {
		return nil, 0, ErrNotContainer
	}

	var footer [footerSize]byte
	if _, err := r.ReadAt(footer[:], size-footerSize); err != nil {
		return nil, 0, err
	}
	if binary.LittleEndian.Uint32(footer[12:16]) != footerMagic {
		return nil, 0, fmt.Errorf("%w: bad footer magic", ErrCorrupt)
	}
	tocOffset := binary.LittleEndian.Uint64(footer[0:8])
	wantCRC := binary.LittleEndian.Uint32(footer[8:12])

	tocEnd := uint64(size - footerSize)
	if tocOffset < uint64(len(Magic)) || tocOffset > tocEnd || tocEnd-tocOffset < 4 {
		return nil, 0, fmt.Errorf("%w: toc offset %d out of range", ErrCorrupt, tocOffset)
	}
	tocLen, err := conv.Uint64ToInt(tocEnd - tocOffset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	off, err := conv.Uint64ToInt64(tocOffset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}

	toc := make([]byte, tocLen)
	if _, err := r.ReadAt(toc, off); err != nil {
		return nil, 0, err
	}
	if got := hash.CRC32C(toc); got != wantCRC {
		return nil, 0, fmt.Errorf("%w: checksum %08x, want %08x", ErrCorrupt, got, wantCRC)
	}

	entries, err := decodeEntries(toc, tocOffset)
	if err != nil {
		return nil, 0, err
	}
	return entries, tocOffset, nil
}

func decodeEntries(toc []byte, limit uint64) ([]Entry, error) {
	count := binary.LittleEndian.Uint32(toc[0:4])
	toc = toc[4:]

	// Each entry needs at least 19 bytes; reject counts the TOC cannot hold
	// before allocating.
	if uint64(count)*19 > uint64(len(toc)) {
		return nil, fmt.Errorf("%w: %d entries in %d bytes", ErrCorrupt, count, len(toc))
	}

	entries := make([]Entry, 0, count)
	seen := make(map[string]struct{}, count)
	for i := uint32(0); i < count; i++ {
		if len(toc) < 2 {
			return nil, fmt.Errorf("%w: entry %d truncated", ErrCorrupt, i)
		}
		n := int(binary.LittleEndian.Uint16(toc[0:2]))
		toc = toc[2:]
		if n == 0 || len(toc) < n+16 {
			return nil, fmt.Errorf("%w: entry %d truncated", ErrCorrupt, i)
		}
		e := Entry{
			Tag:    string(toc[:n]),
			Offset: binary.LittleEndian.Uint64(toc[n : n+8]),
			Size:   binary.LittleEndian.Uint64(toc[n+8 : n+16]),
		}
		toc = toc[n+16:]

		if e.Offset < uint64(len(Magic)) || e.Offset > limit || e.Size > limit-e.Offset {
			return nil, fmt.Errorf("%w: section %q [%d,+%d) outside data region", ErrCorrupt, e.Tag, e.Offset, e.Size)
		}
		if _, dup := seen[e.Tag]; dup {
			return nil, fmt.Errorf("%w: duplicate tag %q", ErrCorrupt, e.Tag)
		}
		seen[e.Tag] = struct{}{}
		entries = append(entries, e)
	}
	if len(toc) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, len(toc))
	}
	return entries, nil
}
