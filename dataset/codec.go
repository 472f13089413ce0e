package dataset

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/paulmach/orb"

	"github.com/hupe1980/cityroads/internal/conv"
)

const coordScale = 1e7

// Writer accumulates encoded feature records for a dat section.
type Writer struct {
	records [][]byte
	size    int
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Add encodes r and returns its feature id.
func (w *Writer) Add(r Record) (uint32, error) {
	id, err := conv.IntToUint32(len(w.records))
	if err != nil {
		return 0, fmt.Errorf("dataset: too many features: %w", err)
	}
	rec, err := encodeRecord(r)
	if err != nil {
		return 0, fmt.Errorf("dataset: feature %d: %w", id, err)
	}
	w.records = append(w.records, rec)
	w.size += binary.MaxVarintLen64 + len(rec)
	return id, nil
}

// Len returns the number of features added.
func (w *Writer) Len() int {
	return len(w.records)
}

// Bytes returns the encoded section.
func (w *Writer) Bytes() []byte {
	buf := make([]byte, 0, binary.MaxVarintLen64+w.size)
	buf = binary.AppendUvarint(buf, uint64(len(w.records)))
	for _, rec := range w.records {
		buf = binary.AppendUvarint(buf, uint64(len(rec)))
		buf = append(buf, rec...)
	}
	return buf
}

// WriteTo writes the encoded section to out.
func (w *Writer) WriteTo(out io.Writer) (int64, error) {
	n, err := out.Write(w.Bytes())
	return int64(n), err
}

func encodeRecord(r Record) ([]byte, error) {
	if !r.Geom.valid() {
		return nil, fmt.Errorf("%w: %d", ErrGeomType, r.Geom)
	}

	buf := binary.AppendUvarint(nil, uint64(len(r.Types)))
	for _, t := range r.Types {
		buf = binary.AppendUvarint(buf, uint64(len(t)))
		buf = append(buf, t...)
	}
	buf = append(buf, byte(r.Geom))
	buf = binary.AppendUvarint(buf, uint64(len(r.Points)))

	var prevLon, prevLat int64
	for i, p := range r.Points {
		lon, lat, err := quantize(p)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		buf = binary.AppendVarint(buf, lon-prevLon)
		buf = binary.AppendVarint(buf, lat-prevLat)
		prevLon, prevLat = lon, lat
	}
	return buf, nil
}

func quantize(p orb.Point) (int64, int64, error) {
	lon, lat := p.Lon(), p.Lat()
	if math.IsNaN(lon) || math.IsNaN(lat) || lon < -180 || lon > 180 || lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("%w: %v", ErrCoordinate, p)
	}
	return int64(math.Round(lon * coordScale)), int64(math.Round(lat * coordScale)), nil
}

// recordReader walks a record with a sticky error.
type recordReader struct {
	buf []byte
	err error
}

func (r *recordReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: "+format, append([]any{ErrFormat}, args...)...)
	}
}

func (r *recordReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.fail("bad uvarint")
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *recordReader) varint() int64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.buf)
	if n <= 0 {
		r.fail("bad varint")
		return 0
	}
	r.buf = r.buf[n:]
	return v
}

func (r *recordReader) bytes(n uint64) []byte {
	if r.err != nil {
		return nil
	}
	if n > uint64(len(r.buf)) {
		r.fail("need %d bytes, have %d", n, len(r.buf))
		return nil
	}
	b := r.buf[:n]
	r.buf = r.buf[n:]
	return b
}

func (r *recordReader) u8() byte {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// decodeHead reads types and geometry type and returns the remaining
// geometry bytes.
func decodeHead(rec []byte) ([]string, GeomType, []byte, error) {
	r := &recordReader{buf: rec}
	count := r.uvarint()
	// Every type costs at least one byte.
	if count > uint64(len(r.buf)) {
		r.fail("type count %d exceeds record", count)
	}
	var types []string
	if r.err == nil && count > 0 {
		types = make([]string, 0, count)
	}
	for i := uint64(0); i < count && r.err == nil; i++ {
		types = append(types, string(r.bytes(r.uvarint())))
	}
	g := GeomType(r.u8())
	if r.err == nil && !g.valid() {
		r.fail("geometry type %d", g)
	}
	if r.err != nil {
		return nil, 0, nil, r.err
	}
	return types, g, r.buf, nil
}

// decodePoints decodes the geometry tail of a record.
func decodePoints(geom []byte) ([]orb.Point, error) {
	r := &recordReader{buf: geom}
	count := r.uvarint()
	// Every point costs at least two bytes.
	if count > uint64(len(r.buf))/2 {
		r.fail("point count %d exceeds record", count)
	}
	if r.err != nil {
		return nil, r.err
	}

	points := make([]orb.Point, 0, count)
	var lon, lat int64
	for i := uint64(0); i < count; i++ {
		lon += r.varint()
		lat += r.varint()
		if r.err != nil {
			return nil, r.err
		}
		points = append(points, orb.Point{float64(lon) / coordScale, float64(lat) / coordScale})
	}
	if len(r.buf) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(r.buf))
	}
	return points, nil
}

// DecodeRecord fully decodes one record.
func DecodeRecord(rec []byte) (Record, error) {
	types, g, geom, err := decodeHead(rec)
	if err != nil {
		return Record{}, err
	}
	points, err := decodePoints(geom)
	if err != nil {
		return Record{}, err
	}
	return Record{Types: types, Geom: g, Points: points}, nil
}
