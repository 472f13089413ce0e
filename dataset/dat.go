package dataset

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/hupe1980/cityroads/container"
)

// checkEvery is how many features are visited between context checks.
const checkEvery = 1024

// Dat is a decoded view of a dat section. Records alias the section bytes.
type Dat struct {
	records [][]byte
	closer  func() error
}

// DecodeDat indexes the records of a dat section. Only record boundaries are
// validated here; record contents are decoded during iteration.
func DecodeDat(data []byte) (*Dat, error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, fmt.Errorf("%w: bad feature count", ErrFormat)
	}
	data = data[n:]
	// Every record costs at least one length byte plus three content bytes.
	if count > uint64(len(data))/4 {
		return nil, fmt.Errorf("%w: %d features in %d bytes", ErrFormat, count, len(data))
	}

	records := make([][]byte, 0, count)
	for i := uint64(0); i < count; i++ {
		size, n := binary.Uvarint(data)
		if n <= 0 {
			return nil, fmt.Errorf("%w: feature %d: bad length", ErrFormat, i)
		}
		data = data[n:]
		if size > uint64(len(data)) {
			return nil, fmt.Errorf("%w: feature %d: length %d exceeds section", ErrFormat, i, size)
		}
		records = append(records, data[:size:size])
		data = data[size:]
	}
	if len(data) != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(data))
	}
	return &Dat{records: records}, nil
}

// OpenDat maps the container at path and indexes its dat section. The Dat
// must be closed to release the mapping.
func OpenDat(path string) (*Dat, error) {
	r, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := r.Section(container.TagFeatures)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	d, err := DecodeDat(data)
	if err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	d.closer = r.Close
	return d, nil
}

// Len returns the number of features.
func (d *Dat) Len() int {
	return len(d.records)
}

// Record fully decodes feature i.
func (d *Dat) Record(i int) (Record, error) {
	if i < 0 || i >= len(d.records) {
		return Record{}, fmt.Errorf("dataset: feature %d out of range [0,%d)", i, len(d.records))
	}
	return DecodeRecord(d.records[i])
}

// ForEachFeature implements Source.
func (d *Dat) ForEachFeature(ctx context.Context, fn func(Feature, uint32) error) error {
	for i, rec := range d.records {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		types, g, geom, err := decodeHead(rec)
		if err != nil {
			return fmt.Errorf("dataset: feature %d: %w", i, err)
		}
		f := &datFeature{id: uint32(i), types: types, geomType: g, geom: geom}
		if err := fn(f, f.id); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying container mapping, if any.
func (d *Dat) Close() error {
	d.records = nil
	if d.closer == nil {
		return nil
	}
	closer := d.closer
	d.closer = nil
	return closer()
}

type datFeature struct {
	id       uint32
	types    []string
	geomType GeomType
	geom     []byte
	points   []orb.Point
}

func (f *datFeature) ID() uint64              { return uint64(f.id) }
func (f *datFeature) Types() []string         { return f.types }
func (f *datFeature) IsRoad() bool            { return IsRoad(f.types) }
func (f *datFeature) GeomType() GeomType      { return f.geomType }
func (f *datFeature) PointCount() int         { return len(f.points) }
func (f *datFeature) PointAt(i int) orb.Point { return f.points[i] }
func (f *datFeature) Points() []orb.Point     { return f.points }

func (f *datFeature) ParseGeometry(d Detail) error {
	points, err := decodePoints(f.geom)
	if err != nil {
		return fmt.Errorf("dataset: feature %d geometry: %w", f.id, err)
	}
	f.points = selectDetail(points, d)
	return nil
}
