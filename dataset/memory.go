package dataset

import (
	"context"

	"github.com/paulmach/orb"
)

// Memory is a Source backed by a slice of records.
type Memory struct {
	Records []Record
}

// NewMemory returns a Memory source over records.
func NewMemory(records ...Record) *Memory {
	return &Memory{Records: records}
}

// Add appends r and returns its feature id.
func (m *Memory) Add(r Record) uint32 {
	m.Records = append(m.Records, r)
	return uint32(len(m.Records) - 1)
}

// ForEachFeature implements Source.
func (m *Memory) ForEachFeature(ctx context.Context, fn func(Feature, uint32) error) error {
	for i := range m.Records {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		f := &memFeature{id: uint32(i), rec: &m.Records[i]}
		if err := fn(f, f.id); err != nil {
			return err
		}
	}
	return nil
}

// Encode writes every record into a dat section.
func (m *Memory) Encode() ([]byte, error) {
	w := NewWriter()
	for _, r := range m.Records {
		if _, err := w.Add(r); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

type memFeature struct {
	id     uint32
	rec    *Record
	points []orb.Point
}

func (f *memFeature) ID() uint64              { return uint64(f.id) }
func (f *memFeature) Types() []string         { return f.rec.Types }
func (f *memFeature) IsRoad() bool            { return IsRoad(f.rec.Types) }
func (f *memFeature) GeomType() GeomType      { return f.rec.Geom }
func (f *memFeature) PointCount() int         { return len(f.points) }
func (f *memFeature) PointAt(i int) orb.Point { return f.points[i] }
func (f *memFeature) Points() []orb.Point     { return f.points }

func (f *memFeature) ParseGeometry(d Detail) error {
	f.points = selectDetail(f.rec.Points, d)
	return nil
}
