package cityroads

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/cityroads/container"
	"github.com/hupe1980/cityroads/eliasfano"
	"github.com/hupe1980/cityroads/section"
)

// CityRoads is a loaded city_roads section. The zero value is an empty index.
type CityRoads struct {
	hdr section.Header
	seq *eliasfano.Sequence
}

// LoadCityRoads reads the city_roads section of the container at path. A
// container without the section yields an empty index.
func LoadCityRoads(path string) (*CityRoads, error) {
	r, err := container.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	data, err := r.Section(container.TagCityRoads)
	if errors.Is(err, container.ErrSectionNotFound) {
		return &CityRoads{}, nil
	}
	if err != nil {
		return nil, err
	}

	cr, err := DecodeCityRoads(data)
	if err != nil {
		return nil, fmt.Errorf("cityroads: %s: %w", path, err)
	}
	return cr, nil
}

// DecodeCityRoads parses a complete section (header and payload). The result
// does not reference data.
func DecodeCityRoads(data []byte) (*CityRoads, error) {
	hdr, payload, err := section.Parse(data)
	if err != nil {
		return nil, err
	}
	seq, err := eliasfano.Decode(payload)
	if err != nil {
		return nil, err
	}
	return &CityRoads{hdr: hdr, seq: seq}, nil
}

// IsCityRoad reports whether feature fid is a city road.
func (c *CityRoads) IsCityRoad(fid uint64) bool {
	return c.seq != nil && c.seq.Contains(fid)
}

// Len returns the number of city roads.
func (c *CityRoads) Len() int {
	if c.seq == nil {
		return 0
	}
	return int(c.seq.Len())
}

// Empty reports whether the index holds no ids.
func (c *CityRoads) Empty() bool { return c.Len() == 0 }

// IDs returns the city road feature ids in ascending order.
func (c *CityRoads) IDs() []uint64 {
	if c.seq == nil {
		return nil
	}
	return c.seq.Values()
}

// Bitmap returns the ids as a bitmap.
func (c *CityRoads) Bitmap() *roaring64.Bitmap {
	bm := roaring64.New()
	if c.seq != nil {
		bm.AddMany(c.seq.Values())
	}
	return bm
}

// Header returns the section header. It is the zero Header for an empty index
// loaded from a container without the section.
func (c *CityRoads) Header() section.Header { return c.hdr }
