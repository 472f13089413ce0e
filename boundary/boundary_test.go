package boundary

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cityroads/internal/compress"
)

func square(minX, minY, maxX, maxY float64) orb.Polygon {
	return orb.Polygon{{
		{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
	}}
}

func mustBoundary(t *testing.T, g orb.Geometry) Boundary {
	t.Helper()
	b, err := NewBoundary(g)
	require.NoError(t, err)
	return b
}

func TestBoundary_HasPoint(t *testing.T) {
	outer := square(0, 0, 10, 10)
	hole := square(4, 4, 6, 6)[0]
	b := mustBoundary(t, orb.Polygon{outer[0], hole})

	assert.True(t, b.HasPoint(orb.Point{1, 1}))
	assert.False(t, b.HasPoint(orb.Point{5, 5}), "inside the hole")
	assert.False(t, b.HasPoint(orb.Point{11, 5}))
	assert.Equal(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{10, 10}}, b.Bound)
}

func TestNewBoundary(t *testing.T) {
	t.Run("MultiPolygon", func(t *testing.T) {
		b := mustBoundary(t, orb.MultiPolygon{square(0, 0, 1, 1), square(5, 5, 6, 6)})
		assert.True(t, b.HasPoint(orb.Point{5.5, 5.5}))
		assert.False(t, b.HasPoint(orb.Point{3, 3}))
	})
	t.Run("Ring", func(t *testing.T) {
		b := mustBoundary(t, square(0, 0, 2, 2)[0])
		assert.True(t, b.HasPoint(orb.Point{1, 1}))
	})
	t.Run("Bound", func(t *testing.T) {
		b := mustBoundary(t, orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}})
		assert.True(t, b.HasPoint(orb.Point{1, 1}))
	})
	t.Run("Unsupported", func(t *testing.T) {
		_, err := NewBoundary(orb.LineString{{0, 0}, {1, 1}})
		assert.ErrorIs(t, err, ErrUnsupportedGeometry)
	})
	t.Run("Empty", func(t *testing.T) {
		_, err := NewBoundary(orb.MultiPolygon{})
		assert.ErrorIs(t, err, ErrEmptyGeometry)
		_, err = NewBoundary(nil)
		assert.ErrorIs(t, err, ErrEmptyGeometry)
	})
}

func TestChecker(t *testing.T) {
	c := NewChecker([]Boundary{
		mustBoundary(t, square(0, 0, 1, 1)),
		mustBoundary(t, square(10, 10, 11, 11)),
	})
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.InCity(orb.Point{0.5, 0.5}))
	assert.True(t, c.InCity(orb.Point{10.5, 10.5}))
	assert.False(t, c.InCity(orb.Point{5, 5}), "between cities, inside the union box")
	assert.False(t, c.InCity(orb.Point{-5, -5}))

	empty := NewChecker(nil)
	assert.False(t, empty.InCity(orb.Point{0, 0}))
}

func TestChecker_Concurrent(t *testing.T) {
	c := NewChecker([]Boundary{mustBoundary(t, square(0, 0, 1, 1))})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				assert.True(t, c.InCity(orb.Point{0.5, 0.5}))
			}
		}()
	}
	wg.Wait()
}

func TestOracleFunc(t *testing.T) {
	var o Oracle = OracleFunc(func(p orb.Point) bool { return p[0] > 0 })
	assert.True(t, o.InCity(orb.Point{1, 0}))
	assert.False(t, o.InCity(orb.Point{-1, 0}))
}

func TestTable_Clusters(t *testing.T) {
	a := mustBoundary(t, square(0, 0, 1, 1))
	b := mustBoundary(t, square(2, 2, 3, 3))
	c := mustBoundary(t, square(4, 4, 5, 5))
	d := mustBoundary(t, square(6, 6, 7, 7))

	tbl := NewTable()
	tbl.Append(30, c)
	tbl.Append(10, a)
	tbl.Append(20, b)
	tbl.Append(10, d)
	tbl.Union(30, 20)
	tbl.Union(40, 30)

	assert.Equal(t, 4, tbl.Len())
	assert.Len(t, tbl.Boundaries(10), 2)

	var gotIDs [][]uint64
	var gotBounds [][]Boundary
	tbl.ForEachCluster(func(ids []uint64, bs []Boundary) {
		gotIDs = append(gotIDs, ids)
		gotBounds = append(gotBounds, bs)
	})

	assert.Equal(t, [][]uint64{{10}, {20, 30, 40}}, gotIDs)
	assert.Equal(t, []Boundary{a, d}, gotBounds[0])
	assert.Equal(t, []Boundary{b, c}, gotBounds[1])

	assert.Equal(t, []Boundary{a, d, b, c}, Flatten(tbl))
}

func TestTable_ConcurrentReaders(t *testing.T) {
	tbl := NewTable()
	for id := uint64(1); id <= 64; id++ {
		tbl.Append(id, mustBoundary(t, square(float64(id), 0, float64(id)+0.5, 0.5)))
	}
	// Unioning from the top builds a parent chain that a compressing lookup
	// would rewrite.
	for id := uint64(64); id > 1; id-- {
		tbl.Union(id, id-1)
	}
	parents := make(map[uint64]uint64, len(tbl.parent))
	for k, v := range tbl.parent {
		parents[k] = v
	}
	want := Flatten(tbl)
	require.Len(t, want, 64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				assert.Equal(t, want, Flatten(tbl))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, parents, tbl.parent)
}

func TestFlatten_Empty(t *testing.T) {
	assert.Empty(t, Flatten(NewTable()))
}

const citiesGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"osm_id": 100, "name": "Springfield", "union": [101, "102"]},
      "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}
    },
    {
      "type": "Feature",
      "id": 200,
      "properties": {"name": "Shelbyville"},
      "geometry": {"type": "MultiPolygon", "coordinates": [[[[5,5],[6,5],[6,6],[5,6],[5,5]]]]}
    },
    {
      "type": "Feature",
      "properties": {"osm_id": "101"},
      "geometry": {"type": "Polygon", "coordinates": [[[2,2],[3,2],[3,3],[2,3],[2,2]]]}
    }
  ]
}`

func TestLoadGeoJSON(t *testing.T) {
	tbl, err := LoadGeoJSON(strings.NewReader(citiesGeoJSON))
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())

	var clusters [][]uint64
	tbl.ForEachCluster(func(ids []uint64, bs []Boundary) {
		clusters = append(clusters, ids)
	})
	assert.Equal(t, [][]uint64{{100, 101, 102}, {200}}, clusters)

	c := NewChecker(Flatten(tbl))
	assert.True(t, c.InCity(orb.Point{0.5, 0.5}))
	assert.True(t, c.InCity(orb.Point{2.5, 2.5}))
	assert.True(t, c.InCity(orb.Point{5.5, 5.5}))
	assert.False(t, c.InCity(orb.Point{4, 4}))
}

func TestLoadGeoJSON_Errors(t *testing.T) {
	cases := map[string]struct {
		doc  string
		want error
	}{
		"MissingID": {
			doc:  `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`,
			want: ErrMissingID,
		},
		"NegativeID": {
			doc:  `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"osm_id":-1},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`,
			want: ErrInvalidID,
		},
		"BadUnion": {
			doc:  `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"osm_id":1,"union":["x"]},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`,
			want: ErrInvalidID,
		},
		"PointGeometry": {
			doc:  `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"osm_id":1},"geometry":{"type":"Point","coordinates":[0,0]}}]}`,
			want: ErrUnsupportedGeometry,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadGeoJSON(strings.NewReader(tc.doc))
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := LoadGeoJSON(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestLoadFile_Compressed(t *testing.T) {
	dir := t.TempDir()

	for _, codec := range []compress.Codec{compress.None, compress.ZSTD, compress.LZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := compress.NewWriter(&buf, codec)
			require.NoError(t, err)
			_, err = w.Write([]byte(citiesGeoJSON))
			require.NoError(t, err)
			require.NoError(t, w.Close())

			path := filepath.Join(dir, "cities.geojson"+codec.Ext())
			require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

			tbl, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, 4, tbl.Len())
		})
	}

	_, err := LoadFile(filepath.Join(dir, "missing.geojson"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
