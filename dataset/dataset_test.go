package dataset

import (
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cityroads/container"
)

var sampleRecords = []Record{
	{Types: []string{"highway-residential"}, Geom: GeomLine, Points: []orb.Point{{13.4, 52.5}, {13.41, 52.51}, {13.42, 52.52}}},
	{Types: []string{"amenity-cafe"}, Geom: GeomPoint, Points: []orb.Point{{-0.1275, 51.5072}}},
	{Types: nil, Geom: GeomArea, Points: []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 0}}},
	{Types: []string{"highway-footway-sidewalk", "surface-asphalt"}, Geom: GeomLine, Points: nil},
}

func encodeSample(t *testing.T) []byte {
	t.Helper()
	w := NewWriter()
	for i, r := range sampleRecords {
		id, err := w.Add(r)
		require.NoError(t, err)
		assert.Equal(t, uint32(i), id)
	}
	assert.Equal(t, len(sampleRecords), w.Len())
	return w.Bytes()
}

func assertPointsEqual(t *testing.T, want, got []orb.Point) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i][0], got[i][0], 1e-7)
		assert.InDelta(t, want[i][1], got[i][1], 1e-7)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	d, err := DecodeDat(encodeSample(t))
	require.NoError(t, err)
	require.Equal(t, len(sampleRecords), d.Len())

	for i, want := range sampleRecords {
		got, err := d.Record(i)
		require.NoError(t, err)
		assert.Equal(t, want.Types, got.Types)
		assert.Equal(t, want.Geom, got.Geom)
		assertPointsEqual(t, want.Points, got.Points)
	}

	_, err = d.Record(len(sampleRecords))
	assert.Error(t, err)
}

func TestDat_ForEachFeature(t *testing.T) {
	d, err := DecodeDat(encodeSample(t))
	require.NoError(t, err)

	var roads []uint32
	err = d.ForEachFeature(context.Background(), func(f Feature, index uint32) error {
		assert.Equal(t, uint64(index), f.ID())
		assert.Zero(t, f.PointCount(), "geometry is not parsed yet")

		if !f.IsRoad() {
			return nil
		}
		roads = append(roads, index)
		require.NoError(t, f.ParseGeometry(BestGeometry))
		assert.Equal(t, len(sampleRecords[index].Points), f.PointCount())
		for i := 0; i < f.PointCount(); i++ {
			assert.InDelta(t, sampleRecords[index].Points[i][0], f.PointAt(i)[0], 1e-7)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 3}, roads)
}

func TestDat_WorstGeometry(t *testing.T) {
	d, err := DecodeDat(encodeSample(t))
	require.NoError(t, err)

	err = d.ForEachFeature(context.Background(), func(f Feature, index uint32) error {
		if index != 0 {
			return nil
		}
		require.NoError(t, f.ParseGeometry(WorstGeometry))
		assertPointsEqual(t, []orb.Point{{13.4, 52.5}, {13.42, 52.52}}, f.Points())
		return nil
	})
	require.NoError(t, err)
}

func TestDat_StopsOnCallbackError(t *testing.T) {
	d, err := DecodeDat(encodeSample(t))
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = d.ForEachFeature(context.Background(), func(Feature, uint32) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestDat_Canceled(t *testing.T) {
	d, err := DecodeDat(encodeSample(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = d.ForEachFeature(ctx, func(Feature, uint32) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDat_MalformedGeometry(t *testing.T) {
	rec, err := encodeRecord(Record{Types: []string{"highway-primary"}, Geom: GeomLine, Points: []orb.Point{{1, 1}, {2, 2}}})
	require.NoError(t, err)
	rec = rec[:len(rec)-1]

	section := binary.AppendUvarint(nil, 1)
	section = binary.AppendUvarint(section, uint64(len(rec)))
	section = append(section, rec...)

	d, err := DecodeDat(section)
	require.NoError(t, err, "record boundaries are still valid")

	err = d.ForEachFeature(context.Background(), func(f Feature, _ uint32) error {
		return f.ParseGeometry(BestGeometry)
	})
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDat_MalformedHead(t *testing.T) {
	rec := []byte{5, 1, 'a', 0, 0} // claims 5 types
	section := binary.AppendUvarint(nil, 1)
	section = binary.AppendUvarint(section, uint64(len(rec)))
	section = append(section, rec...)

	d, err := DecodeDat(section)
	require.NoError(t, err)
	err = d.ForEachFeature(context.Background(), func(Feature, uint32) error { return nil })
	assert.ErrorIs(t, err, ErrFormat)

	_, err = DecodeRecord([]byte{0, 9, 0})
	assert.ErrorIs(t, err, ErrFormat, "geometry type 9")
}

func TestDecodeDat_Errors(t *testing.T) {
	cases := map[string][]byte{
		"Empty":          nil,
		"CountTooLarge":  {200, 1},
		"RecordTooLong":  {1, 50, 0, 0, 0},
		"TrailingBytes":  append(encodeSample(t), 0),
		"TruncatedCount": {0x80},
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeDat(data)
			assert.ErrorIs(t, err, ErrFormat)
		})
	}

	d, err := DecodeDat([]byte{0})
	require.NoError(t, err)
	assert.Equal(t, 0, d.Len())
}

func TestWriter_Errors(t *testing.T) {
	w := NewWriter()
	_, err := w.Add(Record{Geom: GeomLine, Points: []orb.Point{{181, 0}}})
	assert.ErrorIs(t, err, ErrCoordinate)
	_, err = w.Add(Record{Geom: GeomType(7)})
	assert.ErrorIs(t, err, ErrGeomType)
	assert.Equal(t, 0, w.Len())
}

func TestMemory(t *testing.T) {
	m := NewMemory(sampleRecords[:2]...)
	assert.Equal(t, uint32(2), m.Add(sampleRecords[3]))

	var seen []uint32
	err := m.ForEachFeature(context.Background(), func(f Feature, index uint32) error {
		seen = append(seen, index)
		require.NoError(t, f.ParseGeometry(BestGeometry))
		assert.Equal(t, m.Records[index].Points, f.Points())
		assert.Equal(t, m.Records[index].Geom, f.GeomType())
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []uint32{0, 1, 2}, seen)

	data, err := m.Encode()
	require.NoError(t, err)
	d, err := DecodeDat(data)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
}

func TestOpenDat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "city.mwm")
	w := NewWriter()
	for _, r := range sampleRecords {
		_, err := w.Add(r)
		require.NoError(t, err)
	}
	require.NoError(t, WriteContainer(nil, path, w))

	d, err := OpenDat(path)
	require.NoError(t, err)
	assert.Equal(t, len(sampleRecords), d.Len())
	got, err := d.Record(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"amenity-cafe"}, got.Types)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())
}

func TestOpenDat_MissingSection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mwm")
	require.NoError(t, container.Create(nil, path))

	_, err := OpenDat(path)
	assert.ErrorIs(t, err, container.ErrSectionNotFound)
}

func TestIsRoad(t *testing.T) {
	assert.True(t, IsRoad([]string{"highway-primary"}))
	assert.True(t, IsRoad([]string{"building-yes", "highway-footway-sidewalk"}))
	assert.True(t, IsRoad([]string{"route-ferry"}))
	assert.False(t, IsRoad([]string{"highway-bus_stop"}))
	assert.False(t, IsRoad([]string{"railway-rail"}))
	assert.False(t, IsRoad(nil))
}

func TestTypesFromTags(t *testing.T) {
	assert.Equal(t,
		[]string{"highway-footway-sidewalk"},
		TypesFromTags(map[string]string{"highway": "footway", "footway": "sidewalk", "surface": "asphalt"}),
	)
	assert.Equal(t,
		[]string{"amenity-cafe", "building-yes"},
		TypesFromTags(map[string]string{"building": "yes", "amenity": "cafe", "name": "Moka"}),
	)
	assert.Equal(t,
		[]string{"highway-service"},
		TypesFromTags(map[string]string{"highway": "service", "service": "no"}),
	)
	assert.Empty(t, TypesFromTags(map[string]string{"building": "no"}))
}

const sampleGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"highway": "primary", "name": "Main St"},
     "geometry": {"type": "LineString", "coordinates": [[0,0],[1,1]]}},
    {"type": "Feature", "properties": {"types": ["route-ferry"]},
     "geometry": {"type": "MultiLineString", "coordinates": [[[0,0],[1,0]], [[2,0],[3,0]]]}},
    {"type": "Feature", "properties": {"name": "untyped"},
     "geometry": {"type": "Point", "coordinates": [0,0]}},
    {"type": "Feature", "properties": {"landuse": "residential"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,0]]]}}
  ]
}`

func TestImportGeoJSON(t *testing.T) {
	w := NewWriter()
	n, err := ImportGeoJSON(strings.NewReader(sampleGeoJSON), w)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	d, err := DecodeDat(w.Bytes())
	require.NoError(t, err)

	want := []struct {
		types []string
		geom  GeomType
		n     int
	}{
		{[]string{"highway-primary"}, GeomLine, 2},
		{[]string{"route-ferry"}, GeomLine, 2},
		{[]string{"route-ferry"}, GeomLine, 2},
		{[]string{"landuse-residential"}, GeomArea, 4},
	}
	for i, tc := range want {
		rec, err := d.Record(i)
		require.NoError(t, err)
		assert.Equal(t, tc.types, rec.Types, i)
		assert.Equal(t, tc.geom, rec.Geom, i)
		assert.Len(t, rec.Points, tc.n, i)
	}
}

func TestImportGeoJSON_Unsupported(t *testing.T) {
	doc := `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"highway":"primary"},
		"geometry":{"type":"GeometryCollection","geometries":[]}}]}`
	_, err := ImportGeoJSON(strings.NewReader(doc), NewWriter())
	assert.ErrorIs(t, err, ErrGeomType)
}
