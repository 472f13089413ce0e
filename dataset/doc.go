// Package dataset reads and writes the "dat" section of a map container: the
// list of map features whose position in the list is their feature id.
//
// Section layout (varints as in encoding/binary):
//
//	uvarint featureCount
//	featureCount × (uvarint recordLen | record)
//
// Record layout:
//
//	uvarint typeCount
//	typeCount × (uvarint len | type bytes)
//	byte    geometry type
//	uvarint pointCount
//	pointCount × (varint dLon | varint dLat)   deltas of lon/lat × 1e7
//
// [Dat] decodes records lazily: types are read during iteration, geometry only
// when ParseGeometry is called. [Memory] serves features from a slice and is
// meant for tests and importers. [ImportOSM] and [ImportGeoJSON] turn OSM
// extracts and GeoJSON files into a dat section.
package dataset
