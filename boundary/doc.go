// Package boundary answers "is this point inside any city?" for the road
// classifier.
//
// A [Table] collects city boundary polygons keyed by OSM id and clusters ids
// that describe the same settlement (a relation and the node placed at its
// centre, for example). [Flatten] turns a table into one slice of boundaries,
// and [NewChecker] builds an immutable [Oracle] from that slice. A Checker is
// safe for concurrent use.
//
// Tables are usually loaded from GeoJSON:
//
//	table, err := boundary.LoadFile("cities.geojson.zst")
//	oracle := boundary.NewChecker(boundary.Flatten(table))
//	inCity := oracle.InCity(orb.Point{13.40, 52.52})
package boundary
