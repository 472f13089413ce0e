// Package cityroads builds the city_roads section of a map container: the
// set of road features that run mostly through cities, stored as an
// Elias-Fano sequence of feature ids.
//
// # Building
//
//	table, err := boundary.LoadFile("cities.geojson.zst")
//	if err != nil {
//		return err
//	}
//	b := cityroads.NewBuilder(cityroads.WithWorkers(4))
//	res, err := b.Build(ctx, "Berlin.mwm", table)
//
// A road is a city road when more than 20% of its vertices lie inside any
// city boundary. If no road qualifies, nothing is written. Otherwise the ids
// are sorted, checked for duplicates, encoded, framed by a section header, and
// appended to the container as one unit; a failed write leaves the container
// unchanged.
//
// [BuildCityRoadIndex] wraps Build for pipelines that only need a success
// flag: it logs the outcome and returns false on any failure.
//
// # Reading
//
//	roads, err := cityroads.LoadCityRoads("Berlin.mwm")
//	if roads.IsCityRoad(fid) { ... }
//
// A container without a city_roads section loads as an empty index.
package cityroads
