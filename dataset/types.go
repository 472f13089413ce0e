package dataset

import (
	"slices"
	"strings"
)

// roadTypes are the two-level highway classes usable by car, pedestrian, or
// bicycle routing.
var roadTypes = map[string]struct{}{
	"highway-motorway":       {},
	"highway-motorway_link":  {},
	"highway-trunk":          {},
	"highway-trunk_link":     {},
	"highway-primary":        {},
	"highway-primary_link":   {},
	"highway-secondary":      {},
	"highway-secondary_link": {},
	"highway-tertiary":       {},
	"highway-tertiary_link":  {},
	"highway-unclassified":   {},
	"highway-residential":    {},
	"highway-living_street":  {},
	"highway-service":        {},
	"highway-road":           {},
	"highway-track":          {},
	"highway-busway":         {},
	"highway-pedestrian":     {},
	"highway-footway":        {},
	"highway-path":           {},
	"highway-steps":          {},
	"highway-bridleway":      {},
	"highway-cycleway":       {},
	"route-ferry":            {},
}

// classifiedKeys are the OSM keys that produce a feature type.
var classifiedKeys = []string{
	"amenity", "boundary", "building", "highway", "landuse", "leisure",
	"natural", "place", "railway", "route", "shop", "tourism", "waterway",
}

// subtyped highway classes take a third level from the tag of the same name,
// e.g. highway=footway + footway=sidewalk.
var subtyped = map[string]bool{
	"cycleway": true,
	"footway":  true,
	"service":  true,
}

// IsRoad reports whether any of types is a routable road. Subtypes such as
// "highway-footway-sidewalk" count as their two-level class.
func IsRoad(types []string) bool {
	for _, t := range types {
		if _, ok := roadTypes[twoLevel(t)]; ok {
			return true
		}
	}
	return false
}

func twoLevel(t string) string {
	first := strings.IndexByte(t, '-')
	if first < 0 {
		return t
	}
	if second := strings.IndexByte(t[first+1:], '-'); second >= 0 {
		return t[:first+1+second]
	}
	return t
}

// TypesFromTags maps OSM tags to sorted "key-value" feature types.
// Values "no" and empty values are ignored.
func TypesFromTags(tags map[string]string) []string {
	var types []string
	for _, key := range classifiedKeys {
		value := tags[key]
		if value == "" || value == "no" {
			continue
		}
		t := key + "-" + value
		if key == "highway" {
			if sub := tags[value]; subtyped[value] && sub != "" && sub != "no" {
				t += "-" + sub
			}
		}
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
