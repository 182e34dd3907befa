package ownmap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
	"github.com/paulmach/osm"
)

// BoundsToBound converts OSM lat/lon bounds to an orb bound (X = lon, Y = lat)
func BoundsToBound(bounds osm.Bounds) orb.Bound {
	return orb.Bound{
		Min: orb.Point{bounds.MinLon, bounds.MinLat},
		Max: orb.Point{bounds.MaxLon, bounds.MaxLat},
	}
}

func BoundToBounds(bound orb.Bound) osm.Bounds {
	return osm.Bounds{
		MinLat: bound.Min.Lat(),
		MaxLat: bound.Max.Lat(),
		MinLon: bound.Min.Lon(),
		MaxLon: bound.Max.Lon(),
	}
}

// IsDegenerateBound is true for bounds that can't contain anything: inverted, NaN or zero-area
func IsDegenerateBound(bound orb.Bound) bool {
	for _, v := range []float64{bound.Min[0], bound.Min[1], bound.Max[0], bound.Max[1]} {
		if math.IsNaN(v) {
			return true
		}
	}

	return bound.Min[0] >= bound.Max[0] || bound.Min[1] >= bound.Max[1]
}

// ProjectToMercator projects a lon/lat point to web mercator metres
func ProjectToMercator(point orb.Point) orb.Point {
	return project.WGS84.ToMercator(point)
}
