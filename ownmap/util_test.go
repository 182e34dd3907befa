package ownmap

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
)

// downloaded is the bounds of a data source, views and points are tested against it
var downloaded = osm.Bounds{MinLat: 59.9, MaxLat: 60.0, MinLon: 10.7, MaxLon: 10.8}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		view osm.Bounds
		want bool
	}{
		{"north of the download", osm.Bounds{MinLat: 60.1, MaxLat: 60.2, MinLon: 10.7, MaxLon: 10.8}, false},
		{"south of the download", osm.Bounds{MinLat: 59.7, MaxLat: 59.8, MinLon: 10.7, MaxLon: 10.8}, false},
		{"west of the download", osm.Bounds{MinLat: 59.9, MaxLat: 60.0, MinLon: 10.5, MaxLon: 10.6}, false},
		{"east of the download", osm.Bounds{MinLat: 59.9, MaxLat: 60.0, MinLon: 10.9, MaxLon: 11.0}, false},
		{"inside", osm.Bounds{MinLat: 59.92, MaxLat: 59.95, MinLon: 10.72, MaxLon: 10.75}, true},
		{"across the north edge", osm.Bounds{MinLat: 59.95, MaxLat: 60.05, MinLon: 10.72, MaxLon: 10.75}, true},
		{"across the south-west corner", osm.Bounds{MinLat: 59.85, MaxLat: 59.95, MinLon: 10.65, MaxLon: 10.75}, true},
		{"sharing the north edge", osm.Bounds{MinLat: 60.0, MaxLat: 60.1, MinLon: 10.7, MaxLon: 10.8}, true},
		{"covering the download", osm.Bounds{MinLat: 59, MaxLat: 61, MinLon: 10, MaxLon: 11}, true},
		{"same bounds", downloaded, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(downloaded, tt.view))
		})
	}
}

func TestIsInBounds(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"inside", 59.95, 10.75, true},
		{"on the edge", 60.0, 10.75, false},
		{"north", 60.5, 10.75, false},
		{"east", 59.95, 11, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInBounds(downloaded, tt.lat, tt.lon))
		})
	}
}

func TestIsTotallyInside(t *testing.T) {
	tests := []struct {
		name string
		view osm.Bounds
		want bool
	}{
		{"inside", osm.Bounds{MinLat: 59.92, MaxLat: 59.95, MinLon: 10.72, MaxLon: 10.75}, true},
		{"same bounds", downloaded, true},
		{"across the north edge", osm.Bounds{MinLat: 59.95, MaxLat: 60.05, MinLon: 10.72, MaxLon: 10.75}, false},
		{"covering the download", osm.Bounds{MinLat: 59, MaxLat: 61, MinLon: 10, MaxLon: 11}, false},
		{"elsewhere", osm.Bounds{MinLat: 63.4, MaxLat: 63.5, MinLon: 10.3, MaxLon: 10.5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTotallyInside(downloaded, tt.view))
		})
	}

	assert.True(t, IsTotallyInside(GetWholeWorldBounds(), downloaded))
}

func TestIsDegenerateBound(t *testing.T) {
	tests := []struct {
		name  string
		bound orb.Bound
		want  bool
	}{
		{"normal", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1, 1}}, false},
		{"inverted", orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{0, 0}}, true},
		{"zero width", orb.Bound{Min: orb.Point{1, 0}, Max: orb.Point{1, 1}}, true},
		{"point", orb.Point{3, 3}.Bound(), true},
		{"NaN", orb.Bound{Min: orb.Point{math.NaN(), 0}, Max: orb.Point{1, 1}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDegenerateBound(tt.bound))
		})
	}
}

func TestBoundsToBound(t *testing.T) {
	bound := BoundsToBound(downloaded)
	assert.Equal(t, orb.Point{10.7, 59.9}, bound.Min)
	assert.Equal(t, orb.Point{10.8, 60.0}, bound.Max)
	assert.Equal(t, downloaded, BoundToBounds(bound))
}
