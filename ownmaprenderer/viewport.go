package ownmaprenderer

import (
	"image"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/project"
)

// Viewport is the part of the map being rendered
type Viewport interface {
	// Bound is the visible area, X = lon, Y = lat
	Bound() orb.Bound
	// Scale is the ground distance in metres covered by 100 pixels
	Scale() float64
	// Point projects a node to pixel space
	Point(node *ownmap.Node) orb.Point
	Size() image.Point
}

// MercatorViewport shows a lon/lat bound in web mercator, with north up
type MercatorViewport struct {
	bound    orb.Bound
	min, max orb.Point
	size     image.Point
	scale    float64
}

func NewMercatorViewport(bound orb.Bound, size image.Point) (*MercatorViewport, errorsx.Error) {
	if ownmap.IsDegenerateBound(bound) {
		return nil, errorsx.Errorf("viewport bound %v has no area", bound)
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, errorsx.Errorf("viewport size %v has no area", size)
	}

	v := &MercatorViewport{
		bound: bound,
		min:   project.WGS84.ToMercator(bound.Min),
		max:   project.WGS84.ToMercator(bound.Max),
		size:  size,
	}

	midY := float64(size.Y) / 2
	v.scale = geo.Distance(v.LonLat(orb.Point{0, midY}), v.LonLat(orb.Point{100, midY}))

	return v, nil
}

func (v *MercatorViewport) Bound() orb.Bound {
	return v.bound
}

func (v *MercatorViewport) Scale() float64 {
	return v.scale
}

func (v *MercatorViewport) Size() image.Point {
	return v.size
}

func (v *MercatorViewport) Point(node *ownmap.Node) orb.Point {
	eastNorth := node.EastNorth()
	return orb.Point{
		(eastNorth.X() - v.min.X()) / (v.max.X() - v.min.X()) * float64(v.size.X),
		(v.max.Y() - eastNorth.Y()) / (v.max.Y() - v.min.Y()) * float64(v.size.Y),
	}
}

// LonLat is the inverse of Point
func (v *MercatorViewport) LonLat(pixel orb.Point) orb.Point {
	eastNorth := orb.Point{
		v.min.X() + pixel.X()/float64(v.size.X)*(v.max.X()-v.min.X()),
		v.max.Y() - pixel.Y()/float64(v.size.Y)*(v.max.Y()-v.min.Y()),
	}
	return project.Mercator.ToWGS84(eastNorth)
}
