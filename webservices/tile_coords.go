package webservices

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

// XYZToBound returns the lon/lat bound of the slippy map tile
func XYZToBound(x, y, zoomLevel int) (orb.Bound, errorsx.Error) {
	if ownmap.ZoomLevel(zoomLevel) < ownmap.MinZoomLevel || ownmap.ZoomLevel(zoomLevel) > ownmap.MaxZoomLevel {
		return orb.Bound{}, errorsx.Errorf("zoom level %d out of range", zoomLevel)
	}

	tilesPerSide := 1 << uint(zoomLevel)
	if x < 0 || y < 0 || x >= tilesPerSide || y >= tilesPerSide {
		return orb.Bound{}, errorsx.Errorf("tile %d/%d/%d out of range", zoomLevel, x, y)
	}

	return maptile.New(uint32(x), uint32(y), maptile.Zoom(zoomLevel)).Bound(), nil
}
