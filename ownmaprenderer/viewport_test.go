package ownmaprenderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMercatorViewport(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{10, 59}, Max: orb.Point{11, 60}}
	v, err := NewMercatorViewport(bound, image.Pt(256, 512))
	require.NoError(t, err)

	assert.Equal(t, bound, v.Bound())
	assert.Equal(t, image.Pt(256, 512), v.Size())

	topLeft := v.Point(ownmap.NewNode(1, 60, 10, nil))
	assert.InDelta(t, 0, topLeft.X(), 1e-6)
	assert.InDelta(t, 0, topLeft.Y(), 1e-6)

	bottomRight := v.Point(ownmap.NewNode(2, 59, 11, nil))
	assert.InDelta(t, 256, bottomRight.X(), 1e-6)
	assert.InDelta(t, 512, bottomRight.Y(), 1e-6)

	lonLat := v.LonLat(orb.Point{128, 256})
	roundTrip := v.Point(ownmap.NewNode(3, lonLat.Lat(), lonLat.Lon(), nil))
	assert.InDelta(t, 128, roundTrip.X(), 1e-6)
	assert.InDelta(t, 256, roundTrip.Y(), 1e-6)

	// one degree of longitude at ~59.5N is ~56km, over 256 pixels
	assert.InDelta(t, 56500.0/256*100, v.Scale(), 500)
}

func TestNewMercatorViewport_errors(t *testing.T) {
	_, err := NewMercatorViewport(orb.Bound{Min: orb.Point{10, 59}, Max: orb.Point{10, 60}}, image.Pt(256, 256))
	assert.Error(t, err)

	_, err = NewMercatorViewport(orb.Bound{Min: orb.Point{10, 59}, Max: orb.Point{11, 60}}, image.Pt(0, 256))
	assert.Error(t, err)
}

func TestHexColor(t *testing.T) {
	assert.Equal(t, "#000000ff", hexColor(color.Black))
	assert.Equal(t, "#acc8a0ff", hexColor(color.RGBA{172, 200, 160, 0xff}))
	assert.Equal(t, "", hexColor(nil))
}
