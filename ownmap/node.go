package ownmap

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

type Node struct {
	primitiveBase
	lat, lon  float64
	hasCoords bool
	eastNorth orb.Point
}

func NewNode(id osm.NodeID, lat, lon float64, tags TagMap) *Node {
	n := &Node{primitiveBase: newPrimitiveBase(int64(id), tags)}
	n.self = n
	n.setCoords(lat, lon)
	return n
}

// NewIncompleteNode creates a placeholder for a node that is referenced but whose data has not been loaded
func NewIncompleteNode(id osm.NodeID) *Node {
	n := &Node{primitiveBase: newPrimitiveBase(int64(id), nil)}
	n.self = n
	n.incomplete = true
	return n
}

func (n *Node) PrimitiveID() PrimitiveID {
	return PrimitiveID{ObjectTypeNode, n.id}
}

func (n *Node) GetType() ObjectType {
	return ObjectTypeNode
}

func (n *Node) NodeID() osm.NodeID {
	return osm.NodeID(n.id)
}

func (n *Node) Lat() float64 {
	return n.lat
}

func (n *Node) Lon() float64 {
	return n.lon
}

func (n *Node) HasCoords() bool {
	return n.hasCoords
}

// Point returns the node position as an orb point, X = lon, Y = lat
func (n *Node) Point() orb.Point {
	return orb.Point{n.lon, n.lat}
}

// EastNorth returns the projected (web mercator) position
func (n *Node) EastNorth() orb.Point {
	return n.eastNorth
}

// Bound returns the zero-size bound of the node position. ok is false if the node has no coordinates.
func (n *Node) Bound() (orb.Bound, bool) {
	if !n.hasCoords {
		return orb.Bound{}, false
	}
	return n.Point().Bound(), true
}

// SetCoords moves the node. The spatial index of an owning data set is not updated until it is reindexed.
func (n *Node) SetCoords(lat, lon float64) {
	n.setCoords(lat, lon)
	n.modified = true
	n.changed(ChangeKindGeometry)
}

func (n *Node) setCoords(lat, lon float64) {
	n.lat = lat
	n.lon = lon
	n.hasCoords = true
	n.eastNorth = ProjectToMercator(n.Point())
}

// Load copies the data of other (same id) into n, clearing the incomplete flag
func (n *Node) Load(other *Node) {
	n.tags = other.tags.Clone()
	n.version = other.version
	n.visible = other.visible
	n.deleted = other.deleted
	n.lat, n.lon, n.hasCoords, n.eastNorth = other.lat, other.lon, other.hasCoords, other.eastNorth
	n.incomplete = false
	n.changed(ChangeKindGeometry)
}

func (n *Node) Clone() *Node {
	clone := &Node{
		lat:       n.lat,
		lon:       n.lon,
		hasCoords: n.hasCoords,
		eastNorth: n.eastNorth,
	}
	clone.primitiveBase = n.cloneBase(clone)
	return clone
}
