// Package multipolygon turns multipolygon and turn restriction relations into paintable geometry,
// reporting what is wrong with them along the way.
package multipolygon

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

// Graph is the part of the data set the assembler reads
type Graph interface {
	GetPrimitiveByID(id ownmap.PrimitiveID, createIfMissing bool) ownmap.Primitive
	GetNode(id osm.NodeID) *ownmap.Node
	IsSelected(p ownmap.Primitive) bool
}

// Projector maps a node to pixel space
type Projector interface {
	Point(node *ownmap.Node) orb.Point
}

// Reporter collects diagnostics about primitives
type Reporter interface {
	Errorf(p ownmap.Primitive, message string, args ...interface{})
	Warnf(p ownmap.Primitive, message string, args ...interface{})
}

type Assembler struct {
	graph     Graph
	projector Projector
	reporter  Reporter
}

func NewAssembler(graph Graph, projector Projector, reporter Reporter) *Assembler {
	return &Assembler{graph, projector, reporter}
}

// resolveMember returns nil for members that aren't loaded
func (a *Assembler) resolveMember(member ownmap.RelationMember) ownmap.Primitive {
	return a.graph.GetPrimitiveByID(member.Ref, false)
}

// points projects the nodes. Nodes that aren't loaded or have no coordinates are skipped.
func (a *Assembler) points(nodeIDs []osm.NodeID) orb.Ring {
	ring := make(orb.Ring, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		node := a.graph.GetNode(nodeID)
		if node == nil || !node.HasCoords() {
			continue
		}
		ring = append(ring, a.projector.Point(node))
	}
	return ring
}
