package ownmapdataset

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
)

// WayBound returns the lon/lat bound of the way's resolvable nodes. ok is false when no node has coordinates.
func (ds *DataSet) WayBound(way *ownmap.Way) (orb.Bound, bool) {
	var bound orb.Bound
	var found bool
	for _, node := range ds.GetWayNodes(way) {
		if !node.HasCoords() {
			continue
		}
		if !found {
			bound = node.Point().Bound()
			found = true
			continue
		}
		bound = bound.Extend(node.Point())
	}
	return bound, found
}

// RelationBound returns the bound of all members, following member relations.
// Relation cycles are followed only once.
func (ds *DataSet) RelationBound(relation *ownmap.Relation) (orb.Bound, bool) {
	visited := make(map[ownmap.PrimitiveID]bool)
	return ds.relationBound(relation, visited)
}

func (ds *DataSet) relationBound(relation *ownmap.Relation, visited map[ownmap.PrimitiveID]bool) (orb.Bound, bool) {
	visited[relation.PrimitiveID()] = true

	var bound orb.Bound
	var found bool
	extend := func(b orb.Bound, ok bool) {
		if !ok {
			return
		}
		if !found {
			bound = b
			found = true
			return
		}
		bound = bound.Union(b)
	}

	for _, member := range ds.GetMemberPrimitives(relation) {
		switch m := member.(type) {
		case *ownmap.Node:
			extend(m.Bound())
		case *ownmap.Way:
			extend(ds.WayBound(m))
		case *ownmap.Relation:
			if visited[m.PrimitiveID()] {
				continue
			}
			extend(ds.relationBound(m, visited))
		}
	}

	return bound, found
}
