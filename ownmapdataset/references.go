package ownmapdataset

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
)

func (ds *DataSet) buildReferrers() map[ownmap.PrimitiveID][]ownmap.PrimitiveID {
	if ds.referrers != nil {
		return ds.referrers
	}

	referrers := make(map[ownmap.PrimitiveID][]ownmap.PrimitiveID)
	addReferrer := func(child, parent ownmap.PrimitiveID) {
		for _, existing := range referrers[child] {
			if existing == parent {
				return
			}
		}
		referrers[child] = append(referrers[child], parent)
	}

	for _, way := range ds.GetWays() {
		for _, nodeID := range way.NodeIDs() {
			addReferrer(ownmap.NodeID(nodeID), way.PrimitiveID())
		}
	}
	for _, relation := range ds.relations {
		for _, member := range relation.Members() {
			addReferrer(member.Ref, relation.PrimitiveID())
		}
	}

	ds.referrers = referrers
	return referrers
}

// GetReferrers returns the primitives directly referring to p: ways containing a node, and relations
// with p as a member. Deleted referrers are left out.
func (ds *DataSet) GetReferrers(p ownmap.Primitive) []ownmap.Primitive {
	var primitives []ownmap.Primitive
	for _, referrerID := range ds.buildReferrers()[p.PrimitiveID()] {
		referrer, ok := ds.primitivesByID[referrerID]
		if !ok || referrer.IsDeleted() {
			continue
		}
		primitives = append(primitives, referrer)
	}
	return primitives
}

// GetMemberPrimitives returns the distinct members of r that are present in the data set, in member order.
// The relation itself is left out if it is a member of itself.
func (ds *DataSet) GetMemberPrimitives(r *ownmap.Relation) []ownmap.Primitive {
	seen := map[ownmap.PrimitiveID]bool{r.PrimitiveID(): true}

	var primitives []ownmap.Primitive
	for _, member := range r.Members() {
		if seen[member.Ref] {
			continue
		}
		seen[member.Ref] = true

		p, ok := ds.primitivesByID[member.Ref]
		if !ok {
			continue
		}
		primitives = append(primitives, p)
	}
	return primitives
}

// GetParentRelations returns the relations having child as a direct member.
// Deleted and incomplete relations are skipped, and a relation is never its own parent.
func (ds *DataSet) GetParentRelations(child ownmap.Primitive) []*ownmap.Relation {
	var parents []*ownmap.Relation
	for _, referrer := range ds.GetReferrers(child) {
		relation, ok := referrer.(*ownmap.Relation)
		if !ok {
			continue
		}
		if relation.IsIncomplete() || ownmap.Equal(relation, child) {
			continue
		}
		parents = append(parents, relation)
	}
	return parents
}

// GetReferringRelations returns the set of relations referring to any of the primitives
func (ds *DataSet) GetReferringRelations(primitives ...ownmap.Primitive) []*ownmap.Relation {
	seen := make(map[ownmap.PrimitiveID]bool)
	var relations []*ownmap.Relation
	for _, p := range primitives {
		for _, relation := range ds.GetParentRelations(p) {
			if seen[relation.PrimitiveID()] {
				continue
			}
			seen[relation.PrimitiveID()] = true
			relations = append(relations, relation)
		}
	}

	sortRelations(relations)
	return relations
}

// GetAncestorRelations returns every relation that has p as a member, directly or through other relations
func (ds *DataSet) GetAncestorRelations(p ownmap.Primitive) []*ownmap.Relation {
	visited := map[ownmap.PrimitiveID]bool{p.PrimitiveID(): true}
	var ancestors []*ownmap.Relation

	queue := []ownmap.Primitive{p}
	for len(queue) != 0 {
		current := queue[0]
		queue = queue[1:]

		for _, parent := range ds.GetParentRelations(current) {
			if visited[parent.PrimitiveID()] {
				continue
			}
			visited[parent.PrimitiveID()] = true
			ancestors = append(ancestors, parent)
			queue = append(queue, parent)
		}
	}

	sortRelations(ancestors)
	return ancestors
}

func sortRelations(relations []*ownmap.Relation) {
	primitives := make([]ownmap.Primitive, len(relations))
	for i, relation := range relations {
		primitives[i] = relation
	}
	ownmap.SortPrimitives(primitives)
	for i, p := range primitives {
		relations[i] = p.(*ownmap.Relation)
	}
}

// UnlinkNodeFromWays removes the node from every way. A way left with fewer than 2 nodes is emptied and deleted.
func (ds *DataSet) UnlinkNodeFromWays(node *ownmap.Node) {
	selectionChanged := ds.unlinkNodeFromWays(node)
	if selectionChanged {
		ds.fireSelectionChanged()
	}
}

func (ds *DataSet) unlinkNodeFromWays(node *ownmap.Node) bool {
	var selectionChanged bool
	for _, referrer := range ds.GetReferrers(node) {
		way, ok := referrer.(*ownmap.Way)
		if !ok {
			continue
		}

		if !way.RemoveNodeID(node.NodeID()) {
			continue
		}

		if way.NodeCount() < 2 {
			way.SetNodeIDs(nil)
			way.SetDeleted(true)
			if _, ok := ds.selection[way.PrimitiveID()]; ok {
				delete(ds.selection, way.PrimitiveID())
				selectionChanged = true
			}
		}
	}
	return selectionChanged
}

// UnlinkPrimitiveFromRelations removes every membership of p
func (ds *DataSet) UnlinkPrimitiveFromRelations(p ownmap.Primitive) {
	for _, referrer := range ds.GetReferrers(p) {
		relation, ok := referrer.(*ownmap.Relation)
		if !ok {
			continue
		}
		relation.RemoveMembersReferring(p.PrimitiveID())
	}
}

// UnlinkReferencesToPrimitive removes p from every way and relation referring to it
func (ds *DataSet) UnlinkReferencesToPrimitive(p ownmap.Primitive) {
	var selectionChanged bool
	if node, ok := p.(*ownmap.Node); ok {
		selectionChanged = ds.unlinkNodeFromWays(node)
	}
	ds.UnlinkPrimitiveFromRelations(p)

	if selectionChanged {
		ds.fireSelectionChanged()
	}
}

// GetWayNodes resolves the node handles of the way. Handles that aren't in the data set are left out.
func (ds *DataSet) GetWayNodes(way *ownmap.Way) []*ownmap.Node {
	nodeIDs := way.NodeIDs()
	nodes := make([]*ownmap.Node, 0, len(nodeIDs))
	for _, nodeID := range nodeIDs {
		node := ds.GetNode(nodeID)
		if node == nil {
			continue
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// WayHasIncompleteNodes is true when a node of the way is missing, incomplete or without coordinates
func (ds *DataSet) WayHasIncompleteNodes(way *ownmap.Way) bool {
	for _, nodeID := range way.NodeIDs() {
		node := ds.GetNode(nodeID)
		if node == nil || node.IsIncomplete() || !node.HasCoords() {
			return true
		}
	}
	return false
}
