package ownmap

import (
	"github.com/paulmach/osm"
)

// Way holds its nodes as id handles, resolved through the data set that owns it
type Way struct {
	primitiveBase
	nodeIDs []osm.NodeID
}

func NewWay(id osm.WayID, nodeIDs []osm.NodeID, tags TagMap) *Way {
	w := &Way{
		primitiveBase: newPrimitiveBase(int64(id), tags),
		nodeIDs:       copyNodeIDs(nodeIDs),
	}
	w.self = w
	return w
}

func NewIncompleteWay(id osm.WayID) *Way {
	w := &Way{primitiveBase: newPrimitiveBase(int64(id), nil)}
	w.self = w
	w.incomplete = true
	return w
}

func (w *Way) PrimitiveID() PrimitiveID {
	return PrimitiveID{ObjectTypeWay, w.id}
}

func (w *Way) GetType() ObjectType {
	return ObjectTypeWay
}

func (w *Way) WayID() osm.WayID {
	return osm.WayID(w.id)
}

// NodeIDs returns a copy of the node handles, in order
func (w *Way) NodeIDs() []osm.NodeID {
	return copyNodeIDs(w.nodeIDs)
}

func (w *Way) NodeCount() int {
	return len(w.nodeIDs)
}

func (w *Way) NodeIDAt(index int) osm.NodeID {
	return w.nodeIDs[index]
}

func (w *Way) FirstNodeID() osm.NodeID {
	if len(w.nodeIDs) == 0 {
		return 0
	}
	return w.nodeIDs[0]
}

func (w *Way) LastNodeID() osm.NodeID {
	if len(w.nodeIDs) == 0 {
		return 0
	}
	return w.nodeIDs[len(w.nodeIDs)-1]
}

// IsClosed is true when the first and last node are the same node
func (w *Way) IsClosed() bool {
	return len(w.nodeIDs) >= 2 && w.nodeIDs[0] == w.nodeIDs[len(w.nodeIDs)-1]
}

func (w *Way) IsFirstLastNode(nodeID osm.NodeID) bool {
	if len(w.nodeIDs) == 0 {
		return false
	}
	return w.nodeIDs[0] == nodeID || w.nodeIDs[len(w.nodeIDs)-1] == nodeID
}

func (w *Way) ContainsNode(nodeID osm.NodeID) bool {
	for _, id := range w.nodeIDs {
		if id == nodeID {
			return true
		}
	}
	return false
}

func (w *Way) SetNodeIDs(nodeIDs []osm.NodeID) {
	w.nodeIDs = copyNodeIDs(nodeIDs)
	w.modified = true
	w.changed(ChangeKindMembership)
}

// RemoveNodeID removes every occurrence of the node. Returns whether anything was removed.
func (w *Way) RemoveNodeID(nodeID osm.NodeID) bool {
	var kept []osm.NodeID
	for _, id := range w.nodeIDs {
		if id != nodeID {
			kept = append(kept, id)
		}
	}

	if len(kept) == len(w.nodeIDs) {
		return false
	}

	w.nodeIDs = kept
	w.modified = true
	w.changed(ChangeKindMembership)
	return true
}

func (w *Way) Load(other *Way) {
	w.tags = other.tags.Clone()
	w.version = other.version
	w.visible = other.visible
	w.deleted = other.deleted
	w.nodeIDs = copyNodeIDs(other.nodeIDs)
	w.incomplete = false
	w.changed(ChangeKindMembership)
}

func (w *Way) Clone() *Way {
	clone := &Way{nodeIDs: copyNodeIDs(w.nodeIDs)}
	clone.primitiveBase = w.cloneBase(clone)
	return clone
}

func copyNodeIDs(nodeIDs []osm.NodeID) []osm.NodeID {
	if nodeIDs == nil {
		return nil
	}
	c := make([]osm.NodeID, len(nodeIDs))
	copy(c, nodeIDs)
	return c
}
