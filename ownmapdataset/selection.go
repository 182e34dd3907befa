package ownmapdataset

import (
	"sort"

	"github.com/jamesrr39/ownmap-editor/ownmap"
)

type ListenerID int

// SelectionListener is called once per selection-changing call, after the change is complete
type SelectionListener func(selection []ownmap.Primitive)

// AddSelectionListener registers a listener for the lifetime of the data set, or until it is removed
func (ds *DataSet) AddSelectionListener(listener SelectionListener) ListenerID {
	ds.nextListenerID++
	ds.listeners[ds.nextListenerID] = listener
	return ds.nextListenerID
}

func (ds *DataSet) RemoveSelectionListener(id ListenerID) {
	delete(ds.listeners, id)
}

// Dispose drops every listener. Called when the data set is thrown away.
func (ds *DataSet) Dispose() {
	ds.listeners = make(map[ListenerID]SelectionListener)
}

func (ds *DataSet) fireSelectionChanged() {
	if len(ds.listeners) == 0 {
		return
	}

	selection := ds.GetSelected()

	// fire in registration order
	ids := make([]ListenerID, 0, len(ds.listeners))
	for id := range ds.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i] < ids[j]
	})

	for _, id := range ids {
		listener, ok := ds.listeners[id]
		if !ok {
			// removed by an earlier listener
			continue
		}
		listener(selection)
	}
}

// isMember is true if p is the primitive registered under its id.
// Primitives that were never added, such as ones still carrying id 0, can't be selected.
func (ds *DataSet) isMember(p ownmap.Primitive) bool {
	if p == nil {
		return false
	}
	registered, ok := ds.primitivesByID[p.PrimitiveID()]
	return ok && registered == p
}

// SetSelected replaces the selection
func (ds *DataSet) SetSelected(primitives ...ownmap.Primitive) {
	ds.selection = make(map[ownmap.PrimitiveID]ownmap.Primitive)
	for _, p := range primitives {
		if !ds.isMember(p) {
			continue
		}
		ds.selection[p.PrimitiveID()] = p
	}
	ds.fireSelectionChanged()
}

// AddSelected adds to the selection
func (ds *DataSet) AddSelected(primitives ...ownmap.Primitive) {
	for _, p := range primitives {
		if !ds.isMember(p) {
			continue
		}
		ds.selection[p.PrimitiveID()] = p
	}
	ds.fireSelectionChanged()
}

// ToggleSelected flips the selection state of each primitive. A primitive passed twice is toggled once.
func (ds *DataSet) ToggleSelected(primitives ...ownmap.Primitive) {
	seen := make(map[ownmap.PrimitiveID]bool)
	for _, p := range primitives {
		if !ds.isMember(p) {
			continue
		}
		id := p.PrimitiveID()
		if seen[id] {
			continue
		}
		seen[id] = true

		if _, ok := ds.selection[id]; ok {
			delete(ds.selection, id)
		} else {
			ds.selection[id] = p
		}
	}
	ds.fireSelectionChanged()
}

// ClearSelection deselects the given primitives, or everything if none are given
func (ds *DataSet) ClearSelection(primitives ...ownmap.Primitive) {
	if len(primitives) == 0 {
		ds.selection = make(map[ownmap.PrimitiveID]ownmap.Primitive)
	}
	for _, p := range primitives {
		if p == nil {
			continue
		}
		delete(ds.selection, p.PrimitiveID())
	}
	ds.fireSelectionChanged()
}

func (ds *DataSet) IsSelected(p ownmap.Primitive) bool {
	if p == nil {
		return false
	}
	selected, ok := ds.selection[p.PrimitiveID()]
	return ok && selected == p
}

// GetSelected returns the selection ordered by type then id
func (ds *DataSet) GetSelected() []ownmap.Primitive {
	selection := make([]ownmap.Primitive, 0, len(ds.selection))
	for _, p := range ds.selection {
		selection = append(selection, p)
	}
	ownmap.SortPrimitives(selection)
	return selection
}

func (ds *DataSet) GetSelectedNodes() []*ownmap.Node {
	var nodes []*ownmap.Node
	for _, p := range ds.GetSelected() {
		if node, ok := p.(*ownmap.Node); ok {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func (ds *DataSet) GetSelectedWays() []*ownmap.Way {
	var ways []*ownmap.Way
	for _, p := range ds.GetSelected() {
		if way, ok := p.(*ownmap.Way); ok {
			ways = append(ways, way)
		}
	}
	return ways
}

func (ds *DataSet) GetSelectedRelations() []*ownmap.Relation {
	var relations []*ownmap.Relation
	for _, p := range ds.GetSelected() {
		if relation, ok := p.(*ownmap.Relation); ok {
			relations = append(relations, relation)
		}
	}
	return relations
}
