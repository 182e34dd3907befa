package ownmapdataset

import (
	"errors"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset/quadbuckets"
	"github.com/paulmach/orb"
	"github.com/paulmach/osm"
)

var (
	ErrDuplicatePrimitive = errors.New("primitive with this id already in the data set")
	ErrUnknownType        = errors.New("unknown primitive type")
)

// DataSource is an area for which data has been downloaded or loaded
type DataSource struct {
	Bounds osm.Bounds `json:"bounds"`
	Origin string     `json:"origin"`
}

// DataSet is the in-memory graph of primitives being edited.
//
// It is not safe for concurrent use; the owner serializes all access.
type DataSet struct {
	logger *logpkg.Logger

	nodes          *quadbuckets.QuadBuckets[*ownmap.Node]
	ways           *quadbuckets.QuadBuckets[*ownmap.Way]
	relations      []*ownmap.Relation
	primitivesByID map[ownmap.PrimitiveID]ownmap.Primitive

	selection      map[ownmap.PrimitiveID]ownmap.Primitive
	listeners      map[ListenerID]SelectionListener
	nextListenerID ListenerID

	dataSources []DataSource
	version     string
	diagnostics *Diagnostics

	nextNewID  int64
	generation uint64
	// nil when members or way nodes changed since the last build
	referrers map[ownmap.PrimitiveID][]ownmap.PrimitiveID
}

func NewDataSet(logger *logpkg.Logger) *DataSet {
	return &DataSet{
		logger:         logger,
		nodes:          quadbuckets.New[*ownmap.Node](),
		ways:           quadbuckets.New[*ownmap.Way](),
		primitivesByID: make(map[ownmap.PrimitiveID]ownmap.Primitive),
		selection:      make(map[ownmap.PrimitiveID]ownmap.Primitive),
		listeners:      make(map[ListenerID]SelectionListener),
		diagnostics:    NewDiagnostics(),
		nextNewID:      -1,
	}
}

func (ds *DataSet) Version() string {
	return ds.version
}

func (ds *DataSet) SetVersion(version string) {
	ds.version = version
}

// Generation increases on every change to any primitive in the data set
func (ds *DataSet) Generation() uint64 {
	return ds.generation
}

func (ds *DataSet) Diagnostics() *Diagnostics {
	return ds.diagnostics
}

func (ds *DataSet) onPrimitiveChanged(p ownmap.Primitive, kind ownmap.ChangeKind) {
	ds.generation++
	if kind == ownmap.ChangeKindMembership {
		ds.referrers = nil
	}
}

// AddPrimitive adds p to the data set. A primitive with id 0 is given a fresh negative id.
// Adding a primitive whose id is already present fails with ErrDuplicatePrimitive.
func (ds *DataSet) AddPrimitive(p ownmap.Primitive) errorsx.Error {
	switch {
	case p.GetID() == 0:
		p.SetID(ds.nextNewID)
		ds.nextNewID--
	case p.GetID() <= ds.nextNewID:
		ds.nextNewID = p.GetID() - 1
	}

	id := p.PrimitiveID()
	if _, ok := ds.primitivesByID[id]; ok {
		return errorsx.Wrap(ErrDuplicatePrimitive, "id", id.String())
	}

	switch prim := p.(type) {
	case *ownmap.Node:
		ds.indexNode(prim)
	case *ownmap.Way:
		ds.indexWay(prim)
	case *ownmap.Relation:
		ds.relations = append(ds.relations, prim)
	default:
		return errorsx.Wrap(ErrUnknownType, "id", id.String())
	}

	ds.primitivesByID[id] = p
	p.SetChangeListener(ds.onPrimitiveChanged)
	ds.referrers = nil
	ds.generation++

	return nil
}

// CompletePrimitive fills the incomplete placeholder with the same id as p with the data of p.
// If there is no such primitive, p is added. If the existing primitive is complete, ErrDuplicatePrimitive is returned.
func (ds *DataSet) CompletePrimitive(p ownmap.Primitive) errorsx.Error {
	existing, ok := ds.primitivesByID[p.PrimitiveID()]
	if !ok {
		return ds.AddPrimitive(p)
	}

	if !existing.IsIncomplete() {
		return errorsx.Wrap(ErrDuplicatePrimitive, "id", p.PrimitiveID().String())
	}

	switch prim := existing.(type) {
	case *ownmap.Node:
		prim.Load(p.(*ownmap.Node))
		ds.indexNode(prim)
	case *ownmap.Way:
		prim.Load(p.(*ownmap.Way))
		ds.indexWay(prim)
	case *ownmap.Relation:
		prim.Load(p.(*ownmap.Relation))
	}

	return nil
}

// RemovePrimitive removes the primitive from the data set and the selection.
// Removing an id that isn't present logs a warning and does nothing.
func (ds *DataSet) RemovePrimitive(id ownmap.PrimitiveID) {
	p, ok := ds.primitivesByID[id]
	if !ok {
		ds.logger.Warn("tried to remove primitive %s, but it is not in the data set", id)
		return
	}

	switch prim := p.(type) {
	case *ownmap.Node:
		ds.nodes.Remove(prim)
	case *ownmap.Way:
		ds.ways.Remove(prim)
	case *ownmap.Relation:
		for i, r := range ds.relations {
			if r == prim {
				ds.relations = append(ds.relations[:i], ds.relations[i+1:]...)
				break
			}
		}
	}

	delete(ds.primitivesByID, id)
	p.SetChangeListener(nil)

	if _, ok := ds.selection[id]; ok {
		delete(ds.selection, id)
		ds.fireSelectionChanged()
	}

	ds.referrers = nil
	ds.generation++
}

// GetPrimitiveByID looks up a primitive. With createIfMissing, an absent id is registered as an
// incomplete placeholder which is returned. Id 0 never matches anything.
func (ds *DataSet) GetPrimitiveByID(id ownmap.PrimitiveID, createIfMissing bool) ownmap.Primitive {
	if id.ID == 0 {
		return nil
	}

	p, ok := ds.primitivesByID[id]
	if ok {
		return p
	}

	if !createIfMissing {
		return nil
	}

	switch id.Type {
	case ownmap.ObjectTypeNode:
		p = ownmap.NewIncompleteNode(osm.NodeID(id.ID))
	case ownmap.ObjectTypeWay:
		p = ownmap.NewIncompleteWay(osm.WayID(id.ID))
	case ownmap.ObjectTypeRelation:
		p = ownmap.NewIncompleteRelation(osm.RelationID(id.ID))
	default:
		return nil
	}

	err := ds.AddPrimitive(p)
	if err != nil {
		// can't happen, the id was checked above
		ds.logger.Error("couldn't add placeholder for %s: %s", id, err.Error())
		return nil
	}

	return p
}

func (ds *DataSet) GetNode(id osm.NodeID) *ownmap.Node {
	p, _ := ds.GetPrimitiveByID(ownmap.NodeID(id), false).(*ownmap.Node)
	return p
}

func (ds *DataSet) GetWay(id osm.WayID) *ownmap.Way {
	p, _ := ds.GetPrimitiveByID(ownmap.WayID(id), false).(*ownmap.Way)
	return p
}

func (ds *DataSet) GetRelation(id osm.RelationID) *ownmap.Relation {
	p, _ := ds.GetPrimitiveByID(ownmap.RelationID(id), false).(*ownmap.Relation)
	return p
}

func (ds *DataSet) Len() int {
	return len(ds.primitivesByID)
}

// GetPrimitiveIDs returns all ids, ordered
func (ds *DataSet) GetPrimitiveIDs() []ownmap.PrimitiveID {
	ids := make([]ownmap.PrimitiveID, 0, len(ds.primitivesByID))
	for id := range ds.primitivesByID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].Less(ids[j])
	})
	return ids
}

func (ds *DataSet) GetNodes() []*ownmap.Node {
	nodes := ds.nodes.All()
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].GetID() < nodes[j].GetID()
	})
	return nodes
}

func (ds *DataSet) GetWays() []*ownmap.Way {
	ways := ds.ways.All()
	sort.Slice(ways, func(i, j int) bool {
		return ways[i].GetID() < ways[j].GetID()
	})
	return ways
}

// GetRelations returns the relations in the order they were added
func (ds *DataSet) GetRelations() []*ownmap.Relation {
	relations := make([]*ownmap.Relation, len(ds.relations))
	copy(relations, ds.relations)
	return relations
}

// SearchNodes returns the nodes inside bbox (lon/lat)
func (ds *DataSet) SearchNodes(bbox orb.Bound) []*ownmap.Node {
	return ds.nodes.Search(bbox)
}

// SearchWays returns the ways whose bound, as of the last (re)index, intersects bbox
func (ds *DataSet) SearchWays(bbox orb.Bound) []*ownmap.Way {
	return ds.ways.Search(bbox)
}

func (ds *DataSet) AllPrimitives() []ownmap.Primitive {
	return ds.filterPrimitives(func(p ownmap.Primitive) bool {
		return true
	})
}

func (ds *DataSet) AllNonDeletedPrimitives() []ownmap.Primitive {
	return ds.filterPrimitives(func(p ownmap.Primitive) bool {
		return !p.IsDeleted()
	})
}

func (ds *DataSet) AllNonDeletedCompletePrimitives() []ownmap.Primitive {
	return ds.filterPrimitives(func(p ownmap.Primitive) bool {
		return !p.IsDeleted() && !p.IsIncomplete()
	})
}

// AllNonDeletedPhysicalPrimitives returns the non deleted, complete nodes and ways
func (ds *DataSet) AllNonDeletedPhysicalPrimitives() []ownmap.Primitive {
	return ds.filterPrimitives(func(p ownmap.Primitive) bool {
		return !p.IsDeleted() && !p.IsIncomplete() && p.GetType() != ownmap.ObjectTypeRelation
	})
}

func (ds *DataSet) filterPrimitives(include func(p ownmap.Primitive) bool) []ownmap.Primitive {
	var primitives []ownmap.Primitive
	for _, p := range ds.primitivesByID {
		if include(p) {
			primitives = append(primitives, p)
		}
	}
	ownmap.SortPrimitives(primitives)
	return primitives
}

func (ds *DataSet) IsModified() bool {
	for _, p := range ds.primitivesByID {
		if p.IsModified() {
			return true
		}
	}
	return false
}

// CleanupDeletedPrimitives removes deleted primitives from the data set. Returns whether anything was removed.
func (ds *DataSet) CleanupDeletedPrimitives() bool {
	var toRemove []ownmap.PrimitiveID
	for id, p := range ds.primitivesByID {
		if p.IsDeleted() {
			toRemove = append(toRemove, id)
		}
	}

	for _, id := range toRemove {
		ds.RemovePrimitive(id)
	}

	return len(toRemove) != 0
}

// Clear removes all primitives and data sources. Listeners are kept.
func (ds *DataSet) Clear() {
	for _, p := range ds.primitivesByID {
		p.SetChangeListener(nil)
	}

	hadSelection := len(ds.selection) != 0

	ds.nodes.Clear()
	ds.ways.Clear()
	ds.relations = nil
	ds.primitivesByID = make(map[ownmap.PrimitiveID]ownmap.Primitive)
	ds.selection = make(map[ownmap.PrimitiveID]ownmap.Primitive)
	ds.dataSources = nil
	ds.diagnostics.Clear()
	ds.referrers = nil
	ds.generation++

	if hadSelection {
		ds.fireSelectionChanged()
	}
}

func (ds *DataSet) SetFiltered(primitives ...ownmap.Primitive) {
	for _, p := range ds.primitivesByID {
		p.SetFiltered(false)
	}
	for _, p := range primitives {
		p.SetFiltered(true)
	}
}

func (ds *DataSet) SetDisabled(primitives ...ownmap.Primitive) {
	for _, p := range ds.primitivesByID {
		p.SetDisabled(false)
	}
	for _, p := range primitives {
		p.SetDisabled(true)
	}
}

func (ds *DataSet) AddDataSource(dataSource DataSource) {
	ds.dataSources = append(ds.dataSources, dataSource)
}

func (ds *DataSet) DataSources() []DataSource {
	dataSources := make([]DataSource, len(ds.dataSources))
	copy(dataSources, ds.dataSources)
	return dataSources
}

// DataSourceBound returns the union of all data source bounds. ok is false when there are no data sources.
func (ds *DataSet) DataSourceBound() (bound orb.Bound, ok bool) {
	for i, dataSource := range ds.dataSources {
		b := ownmap.BoundsToBound(dataSource.Bounds)
		if i == 0 {
			bound = b
			continue
		}
		bound = bound.Union(b)
	}
	return bound, len(ds.dataSources) != 0
}

// ReindexAll rebuilds the spatial indexes. Needed after node coordinates have changed.
func (ds *DataSet) ReindexAll() {
	nodes := ds.nodes.All()
	ways := ds.ways.All()

	ds.nodes.Clear()
	ds.ways.Clear()

	for _, node := range nodes {
		ds.indexNode(node)
	}
	for _, way := range ways {
		ds.indexWay(way)
	}
}

func (ds *DataSet) indexNode(node *ownmap.Node) {
	bound, ok := node.Bound()
	ds.nodes.Insert(node, bound, ok)
}

func (ds *DataSet) indexWay(way *ownmap.Way) {
	bound, ok := ds.WayBound(way)
	ds.ways.Insert(way, bound, ok)
}

// Clone makes a deep copy of the primitives and data sources. The selection and listeners are not copied.
func (ds *DataSet) Clone() *DataSet {
	clone := NewDataSet(ds.logger)
	clone.version = ds.version
	clone.nextNewID = ds.nextNewID
	clone.dataSources = ds.DataSources()

	// nodes first, so that way bounds can be computed when the ways are added
	for _, node := range ds.GetNodes() {
		clone.mustAdd(node.Clone())
	}
	for _, way := range ds.GetWays() {
		clone.mustAdd(way.Clone())
	}
	for _, relation := range ds.relations {
		clone.mustAdd(relation.Clone())
	}

	return clone
}

func (ds *DataSet) mustAdd(p ownmap.Primitive) {
	err := ds.AddPrimitive(p)
	if err != nil {
		panic("adding primitive to a fresh data set: " + err.Error())
	}
}
