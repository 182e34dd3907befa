package multipolygon

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/osm"
)

type ContainsResult int

const (
	ContainsNone ContainsResult = iota
	ContainsFull
	ContainsPartial
)

func (c ContainsResult) String() string {
	switch c {
	case ContainsNone:
		return "none"
	case ContainsFull:
		return "full"
	case ContainsPartial:
		return "partial"
	default:
		return "unknown"
	}
}

// PolyData is a ring in pixel space with the inner rings assigned to it
type PolyData struct {
	// Way is the source way, or the first fragment of a joined way
	Way *ownmap.Way
	// WayClosed is whether the source node list is closed
	WayClosed bool
	Ring      orb.Ring
	Inners    []orb.Ring
	// Selected is set when any fragment of a joined way is selected
	Selected bool
}

func (a *Assembler) newPolyData(way *ownmap.Way, nodeIDs []osm.NodeID, closed, selected bool) *PolyData {
	return &PolyData{
		Way:       way,
		WayClosed: closed,
		Ring:      a.points(nodeIDs),
		Selected:  selected,
	}
}

// PolyDataFromWay projects a closed or open way
func (a *Assembler) PolyDataFromWay(way *ownmap.Way) *PolyData {
	return a.newPolyData(way, way.NodeIDs(), way.IsClosed(), false)
}

// PolyDataFromJoinedWay projects a joined way
func (a *Assembler) PolyDataFromJoinedWay(jw *JoinedWay) *PolyData {
	return a.newPolyData(jw.Way, jw.NodeIDs, jw.IsClosed(), jw.Selected)
}

// Contains tests how many points of ring lie inside this ring. Points on the boundary count as inside.
func (pd *PolyData) Contains(ring orb.Ring) ContainsResult {
	if len(pd.Ring) == 0 || len(ring) == 0 {
		return ContainsNone
	}

	outside := len(ring)
	for _, point := range ring {
		if planar.RingContains(pd.Ring, point) {
			outside--
		}
	}

	switch outside {
	case 0:
		return ContainsFull
	case len(ring):
		return ContainsNone
	default:
		return ContainsPartial
	}
}

func (pd *PolyData) AddInner(ring orb.Ring) {
	pd.Inners = append(pd.Inners, ring)
}

// IsClosed is true for a ring of at least 3 points whose first and last points are the same
func (pd *PolyData) IsClosed() bool {
	return len(pd.Ring) >= 3 && pd.Ring[0] == pd.Ring[len(pd.Ring)-1]
}

// Polygon returns the ring with its inners as holes. Rings are closed if they aren't already.
func (pd *PolyData) Polygon() orb.Polygon {
	polygon := orb.Polygon{closeRing(pd.Ring)}
	for _, inner := range pd.Inners {
		polygon = append(polygon, closeRing(inner))
	}
	return polygon
}

func closeRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring.Closed() {
		return ring
	}
	closed := make(orb.Ring, len(ring), len(ring)+1)
	copy(closed, ring)
	return append(closed, ring[0])
}

func boundArea(ring orb.Ring) float64 {
	bound := ring.Bound()
	return (bound.Max[0] - bound.Min[0]) * (bound.Max[1] - bound.Min[1])
}

// AddInnerToOuters assigns the inner ring to the tightest outer containing it.
//
// Outers containing the inner even partly are candidates. A candidate replaces the current choice when the
// current choice fully contains it; when neither fully contains the other, the smaller bounding box wins,
// then the earlier outer. A partial overlap with a closed outer is reported as an intersection.
// An inner contained by no outer is attached to the first outer, and reported unless the relation is incomplete.
func (a *Assembler) AddInnerToOuters(r *ownmap.Relation, incomplete bool, inner *PolyData, outers []*PolyData) {
	if len(outers) == 0 {
		return
	}

	if !inner.WayClosed && len(inner.Ring) > 0 {
		inner.Ring = append(inner.Ring, inner.Ring[0])
	}

	var chosen *PolyData
	for _, outer := range outers {
		contains := outer.Contains(inner.Ring)
		if contains == ContainsNone {
			continue
		}

		if contains == ContainsPartial && outer.Way != nil && outer.WayClosed {
			a.reporter.Errorf(r, "Intersection between ways '%s' and '%s'.", ownmap.DisplayName(outer.Way), ownmap.DisplayName(inner.Way))
		}

		if chosen == nil || isTighter(outer, chosen) {
			chosen = outer
		}
	}

	if chosen == nil {
		if !incomplete {
			a.reporter.Errorf(r, "Inner way '%s' is outside.", ownmap.DisplayName(inner.Way))
		}
		chosen = outers[0]
	}

	chosen.AddInner(inner.Ring)
}

func isTighter(candidate, current *PolyData) bool {
	currentContainsCandidate := current.Contains(candidate.Ring) == ContainsFull
	candidateContainsCurrent := candidate.Contains(current.Ring) == ContainsFull
	if currentContainsCandidate != candidateContainsCurrent {
		return currentContainsCandidate
	}

	return boundArea(candidate.Ring) < boundArea(current.Ring)
}
