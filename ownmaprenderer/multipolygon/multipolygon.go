package multipolygon

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
)

const (
	RoleOuter = "outer"
	RoleInner = "inner"
)

// Multipolygon is a multipolygon relation with its member ways sorted by role
type Multipolygon struct {
	Relation *ownmap.Relation
	Outer    []*ownmap.Way
	Inner    []*ownmap.Way
	// OtherRoles are ways with a role that is neither outer nor inner
	OtherRoles []*ownmap.Way
	// Incomplete is set when a member isn't loaded
	Incomplete bool
}

func (mp *Multipolygon) HasOuter() bool {
	return len(mp.Outer) != 0
}

// Multipolygon sorts the members of r. Ways without a role count as outer.
func (a *Assembler) Multipolygon(r *ownmap.Relation) *Multipolygon {
	mp := &Multipolygon{Relation: r}

	for _, member := range r.Members() {
		p := a.resolveMember(member)
		switch {
		case p == nil:
			mp.Incomplete = true
			continue
		case p.IsDeleted():
			a.reporter.Errorf(r, "Deleted member '%s' in relation.", ownmap.DisplayName(p))
			continue
		case p.IsIncomplete():
			mp.Incomplete = true
			continue
		case !p.IsDrawable():
			continue
		}

		way, ok := p.(*ownmap.Way)
		if !ok {
			a.reporter.Errorf(r, "Non-Way '%s' in multipolygon.", ownmap.DisplayName(p))
			continue
		}

		if way.NodeCount() < 2 {
			a.reporter.Errorf(r, "Way '%s' with less than two points.", ownmap.DisplayName(way))
			continue
		}

		switch member.Role {
		case RoleInner:
			mp.Inner = append(mp.Inner, way)
		case RoleOuter:
			mp.Outer = append(mp.Outer, way)
		default:
			if member.Role == "" {
				a.reporter.Warnf(r, "No useful role '%s' for Way '%s'.", member.Role, ownmap.DisplayName(way))
				mp.Outer = append(mp.Outer, way)
			} else {
				a.reporter.Errorf(r, "No useful role '%s' for Way '%s'.", member.Role, ownmap.DisplayName(way))
				mp.OtherRoles = append(mp.OtherRoles, way)
			}
		}
	}

	return mp
}

// Polygons assembles the outer rings with their holes. Closed ways are used as they are, open ways
// are joined first. It reports and returns nil when there is no outer way.
func (a *Assembler) Polygons(mp *Multipolygon) []*PolyData {
	r := mp.Relation
	if !mp.HasOuter() {
		a.reporter.Errorf(r, "No outer way for multipolygon '%s'.", ownmap.DisplayName(r))
		return nil
	}

	var errTarget ownmap.Primitive
	if !mp.Incomplete {
		errTarget = r
	}

	outerClosed, outerOpen := splitClosed(mp.Outer)
	innerClosed, innerOpen := splitClosed(mp.Inner)

	var outers []*PolyData
	for _, way := range outerClosed {
		outers = append(outers, a.PolyDataFromWay(way))
	}
	for _, joinedWay := range a.JoinWays(outerOpen, errTarget) {
		outers = append(outers, a.PolyDataFromJoinedWay(joinedWay))
	}

	for _, way := range innerClosed {
		a.AddInnerToOuters(r, mp.Incomplete, a.PolyDataFromWay(way), outers)
	}
	for _, joinedWay := range a.JoinWays(innerOpen, errTarget) {
		a.AddInnerToOuters(r, mp.Incomplete, a.PolyDataFromJoinedWay(joinedWay), outers)
	}

	return outers
}

func splitClosed(ways []*ownmap.Way) (closed, open []*ownmap.Way) {
	for _, way := range ways {
		if way.IsClosed() {
			closed = append(closed, way)
		} else {
			open = append(open, way)
		}
	}
	return closed, open
}
