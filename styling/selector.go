package styling

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-editor/ownmap"
)

const (
	BaseAny      = "*"
	BaseArea     = "area"
	BaseNode     = "node"
	BaseWay      = "way"
	BaseRelation = "relation"
)

type Selector interface {
	// Matches tests the primitive in env. The range is tested by the rule set, before Matches is called.
	Matches(env *Environment) bool
	Subpart() string
	Range() Range
}

// GeneralSelector is a base with conditions, e.g. way[highway=primary]
type GeneralSelector struct {
	Base       string
	Conditions []Condition
	ZoomRange  Range
	SubpartID  string
}

func NewGeneralSelector(base string, conditions []Condition, zoomRange Range, subpart string) (*GeneralSelector, errorsx.Error) {
	switch base {
	case BaseAny, BaseArea, BaseNode, BaseWay, BaseRelation:
	default:
		return nil, errorsx.Errorf("unknown selector base: %q", base)
	}

	if subpart == "" {
		subpart = DefaultSubpart
	}

	return &GeneralSelector{
		Base:       base,
		Conditions: conditions,
		ZoomRange:  zoomRange,
		SubpartID:  subpart,
	}, nil
}

func (s *GeneralSelector) Matches(env *Environment) bool {
	if !matchesBase(s.Base, env.Primitive) {
		return false
	}

	for _, condition := range s.Conditions {
		if !condition.Applies(env) {
			return false
		}
	}

	return true
}

func (s *GeneralSelector) Subpart() string {
	return s.SubpartID
}

func (s *GeneralSelector) Range() Range {
	return s.ZoomRange
}

func matchesBase(base string, p ownmap.Primitive) bool {
	switch base {
	case BaseAny:
		return true
	case BaseArea:
		switch prim := p.(type) {
		case *ownmap.Way:
			return true
		case *ownmap.Relation:
			return prim.IsMultipolygon()
		}
		return false
	default:
		return p.GetType().APIName() == base
	}
}

func isClosed(p ownmap.Primitive) bool {
	switch prim := p.(type) {
	case *ownmap.Way:
		return prim.IsClosed()
	case *ownmap.Relation:
		return prim.IsMultipolygon()
	default:
		return false
	}
}

// ChildOrParentSelector links two selectors.
//
// As a child selector ("A > B") it matches B against the primitive and then looks for a referrer of
// the primitive matching A. All referrers matching A are recorded in the environment.
// As a parent selector ("A < B") it looks for a member (relation members, way nodes) matching A
// and stops at the first.
type ChildOrParentSelector struct {
	Left           Selector
	Right          Selector
	ParentSelector bool
}

func (s *ChildOrParentSelector) Matches(env *Environment) bool {
	if !s.Right.Matches(env) {
		return false
	}

	if s.ParentSelector {
		for _, member := range members(env) {
			if s.Left.Matches(env.withPrimitive(member)) {
				return true
			}
		}
		return false
	}

	var matching []ownmap.Primitive
	for _, referrer := range referrers(env) {
		if s.Left.Matches(env.withPrimitive(referrer)) {
			matching = append(matching, referrer)
		}
	}

	if len(matching) == 0 {
		return false
	}

	env.MatchingReferrers = matching
	return true
}

func (s *ChildOrParentSelector) Subpart() string {
	return s.Right.Subpart()
}

func (s *ChildOrParentSelector) Range() Range {
	return s.Right.Range()
}

// members returns the distinct members of the primitive, leaving the primitive itself out
func members(env *Environment) []ownmap.Primitive {
	var primitives []ownmap.Primitive
	switch prim := env.Primitive.(type) {
	case *ownmap.Relation:
		primitives = env.Graph.GetMemberPrimitives(prim)
	case *ownmap.Way:
		for _, node := range env.Graph.GetWayNodes(prim) {
			primitives = append(primitives, node)
		}
	}
	return distinctExcluding(primitives, env.Primitive)
}

func referrers(env *Environment) []ownmap.Primitive {
	return distinctExcluding(env.Graph.GetReferrers(env.Primitive), env.Primitive)
}

func distinctExcluding(primitives []ownmap.Primitive, exclude ownmap.Primitive) []ownmap.Primitive {
	seen := map[ownmap.PrimitiveID]bool{exclude.PrimitiveID(): true}
	var distinct []ownmap.Primitive
	for _, p := range primitives {
		if seen[p.PrimitiveID()] {
			continue
		}
		seen[p.PrimitiveID()] = true
		distinct = append(distinct, p)
	}
	return distinct
}
