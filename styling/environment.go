package styling

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
)

// Graph gives selectors access to the primitives around the one being matched
type Graph interface {
	GetReferrers(p ownmap.Primitive) []ownmap.Primitive
	GetMemberPrimitives(r *ownmap.Relation) []ownmap.Primitive
	GetWayNodes(w *ownmap.Way) []*ownmap.Node
}

// Environment is the state of one selector evaluation
type Environment struct {
	Primitive ownmap.Primitive
	Graph     Graph
	// Scale of the frame being painted. Selectors whose range doesn't contain it are skipped.
	Scale float64
	// MatchingReferrers is filled in by child selectors with the referrers matching the parent part
	MatchingReferrers []ownmap.Primitive
}

func NewEnvironment(p ownmap.Primitive, graph Graph, scale float64) *Environment {
	return &Environment{Primitive: p, Graph: graph, Scale: scale}
}

func (env *Environment) withPrimitive(p ownmap.Primitive) *Environment {
	return &Environment{Primitive: p, Graph: env.Graph, Scale: env.Scale}
}
