package styling

import (
	"io"
	"testing"

	"github.com/jamesrr39/goutil/logpkg"
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/jamesrr39/ownmap-editor/ownmapdataset"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGraph struct {
	ds    *ownmapdataset.DataSet
	way   *ownmap.Way
	mp    *ownmap.Relation
	route *ownmap.Relation
}

// testScale lies in zoom level 16
const testScale = 200.0

func newTestGraph(t *testing.T) *testGraph {
	ds := ownmapdataset.NewDataSet(logpkg.NewLogger(io.Discard, logpkg.LogLevelDebug))

	n1 := ownmap.NewNode(1, 0, 0, nil)
	n2 := ownmap.NewNode(2, 0, 1, ownmap.TagMap{"barrier": "gate"})
	n3 := ownmap.NewNode(3, 1, 1, nil)
	way := ownmap.NewWay(10, []osm.NodeID{1, 2, 3, 1}, ownmap.TagMap{"building": "yes", "levels": "4"})
	mp := ownmap.NewRelation(100, []ownmap.RelationMember{
		{Role: "outer", Ref: way.PrimitiveID()},
	}, ownmap.TagMap{"type": "multipolygon", "landuse": "forest"})
	route := ownmap.NewRelation(101, []ownmap.RelationMember{
		{Role: "", Ref: way.PrimitiveID()},
		{Role: "", Ref: ownmap.RelationID(101)},
	}, ownmap.TagMap{"type": "route", "route": "bus"})
	route2 := ownmap.NewRelation(102, []ownmap.RelationMember{
		{Role: "", Ref: way.PrimitiveID()},
	}, ownmap.TagMap{"type": "route", "route": "tram"})

	for _, p := range []ownmap.Primitive{n1, n2, n3, way, mp, route, route2} {
		require.NoError(t, ds.AddPrimitive(p))
	}

	return &testGraph{ds, way, mp, route}
}

func mustSelector(t *testing.T, base string, subpart string, conditions ...Condition) *GeneralSelector {
	s, err := NewGeneralSelector(base, conditions, FullRange(), subpart)
	require.NoError(t, err)
	return s
}

func mustCondition(t *testing.T, key string, op ComparatorOperator, value string) Condition {
	c, err := NewKeyValueCondition(key, op, value)
	require.NoError(t, err)
	return c
}

func TestGeneralSelector_Matches(t *testing.T) {
	g := newTestGraph(t)

	type testCase struct {
		Name      string
		Selector  Selector
		Primitive ownmap.Primitive
		Expected  bool
	}

	testCases := []testCase{
		{"area matches way", mustSelector(t, BaseArea, ""), g.way, true},
		{"area matches multipolygon", mustSelector(t, BaseArea, ""), g.mp, true},
		{"area doesn't match other relations", mustSelector(t, BaseArea, ""), g.route, false},
		{"area doesn't match node", mustSelector(t, BaseArea, ""), g.ds.GetNode(1), false},
		{"any", mustSelector(t, BaseAny, ""), g.ds.GetNode(1), true},
		{"node base", mustSelector(t, BaseNode, ""), g.way, false},
		{"tag equals", mustSelector(t, BaseWay, "", mustCondition(t, "building", ComparatorOperatorEquals, "yes")), g.way, true},
		{"tag not equals on missing tag", mustSelector(t, BaseWay, "", mustCondition(t, "highway", ComparatorOperatorNotEquals, "primary")), g.way, true},
		{"numeric greater than", mustSelector(t, BaseWay, "", mustCondition(t, "levels", ComparatorOperatorGreaterThan, "3")), g.way, true},
		{"numeric less than", mustSelector(t, BaseWay, "", mustCondition(t, "levels", ComparatorOperatorLessThan, "3")), g.way, false},
		{"numeric on text value", mustSelector(t, BaseWay, "", mustCondition(t, "building", ComparatorOperatorGreaterThan, "3")), g.way, false},
		{"regex", mustSelector(t, BaseRelation, "", mustCondition(t, "route", ComparatorOperatorRegexMatch, "^b")), g.route, true},
		{"key exists", mustSelector(t, BaseWay, "", &KeyCondition{Key: "building", Match: KeyMatchExists}), g.way, true},
		{"key not exists", mustSelector(t, BaseWay, "", &KeyCondition{Key: "building", Match: KeyMatchNotExists}), g.way, false},
		{"key true", mustSelector(t, BaseWay, "", &KeyCondition{Key: "building", Match: KeyMatchTrue}), g.way, true},
		{"closed", mustSelector(t, BaseWay, "", &PseudoClassCondition{Class: PseudoClassClosed}), g.way, true},
		{"not tagged", mustSelector(t, BaseNode, "", &PseudoClassCondition{Class: PseudoClassTagged, Negated: true}), g.ds.GetNode(1), true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			env := NewEnvironment(tc.Primitive, g.ds, testScale)
			assert.Equal(t, tc.Expected, tc.Selector.Matches(env))
		})
	}
}

func TestNewGeneralSelector_errors(t *testing.T) {
	_, err := NewGeneralSelector("canvas", nil, FullRange(), "")
	require.Error(t, err)

	_, err = NewKeyValueCondition("levels", ComparatorOperatorGreaterThan, "many")
	require.Error(t, err)

	_, err = NewKeyValueCondition("name", ComparatorOperatorRegexMatch, "(")
	require.Error(t, err)

	_, err = NewPseudoClassCondition("selected", false)
	require.Error(t, err)

	_, err = ComparatorOperatorFromSymbol("<>")
	require.Error(t, err)
}

func TestChildOrParentSelector_child(t *testing.T) {
	g := newTestGraph(t)

	// relation[type=route] > way
	selector := &ChildOrParentSelector{
		Left:  mustSelector(t, BaseRelation, "", mustCondition(t, "type", ComparatorOperatorEquals, "route")),
		Right: mustSelector(t, BaseWay, ""),
	}

	env := NewEnvironment(g.way, g.ds, testScale)
	require.True(t, selector.Matches(env))

	var ids []ownmap.PrimitiveID
	for _, p := range env.MatchingReferrers {
		ids = append(ids, p.PrimitiveID())
	}
	assert.ElementsMatch(t, []ownmap.PrimitiveID{ownmap.RelationID(101), ownmap.RelationID(102)}, ids)

	// the route is a member of itself, but a primitive never refers to itself
	routeSelector := &ChildOrParentSelector{
		Left:  mustSelector(t, BaseRelation, ""),
		Right: mustSelector(t, BaseRelation, "", mustCondition(t, "route", ComparatorOperatorEquals, "bus")),
	}
	assert.False(t, routeSelector.Matches(NewEnvironment(g.route, g.ds, testScale)))
}

func TestChildOrParentSelector_parent(t *testing.T) {
	g := newTestGraph(t)

	// node[barrier] < way
	selector := &ChildOrParentSelector{
		Left:           mustSelector(t, BaseNode, "", &KeyCondition{Key: "barrier", Match: KeyMatchExists}),
		Right:          mustSelector(t, BaseWay, ""),
		ParentSelector: true,
	}

	env := NewEnvironment(g.way, g.ds, testScale)
	assert.True(t, selector.Matches(env))
	assert.Empty(t, env.MatchingReferrers)

	// way < relation, where the relation is also its own member
	relationSelector := &ChildOrParentSelector{
		Left:           mustSelector(t, BaseRelation, ""),
		Right:          mustSelector(t, BaseRelation, ""),
		ParentSelector: true,
	}
	assert.False(t, relationSelector.Matches(NewEnvironment(g.route, g.ds, testScale)))
}
