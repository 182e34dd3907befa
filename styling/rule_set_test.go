package styling

import (
	"image/color"
	"testing"

	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleSet_Resolve(t *testing.T) {
	g := newTestGraph(t)

	grey := &LineStyle{LineColor: color.Gray{0x80}, LineWidth: 1}
	red := &LineStyle{LineColor: color.RGBA{0xff, 0, 0, 0xff}, LineWidth: 2}
	blue := &LineStyle{LineColor: color.RGBA{0, 0, 0xff, 0xff}, LineWidth: 3}
	casing := &LineStyle{LineColor: color.Black, LineWidth: 5}

	type testCase struct {
		Name             string
		Rules            []*Rule
		ExpectedDefault  ElemStyle
		ExpectedSubparts []string
	}

	testCases := []testCase{
		{
			Name: "later rule wins",
			Rules: []*Rule{
				{Selectors: []Selector{mustSelector(t, BaseWay, "")}, Style: grey},
				{Selectors: []Selector{mustSelector(t, BaseWay, "", &KeyCondition{Key: "building"})}, Style: red},
			},
			ExpectedDefault:  red,
			ExpectedSubparts: []string{DefaultSubpart},
		},
		{
			Name: "higher priority wins over later rule",
			Rules: []*Rule{
				{Selectors: []Selector{mustSelector(t, BaseWay, "")}, Style: blue, Priority: 1},
				{Selectors: []Selector{mustSelector(t, BaseWay, "")}, Style: red},
			},
			ExpectedDefault:  blue,
			ExpectedSubparts: []string{DefaultSubpart},
		},
		{
			Name: "non matching rule is ignored",
			Rules: []*Rule{
				{Selectors: []Selector{mustSelector(t, BaseWay, "")}, Style: grey},
				{Selectors: []Selector{mustSelector(t, BaseNode, "")}, Style: red},
			},
			ExpectedDefault:  grey,
			ExpectedSubparts: []string{DefaultSubpart},
		},
		{
			Name: "subparts resolve separately",
			Rules: []*Rule{
				{Selectors: []Selector{mustSelector(t, BaseWay, "")}, Style: grey},
				{Selectors: []Selector{mustSelector(t, BaseWay, "casing")}, Style: casing},
			},
			ExpectedDefault:  grey,
			ExpectedSubparts: []string{DefaultSubpart, "casing"},
		},
		{
			Name: "nothing matches",
			Rules: []*Rule{
				{Selectors: []Selector{mustSelector(t, BaseNode, "")}, Style: red},
			},
			ExpectedDefault: nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			ruleSet := NewRuleSet("test", nil, tc.Rules)
			result := ruleSet.Resolve(NewEnvironment(g.way, g.ds, testScale))

			var subparts []string
			for subpart := range result.Subparts {
				subparts = append(subparts, subpart)
			}
			assert.ElementsMatch(t, tc.ExpectedSubparts, subparts)

			if tc.ExpectedDefault == nil {
				assert.Nil(t, result.Default())
				return
			}
			require.NotNil(t, result.Default())
			assert.Same(t, tc.ExpectedDefault, result.Default().Style)
		})
	}
}

func zoomSelector(t *testing.T, minLevel, maxLevel int, conditions ...Condition) (*GeneralSelector, Range) {
	zoomRange, err := RangeFromLevels(minLevel, maxLevel)
	require.NoError(t, err)
	s, err := NewGeneralSelector(BaseWay, conditions, zoomRange, "")
	require.NoError(t, err)
	return s, zoomRange
}

func TestRuleSet_Resolve_zoomRange(t *testing.T) {
	g := newTestGraph(t)

	zoomedIn := &LineStyle{LineWidth: 2}
	zoomedOut := &LineStyle{LineWidth: 1}

	zoomedInSelector, zoomedInRange := zoomSelector(t, 15, NoMaxLevel, &KeyCondition{Key: "building"})
	zoomedOutSelector, zoomedOutRange := zoomSelector(t, 1, 2, &KeyCondition{Key: "building"})

	// the later rule would win if its range were ignored
	ruleSet := NewRuleSet("test", nil, []*Rule{
		{Selectors: []Selector{zoomedInSelector}, Style: zoomedIn},
		{Selectors: []Selector{zoomedOutSelector}, Style: zoomedOut},
	})

	z2Scale, err := Level2Scale(2)
	require.NoError(t, err)
	z8Scale, err := Level2Scale(8)
	require.NoError(t, err)
	z15Scale, err := Level2Scale(15)
	require.NoError(t, err)
	z3Scale, err := Level2Scale(3)
	require.NoError(t, err)

	type testCase struct {
		Name               string
		Scale              float64
		ExpectedStyle      ElemStyle
		ExpectedValidRange Range
	}

	testCases := []testCase{
		{Name: "zoomed in", Scale: testScale, ExpectedStyle: zoomedIn, ExpectedValidRange: zoomedInRange},
		{Name: "zoomed out", Scale: z2Scale, ExpectedStyle: zoomedOut, ExpectedValidRange: zoomedOutRange},
		{Name: "between the ranges", Scale: z8Scale, ExpectedStyle: nil, ExpectedValidRange: Range{z15Scale, z3Scale}},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			result := ruleSet.Resolve(NewEnvironment(g.way, g.ds, tc.Scale))
			assert.Equal(t, tc.ExpectedValidRange, result.ValidRange)
			assert.True(t, result.ValidRange.Contains(tc.Scale))

			if tc.ExpectedStyle == nil {
				assert.Nil(t, result.Default())
				return
			}
			require.NotNil(t, result.Default())
			assert.Same(t, tc.ExpectedStyle, result.Default().Style)
		})
	}
}

func TestRuleSet_Resolve_matchingReferrers(t *testing.T) {
	g := newTestGraph(t)

	style := &LineStyle{LineWidth: 4}
	ruleSet := NewRuleSet("test", nil, []*Rule{
		{
			Selectors: []Selector{
				&ChildOrParentSelector{
					Left:  mustSelector(t, BaseRelation, "", mustCondition(t, "route", ComparatorOperatorEquals, "tram")),
					Right: mustSelector(t, BaseWay, ""),
				},
			},
			Style: style,
		},
	})

	result := ruleSet.Resolve(NewEnvironment(g.way, g.ds, testScale))
	require.NotNil(t, result.Default())
	require.Len(t, result.Default().MatchingReferrers, 1)
	assert.Equal(t, ownmap.RelationID(102), result.Default().MatchingReferrers[0].PrimitiveID())
}

func TestCustomBasicStyle(t *testing.T) {
	g := newTestGraph(t)
	style := NewCustomBasicStyle()

	assert.Equal(t, BUILTIN_STYLEID, style.GetStyleID())
	assert.True(t, style.HasAreas())
	assert.Equal(t, color.White, style.GetBackground())

	result := style.Resolve(NewEnvironment(g.mp, g.ds, testScale))
	require.NotNil(t, result.Default())
	assert.Same(t, forestStyle, result.Default().Style)

	footway := ownmap.NewWay(20, nil, ownmap.TagMap{"highway": "footway"})
	result = style.Resolve(NewEnvironment(footway, g.ds, testScale))
	require.NotNil(t, result.Default())
	lineStyle := result.Default().Style.(*LineStyle)
	assert.Equal(t, []float64{1, 2, 3}, lineStyle.LineDashPolicy)

	place := ownmap.NewNode(30, 0, 0, ownmap.TagMap{"place": "town", "name": "Tønsberg"})
	result = style.Resolve(NewEnvironment(place, g.ds, testScale))
	require.NotNil(t, result.Default())
	assert.Same(t, placeStyle, result.Default().Style)

	unnamedPlace := ownmap.NewNode(31, 0, 0, ownmap.TagMap{"place": "town"})
	assert.Nil(t, style.Resolve(NewEnvironment(unnamedPlace, g.ds, testScale)).Default())
}

func TestStyleSet(t *testing.T) {
	builtin := NewCustomBasicStyle()
	other := NewRuleSet("other", color.Black, nil)

	styleSet, err := NewStyleSet([]Style{other, builtin}, BUILTIN_STYLEID)
	require.NoError(t, err)

	assert.Same(t, builtin, styleSet.GetDefaultStyle())
	assert.Same(t, other, styleSet.GetStyleByID("other"))
	assert.Nil(t, styleSet.GetStyleByID("missing"))
	assert.Equal(t, []string{BUILTIN_STYLEID, "other"}, styleSet.GetAllStyleIDs())

	_, err = NewStyleSet([]Style{other, other}, "other")
	require.Error(t, err)

	_, err = NewStyleSet([]Style{other}, BUILTIN_STYLEID)
	require.Error(t, err)
}
