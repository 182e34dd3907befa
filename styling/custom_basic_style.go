package styling

import (
	"image/color"
)

const (
	zindexForest      = 1
	zindexResidential = 2
	zindexRailway     = 3
	zindexHighway     = 4
	zindexPlace       = 5
)

var (
	forestStyle = &AreaStyle{
		FillColor: color.RGBA{172, 200, 160, 0xff},
		ZIndex:    zindexForest,
	}
	residentialStyle = &AreaStyle{
		FillColor: color.RGBA{223, 223, 223, 0xff},
		ZIndex:    zindexResidential,
	}
	railwayStyle = &LineStyle{
		LineColor: color.RGBA{190, 190, 190, 0xff},
		LineWidth: 3,
		ZIndex:    zindexRailway,
	}
	placeStyle = &NodeStyle{
		TextSize:  16,
		TextColor: color.Black,
		ZIndex:    zindexPlace,
	}
)

type highwayStyle struct {
	values     []string
	lineColor  color.Color
	dashPolicy []float64
}

var highwayStyles = []highwayStyle{
	{[]string{"motorway"}, color.RGBA{0xf3, 0x8d, 0x9e, 0xff}, nil},
	{[]string{"trunk"}, color.RGBA{0xff, 0xae, 0x9b, 0xff}, nil},
	{[]string{"primary", "primary_link"}, color.RGBA{0xff, 0xd4, 0xa5, 0xff}, nil},
	{[]string{"secondary"}, color.RGBA{0xf6, 0xf9, 0xbf, 0xff}, nil},
	{[]string{"tertiary"}, color.RGBA{0xf3, 0x8d, 0x9e, 0xff}, nil},
	{[]string{"unclassified", "residential", "service", "track"}, color.RGBA{0xbc, 0xac, 0xa5, 0xff}, nil},
	{[]string{"footway", "path", "steps"}, color.RGBA{0, 0xff, 0, 0xff}, []float64{1, 2, 3}},
	{[]string{"bridleway", "cycleway"}, color.RGBA{0, 0xff, 0, 0xff}, []float64{20, 5}},
}

// NewCustomBasicStyle returns the builtin style
func NewCustomBasicStyle() *RuleSet {
	var rules []*Rule

	rules = append(rules,
		areaRule(forestStyle, "natural", "wood"),
		areaRule(forestStyle, "landuse", "forest"),
		areaRule(residentialStyle, "landuse", "residential"),
		&Rule{
			Selectors: []Selector{
				&GeneralSelector{
					Base:       BaseWay,
					Conditions: []Condition{&KeyCondition{Key: "railway", Match: KeyMatchExists}},
					ZoomRange:  FullRange(),
					SubpartID:  DefaultSubpart,
				},
			},
			Style: railwayStyle,
		},
	)

	for _, hs := range highwayStyles {
		var selectors []Selector
		for _, value := range hs.values {
			selectors = append(selectors, &GeneralSelector{
				Base:       BaseWay,
				Conditions: []Condition{mustKeyValueCondition("highway", ComparatorOperatorEquals, value)},
				ZoomRange:  FullRange(),
				SubpartID:  DefaultSubpart,
			})
		}

		rules = append(rules, &Rule{
			Selectors: selectors,
			Style: &LineStyle{
				LineColor:      hs.lineColor,
				LineDashPolicy: hs.dashPolicy,
				LineWidth:      1,
				ZIndex:         zindexHighway,
			},
		})
	}

	rules = append(rules, &Rule{
		Selectors: []Selector{
			&GeneralSelector{
				Base: BaseNode,
				Conditions: []Condition{
					&KeyCondition{Key: "place", Match: KeyMatchExists},
					&KeyCondition{Key: "name", Match: KeyMatchExists},
				},
				ZoomRange: FullRange(),
				SubpartID: DefaultSubpart,
			},
		},
		Style: placeStyle,
	})

	return NewRuleSet(BUILTIN_STYLEID, color.White, rules)
}

func areaRule(style *AreaStyle, key, value string) *Rule {
	return &Rule{
		Selectors: []Selector{
			&GeneralSelector{
				Base:       BaseArea,
				Conditions: []Condition{mustKeyValueCondition(key, ComparatorOperatorEquals, value)},
				ZoomRange:  FullRange(),
				SubpartID:  DefaultSubpart,
			},
		},
		Style: style,
	}
}

func mustKeyValueCondition(key string, operator ComparatorOperator, value string) *KeyValueCondition {
	c, err := NewKeyValueCondition(key, operator, value)
	if err != nil {
		panic(err)
	}
	return c
}
