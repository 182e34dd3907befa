package styling

import (
	"image/color"
)

// Rule applies a style to primitives matching any of its selectors
type Rule struct {
	Selectors []Selector
	Style     ElemStyle
	// Priority orders rules before declaration order does
	Priority int
}

// RuleSet is a style source made of rules. Later rules win over earlier ones of the same priority.
type RuleSet struct {
	ID         string
	Background color.Color
	Rules      []*Rule
}

func NewRuleSet(id string, background color.Color, rules []*Rule) *RuleSet {
	return &RuleSet{id, background, rules}
}

func (rs *RuleSet) GetStyleID() string {
	return rs.ID
}

func (rs *RuleSet) GetBackground() color.Color {
	if rs.Background == nil {
		return color.White
	}
	return rs.Background
}

func (rs *RuleSet) HasAreas() bool {
	for _, rule := range rs.Rules {
		if _, ok := rule.Style.(*AreaStyle); ok {
			return true
		}
	}
	return false
}

// Resolve matches all rules in range of env.Scale against the primitive and returns the winning style per subpart.
// The result's ValidRange is the scale range in which resolving again would give the same result.
func (rs *RuleSet) Resolve(env *Environment) *StyleResult {
	type winner struct {
		rule     *Rule
		resolved *ResolvedStyle
	}
	winners := make(map[string]winner)
	validRange := FullRange()

	for _, rule := range rs.Rules {
		var decided []string
		for _, selector := range rule.Selectors {
			subpart := selector.Subpart()
			if containsString(decided, subpart) {
				continue
			}

			selectorRange := selector.Range()
			if !selectorRange.Contains(env.Scale) {
				validRange = validRange.Exclude(selectorRange, env.Scale)
				continue
			}
			validRange = validRange.Intersect(selectorRange)

			env.MatchingReferrers = nil
			if !selector.Matches(env) {
				continue
			}
			decided = append(decided, subpart)

			current, ok := winners[subpart]
			if ok && current.rule.Priority > rule.Priority {
				continue
			}

			winners[subpart] = winner{rule, &ResolvedStyle{
				Style:             rule.Style,
				Range:             selectorRange,
				Subpart:           subpart,
				MatchingReferrers: env.MatchingReferrers,
			}}
		}
	}

	result := &StyleResult{
		Subparts:   make(map[string]*ResolvedStyle, len(winners)),
		ValidRange: validRange,
	}
	for subpart, w := range winners {
		result.Subparts[subpart] = w.resolved
	}
	env.MatchingReferrers = nil
	return result
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
