package styling

import (
	"image/color"
	"sort"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-editor/ownmap"
)

const BUILTIN_STYLEID = "__ownmap_builtin"

// DefaultSubpart is the subpart of rules without an explicit one
const DefaultSubpart = "default"

// ElemStyle is the styling of one primitive: *LineStyle, *AreaStyle, *NodeStyle or *IconStyle
type ElemStyle interface {
	GetZIndex() int
}

type LineStyle struct {
	LineColor      color.Color
	LineDashPolicy []float64
	LineWidth      float64
	ZIndex         int
}

func (ls *LineStyle) GetZIndex() int {
	return ls.ZIndex
}

type AreaStyle struct {
	FillColor color.Color
	// Line is the outline, nil for no outline
	Line   *LineStyle
	ZIndex int
}

func (as *AreaStyle) GetZIndex() int {
	return as.ZIndex
}

type NodeStyle struct {
	TextSize  int
	TextColor color.Color
	ZIndex    int
}

func (ns *NodeStyle) GetZIndex() int {
	return ns.ZIndex
}

type IconStyle struct {
	IconName string
	// Annotate draws the name of the primitive next to the icon
	Annotate bool
	ZIndex   int
}

func (is *IconStyle) GetZIndex() int {
	return is.ZIndex
}

var (
	// UntaggedWayStyle is used for ways no rule matches
	UntaggedWayStyle = &LineStyle{
		LineColor: color.RGBA{0x80, 0x80, 0x80, 0xff},
		LineWidth: 1,
	}
	// SimpleNodeStyle is used for nodes no rule matches
	SimpleNodeStyle = &NodeStyle{
		TextSize:  10,
		TextColor: color.Black,
	}
)

// ResolvedStyle is the outcome of matching one subpart of a style against a primitive
type ResolvedStyle struct {
	Style   ElemStyle
	Range   Range
	Subpart string
	// MatchingReferrers are the referrers that matched the parent part of a child selector
	MatchingReferrers []ownmap.Primitive
}

// StyleResult holds the winning style per subpart
type StyleResult struct {
	Subparts map[string]*ResolvedStyle
	// ValidRange is the scale range the result was resolved for
	ValidRange Range
}

// Default returns the default subpart, or nil if nothing matched it
func (sr *StyleResult) Default() *ResolvedStyle {
	if sr == nil {
		return nil
	}
	return sr.Subparts[DefaultSubpart]
}

type Style interface {
	Resolve(env *Environment) *StyleResult
	// HasAreas is true if any rule of the style produces an area style
	HasAreas() bool
	GetBackground() color.Color
	GetStyleID() string
}

type StyleSet struct {
	stylesMap      map[string]Style // map[Style ID]Style
	defaultStyleID string
}

func NewStyleSet(styles []Style, defaultStyleID string) (*StyleSet, errorsx.Error) {
	styleSet := &StyleSet{
		stylesMap:      make(map[string]Style),
		defaultStyleID: defaultStyleID,
	}

	defaultIDFound := false

	for _, style := range styles {
		styleID := style.GetStyleID()
		_, ok := styleSet.stylesMap[styleID]
		if ok {
			return nil, errorsx.Errorf("duplicate style ID found: %q", styleID)
		}

		styleSet.stylesMap[styleID] = style

		if defaultStyleID == styleID {
			defaultIDFound = true
		}
	}

	if !defaultIDFound {
		return nil, errorsx.Errorf("default ID %q not found in any supplied styles", defaultStyleID)
	}

	return styleSet, nil
}

func (s *StyleSet) GetStyleByID(id string) Style {
	return s.stylesMap[id]
}

func (s *StyleSet) GetDefaultStyle() Style {
	return s.stylesMap[s.defaultStyleID]
}

func (s *StyleSet) GetAllStyleIDs() []string {
	var styleIDs []string

	for id := range s.stylesMap {
		styleIDs = append(styleIDs, id)
	}

	sort.Strings(styleIDs)

	return styleIDs
}
