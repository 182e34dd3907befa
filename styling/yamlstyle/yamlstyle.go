package yamlstyle

import (
	"image/color"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/gofs"
	"github.com/jamesrr39/ownmap-editor/styling"
	"gopkg.in/yaml.v3"
)

// File is a style source as written in YAML
type File struct {
	ID         string  `yaml:"id"`
	Background string  `yaml:"background,omitempty"`
	Rules      []*Rule `yaml:"rules"`
}

type Rule struct {
	Priority  int         `yaml:"priority,omitempty"`
	Selectors []*Selector `yaml:"selectors"`

	Line *Line `yaml:"line,omitempty"`
	Area *Area `yaml:"area,omitempty"`
	Node *Node `yaml:"node,omitempty"`
	Icon *Icon `yaml:"icon,omitempty"`
}

type Zoom struct {
	Min int  `yaml:"min,omitempty"`
	Max *int `yaml:"max,omitempty"`
}

type Selector struct {
	Base       string       `yaml:"base"`
	Zoom       *Zoom        `yaml:"zoom,omitempty"`
	Subpart    string       `yaml:"subpart,omitempty"`
	Conditions []*Condition `yaml:"conditions,omitempty"`
	// Parent makes this a child selector: a referrer must match Parent
	Parent *Selector `yaml:"parent,omitempty"`
	// Member makes this a parent selector: a member must match Member
	Member *Selector `yaml:"member,omitempty"`
}

// Condition is one of
//
//	{key: highway}                            tag present
//	{key: highway, is: missing|true|false}
//	{key: highway, op: "=", value: primary}
//	{pseudo: closed, not: true}
type Condition struct {
	Key    string `yaml:"key,omitempty"`
	Is     string `yaml:"is,omitempty"`
	Op     string `yaml:"op,omitempty"`
	Value  string `yaml:"value,omitempty"`
	Pseudo string `yaml:"pseudo,omitempty"`
	Not    bool   `yaml:"not,omitempty"`
}

type Line struct {
	Color  string    `yaml:"color"`
	Width  float64   `yaml:"width"`
	Dashes []float64 `yaml:"dashes,omitempty"`
	ZIndex int       `yaml:"z-index,omitempty"`
}

type Area struct {
	Fill   string `yaml:"fill"`
	Line   *Line  `yaml:"line,omitempty"`
	ZIndex int    `yaml:"z-index,omitempty"`
}

type Node struct {
	TextSize  int    `yaml:"text-size"`
	TextColor string `yaml:"text-color"`
	ZIndex    int    `yaml:"z-index,omitempty"`
}

type Icon struct {
	Name     string `yaml:"name"`
	Annotate bool   `yaml:"annotate,omitempty"`
	ZIndex   int    `yaml:"z-index,omitempty"`
}

// Parse reads a YAML style source
func Parse(r io.Reader) (*styling.RuleSet, errorsx.Error) {
	var file File
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	err := decoder.Decode(&file)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return file.ToRuleSet()
}

// LoadDir parses every .yaml/.yml file in dirPath. Styles are returned ordered by file name.
func LoadDir(fs gofs.Fs, dirPath string) ([]styling.Style, errorsx.Error) {
	fileInfos, err := fs.ReadDir(dirPath)
	if err != nil {
		return nil, errorsx.Wrap(err, "dirPath", dirPath)
	}

	sort.Slice(fileInfos, func(i, j int) bool {
		return fileInfos[i].Name() < fileInfos[j].Name()
	})

	var styles []styling.Style
	for _, fileInfo := range fileInfos {
		if fileInfo.IsDir() {
			continue
		}

		switch filepath.Ext(fileInfo.Name()) {
		case ".yaml", ".yml":
		default:
			continue
		}

		filePath := filepath.Join(dirPath, fileInfo.Name())
		style, err := loadFile(fs, filePath)
		if err != nil {
			return nil, errorsx.Wrap(err, "filePath", filePath)
		}

		styles = append(styles, style)
	}

	return styles, nil
}

func loadFile(fs gofs.Fs, filePath string) (*styling.RuleSet, errorsx.Error) {
	file, err := fs.Open(filePath)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	defer file.Close()

	return Parse(file)
}

func (f *File) ToRuleSet() (*styling.RuleSet, errorsx.Error) {
	if f.ID == "" {
		return nil, errorsx.Errorf("style has no id")
	}

	var background color.Color
	if f.Background != "" {
		var err errorsx.Error
		background, err = ParseColor(f.Background)
		if err != nil {
			return nil, errorsx.Wrap(err, "field", "background")
		}
	}

	rules := make([]*styling.Rule, len(f.Rules))
	for i, rule := range f.Rules {
		var err errorsx.Error
		rules[i], err = rule.toRule()
		if err != nil {
			return nil, errorsx.Wrap(err, "ruleIndex", i)
		}
	}

	return styling.NewRuleSet(f.ID, background, rules), nil
}

func (r *Rule) toRule() (*styling.Rule, errorsx.Error) {
	if len(r.Selectors) == 0 {
		return nil, errorsx.Errorf("rule has no selectors")
	}

	style, err := r.elemStyle()
	if err != nil {
		return nil, err
	}

	selectors := make([]styling.Selector, len(r.Selectors))
	for i, s := range r.Selectors {
		selectors[i], err = s.toSelector()
		if err != nil {
			return nil, errorsx.Wrap(err, "selectorIndex", i)
		}
	}

	return &styling.Rule{
		Selectors: selectors,
		Style:     style,
		Priority:  r.Priority,
	}, nil
}

func (r *Rule) elemStyle() (styling.ElemStyle, errorsx.Error) {
	var styles []styling.ElemStyle

	if r.Line != nil {
		lineStyle, err := r.Line.toLineStyle()
		if err != nil {
			return nil, errorsx.Wrap(err, "field", "line")
		}
		styles = append(styles, lineStyle)
	}

	if r.Area != nil {
		fill, err := ParseColor(r.Area.Fill)
		if err != nil {
			return nil, errorsx.Wrap(err, "field", "area.fill")
		}

		areaStyle := &styling.AreaStyle{FillColor: fill, ZIndex: r.Area.ZIndex}
		if r.Area.Line != nil {
			areaStyle.Line, err = r.Area.Line.toLineStyle()
			if err != nil {
				return nil, errorsx.Wrap(err, "field", "area.line")
			}
		}
		styles = append(styles, areaStyle)
	}

	if r.Node != nil {
		textColor, err := ParseColor(r.Node.TextColor)
		if err != nil {
			return nil, errorsx.Wrap(err, "field", "node.text-color")
		}
		styles = append(styles, &styling.NodeStyle{
			TextSize:  r.Node.TextSize,
			TextColor: textColor,
			ZIndex:    r.Node.ZIndex,
		})
	}

	if r.Icon != nil {
		if r.Icon.Name == "" {
			return nil, errorsx.Errorf("icon has no name")
		}
		styles = append(styles, &styling.IconStyle{
			IconName: r.Icon.Name,
			Annotate: r.Icon.Annotate,
			ZIndex:   r.Icon.ZIndex,
		})
	}

	if len(styles) != 1 {
		return nil, errorsx.Errorf("a rule needs exactly one of line, area, node or icon, found %d", len(styles))
	}

	return styles[0], nil
}

func (l *Line) toLineStyle() (*styling.LineStyle, errorsx.Error) {
	lineColor, err := ParseColor(l.Color)
	if err != nil {
		return nil, err
	}

	if l.Width < 0 {
		return nil, errorsx.Errorf("line width must not be negative, got %v", l.Width)
	}

	return &styling.LineStyle{
		LineColor:      lineColor,
		LineWidth:      l.Width,
		LineDashPolicy: l.Dashes,
		ZIndex:         l.ZIndex,
	}, nil
}

func (s *Selector) toSelector() (styling.Selector, errorsx.Error) {
	if s.Parent != nil && s.Member != nil {
		return nil, errorsx.Errorf("a selector can't have both a parent and a member")
	}

	zoomRange := styling.FullRange()
	if s.Zoom != nil {
		maxLevel := styling.NoMaxLevel
		if s.Zoom.Max != nil {
			maxLevel = *s.Zoom.Max
		}

		var err errorsx.Error
		zoomRange, err = styling.RangeFromLevels(s.Zoom.Min, maxLevel)
		if err != nil {
			return nil, err
		}
	}

	conditions := make([]styling.Condition, len(s.Conditions))
	for i, c := range s.Conditions {
		var err errorsx.Error
		conditions[i], err = c.toCondition()
		if err != nil {
			return nil, errorsx.Wrap(err, "conditionIndex", i)
		}
	}

	general, err := styling.NewGeneralSelector(s.Base, conditions, zoomRange, s.Subpart)
	if err != nil {
		return nil, err
	}

	link, isParentSelector := s.Parent, false
	if s.Member != nil {
		link, isParentSelector = s.Member, true
	}

	if link == nil {
		return general, nil
	}

	left, err := link.toSelector()
	if err != nil {
		return nil, err
	}

	return &styling.ChildOrParentSelector{
		Left:           left,
		Right:          general,
		ParentSelector: isParentSelector,
	}, nil
}

func (c *Condition) toCondition() (styling.Condition, errorsx.Error) {
	if c.Pseudo != "" {
		condition, err := styling.NewPseudoClassCondition(c.Pseudo, c.Not)
		if err != nil {
			return nil, err
		}
		return condition, nil
	}

	if c.Key == "" {
		return nil, errorsx.Errorf("condition needs a key or a pseudo class")
	}

	if c.Op != "" {
		op, err := styling.ComparatorOperatorFromSymbol(c.Op)
		if err != nil {
			return nil, err
		}
		condition, err := styling.NewKeyValueCondition(c.Key, op, c.Value)
		if err != nil {
			return nil, err
		}
		return condition, nil
	}

	switch c.Is {
	case "":
		return &styling.KeyCondition{Key: c.Key, Match: styling.KeyMatchExists}, nil
	case "missing":
		return &styling.KeyCondition{Key: c.Key, Match: styling.KeyMatchNotExists}, nil
	case "true":
		return &styling.KeyCondition{Key: c.Key, Match: styling.KeyMatchTrue}, nil
	case "false":
		return &styling.KeyCondition{Key: c.Key, Match: styling.KeyMatchFalse}, nil
	default:
		return nil, errorsx.Errorf("unknown key match %q", c.Is)
	}
}

// ParseColor parses "#rrggbb" or "#rrggbbaa"
func ParseColor(s string) (color.Color, errorsx.Error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == len(s) || (len(hex) != 6 && len(hex) != 8) {
		return nil, errorsx.Errorf("invalid colour %q, expected #rrggbb or #rrggbbaa", s)
	}

	if len(hex) == 6 {
		hex += "ff"
	}

	value, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, errorsx.Wrap(err, "colour", s)
	}

	return color.RGBA{
		R: uint8(value >> 24),
		G: uint8(value >> 16),
		B: uint8(value >> 8),
		A: uint8(value),
	}, nil
}
